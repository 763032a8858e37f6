/*
Package config manages run configuration for rewritesync.

	            +-------------+
	            |   Config    |
	            | (Settings)  |
	            +------+------+
	                   |
	      +------------+------------+
	      |            |            |
	+-----+-----+ +----+----+ +-----+-----+
	|   YAML    | |  JSON   | |    HCL    |
	|  Parser   | | Parser  | |  Parser   |
	+-----------+ +---------+ +-----------+

🎯 Purpose:
- Reads the run configuration from .yaml/.yml, .json or .hcl files
- Rejects unknown fields in every format
- Fills defaults for the output directory and logging

🔄 Flow:
1. Load picks a Parser by file extension
2. The parser decodes into Config
3. Validate fills defaults and checks exclusion globs and the log level
4. Command line flags override the loaded values

A missing configuration file is not an error: Default is used instead.

🔍 Example:

	cfg, err := config.Load(ctx, "rewritesync.yaml")
	if err != nil {
		return err
	}
	opts := cfg.RemoteOptions()
*/
package config
