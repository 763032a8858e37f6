// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"io"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/walteh/rewritesync/cmd/rewritesync/commands"
	"github.com/walteh/rewritesync/cmd/rewritesync/opts"
	"github.com/walteh/rewritesync/pkg/config"
	"github.com/walteh/rewritesync/pkg/log"
	"github.com/walteh/rewritesync/pkg/status"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/natefinch/lumberjack.v2"
)

// 🚩 rootFlags holds the values of the persistent flags
type rootFlags struct {
	configFile    string
	root          string
	changeset     string
	outputDir     string
	failOnChanges bool
	debug         bool
	plain         bool
}

// newRootCmd creates the command tree. The returned options are filled
// before any subcommand runs.
func newRootCmd() (*cobra.Command, *opts.RootOpts) {
	flags := &rootFlags{}
	rootOpts := &opts.RootOpts{Fs: afero.NewOsFs()}

	cmd := &cobra.Command{
		Use:   "rewritesync",
		Short: "Reconcile source transformation results with a working tree",
		Long: `rewritesync takes the before/after records of a source transformation run
and either applies them to a working tree or renders them as a reviewable patch.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupRootOpts(cmd, flags, rootOpts)
		},
	}

	addRootFlags(cmd, flags)

	cmd.AddCommand(
		commands.NewApplyCmd(rootOpts),
		commands.NewDryRunCmd(rootOpts),
		newVersionCmd(),
	)

	return cmd, rootOpts
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, flags *rootFlags) {
	cmd.PersistentFlags().StringVarP(&flags.configFile, "config", "c", ".rewritesync.yaml", "config file path")
	cmd.PersistentFlags().StringVarP(&flags.root, "root", "r", "", "working tree changes are applied to")
	cmd.PersistentFlags().StringVar(&flags.changeset, "changeset", "", "changeset manifest (.yaml, .yml or .json)")
	cmd.PersistentFlags().StringVarP(&flags.outputDir, "output-dir", "o", "", "directory the dry-run patch is written to")
	cmd.PersistentFlags().BoolVar(&flags.failOnChanges, "fail-on-changes", false, "make dry-run fail when changes are found")
	cmd.PersistentFlags().BoolVarP(&flags.debug, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().BoolVar(&flags.plain, "plain", false, "print one plain sentence per change instead of aligned columns")
}

// setupRootOpts loads the configuration, applies flag overrides and wires
// logging into the command context
func setupRootOpts(cmd *cobra.Command, flags *rootFlags, o *opts.RootOpts) error {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx, flags.configFile)
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}

	changed := cmd.Flags().Changed
	if changed("root") {
		if cfg.OutputDir == filepath.Join(cfg.Root, "target", "rewrite") {
			// the default output directory follows the root
			cfg.OutputDir = ""
		}
		cfg.Root = flags.root
	}
	if changed("changeset") {
		cfg.Changeset = flags.changeset
	}
	if changed("output-dir") {
		cfg.OutputDir = flags.outputDir
	}
	if changed("fail-on-changes") {
		cfg.FailOnDryRunResults = flags.failOnChanges
	}
	if flags.debug {
		cfg.Log.Level = zerolog.DebugLevel.String()
	}
	if err := cfg.Validate(); err != nil {
		return errors.Errorf("validating config: %w", err)
	}

	logger := setupLogging(cfg, cmd.ErrOrStderr(), o)
	ctx = logger.WithContext(ctx)

	o.Config = cfg
	o.Logger = log.New(cmd.OutOrStdout(), logger)
	if flags.plain {
		o.Logger.WithFormatter(status.NewDefaultFormatter())
	}
	ctx = log.NewContext(ctx, o.Logger)
	cmd.SetContext(ctx)

	logger.Debug().Str("config", cfg.String()).Msg("configuration loaded")
	return nil
}

// setupLogging builds the structured logger: a console writer on stderr,
// plus a rotating file when log.file is configured
func setupLogging(cfg *config.Config, stderr io.Writer, o *opts.RootOpts) zerolog.Logger {
	var w io.Writer = zerolog.ConsoleWriter{Out: stderr}
	if cfg.Log.File != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.Log.File,
			MaxSize:    cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			Compress:   cfg.Log.Compress,
		}
		o.AddCloser(file)
		w = zerolog.MultiLevelWriter(w, file)
	}
	return zerolog.New(w).Level(cfg.LogLevel()).With().Timestamp().Logger()
}
