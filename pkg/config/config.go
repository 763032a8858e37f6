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

package config

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/rewritesync/pkg/remote"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultLogLevel       = "info"
	DefaultMaxSizeMB      = 10
	DefaultMaxBackups     = 3
	DefaultGitHubTokenEnv = "GITHUB_TOKEN"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📜 LogConfig controls the optional rotating log file
type LogConfig struct {
	Level      string `json:"level,omitempty" yaml:"level,omitempty" hcl:"level,optional"`
	File       string `json:"file,omitempty" yaml:"file,omitempty" hcl:"file,optional"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty" yaml:"max_size_mb,omitempty" hcl:"max_size_mb,optional"`
	MaxBackups int    `json:"max_backups,omitempty" yaml:"max_backups,omitempty" hcl:"max_backups,optional"`
	Compress   bool   `json:"compress,omitempty" yaml:"compress,omitempty" hcl:"compress,optional"`
}

// 🪣 S3Config points the s3 scheme at an endpoint. Credentials are read from
// the named environment variables.
type S3Config struct {
	Endpoint     string `json:"endpoint" yaml:"endpoint" hcl:"endpoint"`
	Region       string `json:"region,omitempty" yaml:"region,omitempty" hcl:"region,optional"`
	AccessKeyEnv string `json:"access_key_env,omitempty" yaml:"access_key_env,omitempty" hcl:"access_key_env,optional"`
	SecretKeyEnv string `json:"secret_key_env,omitempty" yaml:"secret_key_env,omitempty" hcl:"secret_key_env,optional"`
	UseSSL       bool   `json:"use_ssl,omitempty" yaml:"use_ssl,omitempty" hcl:"use_ssl,optional"`
}

// 🌐 RemoteConfig configures how remote snapshots are fetched
type RemoteConfig struct {
	GitHubTokenEnv string    `json:"github_token_env,omitempty" yaml:"github_token_env,omitempty" hcl:"github_token_env,optional"`
	S3             *S3Config `json:"s3,omitempty" yaml:"s3,omitempty" hcl:"s3,block"`
}

// 📚 Config represents the complete run configuration
type Config struct {
	Root                string        `json:"root,omitempty" yaml:"root,omitempty" hcl:"root,optional"`
	Changeset           string        `json:"changeset,omitempty" yaml:"changeset,omitempty" hcl:"changeset,optional"`
	OutputDir           string        `json:"output_dir,omitempty" yaml:"output_dir,omitempty" hcl:"output_dir,optional"`
	FailOnDryRunResults bool          `json:"fail_on_dry_run_results,omitempty" yaml:"fail_on_dry_run_results,omitempty" hcl:"fail_on_dry_run_results,optional"`
	Exclusions          []string      `json:"exclusions,omitempty" yaml:"exclusions,omitempty" hcl:"exclusions,optional"`
	Log                 *LogConfig    `json:"log,omitempty" yaml:"log,omitempty" hcl:"log,block"`
	Remote              *RemoteConfig `json:"remote,omitempty" yaml:"remote,omitempty" hcl:"remote,block"`
}

// 🏭 Default returns a validated configuration rooted at the working directory
func Default() *Config {
	cfg := &Config{}
	// defaults alone always validate
	_ = cfg.Validate()
	return cfg
}

// 🎯 Load loads the configuration from a file. An empty path or a missing
// file yields Default.
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)

	if path == "" {
		return Default(), nil
	}

	logger.Debug().Str("path", path).Msg("loading configuration")

	// Read config file
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Debug().Str("path", path).Msg("no configuration file, using defaults")
			return Default(), nil
		}
		return nil, errors.Errorf("reading config file: %w", err)
	}

	// Get parser
	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	// Parse config
	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// 🔍 Validate fills defaults and checks values that would only fail later
func (cfg *Config) Validate() error {
	// Clean up paths
	if cfg.Root == "" {
		cfg.Root = "."
	}
	cfg.Root = filepath.Clean(cfg.Root)
	if cfg.OutputDir == "" {
		cfg.OutputDir = filepath.Join(cfg.Root, "target", "rewrite")
	}
	cfg.OutputDir = filepath.Clean(cfg.OutputDir)

	for _, pattern := range cfg.Exclusions {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("exclusion %q is not a valid glob", pattern)
		}
	}

	// Set defaults
	if cfg.Log == nil {
		cfg.Log = &LogConfig{}
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(cfg.Log.Level)); err != nil {
		return errors.Errorf("log.level %q: %w", cfg.Log.Level, err)
	}
	if cfg.Log.MaxSizeMB == 0 {
		cfg.Log.MaxSizeMB = DefaultMaxSizeMB
	}
	if cfg.Log.MaxBackups == 0 {
		cfg.Log.MaxBackups = DefaultMaxBackups
	}

	if cfg.Remote == nil {
		cfg.Remote = &RemoteConfig{}
	}
	if cfg.Remote.GitHubTokenEnv == "" {
		cfg.Remote.GitHubTokenEnv = DefaultGitHubTokenEnv
	}
	if s3 := cfg.Remote.S3; s3 != nil && s3.Endpoint == "" {
		return errors.Errorf("remote.s3.endpoint is required")
	}

	return nil
}

// LogLevel returns the parsed log level
func (cfg *Config) LogLevel() zerolog.Level {
	if cfg.Log == nil {
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Log.Level))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// RemoteOptions resolves the remote fetch options, reading credentials from
// the configured environment variables
func (cfg *Config) RemoteOptions() remote.Options {
	opts := remote.Options{}
	if cfg.Remote == nil {
		return opts
	}
	if cfg.Remote.GitHubTokenEnv != "" {
		opts.GitHubToken = os.Getenv(cfg.Remote.GitHubTokenEnv)
	}
	if s3 := cfg.Remote.S3; s3 != nil {
		opts.S3 = remote.S3Options{
			Endpoint: s3.Endpoint,
			Region:   s3.Region,
			UseSSL:   s3.UseSSL,
		}
		if s3.AccessKeyEnv != "" {
			opts.S3.AccessKey = os.Getenv(s3.AccessKeyEnv)
		}
		if s3.SecretKeyEnv != "" {
			opts.S3.SecretKey = os.Getenv(s3.SecretKeyEnv)
		}
	}
	return opts
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	changeset := cfg.Changeset
	if changeset == "" {
		changeset = "<none>"
	}
	return fmt.Sprintf("%s -> %s (patch in %s)", changeset, cfg.Root, cfg.OutputDir)
}

// 🔧 YAMLParser implements the Parser interface for YAML files
type YAMLParser struct{}

func init() {
	Register(&YAMLParser{})
}

func (p *YAMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

func (p *YAMLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(strings.NewReader(string(data)))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}
	return &cfg, nil
}
