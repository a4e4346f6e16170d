// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/pflag"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/ledgerwire/lib/account"
	"github.com/bureau-foundation/ledgerwire/lib/txn"
)

// EnvironmentVariable names the config file for [Load].
const EnvironmentVariable = "LEDGERWIRE_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Log formats.
const (
	// FormatAuto writes text to a terminal and JSON otherwise.
	FormatAuto = "auto"
	FormatText = "text"
	FormatJSON = "json"
)

// Config is the ledgerwire client configuration.
type Config struct {
	// Environment identifies the deployment type (development, staging, production).
	Environment Environment `yaml:"environment"`

	Logging LoggingConfig `yaml:"logging"`

	// TransactionKinds adds transaction kinds beyond the built-in
	// ones.
	TransactionKinds []TransactionKindConfig `yaml:"transaction_kinds"`

	// Roles adds account roles beyond the built-in ones.
	Roles []RoleConfig `yaml:"roles"`

	// Per-environment overrides, applied after the base config is
	// loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Logging *LoggingConfig `yaml:"logging,omitempty"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: info
	Level string `yaml:"level"`

	// Format is one of auto, text, json.
	// Default: auto (development), json (production)
	Format string `yaml:"format"`
}

// TransactionKindConfig maps a transaction kind name to its index
// path, for example {name: stake, index: [9, 1]}.
type TransactionKindConfig struct {
	Name  string   `yaml:"name"`
	Index []uint64 `yaml:"index"`
}

// RoleConfig maps an account role name to its index.
type RoleConfig struct {
	Name  string `yaml:"name"`
	Index uint64 `yaml:"index"`
}

// Default returns the default configuration. It is the base the
// config file is merged into, not a substitute for the file.
func Default() *Config {
	return &Config{
		Environment: Development,
		Logging: LoggingConfig{
			Level:  "info",
			Format: FormatAuto,
		},
	}
}

// Load loads configuration from the file named by LEDGERWIRE_CONFIG.
// There is no fallback: if the variable is unset, Load fails.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your ledgerwire.yaml config file, or use --config flag", EnvironmentVariable)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from path and applies the overrides
// for the configured environment. Environment variables never
// override values from the file.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.applyEnvironmentOverrides()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
		// Production defaults: machine-readable logs.
		if overrides == nil {
			overrides = &ConfigOverrides{
				Logging: &LoggingConfig{Format: FormatJSON},
			}
		}
	}

	if overrides == nil || overrides.Logging == nil {
		return
	}
	if overrides.Logging.Level != "" {
		c.Logging.Level = overrides.Logging.Level
	}
	if overrides.Logging.Format != "" {
		c.Logging.Format = overrides.Logging.Format
	}
}

// Validate checks the configuration for errors, including collisions
// between configured and built-in table entries.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if _, err := c.level(); err != nil {
		errs = append(errs, err)
	}
	formats := []string{FormatAuto, FormatText, FormatJSON}
	if !slices.Contains(formats, c.Logging.Format) {
		errs = append(errs, fmt.Errorf("logging.format must be one of: %v", formats))
	}

	if _, err := c.TransactionTable(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.RoleTable(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// TransactionTable returns the built-in transaction kinds plus the
// configured ones.
func (c *Config) TransactionTable() (*txn.Table, error) {
	extra := make(map[txn.Kind]txn.Index, len(c.TransactionKinds))
	for _, kind := range c.TransactionKinds {
		name := txn.Kind(kind.Name)
		if _, duplicate := extra[name]; duplicate {
			return nil, fmt.Errorf("transaction_kinds: %q listed twice", kind.Name)
		}
		extra[name] = txn.Index(kind.Index)
	}
	table, err := txn.NewTable(extra)
	if err != nil {
		return nil, fmt.Errorf("transaction_kinds: %w", err)
	}
	return table, nil
}

// RoleTable returns the built-in roles plus the configured ones.
func (c *Config) RoleTable() (*account.RoleTable, error) {
	extra := make(map[account.Role]uint64, len(c.Roles))
	for _, role := range c.Roles {
		name := account.Role(role.Name)
		if _, duplicate := extra[name]; duplicate {
			return nil, fmt.Errorf("roles: %q listed twice", role.Name)
		}
		extra[name] = role.Index
	}
	table, err := account.NewRoleTable(extra)
	if err != nil {
		return nil, fmt.Errorf("roles: %w", err)
	}
	return table, nil
}

func (c *Config) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return 0, fmt.Errorf("logging.level: %w", err)
	}
	return level, nil
}

// Logger returns a logger writing to w. With the auto format, a
// terminal gets slog.TextHandler output and anything else gets
// slog.JSONHandler output.
func (c *Config) Logger(w io.Writer) (*slog.Logger, error) {
	level, err := c.level()
	if err != nil {
		return nil, err
	}
	options := &slog.HandlerOptions{Level: level}

	format := c.Logging.Format
	if format == FormatAuto {
		format = FormatJSON
		if file, ok := w.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
			format = FormatText
		}
	}

	switch format {
	case FormatText:
		return slog.New(slog.NewTextHandler(w, options)), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, options)), nil
	}
	return nil, fmt.Errorf("unknown logging.format %q", c.Logging.Format)
}

// Flags binds the --config flag for commands that embed a ledgerwire
// client.
type Flags struct {
	Path string
}

// AddFlags registers --config on flagSet.
func (f *Flags) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.Path, "config", "", "path to the ledgerwire config file (default: $"+EnvironmentVariable+")")
}

// Load loads the file named by --config, or by LEDGERWIRE_CONFIG when
// the flag was not given.
func (f *Flags) Load() (*Config, error) {
	if f.Path != "" {
		return LoadFile(f.Path)
	}
	return Load()
}
