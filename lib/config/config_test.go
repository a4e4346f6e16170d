// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/ledgerwire/lib/account"
	"github.com/bureau-foundation/ledgerwire/lib/txn"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "ledgerwire.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return configPath
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Environment != Development {
		t.Errorf("expected environment=development, got %s", cfg.Environment)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected level=info, got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Format != FormatAuto {
		t.Errorf("expected format=auto, got %s", cfg.Logging.Format)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config is invalid: %v", err)
	}
}

func TestLoad_RequiresConfigVariable(t *testing.T) {
	t.Setenv(EnvironmentVariable, "")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error when %s not set, got nil", EnvironmentVariable)
	}

	expectedMsg := "LEDGERWIRE_CONFIG environment variable not set"
	if !strings.HasPrefix(err.Error(), expectedMsg) {
		t.Errorf("expected error message to start with %q, got %q", expectedMsg, err.Error())
	}
}

func TestLoad_WithConfigVariable(t *testing.T) {
	configPath := writeConfig(t, `
environment: staging
logging:
  level: debug
`)
	t.Setenv(EnvironmentVariable, configPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Environment != Staging {
		t.Errorf("expected environment=staging, got %s", cfg.Environment)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected level=debug, got %s", cfg.Logging.Level)
	}
	// Unset fields keep their defaults.
	if cfg.Logging.Format != FormatAuto {
		t.Errorf("expected format=auto, got %s", cfg.Logging.Format)
	}
}

func TestLoadFile(t *testing.T) {
	configPath := writeConfig(t, `
environment: staging

logging:
  level: warn
  format: text

transaction_kinds:
  - name: stake
    index: [9, 1]

roles:
  - name: canStake
    index: 40
`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	transactions, err := cfg.TransactionTable()
	if err != nil {
		t.Fatalf("TransactionTable: %v", err)
	}
	if index, ok := transactions.IndexOf("stake"); !ok || index.String() != "9.1" {
		t.Errorf("stake index = %v, %v, want 9.1", index, ok)
	}
	if index, ok := transactions.IndexOf(txn.Send); !ok || index.String() != "6.0" {
		t.Errorf("built-in send index = %v, %v, want 6.0", index, ok)
	}

	roles, err := cfg.RoleTable()
	if err != nil {
		t.Fatalf("RoleTable: %v", err)
	}
	if role, ok := roles.RoleOf(40); !ok || role != "canStake" {
		t.Errorf("RoleOf(40) = %q, %v", role, ok)
	}
	if index, ok := roles.IndexOf(account.RoleOwner); !ok || index != 0 {
		t.Errorf("built-in owner index = %d, %v, want 0", index, ok)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadFile succeeded on a missing file")
	}
	if _, err := LoadFile(writeConfig(t, "logging: [unterminated")); err == nil {
		t.Error("LoadFile succeeded on malformed YAML")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantLevel  string
		wantFormat string
	}{
		{
			name: "explicit production override",
			content: `
environment: production
logging:
  level: debug
  format: text
production:
  logging:
    level: error
`,
			wantLevel:  "error",
			wantFormat: "text",
		},
		{
			name: "production defaults to json",
			content: `
environment: production
`,
			wantLevel:  "info",
			wantFormat: FormatJSON,
		},
		{
			name: "other environment sections ignored",
			content: `
environment: development
staging:
  logging:
    level: error
`,
			wantLevel:  "info",
			wantFormat: FormatAuto,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFile(writeConfig(t, tt.content))
			if err != nil {
				t.Fatalf("LoadFile failed: %v", err)
			}
			if cfg.Logging.Level != tt.wantLevel {
				t.Errorf("level = %s, want %s", cfg.Logging.Level, tt.wantLevel)
			}
			if cfg.Logging.Format != tt.wantFormat {
				t.Errorf("format = %s, want %s", cfg.Logging.Format, tt.wantFormat)
			}
		})
	}
}

func TestEnvVarsDoNotOverride(t *testing.T) {
	// The config file is the single source of truth.
	t.Setenv("LEDGERWIRE_ENVIRONMENT", "production")
	t.Setenv("LEDGERWIRE_LOG_LEVEL", "debug")

	cfg, err := LoadFile(writeConfig(t, `
environment: development
logging:
  level: warn
`))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Environment != Development {
		t.Errorf("expected environment=development from file, got %s (env vars should not override)", cfg.Environment)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected level=warn from file, got %s (env vars should not override)", cfg.Logging.Level)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name: "invalid environment",
			modify: func(c *Config) {
				c.Environment = "invalid"
			},
			wantErr: true,
		},
		{
			name: "invalid level",
			modify: func(c *Config) {
				c.Logging.Level = "loud"
			},
			wantErr: true,
		},
		{
			name: "invalid format",
			modify: func(c *Config) {
				c.Logging.Format = "xml"
			},
			wantErr: true,
		},
		{
			name: "repeated built-in kind",
			modify: func(c *Config) {
				c.TransactionKinds = []TransactionKindConfig{{Name: "send", Index: []uint64{6, 0}}}
			},
			wantErr: false,
		},
		{
			name: "kind collides with built-in index",
			modify: func(c *Config) {
				c.TransactionKinds = []TransactionKindConfig{{Name: "transfer", Index: []uint64{6, 0}}}
			},
			wantErr: true,
		},
		{
			name: "kind listed twice",
			modify: func(c *Config) {
				c.TransactionKinds = []TransactionKindConfig{
					{Name: "stake", Index: []uint64{9, 1}},
					{Name: "stake", Index: []uint64{9, 2}},
				}
			},
			wantErr: true,
		},
		{
			name: "kind without index",
			modify: func(c *Config) {
				c.TransactionKinds = []TransactionKindConfig{{Name: "stake"}}
			},
			wantErr: true,
		},
		{
			name: "role collides with built-in index",
			modify: func(c *Config) {
				c.Roles = []RoleConfig{{Name: "canStake", Index: 0}}
			},
			wantErr: true,
		},
		{
			name: "role without name",
			modify: func(c *Config) {
				c.Roles = []RoleConfig{{Index: 40}}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLogger(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.Format = FormatJSON
		var buffer bytes.Buffer
		logger, err := cfg.Logger(&buffer)
		if err != nil {
			t.Fatalf("Logger: %v", err)
		}
		logger.Info("called", "method", "account.info")
		var entry map[string]any
		if err := json.Unmarshal(buffer.Bytes(), &entry); err != nil {
			t.Fatalf("log line %q is not JSON: %v", buffer.String(), err)
		}
		if entry["method"] != "account.info" {
			t.Errorf("method attribute = %v", entry["method"])
		}
	})

	t.Run("auto on a non-terminal writes json", func(t *testing.T) {
		var buffer bytes.Buffer
		logger, err := Default().Logger(&buffer)
		if err != nil {
			t.Fatalf("Logger: %v", err)
		}
		logger.Info("called")
		if !strings.HasPrefix(buffer.String(), "{") {
			t.Errorf("auto format on a buffer wrote %q, want JSON", buffer.String())
		}
	})

	t.Run("level filters", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.Level = "warn"
		cfg.Logging.Format = FormatText
		var buffer bytes.Buffer
		logger, err := cfg.Logger(&buffer)
		if err != nil {
			t.Fatalf("Logger: %v", err)
		}
		logger.Info("dropped")
		logger.Warn("kept")
		if strings.Contains(buffer.String(), "dropped") || !strings.Contains(buffer.String(), "kept") {
			t.Errorf("unexpected output %q", buffer.String())
		}
	})

	t.Run("invalid level", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.Level = "loud"
		if _, err := cfg.Logger(&bytes.Buffer{}); err == nil {
			t.Error("Logger accepted an invalid level")
		}
	})
}

func TestFlags(t *testing.T) {
	configPath := writeConfig(t, "environment: staging\n")
	t.Setenv(EnvironmentVariable, "")

	var flags Flags
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.AddFlags(flagSet)
	if err := flagSet.Parse([]string{"--config", configPath}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	cfg, err := flags.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Environment != Staging {
		t.Errorf("expected environment=staging, got %s", cfg.Environment)
	}

	// Without the flag, the environment variable is required.
	var empty Flags
	if _, err := empty.Load(); err == nil {
		t.Error("Load without --config or LEDGERWIRE_CONFIG succeeded")
	}
}
