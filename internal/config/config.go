// Package config loads condeval's YAML configuration: compatibility
// policy defaults, logging, and CLI batch-check behavior.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all condeval configuration.
type Config struct {
	// Policy holds the default compatibility-policy statuses used when
	// the policy facts file (see Policy.FactsPath) has no entry for a
	// given policy ID.
	Policy PolicyDefaults `yaml:"policy"`

	// Logging controls the category file logger.
	Logging LoggingConfig `yaml:"logging"`

	// Check controls the `condeval check` batch subcommand.
	Check CheckConfig `yaml:"check"`
}

// PolicyDefaults names the two compatibility policies this repo cares
// about (the CMake-style policy-status vocabulary: OLD, NEW, WARN,
// REQUIRED_IF_USED, REQUIRED_ALWAYS) plus the facts file backing the
// policy store.
type PolicyDefaults struct {
	AutoDeref    string `yaml:"auto_deref"`    // OLD | NEW | WARN | REQUIRED_IF_USED | REQUIRED_ALWAYS
	QuotedDemote string `yaml:"quoted_demote"` // same vocabulary
	FactsPath    string `yaml:"facts_path"`    // path to a .mg policy facts file; "" disables the store
}

type LoggingConfig struct {
	DebugMode bool            `yaml:"debug_mode"`
	Dir       string          `yaml:"dir"`
	Level     string          `yaml:"level"`
	Categories map[string]bool `yaml:"categories"`
}

type CheckConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// DefaultConfig returns condeval's built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Policy: PolicyDefaults{
			AutoDeref:    "NEW",
			QuotedDemote: "NEW",
			FactsPath:    "",
		},
		Logging: LoggingConfig{
			DebugMode: false,
			Dir:       ".condeval/logs",
			Level:     "info",
		},
		Check: CheckConfig{
			Concurrency: 4,
		},
	}
}

// Load reads configuration from path, falling back to defaults (with
// environment overrides applied) if the file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

// Discover walks upward from dir looking for .condeval.yaml, the way a
// build tool finds its nearest project file. Returns "" if none found.
func Discover(dir string) string {
	for {
		candidate := filepath.Join(dir, ".condeval.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("CONDEVAL_POLICY_AUTO_DEREF"); v != "" {
		c.Policy.AutoDeref = v
	}
	if v := os.Getenv("CONDEVAL_POLICY_QUOTED_DEMOTE"); v != "" {
		c.Policy.QuotedDemote = v
	}
	if v := os.Getenv("CONDEVAL_DEBUG"); v == "1" || v == "true" {
		c.Logging.DebugMode = true
	}
}
