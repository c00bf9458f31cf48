// Package config loads and validates runtime configuration from YAML, with
// sensible defaults for embedding without any file at all.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration for YAML decoding of strings like "5m".
type Duration time.Duration

// UnmarshalYAML decodes either a duration string or a number of nanoseconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("invalid duration value: %w", err)
	}
	*d = Duration(n)
	return nil
}

// MarshalYAML encodes the duration as its string form.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// CheckpointConfig selects and parameterizes the checkpoint store backend.
type CheckpointConfig struct {
	// Backend is "memory" or "badger".
	Backend string `yaml:"backend"`
	// Directory is the badger data directory; empty selects in-memory badger.
	Directory string `yaml:"directory"`
}

// Config is the full runtime configuration.
type Config struct {
	// DurablePrefix is the path prefix routed to the durable backend.
	DurablePrefix string `yaml:"durable_prefix"`
	// MaxDelegationDepth is the subagent recursion ceiling.
	MaxDelegationDepth int `yaml:"max_delegation_depth"`
	// SubagentTimeout bounds each delegated invocation.
	SubagentTimeout Duration `yaml:"subagent_timeout"`
	// MaxModelCalls bounds model calls per run; exceeding it aborts the run.
	MaxModelCalls int `yaml:"max_model_calls"`
	// ThreadRetention is how long idle ephemeral thread state is kept.
	// Zero keeps it until explicitly discarded.
	ThreadRetention Duration `yaml:"thread_retention"`

	Checkpoint CheckpointConfig `yaml:"checkpoint"`

	// LogLevel is "debug", "info", "warn" or "error".
	LogLevel string `yaml:"log_level"`
	// LogFormat is "json" or "text".
	LogFormat string `yaml:"log_format"`
}

// Default returns the baseline configuration.
func Default() *Config {
	return &Config{
		DurablePrefix:      "/memories/",
		MaxDelegationDepth: 3,
		SubagentTimeout:    Duration(5 * time.Minute),
		MaxModelCalls:      50,
		Checkpoint:         CheckpointConfig{Backend: "memory"},
		LogLevel:           "info",
		LogFormat:          "json",
	}
}

// Load reads a YAML config file, applying defaults for absent fields.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %q: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes YAML config bytes over the defaults.
func Parse(raw []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if c.DurablePrefix == "" {
		return fmt.Errorf("durable_prefix must not be empty")
	}
	if c.DurablePrefix[0] != '/' {
		return fmt.Errorf("durable_prefix must start with /")
	}
	if c.MaxDelegationDepth < 0 {
		return fmt.Errorf("max_delegation_depth must not be negative")
	}
	if c.MaxModelCalls <= 0 {
		return fmt.Errorf("max_model_calls must be positive")
	}
	switch c.Checkpoint.Backend {
	case "", "memory", "badger":
	default:
		return fmt.Errorf("unknown checkpoint backend %q", c.Checkpoint.Backend)
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}
