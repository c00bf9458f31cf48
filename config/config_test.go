package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "/memories/", cfg.DurablePrefix)
	assert.Equal(t, 3, cfg.MaxDelegationDepth)
	assert.Equal(t, 5*time.Minute, cfg.SubagentTimeout.Std())
	assert.Equal(t, 50, cfg.MaxModelCalls)
	assert.Equal(t, "memory", cfg.Checkpoint.Backend)
	assert.NoError(t, cfg.Validate())
}

func TestParse_OverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
durable_prefix: /persist/
max_delegation_depth: 5
subagent_timeout: 90s
max_model_calls: 10
thread_retention: 2h
checkpoint:
  backend: badger
  directory: /var/lib/deeprun
log_level: debug
`))
	require.NoError(t, err)

	assert.Equal(t, "/persist/", cfg.DurablePrefix)
	assert.Equal(t, 5, cfg.MaxDelegationDepth)
	assert.Equal(t, 90*time.Second, cfg.SubagentTimeout.Std())
	assert.Equal(t, 10, cfg.MaxModelCalls)
	assert.Equal(t, 2*time.Hour, cfg.ThreadRetention.Std())
	assert.Equal(t, "badger", cfg.Checkpoint.Backend)
	assert.Equal(t, "/var/lib/deeprun", cfg.Checkpoint.Directory)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestParse_PartialKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("max_model_calls: 7\n"))
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.MaxModelCalls)
	assert.Equal(t, "/memories/", cfg.DurablePrefix)
}

func TestParse_InvalidDuration(t *testing.T) {
	_, err := Parse([]byte("subagent_timeout: bogus\n"))
	assert.Error(t, err)
}

func TestValidate_Errors(t *testing.T) {
	cases := []func(c *Config){
		func(c *Config) { c.DurablePrefix = "" },
		func(c *Config) { c.DurablePrefix = "memories/" },
		func(c *Config) { c.MaxDelegationDepth = -1 },
		func(c *Config) { c.MaxModelCalls = 0 },
		func(c *Config) { c.Checkpoint.Backend = "redis" },
		func(c *Config) { c.LogLevel = "verbose" },
	}
	for i, mutate := range cases {
		cfg := Default()
		mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}
