package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nareshsaladi2024/OICAgentOps/state"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000", cfg.MCP.BaseURL)
	assert.Equal(t, 60*time.Second, cfg.MCP.CallTimeout)
	assert.Equal(t, 5*time.Second, cfg.MCP.HealthTimeout)
	assert.Equal(t, state.StoreTypeFile, cfg.State.Type)
	assert.Equal(t, 10001, cfg.Agents.CoordinatorPort)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
mcp:
  base_url: http://oic-monitor:9000
  call_timeout: 30s
state:
  type: redis
  redis_addr: localhost:6379
agents:
  coordinator_port: 20001
log:
  level: debug
`), 0o644))

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, "http://oic-monitor:9000", cfg.MCP.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.MCP.CallTimeout)
	assert.Equal(t, state.StoreTypeRedis, cfg.State.Type)
	assert.Equal(t, "localhost:6379", cfg.State.RedisAddr)
	assert.Equal(t, 20001, cfg.Agents.CoordinatorPort)
	assert.Equal(t, "debug", cfg.Log.Level)

	// Untouched sections keep defaults.
	assert.Equal(t, 10002, cfg.Agents.MonitorErrorsPort)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := NewLoader().WithConfigPath(filepath.Join(t.TempDir(), "absent.yaml")).Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000", cfg.MCP.BaseURL)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mcp:\n  base_url: http://from-file:3000\n"), 0o644))

	t.Setenv("AGENTOPS_MCP_BASE_URL", "http://from-env:3000")
	t.Setenv("AGENTOPS_MCP_CALL_TIMEOUT", "45s")
	t.Setenv("AGENTOPS_STATE_TYPE", "memory")
	t.Setenv("AGENTOPS_AGENTS_RECOVERY_JOB_PORT", "31005")

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, "http://from-env:3000", cfg.MCP.BaseURL)
	assert.Equal(t, 45*time.Second, cfg.MCP.CallTimeout)
	assert.Equal(t, state.StoreTypeMemory, cfg.State.Type)
	assert.Equal(t, 31005, cfg.Agents.RecoveryJobPort)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.MCP.BaseURL = "http://localhost:3000/"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.MCP.CallTimeout = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Agents.MonitorQueuePort = 99999
	assert.Error(t, cfg.Validate())
}

func TestLoaderValidatorHook(t *testing.T) {
	_, err := NewLoader().
		WithValidator(func(c *Config) error { return assert.AnError }).
		Load()
	assert.Error(t, err)
}
