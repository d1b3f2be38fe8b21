package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/weft/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "weft.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weft.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
graphs: ./flows
engine:
  step_factor: 3
executor:
  kind: process
  interpreter: python
log:
  format: json
redis:
  address: localhost:6379
`), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "./flows", cfg.Graphs)
	assert.Equal(t, 3, cfg.Engine.StepFactor)
	assert.Equal(t, 100, cfg.Engine.HistorySize, "untouched fields keep defaults")
	assert.Equal(t, config.ExecutorProcess, cfg.Executor.Kind)
	assert.Equal(t, "python", cfg.Executor.Interpreter)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
	assert.Equal(t, "weft:log", cfg.Redis.Stream)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weft.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
engine:
  step_factor: 0
executor:
  kind: wasm
log:
  narration: loud
`), 0o644))

	_, err := config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step_factor")
	assert.Contains(t, err.Error(), "wasm")
	assert.Contains(t, err.Error(), "loud")
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weft.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine: [unclosed"), 0o644))

	_, err := config.Load(path)
	assert.ErrorContains(t, err, "failed to parse")
}
