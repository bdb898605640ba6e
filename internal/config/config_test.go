package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseOverridesFlags(t *testing.T) {
	cfg, err := Parse([]string{"--mode", "manual", "--port", "9090", "--device", "/dev/ttyACM0"})
	require.NoError(t, err)
	assert.Equal(t, "manual", cfg.Mode)
	assert.Equal(t, uint16(9090), cfg.Port)
	assert.Equal(t, "/dev/ttyACM0", cfg.Device)
}

func TestParseRejectsInvalidMode(t *testing.T) {
	_, err := Parse([]string{"--mode", "bogus"})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestParseRejectsEmptyDevice(t *testing.T) {
	_, err := Parse([]string{"--device", ""})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestParseYAMLOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mode: manual\nport: 9100\nstop_distance: 0.8\n"), 0o644))

	cfg, err := Parse([]string{"--config", path})
	require.NoError(t, err)
	assert.Equal(t, "manual", cfg.Mode)
	assert.Equal(t, uint16(9100), cfg.Port)
	assert.InDelta(t, 0.8, cfg.StopDistance, 1e-6)
}

func TestParseMissingConfigFileErrors(t *testing.T) {
	_, err := Parse([]string{"--config", "/nonexistent/path.yaml"})
	assert.Error(t, err)
}
