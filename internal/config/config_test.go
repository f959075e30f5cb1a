package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 30*time.Second, cfg.Recorder.Timeout)
	assert.Equal(t, time.Hour, cfg.Recorder.Window)
	assert.NotEmpty(t, cfg.Server.Ports.SRT)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/config.yaml"
	require.NoError(t, os.WriteFile(path, []byte("server:\n  host: from-file\n"), 0o600))

	t.Setenv("DATARECORDS_SERVER_HOST", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Server.Host)
}

func TestLoadFileProvidesDefaultBelowEnv(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/config.yaml"
	require.NoError(t, os.WriteFile(path, []byte("server:\n  host: from-file\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Server.Host)
}

func TestParseIntList(t *testing.T) {
	t.Setenv("DATARECORDS_TEST_PORTS", "1,2, 3")
	assert.Equal(t, []int{1, 2, 3}, ParseIntList("DATARECORDS_TEST_PORTS", nil))
}
