package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("MARKETRUNS_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "datastore", cfg.Paths.DatastoreDir)
	assert.Equal(t, DefaultSessions, cfg.Sessions)
	assert.Equal(t, SegmentNames, cfg.Segments)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
logging:
  level: debug
  output: stdout
paths:
  datastore_dir: /tmp/datastore
  tables_dir: /tmp/tables
  plots_dir: /tmp/plots
sessions:
  - id: 1_11-7-tr1
    treatment: tr1
segments:
  - chat_noavg
`
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0644))
	t.Setenv("MARKETRUNS_CONFIG_FILE", configFile)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "/tmp/datastore", cfg.Paths.DatastoreDir)
	require.Len(t, cfg.Sessions, 1)
	assert.Equal(t, "tr1", cfg.Sessions[0].Treatment)
	assert.Equal(t, []string{"chat_noavg"}, cfg.Segments)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("logging:\n  level: warn\n"), 0644))
	t.Setenv("MARKETRUNS_CONFIG_FILE", configFile)
	t.Setenv("MARKETRUNS_LOGGING_LEVEL", "error")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestLoad_InvalidTreatment(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	content := `
sessions:
  - id: bad-session
    treatment: tr9
`
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0644))
	t.Setenv("MARKETRUNS_CONFIG_FILE", configFile)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation")
}

func TestConfig_Treatment(t *testing.T) {
	cfg := &Config{Sessions: DefaultSessions}

	tr, err := cfg.Treatment("2_11-10-tr2")
	require.NoError(t, err)
	assert.Equal(t, "tr2", tr)

	_, err = cfg.Treatment("unknown")
	assert.Error(t, err)
}

func TestSegmentHasChat(t *testing.T) {
	assert.False(t, SegmentHasChat(1))
	assert.False(t, SegmentHasChat(2))
	assert.True(t, SegmentHasChat(3))
	assert.True(t, SegmentHasChat(4))
}
