package config

import (
	"os"
	"path/filepath"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	cfg, err := Load(logger, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "INFO", cfg.LoggerConfig.Level)
	assert.Equal(t, "localhost", cfg.ServerConfig.Host)
	assert.Equal(t, 46010, cfg.ServerConfig.Port)
	assert.Equal(t, "http://github.com/amine-amaach/simulators/ioTSensorsUaBridge", cfg.ServerConfig.NamespaceURI)
	require.Len(t, cfg.ServerConfig.Users, 1)
	assert.Equal(t, "root", cfg.ServerConfig.Users[0].Username)
	require.Len(t, cfg.Sensors, 3)
	assert.Equal(t, "Temperature", cfg.Sensors[0].Name)
	assert.Equal(t, 5.0, cfg.Sensors[0].Std)
	assert.Equal(t, uint32(2000), cfg.Sensors[0].DelayMs)
	assert.True(t, cfg.Sensors[2].Writable)
	assert.True(t, cfg.EnablePrometheus)
	assert.Equal(t, ":8080", cfg.MetricsAddr)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	file := `{
		"logger": {"level": "DEBUG", "format": "JSON"},
		"server": {"port": 4840},
		"sensors": [{"name": "Flow", "mean": 3.5, "standard_deviation": 0.4, "delay_ms": 100}]
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(file), 0o644))

	logger, _ := logtest.NewNullLogger()
	cfg, err := Load(logger, dir)
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", cfg.LoggerConfig.Level)
	assert.Equal(t, "JSON", cfg.LoggerConfig.Format)
	assert.Equal(t, 4840, cfg.ServerConfig.Port)
	assert.Equal(t, "localhost", cfg.ServerConfig.Host, "keys missing from the file keep their default")
	require.Len(t, cfg.Sensors, 1)
	assert.Equal(t, "Flow", cfg.Sensors[0].Name)
	assert.Equal(t, "", cfg.Sensors[0].NodeID)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("UABRIDGE_SERVER_HOST", "plant-gw")
	t.Setenv("UABRIDGE_ENABLE_PROMETHEUS", "false")

	logger, _ := logtest.NewNullLogger()
	cfg, err := Load(logger, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "plant-gw", cfg.ServerConfig.Host)
	assert.False(t, cfg.EnablePrometheus)
}

func TestLoadBrokenFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0o644))

	logger, _ := logtest.NewNullLogger()
	_, err := Load(logger, dir)
	assert.Error(t, err)
}
