package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	// Change to temp dir so no stray config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Catalog.Driver)
	assert.Empty(t, cfg.Catalog.Path)
	assert.Equal(t, int32(4), cfg.Catalog.MaxConns)
	assert.Equal(t, 14, cfg.Simulation.Days)
	assert.Equal(t, 24, cfg.Simulation.SnapshotHours)
	assert.InDelta(t, 65.0, cfg.Simulation.ReferenceMashTemp, 1e-9)
	assert.Equal(t, 24, cfg.Simulation.MilestoneHours)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.InDelta(t, 10.0, cfg.Server.RateLimit, 1e-9)
	assert.Equal(t, 20, cfg.Server.RateBurst)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.False(t, cfg.MQTT.Enabled())
	assert.Equal(t, "brew", cfg.MQTT.TopicPrefix)
	assert.Equal(t, 1, cfg.MQTT.QoS)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
catalog:
  driver: sqlite
  path: ingredients.db
log:
  level: debug
  format: console
server:
  port: 9090
  cors_origins:
    - https://brew.example.com
simulation:
  days: 21
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Catalog.Driver)
	assert.Equal(t, "ingredients.db", cfg.Catalog.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"https://brew.example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 21, cfg.Simulation.Days)
	// Defaults still apply for unset values
	assert.Equal(t, 24, cfg.Simulation.SnapshotHours)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
catalog:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("BREW_CATALOG_DRIVER", "postgres")
	t.Setenv("BREW_CATALOG_DATABASE_URL", "postgres://localhost/brew")
	t.Setenv("BREW_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Catalog.Driver)
	assert.Equal(t, "postgres://localhost/brew", cfg.Catalog.DatabaseURL)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("BREW_SERVER_PORT", "3000")
	t.Setenv("BREW_SIMULATION_SNAPSHOT_HOURS", "12")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 12, cfg.Simulation.SnapshotHours)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)

	// Registers restoration of the unset state; godotenv never overrides
	// variables that already exist.
	t.Setenv("BREW_MQTT_BROKER", "")
	require.NoError(t, os.Unsetenv("BREW_MQTT_BROKER"))

	env := "BREW_MQTT_BROKER=tcp://broker.local:1883\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "tcp://broker.local:1883", cfg.MQTT.Broker)
	assert.True(t, cfg.MQTT.Enabled())
}

func TestLoadBadFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log: [unclosed"), 0644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Catalog.Driver = "memory"
	cfg.Simulation.Days = 14
	cfg.Simulation.SnapshotHours = 24
	cfg.Simulation.MilestoneHours = 24
	cfg.Server.Port = 8080
	cfg.Server.RateLimit = 10
	cfg.Server.RateBurst = 20
	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	cfg := validDefaults()
	for _, mode := range []string{"calc", "simulate", "ingredients", "serve"} {
		assert.NoError(t, cfg.Validate(mode), mode)
	}
}

func TestValidate_CatalogDriver(t *testing.T) {
	cfg := validDefaults()

	cfg.Catalog.Driver = "sqlite"
	err := cfg.Validate("calc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog.path is required")

	cfg.Catalog.Path = "brew.db"
	assert.NoError(t, cfg.Validate("calc"))

	cfg.Catalog.Driver = "postgres"
	err = cfg.Validate("ingredients")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog.database_url is required")

	cfg.Catalog.Driver = "mongo"
	err = cfg.Validate("calc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `catalog.driver "mongo"`)
}

func TestValidate_Simulation(t *testing.T) {
	cfg := validDefaults()
	cfg.Simulation.SnapshotHours = 0
	cfg.Simulation.Days = -1

	err := cfg.Validate("simulate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "simulation.snapshot_hours must be >= 1")
	assert.Contains(t, err.Error(), "simulation.days must be >= 0")

	// calc does not look at simulation settings
	assert.NoError(t, cfg.Validate("calc"))
}

func TestValidate_MQTT(t *testing.T) {
	cfg := validDefaults()
	cfg.MQTT.QoS = 5
	// Ignored while no broker is set.
	assert.NoError(t, cfg.Validate("simulate"))

	cfg.MQTT.Broker = "tcp://localhost:1883"
	err := cfg.Validate("simulate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mqtt.qos must be 0, 1 or 2")
	assert.Contains(t, err.Error(), "mqtt.topic_prefix is required")

	cfg.MQTT.QoS = 1
	cfg.MQTT.TopicPrefix = "brew"
	assert.NoError(t, cfg.Validate("simulate"))
}

func TestValidateServe_Port(t *testing.T) {
	cfg := validDefaults()

	cfg.Server.Port = 0
	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")

	cfg.Server.Port = 70000
	assert.Error(t, cfg.Validate("serve"))

	cfg.Server.Port = 9090
	assert.NoError(t, cfg.Validate("serve"))
}

func TestValidateServe_RateLimit(t *testing.T) {
	cfg := validDefaults()

	cfg.Server.RateLimit = -1
	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.rate_limit must be >= 0")

	cfg.Server.RateLimit = 5
	cfg.Server.RateBurst = 0
	err = cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.rate_burst")

	cfg.Server.RateLimit = 0
	assert.NoError(t, cfg.Validate("serve"))
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
