package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Catalog    CatalogConfig    `yaml:"catalog" mapstructure:"catalog"`
	Simulation SimulationConfig `yaml:"simulation" mapstructure:"simulation"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	MQTT       MQTTConfig       `yaml:"mqtt" mapstructure:"mqtt"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// CatalogConfig selects where ingredient records come from.
type CatalogConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // memory, sqlite or postgres
	Path        string `yaml:"path" mapstructure:"path"`     // YAML file for memory, database file for sqlite
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// SimulationConfig holds simulator defaults used when a recipe does not say.
type SimulationConfig struct {
	Days              int     `yaml:"days" mapstructure:"days"`
	SnapshotHours     int     `yaml:"snapshot_hours" mapstructure:"snapshot_hours"`
	ReferenceMashTemp float64 `yaml:"reference_mash_temp" mapstructure:"reference_mash_temp"`
	MilestoneHours    int     `yaml:"milestone_hours" mapstructure:"milestone_hours"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port            int      `yaml:"port" mapstructure:"port"`
	RateLimit       float64  `yaml:"rate_limit" mapstructure:"rate_limit"` // requests per second, 0 disables
	RateBurst       int      `yaml:"rate_burst" mapstructure:"rate_burst"`
	CORSOrigins     []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	ShutdownTimeout int      `yaml:"shutdown_timeout_secs" mapstructure:"shutdown_timeout_secs"`
}

// MQTTConfig configures timeline publishing. An empty broker disables it.
type MQTTConfig struct {
	Broker         string `yaml:"broker" mapstructure:"broker"` // e.g. tcp://localhost:1883
	ClientID       string `yaml:"client_id" mapstructure:"client_id"`
	Username       string `yaml:"username" mapstructure:"username"`
	Password       string `yaml:"password" mapstructure:"password"`
	TopicPrefix    string `yaml:"topic_prefix" mapstructure:"topic_prefix"`
	QoS            int    `yaml:"qos" mapstructure:"qos"`
	ConnectTimeout int    `yaml:"connect_timeout_secs" mapstructure:"connect_timeout_secs"`
}

// Enabled reports whether a broker is configured.
func (m MQTTConfig) Enabled() bool { return m.Broker != "" }

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment. A .env file in the
// working directory, if present, is loaded into the environment first.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("BREW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("catalog.driver", "memory")
	v.SetDefault("catalog.path", "")
	v.SetDefault("catalog.database_url", "")
	v.SetDefault("catalog.max_conns", 4)
	v.SetDefault("catalog.min_conns", 1)
	v.SetDefault("simulation.days", 14)
	v.SetDefault("simulation.snapshot_hours", 24)
	v.SetDefault("simulation.reference_mash_temp", 65.0)
	v.SetDefault("simulation.milestone_hours", 24)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit", 10.0)
	v.SetDefault("server.rate_burst", 20)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout_secs", 10)
	v.SetDefault("mqtt.broker", "")
	v.SetDefault("mqtt.client_id", "brew-cli")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.topic_prefix", "brew")
	v.SetDefault("mqtt.qos", 1)
	v.SetDefault("mqtt.connect_timeout_secs", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on. Modes are calc,
// simulate, ingredients and serve.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch c.Catalog.Driver {
	case "memory":
	case "sqlite":
		if c.Catalog.Path == "" {
			problems = append(problems, "catalog.path is required for the sqlite driver")
		}
	case "postgres":
		if c.Catalog.DatabaseURL == "" {
			problems = append(problems, "catalog.database_url is required for the postgres driver")
		}
	default:
		problems = append(problems, fmt.Sprintf("catalog.driver %q is not one of memory, sqlite, postgres", c.Catalog.Driver))
	}

	switch mode {
	case "calc", "ingredients":
	case "simulate":
		problems = append(problems, c.Simulation.problems()...)
		problems = append(problems, c.MQTT.problems()...)
	case "serve":
		problems = append(problems, c.Simulation.problems()...)
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			problems = append(problems, "server.port must be > 0 and <= 65535")
		}
		if c.Server.RateLimit < 0 {
			problems = append(problems, "server.rate_limit must be >= 0")
		}
		if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
			problems = append(problems, "server.rate_burst must be >= 1 when rate limiting")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (s SimulationConfig) problems() []string {
	var out []string
	if s.Days < 0 {
		out = append(out, "simulation.days must be >= 0")
	}
	if s.SnapshotHours < 1 {
		out = append(out, "simulation.snapshot_hours must be >= 1")
	}
	if s.MilestoneHours < 0 {
		out = append(out, "simulation.milestone_hours must be >= 0")
	}
	return out
}

func (m MQTTConfig) problems() []string {
	if !m.Enabled() {
		return nil
	}
	var out []string
	if m.QoS < 0 || m.QoS > 2 {
		out = append(out, "mqtt.qos must be 0, 1 or 2")
	}
	if m.TopicPrefix == "" {
		out = append(out, "mqtt.topic_prefix is required when mqtt.broker is set")
	}
	return out
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
