package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Services ServicesConfig `mapstructure:"services"`
	Database DatabaseConfig `mapstructure:"database"`
	Events   EventsConfig   `mapstructure:"events"`
	Log      LogConfig      `mapstructure:"log"`
	Seed     SeedConfig     `mapstructure:"seed"`
}

// ServerConfig holds settings shared by every HTTP listener
type ServerConfig struct {
	Mode        string   `mapstructure:"mode"` // "development" or "production"
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// ServicesConfig holds per-resource listener configuration
type ServicesConfig struct {
	Components ServiceConfig `mapstructure:"components"`
	Roles      ServiceConfig `mapstructure:"roles"`
}

// ServiceConfig configures a single resource service
type ServiceConfig struct {
	Port int `mapstructure:"port"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`            // "sqlite" or "postgres"
	DSN             string `mapstructure:"dsn"`               // Connection string
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`    // Maximum idle connections (Postgres)
	MaxOpenConns    int    `mapstructure:"max_open_conns"`    // Maximum open connections (Postgres)
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // Connection max lifetime in minutes (Postgres)
	LogLevel        string `mapstructure:"log_level"`         // gorm logger level, defaults to log.level
}

// EventsConfig selects the broker used for record events
type EventsConfig struct {
	Type       string `mapstructure:"type"`        // "memory" or "valkey"
	ValkeyAddr string `mapstructure:"valkey_addr"` // e.g. "localhost:6379"
}

// LogConfig holds logging configuration
type LogConfig struct {
	Format string `mapstructure:"format"` // "json" or "text"
	Level  string `mapstructure:"level"`  // "debug", "info", "warn", "error"
}

// SeedConfig lists seed documents applied at startup
type SeedConfig struct {
	Files []string `mapstructure:"files"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.mode", "development")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("services.components.port", 5001)
	v.SetDefault("services.roles.port", 5002)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./registrar.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60) // 60 minutes
	v.SetDefault("database.log_level", "")
	v.SetDefault("events.type", "memory")
	v.SetDefault("events.valkey_addr", "localhost:6379")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.level", "info")
	v.SetDefault("seed.files", []string{})

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/registrar/")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, using defaults
	}

	// Environment variables override
	v.SetEnvPrefix("REGISTRAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if cfg.Database.LogLevel == "" {
		cfg.Database.LogLevel = cfg.Log.Level
	}

	return &cfg, nil
}

// Port returns the configured listen port for the named resource kind.
func (c *Config) Port(plural string) (int, error) {
	switch plural {
	case "components":
		return c.Services.Components.Port, nil
	case "roles":
		return c.Services.Roles.Port, nil
	default:
		return 0, fmt.Errorf("no service configured for %q", plural)
	}
}
