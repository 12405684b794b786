package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"

	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	Log       LogConfig       `yaml:"log"`
	Transport TransportConfig `yaml:"transport"`
}

type ServerConfig struct {
	Host string `yaml:"host" env:"RERX_SERVER_HOST"`
	Port int    `yaml:"port" env:"RERX_SERVER_PORT"`
}

// StoreConfig selects where the project list is kept. The activity log always
// lives in the SQLite database.
type StoreConfig struct {
	Backend    string `yaml:"backend" env:"RERX_STORE_BACKEND"`
	DBPath     string `yaml:"db_path" env:"RERX_DB_PATH"`
	BadgerPath string `yaml:"badger_path" env:"RERX_BADGER_PATH"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"RERX_LOG_LEVEL"`
	Path  string `yaml:"path" env:"RERX_LOG_PATH"`
}

type TransportConfig struct {
	Mode string `yaml:"mode" env:"RERX_TRANSPORT_MODE"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Store: StoreConfig{
			Backend:    BackendSQLite,
			DBPath:     "rerx.db",
			BadgerPath: "rerx-badger",
		},
		Log: LogConfig{
			Level: "info",
		},
		Transport: TransportConfig{
			Mode: TransportStdio,
		},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
// Environment variables win over the file.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("RERX_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects unknown backends and transport modes.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendSQLite:
		if c.Store.DBPath == "" {
			return fmt.Errorf("store: db_path is required")
		}
	case BackendBadger:
		if c.Store.BadgerPath == "" {
			return fmt.Errorf("store: badger_path is required")
		}
	default:
		return fmt.Errorf("store: unknown backend %q", c.Store.Backend)
	}

	switch c.Transport.Mode {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("transport: unknown mode %q", c.Transport.Mode)
	}

	if c.Transport.Mode == TransportHTTP && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		return fmt.Errorf("server: invalid port %d", c.Server.Port)
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
