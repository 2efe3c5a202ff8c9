package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultDocumentKey is the key the session collection is stored under.
const DefaultDocumentKey = "ironProgress_workouts"

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Coach     CoachConfig     `yaml:"coach"`
	Ledger    LedgerConfig    `yaml:"ledger"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig selects the session store backend. Path is the data directory
// for the file and sqlite drivers.
type StorageConfig struct {
	Driver   string         `yaml:"driver"`
	Path     string         `yaml:"path"`
	Key      string         `yaml:"key"`
	Postgres DatabaseConfig `yaml:"postgres"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type CoachConfig struct {
	APIKey     string `yaml:"api_key"`
	Model      string `yaml:"model"`
	WindowDays int    `yaml:"window_days"`
}

type LedgerConfig struct {
	Timezone string `yaml:"timezone"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Location resolves the ledger timezone. Empty means the local zone.
func (l LedgerConfig) Location() (*time.Location, error) {
	if l.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(l.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", l.Timezone, err)
	}
	return loc, nil
}

// Default returns the configuration used when no file is given: a file store
// under ~/.ironprogress and the HTTP server on localhost:8080.
func Default() *Config {
	dataDir := ".ironprogress"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".ironprogress")
	}
	return &Config{
		Server:  ServerConfig{Host: "127.0.0.1", Port: 8080},
		Storage: StorageConfig{Driver: "file", Path: dataDir, Key: DefaultDocumentKey},
		Tailscale: TailscaleConfig{
			Hostname: "ironprogress",
			StateDir: filepath.Join(dataDir, "tsnet"),
		},
		Coach: CoachConfig{Model: "gemini-2.5-flash", WindowDays: 7},
	}
}

// Load reads config from a YAML file over the defaults, then applies environment
// variable overrides. An empty path skips the file.
// Env vars use the prefix IRONPROGRESS_ and underscore-separated paths:
//
//	IRONPROGRESS_SERVER_HOST, IRONPROGRESS_SERVER_PORT,
//	IRONPROGRESS_STORAGE_DRIVER, IRONPROGRESS_STORAGE_PATH, IRONPROGRESS_STORAGE_KEY,
//	IRONPROGRESS_DB_HOST, IRONPROGRESS_DB_PORT, IRONPROGRESS_DB_NAME,
//	IRONPROGRESS_DB_USER, IRONPROGRESS_DB_PASSWORD, IRONPROGRESS_DB_SSLMODE,
//	IRONPROGRESS_TAILSCALE_ENABLED, IRONPROGRESS_COACH_API_KEY (or GEMINI_API_KEY),
//	IRONPROGRESS_COACH_MODEL, IRONPROGRESS_LEDGER_TIMEZONE
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("IRONPROGRESS_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("IRONPROGRESS_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("IRONPROGRESS_STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("IRONPROGRESS_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("IRONPROGRESS_STORAGE_KEY"); v != "" {
		cfg.Storage.Key = v
	}
	if v := os.Getenv("IRONPROGRESS_DB_HOST"); v != "" {
		cfg.Storage.Postgres.Host = v
	}
	if v := os.Getenv("IRONPROGRESS_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Storage.Postgres.Port = port
		}
	}
	if v := os.Getenv("IRONPROGRESS_DB_NAME"); v != "" {
		cfg.Storage.Postgres.Name = v
	}
	if v := os.Getenv("IRONPROGRESS_DB_USER"); v != "" {
		cfg.Storage.Postgres.User = v
	}
	if v := os.Getenv("IRONPROGRESS_DB_PASSWORD"); v != "" {
		cfg.Storage.Postgres.Password = v
	}
	if v := os.Getenv("IRONPROGRESS_DB_SSLMODE"); v != "" {
		cfg.Storage.Postgres.SSLMode = v
	}
	if v := os.Getenv("IRONPROGRESS_TAILSCALE_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = enabled
		}
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Coach.APIKey = v
	}
	if v := os.Getenv("IRONPROGRESS_COACH_API_KEY"); v != "" {
		cfg.Coach.APIKey = v
	}
	if v := os.Getenv("IRONPROGRESS_COACH_MODEL"); v != "" {
		cfg.Coach.Model = v
	}
	if v := os.Getenv("IRONPROGRESS_LEDGER_TIMEZONE"); v != "" {
		cfg.Ledger.Timezone = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Storage.Key == "" {
		return fmt.Errorf("storage.key is required")
	}
	switch c.Storage.Driver {
	case "file", "sqlite":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for driver %q", c.Storage.Driver)
		}
	case "postgres":
		db := c.Storage.Postgres
		if db.Host == "" {
			return fmt.Errorf("storage.postgres.host is required")
		}
		if db.Port == 0 {
			return fmt.Errorf("storage.postgres.port is required")
		}
		if db.Name == "" {
			return fmt.Errorf("storage.postgres.name is required")
		}
		if db.User == "" {
			return fmt.Errorf("storage.postgres.user is required")
		}
	default:
		return fmt.Errorf("storage.driver %q is not one of file, sqlite, postgres", c.Storage.Driver)
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	if c.Coach.WindowDays <= 0 {
		return fmt.Errorf("coach.window_days must be positive")
	}
	if _, err := c.Ledger.Location(); err != nil {
		return err
	}
	return nil
}
