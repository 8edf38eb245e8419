package server

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/hashicorp/go-hclog"
	"gopkg.in/yaml.v3"

	"github.com/pvcnt/memkvd/internal/store"
)

// SocketName is the default socket file name, inside the user's home directory
const SocketName = ".memkvd.sock"

// Config represents the server configuration
type Config struct {
	// Socket is the path of the unix socket to listen on
	Socket string `yaml:"socket"`
	// LogLevel is the minimum level logged (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`
	// Engine selects the store engine (radix or skiplist)
	Engine string `yaml:"engine"`
	// MaxKeys caps the number of keys held; zero means no limit
	MaxKeys int `yaml:"max_keys"`
	// MaxConns caps concurrently served connections; zero means no limit
	MaxConns int `yaml:"max_conns"`
}

// DefaultSocket returns the default socket path
func DefaultSocket() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to find home directory: %w", err)
	}
	return filepath.Join(home, SocketName), nil
}

// LoadConfig reads the configuration file at path, if any, applies
// environment overrides and defaults, and validates the result.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return cfg, err
	}

	// Set defaults if not provided
	if cfg.Socket == "" {
		socket, err := DefaultSocket()
		if err != nil {
			return cfg, err
		}
		cfg.Socket = socket
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Engine == "" {
		cfg.Engine = store.EngineRadix
	}

	return cfg, cfg.Validate()
}

// Validate checks the configuration for invalid values
func (c Config) Validate() error {
	if c.Socket == "" {
		return fmt.Errorf("socket is required")
	}
	if hclog.LevelFromString(c.LogLevel) == hclog.NoLevel {
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	if c.Engine != store.EngineRadix && c.Engine != store.EngineSkipList {
		return fmt.Errorf("invalid engine %q", c.Engine)
	}
	if c.MaxKeys < 0 {
		return fmt.Errorf("max_keys must not be negative")
	}
	if c.MaxConns < 0 {
		return fmt.Errorf("max_conns must not be negative")
	}
	return nil
}

// applyEnvOverrides allows environment variables to override file values
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("MEMKVD_SOCKET"); v != "" {
		cfg.Socket = v
	}
	if v := os.Getenv("MEMKVD_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("MEMKVD_ENGINE"); v != "" {
		cfg.Engine = v
	}
	if v := os.Getenv("MEMKVD_MAX_KEYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid MEMKVD_MAX_KEYS value: %w", err)
		}
		cfg.MaxKeys = n
	}
	if v := os.Getenv("MEMKVD_MAX_CONNS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid MEMKVD_MAX_CONNS value: %w", err)
		}
		cfg.MaxConns = n
	}
	return nil
}
