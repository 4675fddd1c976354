package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v2"
)

// DefaultFile is read when no explicit file is given and it exists.
const DefaultFile = "config/lensgw.yaml"

// Config represents the complete gateway configuration
type Config struct {
	Modbus      ModbusConfig      `yaml:"modbus"`
	Backend     BackendConfig     `yaml:"backend"`
	Maintenance MaintenanceConfig `yaml:"maintenance"`
	Logging     LoggingConfig     `yaml:"logging"`
	Audit       AuditConfig       `yaml:"audit"`
}

// ModbusConfig holds the register listener settings
type ModbusConfig struct {
	URL        string `yaml:"url"`
	TimeoutSec int    `yaml:"timeoutSec"` // idle client timeout
	MaxClients uint   `yaml:"maxClients"`
}

// BackendConfig holds the lens controller endpoint
type BackendConfig struct {
	URL       string `yaml:"url"`
	TimeoutMs int    `yaml:"timeoutMs"`
}

// MaintenanceConfig holds the HTTP maintenance API settings
type MaintenanceConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Addr       string `yaml:"addr"`
	AuthSecret string `yaml:"authSecret"` // empty disables auth
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"` // console or json
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMb"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
}

// AuditConfig holds audit trail settings
type AuditConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Dir        string `yaml:"dir"`
	MaxSizeMB  int    `yaml:"maxSizeMb"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	Compress   bool   `yaml:"compress"`
}

// BackendTimeout returns the per-call backend timeout.
func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.Backend.TimeoutMs) * time.Millisecond
}

// ModbusTimeout returns the idle timeout for Modbus clients.
func (c *Config) ModbusTimeout() time.Duration {
	return time.Duration(c.Modbus.TimeoutSec) * time.Second
}

// Load builds the configuration. path is the explicit file from the command
// line; when empty LENSGW_CONFIG is used, then DefaultFile if it exists.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := true
	if path == "" {
		path = os.Getenv("LENSGW_CONFIG")
	}
	if path == "" {
		path = DefaultFile
		explicit = false
	}

	if err := loadFromFile(cfg, path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Modbus: ModbusConfig{
			URL:        "tcp://0.0.0.0:5021",
			TimeoutSec: 30,
			MaxClients: 10,
		},
		Backend: BackendConfig{
			URL:       "http://localhost:7001/RPC2",
			TimeoutMs: 5000,
		},
		Maintenance: MaintenanceConfig{
			Enabled: true,
			Addr:    "127.0.0.1:8081",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  50,
			MaxBackups: 5,
			MaxAgeDays: 28,
		},
		Audit: AuditConfig{
			Enabled:    true,
			Dir:        "/var/log/lensgw",
			MaxSizeMB:  10,
			MaxBackups: 10,
			MaxAgeDays: 90,
		},
	}
}

func loadFromFile(cfg *Config, filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	return yaml.UnmarshalStrict(data, cfg)
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("LENSGW_MODBUS_URL"); v != "" {
		cfg.Modbus.URL = v
	}
	if v := os.Getenv("LENSGW_BACKEND_URL"); v != "" {
		cfg.Backend.URL = v
	}
	if v := os.Getenv("LENSGW_BACKEND_TIMEOUT_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid LENSGW_BACKEND_TIMEOUT_MS %q: %w", v, err)
		}
		cfg.Backend.TimeoutMs = ms
	}
	if v := os.Getenv("LENSGW_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("LENSGW_MAINTENANCE_ADDR"); v != "" {
		cfg.Maintenance.Addr = v
	}
	if v := os.Getenv("LENSGW_AUTH_SECRET"); v != "" {
		cfg.Maintenance.AuthSecret = v
	}
	return nil
}

var (
	validLevels  = []string{"debug", "info", "warn", "error"}
	validFormats = []string{"console", "json"}
)

// Validate reports every problem found in cfg.
func Validate(cfg *Config) error {
	var err error

	if u, perr := url.Parse(cfg.Modbus.URL); perr != nil || u.Scheme != "tcp" || u.Host == "" {
		err = multierr.Append(err, fmt.Errorf("modbus.url %q must be tcp://host:port", cfg.Modbus.URL))
	}
	if cfg.Modbus.TimeoutSec <= 0 {
		err = multierr.Append(err, fmt.Errorf("modbus.timeoutSec %d must be positive", cfg.Modbus.TimeoutSec))
	}
	if cfg.Modbus.MaxClients == 0 {
		err = multierr.Append(err, errors.New("modbus.maxClients must be at least 1"))
	}

	if u, perr := url.Parse(cfg.Backend.URL); perr != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		err = multierr.Append(err, fmt.Errorf("backend.url %q must be an http(s) URL", cfg.Backend.URL))
	}
	if cfg.Backend.TimeoutMs <= 0 || cfg.Backend.TimeoutMs > 60000 {
		err = multierr.Append(err, fmt.Errorf("backend.timeoutMs %d is outside range [1, 60000]", cfg.Backend.TimeoutMs))
	}

	if cfg.Maintenance.Enabled && cfg.Maintenance.Addr == "" {
		err = multierr.Append(err, errors.New("maintenance.addr is required when maintenance is enabled"))
	}

	if !contains(validLevels, cfg.Logging.Level) {
		err = multierr.Append(err, fmt.Errorf("invalid logging.level %s, must be one of: %v", cfg.Logging.Level, validLevels))
	}
	if !contains(validFormats, cfg.Logging.Format) {
		err = multierr.Append(err, fmt.Errorf("invalid logging.format %s, must be one of: %v", cfg.Logging.Format, validFormats))
	}

	if cfg.Audit.Enabled && cfg.Audit.Dir == "" {
		err = multierr.Append(err, errors.New("audit.dir is required when audit is enabled"))
	}

	return err
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
