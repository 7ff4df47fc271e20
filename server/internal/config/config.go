package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values for the server configuration.
const (
	DefaultHTTPPort      = 8080
	DefaultStorageDriver = "sqlite"
	DefaultLedgerTimeout = 10 * time.Second
)

// Config holds the server-side configuration parsed from the `server:`
// section of config.yaml.
type Config struct {
	Server ServerConfig `yaml:"server"`
}

// ServerConfig holds all server-side settings.
type ServerConfig struct {
	// HTTPPort is the port the ingest API, WebSocket hub, and metrics
	// endpoint listen on (default 8080).
	HTTPPort int `yaml:"http_port"`

	// LogLevel is one of: debug | info | warn | error. Default info.
	LogLevel string `yaml:"log_level"`

	// Storage selects and configures the readings log backend.
	Storage StorageConfig `yaml:"storage"`

	// Thresholds are the classification rule boundaries.
	Thresholds ThresholdsConfig `yaml:"thresholds"`

	// Alerts lists notification targets for fatal readings.
	Alerts AlertsConfig `yaml:"alerts"`

	// Ledger configures the fingerprint anchoring service.
	Ledger LedgerConfig `yaml:"ledger"`
}

// StorageConfig selects the durable store backend.
type StorageConfig struct {
	// Driver is one of: sqlite | postgres. Default sqlite.
	Driver string `yaml:"driver"`

	// DSN is the driver-specific connection string. Empty selects the
	// driver's default (a local vitaltrace.db file for sqlite).
	DSN string `yaml:"dsn"`
}

// ThresholdsConfig holds the classification rule boundaries. Zero values
// are replaced with the stock thresholds, so a config file may override
// any subset.
type ThresholdsConfig struct {
	// MaxHeartRate flags readings with hr above this value (default 120).
	MaxHeartRate int `yaml:"max_heart_rate"`

	// MinSpO2 flags readings with spo2 below this value (default 88).
	MinSpO2 float64 `yaml:"min_spo2"`

	// MaxTemp flags readings with temp above this value (default 39).
	MaxTemp float64 `yaml:"max_temp"`
}

// AlertsConfig holds notification delivery targets.
type AlertsConfig struct {
	Notifiers []NotifierConfig `yaml:"notifiers"`
}

// NotifierConfig defines one alert delivery target.
type NotifierConfig struct {
	// Type is one of: telegram | http.
	Type string `yaml:"type"`

	// TokenEnv names the environment variable holding the Telegram bot
	// token. Used when Type == "telegram".
	TokenEnv string `yaml:"token_env"`

	// ChatID is the Telegram chat to deliver to. Used when Type == "telegram".
	ChatID string `yaml:"chat_id"`

	// URLEnv names the environment variable holding the webhook URL.
	// Used when Type == "http".
	URLEnv string `yaml:"url_env"`
}

// Token returns the bot token resolved from the environment.
func (n NotifierConfig) Token() string {
	if n.TokenEnv == "" {
		return ""
	}
	return os.Getenv(n.TokenEnv)
}

// URL returns the webhook URL resolved from the environment.
func (n NotifierConfig) URL() string {
	if n.URLEnv == "" {
		return ""
	}
	return os.Getenv(n.URLEnv)
}

// LedgerConfig configures the anchoring service client.
type LedgerConfig struct {
	// Endpoint is the base URL of the ledger service. Empty disables
	// anchoring entirely; fingerprints are logged and skipped.
	Endpoint string `yaml:"endpoint"`

	// Timeout bounds each anchor/verify call (default 10s).
	Timeout time.Duration `yaml:"timeout"`
}

// Load reads and parses the config file at path, returning the server
// configuration. Missing fields are filled with defaults before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("server config: read %q: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("server config: parse yaml: %w", err)
	}
	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("server config: %w", err)
	}
	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort: DefaultHTTPPort,
			LogLevel: "info",
			Storage: StorageConfig{
				Driver: DefaultStorageDriver,
			},
			Thresholds: ThresholdsConfig{
				MaxHeartRate: 120,
				MinSpO2:      88,
				MaxTemp:      39,
			},
			Ledger: LedgerConfig{
				Timeout: DefaultLedgerTimeout,
			},
		},
	}
}

// applyDefaults restores defaults for fields yaml left at zero (e.g. a
// thresholds section that only overrides one value).
func applyDefaults(cfg *Config) {
	t := &cfg.Server.Thresholds
	if t.MaxHeartRate == 0 {
		t.MaxHeartRate = 120
	}
	if t.MinSpO2 == 0 {
		t.MinSpO2 = 88
	}
	if t.MaxTemp == 0 {
		t.MaxTemp = 39
	}
	if cfg.Server.Storage.Driver == "" {
		cfg.Server.Storage.Driver = DefaultStorageDriver
	}
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = "info"
	}
	if cfg.Server.Ledger.Timeout == 0 {
		cfg.Server.Ledger.Timeout = DefaultLedgerTimeout
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	s := cfg.Server
	if s.HTTPPort <= 0 || s.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", s.HTTPPort)
	}
	switch s.Storage.Driver {
	case "sqlite", "postgres", "postgresql":
	default:
		return fmt.Errorf("server.storage.driver %q unknown: want sqlite|postgres", s.Storage.Driver)
	}
	if s.Thresholds.MaxHeartRate < 0 {
		return fmt.Errorf("server.thresholds.max_heart_rate must not be negative")
	}
	if s.Thresholds.MinSpO2 < 0 || s.Thresholds.MinSpO2 > 100 {
		return fmt.Errorf("server.thresholds.min_spo2 %v is out of range [0, 100]", s.Thresholds.MinSpO2)
	}
	for i, n := range s.Alerts.Notifiers {
		switch n.Type {
		case "telegram", "http":
		default:
			return fmt.Errorf("server.alerts.notifiers[%d].type %q unknown: want telegram|http", i, n.Type)
		}
	}
	if s.Ledger.Timeout < 0 {
		return fmt.Errorf("server.ledger.timeout must not be negative")
	}
	return nil
}
