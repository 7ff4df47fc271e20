package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values for the agent configuration.
const (
	DefaultServerEndpoint = "http://127.0.0.1:8080"
	DefaultInterval       = 5 * time.Second
)

// Config holds the agent-side configuration parsed from the `agent:`
// section of config.yaml.
type Config struct {
	Agent AgentConfig `yaml:"agent"`
}

// AgentConfig holds all agent-side settings.
type AgentConfig struct {
	// ServerEndpoint is the base URL of vitaltrace-server.
	ServerEndpoint string `yaml:"server_endpoint"`

	// Interval is how often a synthetic reading is generated and sent.
	Interval time.Duration `yaml:"interval"`

	// Seed fixes the random source for reproducible runs. Zero seeds from
	// the clock.
	Seed int64 `yaml:"seed"`
}

// Load reads and parses the config file at path. Missing fields are filled
// with defaults before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("agent config: read %q: %w", path, err)
	}

	cfg := &Config{
		Agent: AgentConfig{
			ServerEndpoint: DefaultServerEndpoint,
			Interval:       DefaultInterval,
		},
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("agent config: parse yaml: %w", err)
	}
	if cfg.Agent.ServerEndpoint == "" {
		cfg.Agent.ServerEndpoint = DefaultServerEndpoint
	}
	if cfg.Agent.Interval == 0 {
		cfg.Agent.Interval = DefaultInterval
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("agent config: %w", err)
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	a := cfg.Agent
	if !strings.HasPrefix(a.ServerEndpoint, "http://") && !strings.HasPrefix(a.ServerEndpoint, "https://") {
		return fmt.Errorf("agent.server_endpoint %q must be an http(s) URL", a.ServerEndpoint)
	}
	if a.Interval < 0 {
		return fmt.Errorf("agent.interval must not be negative")
	}
	return nil
}
