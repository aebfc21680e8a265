package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the service configuration, loaded from YAML with env
// overrides for the pieces that differ per deployment.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Outbox struct {
		PollInterval time.Duration `yaml:"poll_interval"`
		BatchSize    int32         `yaml:"batch_size"`
	} `yaml:"outbox"`
	Sweeper struct {
		BatchSize int32 `yaml:"batch_size"`
	} `yaml:"sweeper"`
	NATS struct {
		Enabled bool   `yaml:"enabled"`
		URL     string `yaml:"url"`
	} `yaml:"nats"`
}

func defaultConfig() *Config {
	var cfg Config
	cfg.Server.Port = "8080"
	cfg.Outbox.PollInterval = 5 * time.Second
	cfg.Outbox.BatchSize = 100
	cfg.Sweeper.BatchSize = 50
	cfg.NATS.Enabled = false
	cfg.NATS.URL = "nats://localhost:4222"
	return &cfg
}

// loadConfig reads the YAML config at path, falling back to defaults
// when no file exists.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Port = port
	}
	if url := os.Getenv("NATS_URL"); url != "" {
		cfg.NATS.Enabled = true
		cfg.NATS.URL = url
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
