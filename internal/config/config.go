package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration for the relay.
type Config struct {
	Port            int           `yaml:"port" env:"PORT"`
	StaticDir       string        `yaml:"static_dir" env:"RELAY_STATIC_DIR"`
	IndexFile       string        `yaml:"index_file" env:"RELAY_INDEX_FILE"`
	AllowedOrigins  []string      `yaml:"allowed_origins" env:"RELAY_ALLOWED_ORIGINS" envSeparator:","`
	SendBuffer      int           `yaml:"send_buffer" env:"RELAY_SEND_BUFFER"`
	MaxMessageBytes int64         `yaml:"max_message_bytes" env:"RELAY_MAX_MESSAGE_BYTES"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"RELAY_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"RELAY_SHUTDOWN_TIMEOUT"`
	LogLevel        string        `yaml:"log_level" env:"RELAY_LOG_LEVEL"`
	LogFormat       string        `yaml:"log_format" env:"RELAY_LOG_FORMAT"`
}

// Load builds a Config from path (optional, "" skips the file) and the
// environment, then fills defaults for anything left unset.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "read config file")
		}
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, errors.Wrap(err, "parse config yaml")
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, errors.Wrap(err, "parse env")
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadAndValidate loads config and validates the result.
func LoadAndValidate(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "validate config")
	}
	return cfg, nil
}

// Address is the listen address for the HTTP server.
func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}
