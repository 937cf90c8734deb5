package config

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Validate checks that all values are usable.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return errors.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.IndexFile == "" {
		return errors.New("index_file is required")
	}
	if c.SendBuffer < MinSendBuffer {
		return errors.Errorf("send_buffer must be >= %d, got %d", MinSendBuffer, c.SendBuffer)
	}
	if c.MaxMessageBytes < 1 {
		return errors.New("max_message_bytes must be >= 1")
	}
	if c.WriteTimeout < 0 {
		return errors.New("write_timeout cannot be negative")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("shutdown_timeout must be positive")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return errors.Errorf("log_level %q is not a valid level", c.LogLevel)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return errors.Errorf("log_format must be console or json, got %q", c.LogFormat)
	}
	return nil
}
