package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultPort            = 3000
	DefaultStaticDir       = "."
	DefaultIndexFile       = "index.html"
	DefaultSendBuffer      = 256
	DefaultMaxMessageBytes = 16 << 20
	DefaultWriteTimeout    = 10 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "console"
)

// MinSendBuffer leaves room for the two snapshot frames every connection is
// sent before its write pump starts.
const MinSendBuffer = 2

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.StaticDir == "" {
		c.StaticDir = DefaultStaticDir
	}
	if c.IndexFile == "" {
		c.IndexFile = DefaultIndexFile
	}
	if c.SendBuffer == 0 {
		c.SendBuffer = DefaultSendBuffer
	}
	if c.MaxMessageBytes == 0 {
		c.MaxMessageBytes = DefaultMaxMessageBytes
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
}
