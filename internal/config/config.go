package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	HTTPAddr          string        `mapstructure:"http_addr" yaml:"http_addr"`
	HistorySize       int           `mapstructure:"history_size" yaml:"history_size"`
	RateBurst         float64       `mapstructure:"rate_burst" yaml:"rate_burst"`
	RateRefillPerSec  float64       `mapstructure:"rate_refill_per_sec" yaml:"rate_refill_per_sec"`
	MaxClients        int           `mapstructure:"max_clients" yaml:"max_clients"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":7000",
		HTTPAddr:          ":8080",
		HistorySize:       50,
		RateBurst:         5,
		RateRefillPerSec:  1,
		MaxClients:        256,
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.HTTPAddr != "" {
		c.HTTPAddr = other.HTTPAddr
	}
	if other.HistorySize != 0 {
		c.HistorySize = other.HistorySize
	}
	if other.RateBurst != 0 {
		c.RateBurst = other.RateBurst
	}
	if other.RateRefillPerSec != 0 {
		c.RateRefillPerSec = other.RateRefillPerSec
	}
	if other.MaxClients != 0 {
		c.MaxClients = other.MaxClients
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
}
