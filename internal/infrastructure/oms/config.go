package oms

import (
	"errors"
	"time"
)

// Config holds the OMS connection settings.
type Config struct {
	// BaseURL is the root of the OMS REST API, without a trailing slash.
	BaseURL string

	// Username and Password are the Basic auth credential pair.
	Username string
	Password string

	// Timeout bounds each request end to end.
	Timeout time.Duration

	// MaxBodyKB caps how much of a response body is read, in kilobytes.
	MaxBodyKB int
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("oms: base URL is required")
	}
	if c.Username == "" || c.Password == "" {
		return errors.New("oms: credentials are required")
	}
	return nil
}

func (c *Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 30 * time.Second
	}
	return c.Timeout
}

func (c *Config) maxBody() int64 {
	if c.MaxBodyKB <= 0 {
		return 1024 * 1024 // 1MB
	}
	return int64(c.MaxBodyKB) * 1024
}
