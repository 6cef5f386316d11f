package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if err := validateURL("api.base_url", c.API.BaseURL); err != nil {
		return err
	}
	if c.API.MaxRetries < 0 {
		return errors.New("api.max_retries must be >= 0")
	}

	if err := validateURL("feed.page_url", c.Feed.PageURL); err != nil {
		return err
	}
	if c.Feed.Development && c.Feed.DevHost == "" {
		return errors.New("feed.dev_host is required in development mode")
	}
	if c.Feed.BufferSize < 1 {
		return errors.New("feed.buffer_size must be >= 1")
	}
	if c.Feed.History < 1 {
		return errors.New("feed.history must be >= 1")
	}
	if err := c.Feed.Reconnect.validate("feed.reconnect"); err != nil {
		return err
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}

	return nil
}

func (r *ReconnectConfig) validate(prefix string) error {
	switch r.Strategy {
	case "fixed", "exponential":
	default:
		return fmt.Errorf("%s.strategy must be fixed or exponential, got %q", prefix, r.Strategy)
	}
	if r.Delay <= 0 {
		return fmt.Errorf("%s.delay must be > 0", prefix)
	}
	if r.Strategy == "exponential" && r.MaxDelay < r.Delay {
		return fmt.Errorf("%s.max_delay (%s) cannot be less than delay (%s)", prefix, r.MaxDelay, r.Delay)
	}
	if r.MaxAttempts < 0 {
		return fmt.Errorf("%s.max_attempts must be >= 0", prefix)
	}
	return nil
}

func validateURL(field, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", field)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is invalid: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https, got %q", field, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s must include a host", field)
	}
	return nil
}
