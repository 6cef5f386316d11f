package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultAPIBaseURL        = "http://localhost:8000"
	DefaultAPITimeout        = 30 * time.Second
	DefaultMaxRetries        = 3
	DefaultRetryWait         = 1 * time.Second
	DefaultPageURL           = "http://localhost:8000/"
	DefaultDevHost           = "localhost:8000"
	DefaultFeedPath          = "/api/v1/ws"
	DefaultPingTimeout       = 60 * time.Second
	DefaultFeedBufferSize    = 1000
	DefaultFeedHistory       = 200
	DefaultReconnectStrategy = "fixed"
	DefaultReconnectDelay    = 5 * time.Second
	DefaultReconnectMaxDelay = 60 * time.Second
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "text"
	DefaultListenAddr        = ":8000"
	DefaultDefinitionsPath   = "app.yaml"
	DefaultFunctionDir       = "functions"
)

// ApplyDefaults fills every unset field with its default.
func (c *Config) ApplyDefaults() {
	// API defaults
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultAPIBaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = DefaultMaxRetries
	}
	if c.API.RetryWait == 0 {
		c.API.RetryWait = DefaultRetryWait
	}

	// Feed defaults
	if c.Feed.PageURL == "" {
		c.Feed.PageURL = DefaultPageURL
	}
	if c.Feed.DevHost == "" {
		c.Feed.DevHost = DefaultDevHost
	}
	if c.Feed.Path == "" {
		c.Feed.Path = DefaultFeedPath
	}
	if c.Feed.PingTimeout == 0 {
		c.Feed.PingTimeout = DefaultPingTimeout
	}
	if c.Feed.BufferSize == 0 {
		c.Feed.BufferSize = DefaultFeedBufferSize
	}
	if c.Feed.History == 0 {
		c.Feed.History = DefaultFeedHistory
	}
	if c.Feed.Reconnect.Strategy == "" {
		c.Feed.Reconnect.Strategy = DefaultReconnectStrategy
	}
	if c.Feed.Reconnect.Delay == 0 {
		c.Feed.Reconnect.Delay = DefaultReconnectDelay
	}
	if c.Feed.Reconnect.MaxDelay == 0 {
		c.Feed.Reconnect.MaxDelay = DefaultReconnectMaxDelay
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}

	// Server defaults
	if c.Server.Listen == "" {
		c.Server.Listen = DefaultListenAddr
	}
	if c.Server.Definitions == "" {
		c.Server.Definitions = DefaultDefinitionsPath
	}
	if c.Server.FunctionDir == "" {
		c.Server.FunctionDir = DefaultFunctionDir
	}
}
