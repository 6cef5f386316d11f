package config

import "time"

// Config is the root configuration shared by fndash and the dev feed server.
type Config struct {
	API    APIConfig    `yaml:"api"`
	Feed   FeedConfig   `yaml:"feed"`
	Log    LogConfig    `yaml:"log"`
	Server ServerConfig `yaml:"server"`
}

// APIConfig holds settings for the function catalog REST API.
type APIConfig struct {
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
	RetryWait  time.Duration `yaml:"retry_wait"`
}

// FeedConfig holds live activity feed settings.
type FeedConfig struct {
	// PageURL is the address the dashboard is served from. Its scheme picks ws/wss
	// and its host is used outside development builds.
	PageURL     string `yaml:"page_url"`
	Development bool   `yaml:"development"`
	DevHost     string `yaml:"dev_host"`
	Path        string `yaml:"path"`

	PingTimeout      time.Duration   `yaml:"ping_timeout"`
	BufferSize       int             `yaml:"buffer_size"`
	StopOnDisconnect bool            `yaml:"stop_on_disconnect"`
	History          int             `yaml:"history"`
	Reconnect        ReconnectConfig `yaml:"reconnect"`
}

// ReconnectConfig selects the reconnect policy.
type ReconnectConfig struct {
	Strategy    string        `yaml:"strategy"` // "fixed" or "exponential"
	Delay       time.Duration `yaml:"delay"`
	MaxDelay    time.Duration `yaml:"max_delay"`
	MaxAttempts int           `yaml:"max_attempts"` // 0 = retry forever
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// ServerConfig holds settings for the development feed server.
type ServerConfig struct {
	Listen      string `yaml:"listen"`
	Definitions string `yaml:"definitions"` // path to app.yaml
	FunctionDir string `yaml:"function_dir"`
}
