package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
)

// Client provides access to the function backend REST API.
type Client struct {
	baseURL    string
	httpClient *retryablehttp.Client
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new REST API client.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	hc := cleanhttp.DefaultPooledClient()
	hc.Timeout = 30 * time.Second

	rc := retryablehttp.NewClient()
	rc.HTTPClient = hc
	rc.RetryMax = 3
	rc.RetryWaitMin = time.Second
	rc.RetryWaitMax = 30 * time.Second
	rc.ErrorHandler = keepLastResponse

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: rc,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	// *slog.Logger satisfies retryablehttp.LeveledLogger.
	c.httpClient.Logger = c.logger

	return c
}

// WithTimeout sets the per-attempt HTTP timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.HTTPClient.Timeout = d
	}
}

// WithRetries sets how many times a request is retried and the minimum wait between tries.
func WithRetries(max int, wait time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.RetryMax = max
		c.httpClient.RetryWaitMin = wait
		if c.httpClient.RetryWaitMax < wait {
			c.httpClient.RetryWaitMax = wait
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient sets a custom HTTP client for individual attempts.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient.HTTPClient = hc
	}
}

// keepLastResponse hands the final response back once retries run out so its
// status is reported as an *APIError.
func keepLastResponse(resp *http.Response, err error, attempts int) (*http.Response, error) {
	if resp != nil {
		return resp, nil
	}
	return nil, fmt.Errorf("giving up after %d attempt(s): %w", attempts, err)
}
