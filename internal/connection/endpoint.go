package connection

import (
	"fmt"
	"net/url"
)

// DefaultFeedPath is where the backend serves the activity feed.
const DefaultFeedPath = "/api/v1/ws"

// Endpoint describes the execution environment the feed URL is derived from.
type Endpoint struct {
	// PageURL is the address the dashboard page is served from.
	PageURL string
	// Development selects DevHost instead of the page's own host.
	Development bool
	// DevHost is the fixed host:port of the backend in development builds.
	DevHost string
	// Path defaults to DefaultFeedPath.
	Path string
}

// URL returns the feed WebSocket URL: wss when the page is served over https,
// ws otherwise; DevHost in development, the page host elsewhere.
func (e Endpoint) URL() (string, error) {
	page, err := url.Parse(e.PageURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPageURL, err)
	}

	scheme := "ws"
	if page.Scheme == "https" {
		scheme = "wss"
	}

	host := page.Host
	if e.Development {
		host = e.DevHost
	}
	if host == "" {
		return "", ErrNoFeedHost
	}

	path := e.Path
	if path == "" {
		path = DefaultFeedPath
	}

	u := url.URL{Scheme: scheme, Host: host, Path: path}
	return u.String(), nil
}
