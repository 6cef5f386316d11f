package api

import (
	"context"
	"fmt"

	"github.com/rickgao/fndash/internal/catalog"
)

const (
	healthPath    = "/api/v1/health"
	functionsPath = "/api/v1/functions"
)

// HealthStatus is the health endpoint's response body.
type HealthStatus struct {
	Status string `json:"status"`
}

// Healthy reports whether the backend declared itself healthy.
func (h HealthStatus) Healthy() bool {
	return h.Status == "healthy"
}

// Health checks that the backend is up.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var resp HealthStatus
	if err := c.get(ctx, healthPath, nil, &resp); err != nil {
		return nil, fmt.Errorf("health: %w", err)
	}
	return &resp, nil
}

// ListFunctions fetches the configured functions with their triggers and source.
func (c *Client) ListFunctions(ctx context.Context) ([]catalog.Function, error) {
	var resp catalog.FunctionList
	if err := c.get(ctx, functionsPath, nil, &resp); err != nil {
		return nil, fmt.Errorf("list functions: %w", err)
	}

	c.logger.Debug("fetched functions", "count", len(resp.Functions))

	return resp.Functions, nil
}
