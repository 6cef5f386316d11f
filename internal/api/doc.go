// Package api provides the REST client for the function backend.
//
// Endpoints:
//   - GET /api/v1/health    -> {"status": "healthy"}
//   - GET /api/v1/functions -> {"functions": [...]}
//
// Transient failures (connection errors, 429, 5xx) are retried by
// go-retryablehttp; anything that is still failing surfaces as *APIError or a
// wrapped transport error.
package api
