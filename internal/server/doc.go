// Package server is a development stand-in for the function backend.
//
// It serves the same REST and WebSocket surface the dashboard consumes:
//
//	GET /api/v1/health
//	GET /api/v1/functions
//	GET /api/v1/ws
//
// Functions are loaded from a definitions file. Their triggers are simulated
// rather than executed: timer and unity_table triggers fire on a cron
// scheduler and http triggers are mounted as routes, and each activation is
// announced on the feed the way the real backend reports it.
package server
