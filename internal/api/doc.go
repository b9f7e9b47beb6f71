// Package api serves the stored solver run history over HTTP.
//
// Routes, all under /api/v1:
//
//	GET /health                  version and registered dependency checks
//	GET /runs?limit=N            recent runs, newest first
//	GET /runs/{id}               one run
//	GET /runs/{id}/solutions     the run's layouts, one grid per solution
//	GET /runs/{id}/events        websocket stream of one run's events
//	GET /events                  websocket stream of every run's events
//
// The event streams relay the status and solution messages a solve
// publishes on MQTT. Each frame is an EventMessage; clients send nothing.
//
// The API is read-only. Solves are started from the CLI; the server only
// exposes what the run store recorded.
//
// When api.jwt_secret is set, every route except /health requires an
// "Authorization: Bearer <token>" header carrying an HS256 token from
// GenerateToken.
package api
