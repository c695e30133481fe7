// Package http implements the HTTP handlers of the screener. Handlers stay
// thin: they decode and validate input, call the service layer and render
// JSON (go-chi/render) or HTML.
//
// # Routes
//
//	GET  /api/health, /api/health/ready, /api/health/live, /api/version
//	GET  /api/screen/schema
//	GET  /api/screen/range/{field}
//	POST /api/screen
//	POST /api/screen/export?format=csv|xlsx
//	POST /api/screen/reload
//	GET  /             server-rendered dashboard, parameters in the query
//	GET  /metrics      Prometheus scrape
//
// # Errors
//
// Every failure is answered through errors.ErrorHandler as an RFC 7807
// problem. Service sentinels are mapped to API errors in mapError; the
// dashboard shows the same messages inline instead.
package http
