// Package app wires the screener together: configuration, logging,
// telemetry, the screener service and the HTTP router.
//
// # Initialization Flow
//
//	1. The caller loads configuration and builds the logger
//	2. NewApplication initialises OpenTelemetry and the screen metrics
//	3. The screener service loads the data file (fatal on failure)
//	4. Handlers and middleware are mounted on a chi router
//	5. Run serves until the context ends or a signal arrives
//
// # Routes
//
//	GET  /                      server-rendered dashboard
//	GET  /metrics               Prometheus scrape endpoint
//	GET  /api/health[/ready|/live], /api/version
//	GET  /api/screen/schema
//	GET  /api/screen/range/{field}
//	POST /api/screen            run a screen
//	POST /api/screen/export     download csv or xlsx
//	POST /api/screen/reload     re-read the data file
//
// # Error Handling
//
// Initialization errors are returned to the caller; the package never calls
// os.Exit.
package app
