// Package services implements the business logic layer of the screener.
// It sits between the HTTP handlers and the pure pipeline in
// dataprocessing.
//
// # Services
//
//	ScreenerService  owns the loaded table snapshot and runs screens,
//	                 range queries and exports against it
//	HealthService    liveness, readiness and version reporting
//
// # Snapshots
//
// Reload reads the configured workbook and swaps the snapshot under a write
// lock. Every other operation takes a read lock just long enough to grab the
// snapshot pointer; the pipeline then works on its own clone, so concurrent
// requests never share mutable state.
//
// # Errors
//
// Services return the sentinels in errors.go or *errors.AppError values;
// the transport layer maps them to problem responses.
package services
