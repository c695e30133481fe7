package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/han30230/Stock-filtering/pkg/contracts"
)

// TableStatus is the subset of ScreenerService that health checks need.
type TableStatus interface {
	Stats() ServiceStats
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	tables    TableStatus
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Uptime    string                   `json:"uptime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Health status values
const (
	StatusOK       = "ok"
	StatusHealthy  = "healthy"
	StatusNotReady = "not_ready"
	StatusDegraded = "degraded"
)

// NewHealthService creates a health service reporting on tables.
func NewHealthService(version string, tables TableStatus, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		tables:    tables,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	data := hs.checkDataHealth()
	status := StatusHealthy
	if data.Status != StatusOK {
		status = StatusDegraded
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return HealthStatus{
		Status:    status,
		Timestamp: time.Now(),
		Version:   hs.version,
		Uptime:    time.Since(hs.startTime).Round(time.Second).String(),
		Services:  map[string]ServiceHealth{"data": data},
		Runtime: map[string]interface{}{
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
			"heap_alloc": mem.HeapAlloc,
		},
	}
}

// ReadinessCheck is ready once a table is loaded.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	data := hs.checkDataHealth()
	status := StatusOK
	if data.Status != StatusOK {
		status = StatusNotReady
		hs.logger.WarnContext(ctx, "readiness check failed", slog.String("reason", data.Message))
	}
	return HealthStatus{
		Status:    status,
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  map[string]ServiceHealth{"data": data},
	}
}

// LivenessCheck always succeeds while the process serves requests.
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    StatusOK,
		Timestamp: time.Now(),
		Version:   hs.version,
		Uptime:    time.Since(hs.startTime).Round(time.Second).String(),
	}
}

// Version returns build information.
func (hs *HealthService) Version() contracts.VersionInfo {
	info := contracts.GetVersionInfo()
	if hs.version != "" {
		info.Version = hs.version
	}
	return info
}

func (hs *HealthService) checkDataHealth() ServiceHealth {
	if hs.tables == nil {
		return ServiceHealth{Status: "error", Message: "screener not configured"}
	}
	stats := hs.tables.Stats()
	if !stats.Loaded {
		return ServiceHealth{Status: "error", Message: "no table loaded from " + stats.Source}
	}
	return ServiceHealth{Status: StatusOK, Message: stats.Source}
}
