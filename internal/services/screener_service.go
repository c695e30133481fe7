package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/han30230/Stock-filtering/internal/dataprocessing"
	apierrors "github.com/han30230/Stock-filtering/internal/errors"
	"github.com/han30230/Stock-filtering/internal/exporter"
	"github.com/han30230/Stock-filtering/internal/files"
	"github.com/han30230/Stock-filtering/internal/infrastructure"
	api "github.com/han30230/Stock-filtering/pkg/contracts/api/v1"
	"github.com/han30230/Stock-filtering/pkg/contracts/domain"
)

// snapshot is one loaded table. It is never mutated after Reload stores it;
// screen runs work on clones.
type snapshot struct {
	table    *domain.Table
	bindings domain.Bindings
	source   string
	loadedAt time.Time
}

// ScreenerOptions configures a ScreenerService.
type ScreenerOptions struct {
	// Source is a data file, or a directory whose newest data file
	// (optionally matching Pattern) is loaded on every Reload.
	Source   string
	Pattern  string
	Sheet    string
	Defaults domain.ScreenParams
	Metrics  *infrastructure.ScreenMetrics
	Tracer   trace.Tracer
	Logger   *slog.Logger
}

// ScreenerService owns the loaded snapshot and runs the screening pipeline
// against it.
type ScreenerService struct {
	mu   sync.RWMutex
	snap *snapshot

	source    string
	pattern   string
	sheet     string
	discovery *files.Discovery
	defaults  domain.ScreenParams
	metrics   *infrastructure.ScreenMetrics
	tracer    trace.Tracer
	logger    *slog.Logger

	runs    uint64
	lastRun time.Time
}

// ServiceStats is a point-in-time view of the service.
type ServiceStats struct {
	Loaded   bool      `json:"loaded"`
	Source   string    `json:"source"`
	Rows     int       `json:"rows"`
	Columns  int       `json:"columns"`
	LoadedAt time.Time `json:"loaded_at,omitempty"`
	Runs     uint64    `json:"runs"`
	LastRun  time.Time `json:"last_run,omitempty"`
}

// NewScreenerService creates a service. Nothing is loaded until Reload.
func NewScreenerService(opts ScreenerOptions) *ScreenerService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(infrastructure.InstrumentationName)
	}
	return &ScreenerService{
		source:    opts.Source,
		pattern:   opts.Pattern,
		sheet:     opts.Sheet,
		discovery: files.NewDiscovery(""),
		defaults:  opts.Defaults,
		metrics:   opts.Metrics,
		tracer:    tracer,
		logger:    logger.With(slog.String("component", "screener_service")),
	}
}

// Reload reads the source and atomically replaces the snapshot. On
// failure the previous snapshot stays in place.
func (s *ScreenerService) Reload(ctx context.Context) (api.ReloadResponse, error) {
	ctx, span := s.tracer.Start(ctx, "screener.reload",
		trace.WithAttributes(attribute.String("source", s.source)))
	defer span.End()

	start := time.Now()
	path, err := s.discovery.ResolveSource(s.source, s.pattern)
	var table *domain.Table
	if err == nil {
		table, err = dataprocessing.LoadFile(path, dataprocessing.LoadOptions{
			Sheet:  s.sheet,
			Logger: s.logger,
		})
	}
	s.metrics.RecordTableLoad(ctx, err)
	if err != nil {
		err = classifyLoadError(s.source, err)
		infrastructure.RecordError(ctx, err)
		s.logger.ErrorContext(ctx, "table load failed",
			slog.String("source", s.source),
			slog.String("error", err.Error()))
		return api.ReloadResponse{}, err
	}
	span.SetAttributes(attribute.String("resolved_source", path))

	snap := &snapshot{
		table:    table,
		bindings: dataprocessing.ResolveTable(table),
		source:   path,
		loadedAt: time.Now(),
	}

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	unbound := make([]string, 0)
	for _, f := range domain.LogicalFields {
		if _, ok := snap.bindings.Column(f); !ok {
			unbound = append(unbound, string(f))
		}
	}
	s.logger.InfoContext(ctx, "table loaded",
		slog.String("source", path),
		slog.Int("rows", table.Len()),
		slog.Int("columns", len(table.ColumnNames())),
		slog.Any("unbound_fields", unbound),
		slog.Duration("duration", time.Since(start)))

	return api.ReloadResponse{
		Source:   snap.source,
		Rows:     table.Len(),
		Columns:  len(table.ColumnNames()),
		LoadedAt: snap.loadedAt,
		Bindings: snap.bindings,
	}, nil
}

func classifyLoadError(source string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return apierrors.NewAppError(apierrors.ErrTypeNotFound, "data file not found", err).
			WithContext("source", source)
	case errors.Is(err, dataprocessing.ErrUnsupportedFormat):
		return apierrors.NewConfigError("data file has an unsupported format", err).
			WithContext("source", source)
	default:
		return apierrors.NewParsingError("failed to read data file", err).
			WithContext("source", source)
	}
}

func (s *ScreenerService) current() (*snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return nil, ErrNoTable
	}
	return s.snap, nil
}

// Loaded reports whether a snapshot is available.
func (s *ScreenerService) Loaded() bool {
	_, err := s.current()
	return err == nil
}

// Defaults returns the parameters used for omitted request fields.
func (s *ScreenerService) Defaults() domain.ScreenParams {
	return s.defaults
}

// Schema describes the loaded table: columns, bindings, numeric ranges of
// bound fields and the observed industries.
func (s *ScreenerService) Schema(ctx context.Context) (api.SchemaResponse, error) {
	snap, err := s.current()
	if err != nil {
		return api.SchemaResponse{}, err
	}

	columns := snap.table.Columns()
	infos := make([]api.ColumnInfo, 0, len(columns))
	for _, col := range columns {
		missing := 0
		for _, c := range col.Cells {
			if c.Missing {
				missing++
			}
		}
		infos = append(infos, api.ColumnInfo{Name: col.Name, Kind: col.Kind, Missing: missing})
	}

	ranges := make(map[domain.LogicalField]domain.ColumnRange)
	for _, f := range domain.LogicalFields {
		if f == domain.FieldIndustry {
			continue
		}
		if r, ok := dataprocessing.NumericRange(snap.table, snap.bindings.Name(f)); ok {
			ranges[f] = r
		}
	}

	industries := dataprocessing.Categories(snap.table, snap.bindings.Name(domain.FieldIndustry))
	if industries == nil {
		industries = []string{}
	}

	s.logger.DebugContext(ctx, "schema served", slog.Int("columns", len(infos)))
	return api.SchemaResponse{
		Source:     snap.source,
		LoadedAt:   snap.loadedAt,
		Rows:       snap.table.Len(),
		Columns:    infos,
		Bindings:   snap.bindings,
		Ranges:     ranges,
		Industries: industries,
		Defaults:   s.defaults,
	}, nil
}

// Range returns the numeric range of a logical field (e.g. "per") or of a
// column by its header.
func (s *ScreenerService) Range(ctx context.Context, name string) (domain.ColumnRange, error) {
	snap, err := s.current()
	if err != nil {
		return domain.ColumnRange{}, err
	}

	column := name
	if f := domain.LogicalField(name); f.IsValid() {
		bound, ok := snap.bindings.Column(f)
		if !ok {
			return domain.ColumnRange{}, fmt.Errorf("%w: %s is not bound", ErrUnknownField, name)
		}
		column = bound
	}
	if !snap.table.HasColumn(column) {
		return domain.ColumnRange{}, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}

	r, ok := dataprocessing.NumericRange(snap.table, column)
	if !ok {
		return domain.ColumnRange{}, fmt.Errorf("%w: %q", ErrNoNumericValues, column)
	}
	s.logger.DebugContext(ctx, "range served", slog.String("column", column))
	return r, nil
}

// Screen runs the pipeline with params over the current snapshot.
func (s *ScreenerService) Screen(ctx context.Context, params domain.ScreenParams) (domain.ScreenResult, error) {
	snap, err := s.current()
	if err != nil {
		return domain.ScreenResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return domain.ScreenResult{}, err
	}

	ctx, span := s.tracer.Start(ctx, "screener.screen",
		trace.WithAttributes(
			attribute.Bool("filters_enabled", params.FiltersEnabled),
			attribute.Int("rows_input", snap.table.Len()),
		))
	defer span.End()

	res := dataprocessing.Screen(snap.table, snap.bindings, params)

	skipped := make(map[string]string)
	for _, step := range res.Steps {
		if !step.Applied && step.SkipReason != "" {
			skipped[step.Name] = step.SkipReason
		}
	}
	span.SetAttributes(
		attribute.Int("rows_output", res.FilteredRows),
		attribute.Int("steps_skipped", len(skipped)),
	)
	s.metrics.RecordScreenRun(ctx, res.Duration, res.OriginalRows, res.FilteredRows, params.FiltersEnabled, skipped)

	s.mu.Lock()
	s.runs++
	s.lastRun = time.Now()
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "screen completed",
		slog.Int("original_rows", res.OriginalRows),
		slog.Int("filtered_rows", res.FilteredRows),
		slog.Bool("filters_enabled", params.FiltersEnabled),
		slog.Int("steps_skipped", len(skipped)),
		slog.Duration("duration", res.Duration))
	return res, nil
}

// Export screens with params and writes the filtered table to w.
func (s *ScreenerService) Export(ctx context.Context, params domain.ScreenParams, format string, w io.Writer) (domain.ScreenResult, error) {
	f, err := exporter.ParseFormat(format)
	if err != nil {
		return domain.ScreenResult{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	res, err := s.Screen(ctx, params)
	if err != nil {
		return domain.ScreenResult{}, err
	}

	if err := exporter.Write(w, f, res.Table); err != nil {
		err = apierrors.NewExportError("failed to write export", err).WithContext("format", string(f))
		infrastructure.RecordError(ctx, err)
		return domain.ScreenResult{}, err
	}
	s.metrics.RecordExport(ctx, string(f))

	s.logger.InfoContext(ctx, "export written",
		slog.String("format", string(f)),
		slog.Int("rows", res.FilteredRows))
	return res, nil
}

// Stats reports the snapshot and run counters.
func (s *ScreenerService) Stats() ServiceStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := ServiceStats{Source: s.source, Runs: s.runs, LastRun: s.lastRun}
	if s.snap != nil {
		stats.Loaded = true
		stats.Source = s.snap.source
		stats.Rows = s.snap.table.Len()
		stats.Columns = len(s.snap.table.ColumnNames())
		stats.LoadedAt = s.snap.loadedAt
	}
	return stats
}
