package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"github.com/han30230/Stock-filtering/internal/config"
	apierrors "github.com/han30230/Stock-filtering/internal/errors"
	"github.com/han30230/Stock-filtering/internal/infrastructure"
	customMiddleware "github.com/han30230/Stock-filtering/internal/middleware"
	"github.com/han30230/Stock-filtering/internal/services"
	handlers "github.com/han30230/Stock-filtering/internal/transport/http"
	"github.com/han30230/Stock-filtering/pkg/contracts"
	"github.com/han30230/Stock-filtering/pkg/contracts/domain"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.ScreenMetrics
	Screener      *services.ScreenerService
	HealthService *services.HealthService

	errorHandler *apierrors.ErrorHandler
}

// NewApplication wires every component from cfg and loads the data file.
// A table that cannot be loaded at startup is fatal.
func NewApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Application, error) {
	logger.InfoContext(ctx, "application starting",
		slog.String("name", contracts.AppName),
		slog.String("version", contracts.Version),
		slog.String("data_file", cfg.Data.File))

	otelProviders, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.NewScreenMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create screen metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		errorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Development),
	}

	if err := app.initializeServices(ctx); err != nil {
		_ = otelProviders.Shutdown(ctx)
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()
	return app, nil
}

// ScreenDefaults converts the configured screen defaults into parameters.
// Ranges stay nil so each run seeds them from the loaded table.
func ScreenDefaults(cfg config.ScreenConfig) domain.ScreenParams {
	minPrice := cfg.MinPrice
	return domain.ScreenParams{
		FiltersEnabled:     cfg.FiltersEnabled,
		MinPrice:           &minPrice,
		RequirePositiveEPS: cfg.RequirePositiveEPS,
	}
}

func (a *Application) initializeServices(ctx context.Context) error {
	a.Screener = services.NewScreenerService(services.ScreenerOptions{
		Source:   a.Config.Data.File,
		Pattern:  a.Config.Data.Pattern,
		Sheet:    a.Config.Data.Sheet,
		Defaults: ScreenDefaults(a.Config.Screen),
		Metrics:  a.Metrics,
		Tracer:   a.OTelProviders.Tracer,
		Logger:   a.Logger,
	})
	if _, err := a.Screener.Reload(ctx); err != nil {
		return fmt.Errorf("failed to load %s: %w", a.Config.Data.File, err)
	}

	a.HealthService = services.NewHealthService(contracts.Version, a.Screener, a.Logger)
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()
	eh := a.errorHandler

	// RequestID → RealIP → OTel → Logger → Recoverer
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics).Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(eh.Recoverer)
	r.Use(customMiddleware.SecurityHeaders)

	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(a.getCORSConfig()))
	}
	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
			eh,
		).Handler)
	}
	r.Use(customMiddleware.MaxBodyBytes(a.Config.Security.MaxBodyBytes))

	r.NotFound(eh.NotFound)
	r.MethodNotAllowed(eh.MethodNotAllowed)

	r.Method(http.MethodGet, "/metrics", handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, eh))

	validator := customMiddleware.NewValidator(a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, eh))

		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)

		screenHandler := handlers.NewScreenHandler(a.Screener, validator, eh, a.Logger, handlers.ScreenHandlerOptions{
			PreviewRows:   a.Config.Screen.PreviewRows,
			MaxIndustries: a.Config.Screen.MaxIndustries,
		})
		r.Mount("/screen", screenHandler.Routes())
	})

	dashboard := handlers.NewDashboardHandler(a.Screener, validator, a.Logger, a.Config.Screen.PreviewRows)
	r.With(customMiddleware.Timeout(a.Config.Server.RequestTimeout, eh)).Get("/", dashboard.ServeHTTP)

	a.Router = r
}

func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders: []string{
			customMiddleware.RequestIDHeader,
			handlers.HeaderOriginalRows,
			handlers.HeaderFilteredRows,
			"Content-Disposition",
		},
		MaxAge: 300,
		Logger: a.Logger,
	}
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Address(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Run serves HTTP until ctx is cancelled or SIGINT/SIGTERM arrives, then
// shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfoContext(gctx, "http server listening",
			slog.String("address", a.Server.Addr),
			slog.Int("rows", a.Screener.Stats().Rows))
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.Logger.InfoContext(context.Background(), "shutdown requested")
		return a.Stop(context.Background())
	})

	return g.Wait()
}

// Stop drains in-flight requests and flushes telemetry.
func (a *Application) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}
	if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
		a.Logger.ErrorContext(ctx, "error shutting down OpenTelemetry", slog.String("error", err.Error()))
	}

	stats := a.Screener.Stats()
	a.Logger.InfoContext(ctx, "application shutdown complete", slog.Uint64("screen_runs", stats.Runs))
	return errors.Join(errs...)
}
