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
	"github.com/go-chi/cors"
	"github.com/go-chi/render"

	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/config"
	apperrors "github.com/jonathanmorenozapico-source/Tsv-Project/internal/errors"
	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/exporter"
	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/files"
	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/infrastructure"
	customMiddleware "github.com/jonathanmorenozapico-source/Tsv-Project/internal/middleware"
	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/services"
	handlers "github.com/jonathanmorenozapico-source/Tsv-Project/internal/transport/http"
	ws "github.com/jonathanmorenozapico-source/Tsv-Project/internal/websocket"
	"github.com/jonathanmorenozapico-source/Tsv-Project/pkg/contracts"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics

	ReconcileService *services.ReconcileService
	HealthService    *services.HealthService
	EventHub         *ws.Hub
}

// NewApplication wires configuration, logging, telemetry, services and the
// router. A nil cfg is loaded from file and environment; a nil logger is
// built from cfg.Logging.
func NewApplication(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg = loaded
	}

	if logger == nil {
		var err error
		logger, err = infrastructure.InitializeLogger(cfg.Logging)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version))

	paths, err := config.ResolvePaths(cfg.Paths)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(logger)

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Observability), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
	}

	if err := app.initializeServices(); err != nil {
		return nil, err
	}
	if err := app.setupRouter(); err != nil {
		return nil, err
	}
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services and starts the
// event hub
func (a *Application) initializeServices() error {
	hub, err := ws.NewHub(a.Logger, a.OTelProviders.Meter)
	if err != nil {
		return fmt.Errorf("failed to create event hub: %w", err)
	}
	hub.Start()
	a.EventHub = hub

	a.ReconcileService = services.NewReconcileService(
		a.Config.Processing,
		files.NewManager(a.Paths, a.Logger),
		exporter.NewCSVWriter(a.Paths, a.Logger),
		a.OTelProviders.Tracer,
		a.Metrics,
		a.Logger,
	).WithEvents(hub)
	a.HealthService = services.NewHealthService(contracts.Version, a.Paths, a.Logger)
	return nil
}

// setupRouter configures the HTTP router with all routes.
// Order: RequestID, RealIP, OTel, Logger, Recoverer, then per-group limits.
func (a *Application) setupRouter() error {
	r := chi.NewRouter()
	errorHandler := apperrors.NewErrorHandler(a.Logger, a.Config.Logging.Development)

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics)
	if err != nil {
		return fmt.Errorf("failed to create OpenTelemetry middleware: %w", err)
	}

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(otelMiddleware.Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger))
	r.Use(customMiddleware.SecurityHeaders)
	r.Use(customMiddleware.StripSlashes)

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
	r.Get("/healthz", healthHandler.HealthCheck)
	r.Get("/healthz/ready", healthHandler.ReadinessCheck)
	r.Get("/healthz/live", healthHandler.LivenessCheck)

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if len(a.Config.Security.AllowedOrigins) > 0 {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: a.Config.Security.AllowedOrigins,
				AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
				AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
				ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
				MaxAge:         300,
			}))
		}
		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))
		r.Use(customMiddleware.MaxBodySize(a.Config.Server.MaxBodyBytes))
		r.Use(apperrors.NewErrorMiddleware(a.Logger).Handler)
		r.Use(customMiddleware.Compress(5, "application/json", "text/tab-separated-values", "text/csv"))
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Get("/version", healthHandler.Version)
		r.Method(http.MethodGet, "/events", ws.NewHandler(a.EventHub, a.Config.Security.AllowedOrigins, a.Logger))

		validation := customMiddleware.NewValidationMiddleware(a.Logger, errorHandler, a.Config.Server.MaxBodyBytes)
		reconcileHandler := handlers.NewReconcileHandler(a.ReconcileService, validation, a.Logger, errorHandler)
		r.Mount("/", reconcileHandler.Routes())
	})

	a.Router = r
	return nil
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start begins serving in the background. A listener failure calls cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level),
		slog.String("data_dir", a.Paths.DataDir),
		slog.String("reports_dir", a.Paths.ReportsDir))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	if status := a.HealthService.ReadinessCheck(ctx); status.Status != "ready" {
		a.Logger.WarnContext(ctx, "Startup readiness check failed", slog.Any("services", status.Services))
	}

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}
	if a.EventHub != nil {
		a.EventHub.Stop()
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	if err := infrastructure.CloseLogFile(); err != nil {
		errs = append(errs, fmt.Errorf("close log file: %w", err))
	}
	return errors.Join(errs...)
}

// Run serves until SIGINT, SIGTERM or a listener failure, then shuts down
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	<-ctx.Done()
	a.Logger.InfoContext(ctx, "Received shutdown signal")
	return a.Stop(ctx)
}
