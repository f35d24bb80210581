package app

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"salespulse/internal/analytics"
	"salespulse/internal/cache"
	"salespulse/internal/config"
	apierrors "salespulse/internal/errors"
	"salespulse/internal/infrastructure"
	"salespulse/internal/ingest"
	customMiddleware "salespulse/internal/middleware"
	"salespulse/internal/services"
	"salespulse/internal/store"
	handlers "salespulse/internal/transport/http"
	ws "salespulse/internal/websocket"
)

var (
	// BuildTime is set at compile time
	BuildTime = time.Now().Format(time.RFC3339)
	// BuildID is a unique identifier for this build
	BuildID = generateBuildID()
)

func generateBuildID() string {
	h := sha256.New()
	h.Write([]byte(config.AppVersion))
	h.Write([]byte(time.Now().Format("2006-01-02")))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.SalesMetrics
	Dataset       *ingest.Dataset
	Cache         cache.Cache[analytics.Dashboard]
	ErrorHandler  *apierrors.ErrorHandler
	WebSocketHub  *ws.Hub
	Services      *ServiceContainer
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Dashboard *services.DashboardService
	Health    *services.HealthService
}

// NewApplication loads the configuration at configPath (empty means the
// usual locations) and builds the application.
func NewApplication(ctx context.Context, configPath string) (*Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, apierrors.NewConfigError("failed to load configuration", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return New(ctx, cfg, logger)
}

// New wires the application from cfg. The whole dataset is loaded before it
// returns, so a running server never answers from a partial dataset.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	logger.InfoContext(ctx, "Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.String("data_dir", cfg.Data.Dir))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	metrics, err := infrastructure.CreateSalesMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	a := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		ErrorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Development),
	}

	if err := a.loadDataset(ctx); err != nil {
		a.shutdownTelemetry(ctx)
		return nil, err
	}
	if err := a.initializeServices(ctx); err != nil {
		a.shutdownTelemetry(ctx)
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	a.setupRouter()
	a.createServer()
	return a, nil
}

// loadDataset reads the input files and writes the optional snapshot
func (a *Application) loadDataset(ctx context.Context) error {
	ds, err := ingest.Load(ctx, a.Config.Data.IngestOptions(), a.Logger)
	if errors.Is(err, ingest.ErrNoInputFiles) {
		return apierrors.NewAppError(apierrors.ErrTypeNotFound, "failed to load sales data", err).
			WithContext("dir", a.Config.Data.Dir).
			WithContext("pattern", a.Config.Data.Pattern)
	}
	if err != nil {
		return apierrors.NewIngestError("failed to load sales data", err)
	}
	stats := ds.Stats()
	a.Metrics.RecordLoad(ctx, stats.Retained, stats.Rejected)
	a.Dataset = ds

	if a.Config.Data.SnapshotPath == "" {
		return nil
	}
	if err := store.WriteFile(ctx, a.Config.Data.SnapshotPath, ds.Records()); err != nil {
		return apierrors.NewStorageError("failed to write snapshot", err).
			WithContext("path", a.Config.Data.SnapshotPath)
	}
	a.Logger.InfoContext(ctx, "SQLite snapshot written",
		slog.String("path", a.Config.Data.SnapshotPath),
		slog.Int("records", ds.Len()))
	return nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices(ctx context.Context) error {
	c, err := cache.New[analytics.Dashboard](a.Config.Cache)
	if err != nil {
		// Queries work without memoization
		a.Logger.WarnContext(ctx, "Query cache unavailable, continuing without it",
			slog.String("backend", a.Config.Cache.Backend),
			slog.String("error", apierrors.NewCacheError(a.Config.Cache.Backend, err).Error()))
		c = cache.Noop[analytics.Dashboard]{}
	}
	a.Cache = c

	dashboard, err := services.NewDashboardService(a.Dataset, c, a.Config.Analytics, a.Metrics, a.Logger)
	if err != nil {
		return err
	}

	hub := ws.NewHub(a.Logger, a.Metrics)
	hub.Start()
	a.WebSocketHub = hub

	var pinger services.Pinger
	if p, ok := c.(services.Pinger); ok {
		pinger = p
	}
	health := services.NewHealthService(config.AppVersion, BuildTime, BuildID, dashboard, hub, pinger, a.Logger)

	a.Services = &ServiceContainer{
		Dashboard: dashboard,
		Health:    health,
	}
	return nil
}

// setupRouter configures the HTTP router with all routes.
// Ordering: RequestID → RealIP → OTel → Logger → Recoverer → headers → CORS → rate limit.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics).Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(a.ErrorHandler.Recoverer)

	secure := customMiddleware.DefaultSecureHeaders()
	secure.DevMode = a.Config.Logging.Development
	r.Use(secure.Handler)

	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(a.getCORSConfig()))
	}
	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
			a.ErrorHandler,
		).Handler)
	}

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	// Live queries; no compression or request deadline on a long-lived connection
	wsHandler := ws.NewHandler(a.WebSocketHub, a.Services.Dashboard, a.Config.WebSocket,
		a.Config.Server.RequestTimeout, a.Config.Security.AllowedOrigins, a.Logger, a.ErrorHandler)
	r.With(customMiddleware.WebSocketTraceMiddleware(a.Logger)).Handle("/ws", wsHandler)

	a.setupAPIRoutes(r)

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	webDir := a.Config.Server.WebDir
	r.Get("/", handlers.ServeIndex(webDir, a.Logger))
	r.Handle("/static/*", handlers.StaticFiles(webDir, "/static/"))

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)
	salesHandler := handlers.NewSalesHandler(a.Services.Dashboard, a.Metrics, a.Logger, a.ErrorHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))
		r.Use(customMiddleware.Compress(5))

		healthHandler.Routes(r)
		r.Mount("/sales", salesHandler.Routes())
	})
}

func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		MaxAge:         300,
		Logger:         a.Logger,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Addr(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Serve accepts connections on l until the server is shut down
func (a *Application) Serve(ctx context.Context, l net.Listener) error {
	info := a.Services.Dashboard.Dataset()
	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", l.Addr().String()),
		slog.Int("records", info.Records),
		slog.Int("files", len(info.Files)),
		slog.String("cache", a.Cache.Backend()))

	if err := a.Server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	// Connections hijacked by the websocket endpoint are not tracked by Shutdown
	a.WebSocketHub.Stop()

	if closer, ok := a.Cache.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			a.Logger.ErrorContext(ctx, "Error closing cache", slog.String("error", err.Error()))
		}
	}
	a.shutdownTelemetry(shutdownCtx)

	if err := errors.Join(errs...); err != nil {
		return err
	}
	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

func (a *Application) shutdownTelemetry(ctx context.Context) {
	if a.OTelProviders == nil {
		return
	}
	if err := a.OTelProviders.Shutdown(ctx); err != nil {
		a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
	}
}

// Run serves on the configured port until SIGINT or SIGTERM, then shuts down
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	l, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- a.Serve(ctx, l) }()

	select {
	case err := <-serveErr:
		// The server failed on its own; still release everything else
		if stopErr := a.Stop(context.Background()); stopErr != nil {
			a.Logger.ErrorContext(ctx, "Shutdown after server failure failed", slog.String("error", stopErr.Error()))
		}
		return err
	case <-ctx.Done():
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	}

	if err := a.Stop(context.Background()); err != nil {
		return err
	}
	return <-serveErr
}
