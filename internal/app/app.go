package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"cordexplorer/internal/config"
	apperrors "cordexplorer/internal/errors"
	"cordexplorer/internal/infrastructure"
	customMiddleware "cordexplorer/internal/middleware"
	"cordexplorer/internal/services"
	handlers "cordexplorer/internal/transport/http"
	ws "cordexplorer/internal/websocket"
	"cordexplorer/pkg/contracts"
	"cordexplorer/pkg/contracts/domain"
)

const AppName = "CORD-19 Data Explorer"

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	Explorer      *services.ExplorerService
	HealthService *services.HealthService
	WebSocketHub  *ws.Hub
	ErrorHandler  *apperrors.ErrorHandler
	Validator     *customMiddleware.ValidationMiddleware
}

// NewApplication loads and cleans cfg.Paths.InputFile, then wires the
// explorer, the websocket hub and the router. A dataset whose cleaned rows
// carry no publication year is a startup error.
func NewApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	logger.InfoContext(ctx, "Application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.String("input", cfg.Paths.InputFile))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		shutdownProviders(otelProviders, logger)
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	start := time.Now()
	loader := services.NewDatasetLoader(cfg.Dataset, otelProviders.Tracer, logger)
	ds, err := loader.Load(ctx, cfg.Paths.InputFile)
	if err != nil {
		infrastructure.RecordPipelineRun(ctx, metrics, 0, 0, time.Since(start), err)
		shutdownProviders(otelProviders, logger)
		return nil, err
	}
	infrastructure.RecordPipelineRun(ctx, metrics, len(ds.Frame.Rows), ds.Clean.Dropped(), time.Since(start), nil)

	logger.InfoContext(ctx, "Dataset loaded",
		slog.Int("rows", len(ds.Frame.Rows)),
		slog.Int("clean_rows", len(ds.Clean.Papers)),
		slog.Int("dropped", ds.Clean.Dropped()),
		slog.Duration("duration", time.Since(start)))

	app, err := New(cfg, ds.Clean.Papers, otelProviders, metrics, logger)
	if err != nil {
		shutdownProviders(otelProviders, logger)
		return nil, err
	}
	return app, nil
}

// New wires an application around an already cleaned table. providers and
// metrics may be nil.
func New(cfg *config.Config, papers []domain.Paper, providers *infrastructure.OTelProviders, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	if providers == nil {
		providers = &infrastructure.OTelProviders{Logger: logger}
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: providers,
		Metrics:       metrics,
		ErrorHandler:  apperrors.NewErrorHandler(logger, false),
	}
	app.Validator = customMiddleware.NewValidationMiddleware(logger, app.ErrorHandler)

	if err := app.initializeServices(papers); err != nil {
		return nil, err
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices(papers []domain.Paper) error {
	renderer, err := services.NewChartRenderer(a.Config.Charts, a.OTelProviders.Tracer, a.Metrics)
	if err != nil {
		return fmt.Errorf("failed to create chart renderer: %w", err)
	}

	explorer, err := services.NewExplorerService(papers, a.Config.Dashboard, renderer, a.Metrics, a.Logger)
	if err != nil {
		return err
	}
	a.Explorer = explorer

	a.WebSocketHub = ws.NewHub(explorer, a.Metrics, a.Logger)
	a.HealthService = services.NewHealthService(explorer, a.WebSocketHub, a.Logger)

	a.Logger.Info("Services initialized",
		slog.Int("papers", explorer.PaperCount()),
		slog.Int("min_year", explorer.Bounds().Min),
		slog.Int("max_year", explorer.Bounds().Max))
	return nil
}

func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Middleware that never wraps the ResponseWriter, so the websocket
	// upgrade can hijack the connection.
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.StripSlashes)

	wsHandler := ws.NewHandler(a.WebSocketHub, a.Config.WebSocket, a.Config.Security.AllowedOrigins, a.Logger)
	r.With(customMiddleware.WebSocketTraceMiddleware(a.Logger)).Handle("/ws", wsHandler)

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics, a.Logger).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.SecurityHeaders)
		r.Use(customMiddleware.Compress(5))
		r.Use(customMiddleware.CORS(a.getCORSConfig()))

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))

		a.setupAPIRoutes(r)

		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Get("/healthz", healthHandler.LivenessCheck)
		r.Get("/readyz", healthHandler.ReadinessCheck)

		r.Method(http.MethodGet, "/", handlers.NewDashboardHandler(a.Explorer, a.Logger))
	})

	metricsHandler := handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, a.WebSocketHub)
	r.Mount("/metrics", metricsHandler.Routes())

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)

		explorerHandler := handlers.NewExplorerHandler(a.Explorer, a.Validator, a.ErrorHandler, a.Logger)
		r.Mount("/explorer", explorerHandler.Routes())

		clientLogHandler := handlers.NewClientLogHandler(a.Validator, a.ErrorHandler, a.Logger)
		r.With(a.Validator.LimitBody).Post("/client-log", clientLogHandler.Handle)
	})
}

func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins:   a.Config.Security.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", customMiddleware.RequestIDHeader},
		ExposedHeaders:   []string{customMiddleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
		Logger:           a.Logger,
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
		ErrorLog:       slog.NewLogLogger(a.Logger.Handler(), slog.LevelError),
	}
}

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (a *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return apperrors.NewAppError(apperrors.ErrTypeConfig, "cannot listen", err).
			WithContext("address", a.Server.Addr)
	}
	return a.Serve(ctx, ln)
}

// Serve runs the hub and the HTTP server on ln. It returns when ctx is
// cancelled or the server fails, after a graceful shutdown.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.String("address", fmt.Sprintf("http://%s", ln.Addr())),
		slog.String("level", a.Config.Logging.Level))

	g, gctx := errgroup.WithContext(ctx)

	a.WebSocketHub.Start()

	g.Go(func() error {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return a.Stop(context.WithoutCancel(ctx))
	})

	return g.Wait()
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	// Hijacked websocket connections are not tracked by Shutdown.
	a.WebSocketHub.Stop()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return errors.Join(errs...)
}

func shutdownProviders(p *infrastructure.OTelProviders, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.Shutdown(ctx); err != nil {
		logger.Warn("OpenTelemetry shutdown failed", slog.String("error", err.Error()))
	}
}
