package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"gainerscli/internal/config"
	"gainerscli/internal/dataprocessing"
	"gainerscli/internal/gainers"
	"gainerscli/internal/infrastructure"
	customMiddleware "gainerscli/internal/middleware"
	handlers "gainerscli/internal/transport/http"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.GainerMetrics
	Router        *chi.Mux
	Server        *http.Server
}

// NewApplication builds the router and server from already initialized
// logging and telemetry.
func NewApplication(cfg *config.Config, logger *slog.Logger, providers *infrastructure.OTelProviders) (*Application, error) {
	metrics, err := infrastructure.CreateGainerMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create gainer metrics: %w", err)
	}

	a := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: providers,
		Metrics:       metrics,
	}
	a.setupRouter()
	a.createServer()
	return a, nil
}

// NormalizerOptions translates the normalize config section.
func NormalizerOptions(cfg config.NormalizeConfig) []gainers.NormalizerOption {
	validity := gainers.RejectEmpty
	if cfg.RejectZeroPrice {
		validity = gainers.RejectEmptyOrZero
	}
	return []gainers.NormalizerOption{
		gainers.WithWorkers(cfg.Workers),
		gainers.WithValidity(validity),
	}
}

// FactoryConfig returns the gainers dependencies derived from cfg.
func FactoryConfig(cfg *config.Config, logger *slog.Logger, metrics *infrastructure.GainerMetrics, out io.Writer) gainers.FactoryConfig {
	return gainers.FactoryConfig{
		Logger:     logger,
		Out:        out,
		Read:       dataprocessing.ReadOptions{Sheet: cfg.Normalize.Sheet},
		Metrics:    metrics,
		Normalizer: NormalizerOptions(cfg.Normalize),
	}
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// RequestID → RealIP → OTel → Logger → Recoverer → RateLimit
	r.Use(customMiddleware.RequestID)
	r.Use(middleware.RealIP)

	r.Group(func(r chi.Router) {
		otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders)
		if err != nil {
			a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
		} else {
			r.Use(otelMiddleware.Handler)
		}

		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))

		if a.Config.Server.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Server.RateLimit.RPS,
				a.Config.Server.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r)
	})

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	healthHandler := handlers.NewHealthHandler(infrastructure.ServiceName, infrastructure.ServiceVersion, a.Logger)
	gainersHandler := handlers.NewGainersHandler(
		FactoryConfig(a.Config, a.Logger, a.Metrics, io.Discard),
		a.Config.Server.MaxBodyBytes,
		a.Logger,
	)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/health", healthHandler.HealthCheck)

		r.Route("/v1", func(r chi.Router) {
			r.Use(middleware.Timeout(a.Config.Server.WriteTimeout))
			r.Mount("/gainers", gainersHandler.Routes())
		})
	})
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
	}
}

// Run serves HTTP until ctx is cancelled or the listener fails, then shuts
// down gracefully.
func (a *Application) Run(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Starting gainers service",
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	errCh := make(chan error, 1)
	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		a.Logger.InfoContext(ctx, "Received shutdown signal")
	}

	return a.Stop(context.Background())
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down gainers service")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Gainers service shutdown complete")
	return nil
}
