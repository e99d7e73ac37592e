package app

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/qj0r9j0vc2/alert-insights/internal/adapter/handler"
	"github.com/qj0r9j0vc2/alert-insights/internal/infrastructure/config"
	"github.com/qj0r9j0vc2/alert-insights/internal/infrastructure/observability"
	"github.com/qj0r9j0vc2/alert-insights/internal/infrastructure/persistence/memory"
	"github.com/qj0r9j0vc2/alert-insights/internal/infrastructure/resilience"
	"github.com/qj0r9j0vc2/alert-insights/internal/infrastructure/server"
)

// Version is reported in telemetry resources.
var Version = "dev"

// Application holds all application dependencies and lifecycle
type Application struct {
	config        *config.Config
	configManager *config.ConfigManager
	logger        *AtomicLogger
	logOutput     io.Writer
	telemetry     *observability.Telemetry

	// Storage
	registry *memory.ViewRegistry

	// Infrastructure clients
	breaker *resilience.CircuitBreaker
	clients *Clients

	// Use cases
	useCases handler.InsightsUseCases

	// HTTP layer
	handlers *server.Handlers
	router   http.Handler
	server   *server.Server
}

// Option customises an Application before bootstrap.
type Option func(*Application)

// WithLogOutput sends logs to w instead of stdout.
func WithLogOutput(w io.Writer) Option {
	return func(app *Application) { app.logOutput = w }
}

// New creates a new Application instance
func New(configPath string, opts ...Option) (*Application, error) {
	app := &Application{logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}

	if err := app.bootstrap(configPath); err != nil {
		return nil, err
	}

	return app, nil
}

// Handler returns the HTTP handler with the full middleware chain.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Start runs the application until context is cancelled
func (app *Application) Start(ctx context.Context) error {
	app.logger.Get().Info("starting alert-insights",
		"port", app.config.Server.Port,
		"slack_enabled", app.config.IsSlackEnabled(),
		"max_concurrency", app.config.Engine.MaxConcurrency,
	)

	if err := app.configManager.Watch(ctx); err != nil {
		app.logger.Get().Warn("config file watching disabled", "error", err)
	}

	if app.clients.Slack != nil {
		checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := app.clients.Slack.HealthCheck(checkCtx); err != nil {
			app.logger.Get().Warn("Slack token check failed, digests will fail", "error", err)
		}
		cancel()
	}

	go app.runRegistryJanitor(ctx)

	return app.server.Run(ctx)
}

// Shutdown gracefully stops the application
func (app *Application) Shutdown() error {
	app.logger.Get().Info("shutting down alert-insights")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.configManager.Close(); err != nil {
		app.logger.Get().Error("failed to stop config watcher", "error", err)
	}

	// Shutdown telemetry
	if app.telemetry != nil {
		if err := app.telemetry.Shutdown(ctx); err != nil {
			app.logger.Get().Error("failed to shutdown telemetry", "error", err)
			return err
		}
	}

	app.logger.Get().Info("alert-insights stopped")
	return nil
}
