package app

import (
	"context"
	"fmt"

	"github.com/qj0r9j0vc2/alert-insights/internal/adapter/handler"
	"github.com/qj0r9j0vc2/alert-insights/internal/infrastructure/resilience"
	"github.com/qj0r9j0vc2/alert-insights/internal/infrastructure/server"
)

func (app *Application) initializeHandlers() {
	logger := app.useCaseLogger()

	// Create readiness handler with dependency checkers
	readyHandler := handler.NewReadyHandler()
	readyHandler.AddChecker("nerdgraph", handler.ReadinessFunc(app.checkNerdGraph))

	app.handlers = &server.Handlers{
		Health:  handler.NewHealthHandler(),
		Ready:   readyHandler,
		Reload:  handler.NewReloadHandler(app.configManager, logger),
		Metrics: handler.NewMetricsHandler(app.telemetry.Handler()),
		Insights: handler.NewInsightsHandler(
			app.useCases,
			app.registry,
			app.telemetry.Metrics,
			handler.InsightsConfig{
				DefaultDuration: app.config.Views.DefaultDuration,
				MaxDuration:     app.config.Views.MaxDuration,
				ComputeTimeout:  app.config.Server.RequestTimeout,
			},
			logger,
		),
	}
}

// checkNerdGraph reports not ready while the breaker rejects queries.
func (app *Application) checkNerdGraph(context.Context) error {
	if state := app.breaker.State(); state == resilience.StateOpen {
		return fmt.Errorf("circuit breaker %s is %s after %d failures", app.breaker.Name(), state, app.breaker.Failures())
	}
	return nil
}

func (app *Application) setupServer() {
	routerConfig := &server.RouterConfig{
		RequestTimeout: app.config.Server.RequestTimeout,
		Metrics:        app.telemetry.Metrics,
	}
	app.router = server.NewRouterWithConfig(app.handlers, app.logger.Logger(), routerConfig)
	app.server = server.New(app.config.Server, app.router, app.logger.Logger())
}
