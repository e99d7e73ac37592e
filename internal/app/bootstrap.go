package app

import (
	"fmt"

	"github.com/qj0r9j0vc2/alert-insights/internal/domain/logger"
	"github.com/qj0r9j0vc2/alert-insights/internal/infrastructure/config"
)

func (app *Application) bootstrap(configPath string) error {
	// 1. Load configuration
	if err := app.loadConfig(configPath); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// 2. Setup logger
	app.setupLogger()

	// 3. Setup telemetry (OpenTelemetry)
	if err := app.setupTelemetry(); err != nil {
		return fmt.Errorf("setting up telemetry: %w", err)
	}

	// 4. Setup config manager with reload callback
	app.setupConfigManager(configPath)

	// 5. Initialize the view registry
	app.initializeStorage()

	// 6. Initialize infrastructure clients
	app.initializeClients()

	// 7. Initialize use cases
	app.initializeUseCases()

	// 8. Initialize HTTP handlers
	app.initializeHandlers()

	// 9. Setup HTTP server
	app.setupServer()

	return nil
}

func (app *Application) loadConfig(path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	app.config = cfg
	return nil
}

func (app *Application) setupLogger() {
	app.logger = NewAtomicLogger(newLogger(app.logOutput, app.config.Logging.Level, app.config.Logging.Format))
}

// useCaseLogger returns the logger handed to use cases and adapters.
func (app *Application) useCaseLogger() logger.Logger {
	return &slogAdapter{logger: app.logger.Logger()}
}

func (app *Application) setupConfigManager(path string) {
	app.configManager = config.NewConfigManager(path, app.config, app.useCaseLogger())
	app.configManager.OnReload(func(old, updated *config.Config) {
		app.logger.Swap(newLogger(app.logOutput, updated.Logging.Level, updated.Logging.Format))
		app.logger.Get().Info("logger reconfigured",
			"level", updated.Logging.Level,
			"format", updated.Logging.Format,
		)
	})
}
