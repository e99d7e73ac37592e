package app

import (
	"context"
	"time"

	"github.com/qj0r9j0vc2/alert-insights/internal/infrastructure/persistence/memory"
)

// minJanitorInterval keeps short TTLs from spinning the janitor.
const minJanitorInterval = time.Second

func (app *Application) initializeStorage() {
	app.registry = memory.NewViewRegistry(app.config.Views.StaleTTL)

	app.logger.Get().Info("in-memory view registry initialized",
		"stale_ttl", app.config.Views.StaleTTL,
	)
}

// runRegistryJanitor drops expired view registrations every TTL until ctx is done.
func (app *Application) runRegistryJanitor(ctx context.Context) {
	interval := max(app.config.Views.StaleTTL, minJanitorInterval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := app.registry.DeleteExpired(ctx)
			if err != nil {
				app.logger.Get().Warn("view registry cleanup failed", "error", err)
				continue
			}
			if removed > 0 {
				app.logger.Get().Debug("expired view registrations removed",
					"removed", removed,
					"remaining", app.registry.Len(),
				)
			}
		}
	}
}
