package app

import (
	"github.com/qj0r9j0vc2/alert-insights/internal/adapter/handler"
	"github.com/qj0r9j0vc2/alert-insights/internal/usecase/aggregate"
	"github.com/qj0r9j0vc2/alert-insights/internal/usecase/batch"
	"github.com/qj0r9j0vc2/alert-insights/internal/usecase/insights"
	"github.com/qj0r9j0vc2/alert-insights/internal/usecase/pagination"
)

func (app *Application) initializeUseCases() {
	log := app.useCaseLogger()
	metrics := app.telemetry.Metrics
	engineCfg := app.config.Engine

	deps := insights.Deps{
		Walker: pagination.NewWalker(metrics),
		Runner: batch.NewRunner(engineCfg.MaxConcurrency, log, metrics),
		Engine: aggregate.NewEngine(aggregate.Options{
			FacetLimit:          engineCfg.FacetLimit,
			ExcludedEntityTypes: engineCfg.ExcludedEntityTypes,
			Recommendations: aggregate.Recommendations{
				TopLevelWhere: engineCfg.Recommendations.TopLevelWhere,
				SlidingWindow: engineCfg.Recommendations.SlidingWindow,
			},
		}),
		Logger:   log,
		Recorder: metrics,
	}

	source := app.clients.Source

	// A nil *slack.Client must not become a non-nil interface.
	var notifier insights.ScorecardNotifier
	if app.clients.Slack != nil {
		notifier = app.clients.Slack
	}

	scorecard := insights.NewScorecardUseCase(source, deps)
	app.useCases = handler.InsightsUseCases{
		Overview:      insights.NewOverviewUseCase(source, deps),
		Incidents:     insights.NewIncidentsUseCase(source, deps),
		Notifications: insights.NewNotificationsUseCase(source, deps),
		Entities:      insights.NewEntitiesUseCase(source, deps),
		Ccu:           insights.NewCcuUseCase(source, deps),
		Policies:      insights.NewPoliciesUseCase(source, deps),
		Timeline:      insights.NewTimelineUseCase(source, deps),
		Scorecard:     scorecard,
		Digest:        insights.NewDigestUseCase(scorecard, notifier, deps),
	}
}
