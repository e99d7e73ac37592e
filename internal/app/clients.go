package app

import (
	"net/http"
	"time"

	"github.com/qj0r9j0vc2/alert-insights/internal/infrastructure/nerdgraph"
	"github.com/qj0r9j0vc2/alert-insights/internal/infrastructure/resilience"
	"github.com/qj0r9j0vc2/alert-insights/internal/infrastructure/slack"
)

// Clients holds all external integration clients
type Clients struct {
	NerdGraph *nerdgraph.Client
	Source    *nerdgraph.Source
	Slack     *slack.Client // nil when the digest is disabled
}

func (app *Application) initializeClients() {
	cfg := app.config.NerdGraph
	log := app.useCaseLogger()

	// Only transient failures say anything about NerdGraph health.
	app.breaker = resilience.NewCircuitBreaker("nerdgraph",
		cfg.CircuitBreaker.MaxFailures,
		cfg.CircuitBreaker.ResetTimeout,
		resilience.WithFailurePredicate(nerdgraph.CountsAsFailure),
		resilience.WithStateChangeHook(func(name string, from, to resilience.State) {
			app.logger.Get().Warn("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		}),
	)

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = nerdgraph.EndpointForRegion(cfg.Region)
	}

	client := nerdgraph.NewClient(endpoint, cfg.APIKey,
		nerdgraph.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		nerdgraph.WithCircuitBreaker(app.breaker),
		nerdgraph.WithRecorder(app.telemetry.Metrics),
		nerdgraph.WithLogger(log),
	)

	engine := app.config.Engine
	source := nerdgraph.NewSource(client, nerdgraph.QueryOptions{
		ShortIncidentSeconds: int(engine.ShortIncidentThreshold / time.Second),
		LongIncidentSeconds:  int(engine.LongIncidentThreshold / time.Second),
		FacetLimit:           engine.FacetLimit,
		NRQLTimeoutSeconds:   int(cfg.NRQLTimeout / time.Second),
		CountTimeoutSeconds:  int(cfg.CountTimeout / time.Second),
	})

	app.clients = &Clients{
		NerdGraph: client,
		Source:    source,
	}

	app.logger.Get().Info("NerdGraph client initialized",
		"endpoint", endpoint,
		"http_timeout", cfg.HTTPTimeout,
	)

	if app.config.IsSlackEnabled() {
		var apiURL []string
		if app.config.Slack.APIURL != "" {
			apiURL = append(apiURL, app.config.Slack.APIURL)
		}
		app.clients.Slack = slack.NewClient(app.config.Slack.BotToken, app.config.Slack.ChannelID, apiURL...)

		app.logger.Get().Info("Slack digest enabled",
			"channel", app.config.Slack.ChannelID,
		)
	}
}
