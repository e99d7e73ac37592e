package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/qj0r9j0vc2/alert-insights/internal/adapter/presenter"
	"github.com/qj0r9j0vc2/alert-insights/internal/domain/entity"
	"github.com/qj0r9j0vc2/alert-insights/internal/domain/logger"
	"github.com/qj0r9j0vc2/alert-insights/internal/domain/repository"
	"github.com/qj0r9j0vc2/alert-insights/internal/usecase/insights"
)

// View names used for superseded-response tracking and metrics.
const (
	viewOverview      = "overview"
	viewIncidents     = "incidents"
	viewNotifications = "notifications"
	viewCcu           = "ccu"
	viewTimeline      = "timeline"
	viewScorecard     = "scorecard"
)

// InsightsUseCases are the views served by InsightsHandler.
type InsightsUseCases struct {
	Overview      *insights.OverviewUseCase
	Incidents     *insights.IncidentsUseCase
	Notifications *insights.NotificationsUseCase
	Entities      *insights.EntitiesUseCase
	Ccu           *insights.CcuUseCase
	Policies      *insights.PoliciesUseCase
	Timeline      *insights.TimelineUseCase
	Scorecard     *insights.ScorecardUseCase
	Digest        *insights.DigestUseCase
}

// SupersededRecorder counts results discarded for a newer request.
type SupersededRecorder interface {
	RecordViewSuperseded(ctx context.Context, view string)
}

// InsightsConfig holds request defaults.
type InsightsConfig struct {
	DefaultDuration time.Duration
	MaxDuration     time.Duration
	// ComputeTimeout bounds a view computation once it is detached from the client connection.
	ComputeTimeout time.Duration
}

// InsightsHandler serves the insight views over HTTP.
type InsightsHandler struct {
	useCases  InsightsUseCases
	registry  repository.ViewRegistry
	presenter *presenter.InsightsPresenter
	recorder  SupersededRecorder
	logger    logger.Logger
	cfg       InsightsConfig
}

// NewInsightsHandler creates a new insights handler. registry and recorder may be nil.
func NewInsightsHandler(useCases InsightsUseCases, registry repository.ViewRegistry, recorder SupersededRecorder, cfg InsightsConfig, log logger.Logger) *InsightsHandler {
	if log == nil {
		log = logger.Nop{}
	}
	if cfg.DefaultDuration <= 0 {
		cfg.DefaultDuration = time.Hour
	}
	return &InsightsHandler{
		useCases:  useCases,
		registry:  registry,
		presenter: presenter.NewInsightsPresenter(),
		recorder:  recorder,
		logger:    log,
		cfg:       cfg,
	}
}

// viewTicket guards one request against being overtaken by a newer one.
type viewTicket struct {
	registry repository.ViewRegistry
	ticket   entity.ViewTicket
	active   bool
}

// begin registers the request. Requests without a session are never superseded.
func (h *InsightsHandler) begin(r *http.Request, view string, account int64, timeRange entity.TimeRange) (*viewTicket, error) {
	session := sessionFromRequest(r)
	if h.registry == nil || session == "" {
		return &viewTicket{}, nil
	}

	key := entity.ViewKey{Session: session, View: view, Account: account}
	ticket, err := h.registry.Begin(r.Context(), key, timeRange.SinceClause())
	if err != nil {
		return nil, fmt.Errorf("registering view request: %w", err)
	}
	return &viewTicket{registry: h.registry, ticket: ticket, active: true}, nil
}

// check returns repository.ErrSuperseded when a newer range was requested meanwhile.
func (t *viewTicket) check(ctx context.Context) error {
	if !t.active {
		return nil
	}
	current, err := t.registry.IsCurrent(ctx, t.ticket)
	if err != nil {
		return fmt.Errorf("checking view request: %w", err)
	}
	if !current {
		return fmt.Errorf("%s for %s: %w", t.ticket.Key.View, t.ticket.TimeRange, repository.ErrSuperseded)
	}
	return nil
}

// computeContext detaches view work from the client connection. A view whose
// caller went away still runs to completion and its result is dropped.
func (h *InsightsHandler) computeContext(r *http.Request) (context.Context, context.CancelFunc) {
	ctx := context.WithoutCancel(r.Context())
	if h.cfg.ComputeTimeout > 0 {
		return context.WithTimeout(ctx, h.cfg.ComputeTimeout)
	}
	return context.WithCancel(ctx)
}

// serveView computes a view, drops the result when superseded and writes the response.
func serveView[R any](h *InsightsHandler, w http.ResponseWriter, r *http.Request, view string, account int64, timeRange entity.TimeRange,
	compute func(ctx context.Context) (R, error), present func(R) any) {
	ticket, err := h.begin(r, view, account, timeRange)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	ctx, cancel := h.computeContext(r)
	defer cancel()

	result, err := compute(ctx)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := ticket.check(ctx); err != nil {
		if h.recorder != nil {
			h.recorder.RecordViewSuperseded(ctx, view)
		}
		h.logger.Debug("discarding superseded view result",
			"view", view,
			"account", account,
			"time_range", timeRange.SinceClause(),
		)
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, present(result))
}

// Overview handles GET /api/v1/accounts/overview
func (h *InsightsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	timeRange, err := timeRangeFromQuery(r, h.cfg.DefaultDuration, h.cfg.MaxDuration)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	serveView(h, w, r, viewOverview, 0, timeRange,
		func(ctx context.Context) (*insights.OverviewResult, error) {
			return h.useCases.Overview.Execute(ctx, timeRange)
		},
		func(res *insights.OverviewResult) any { return h.presenter.Overview(res) },
	)
}

// Incidents handles GET /api/v1/accounts/{id}/incidents
func (h *InsightsHandler) Incidents(w http.ResponseWriter, r *http.Request) {
	q, err := h.query(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	filters, err := filtersFromQuery(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	iq := insights.IncidentQuery{Query: q, Filters: filters, Search: r.URL.Query().Get("search")}
	serveView(h, w, r, viewIncidents, q.Account.ID, q.TimeRange,
		func(ctx context.Context) (*insights.IncidentsResult, error) {
			return h.useCases.Incidents.Execute(ctx, iq)
		},
		func(res *insights.IncidentsResult) any { return h.presenter.Incidents(res) },
	)
}

// Notifications handles GET /api/v1/accounts/{id}/notifications
func (h *InsightsHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	q, err := h.query(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	serveView(h, w, r, viewNotifications, q.Account.ID, q.TimeRange,
		func(ctx context.Context) (*insights.NotificationsResult, error) {
			return h.useCases.Notifications.Execute(ctx, q)
		},
		func(res *insights.NotificationsResult) any { return h.presenter.Notifications(res) },
	)
}

// Entities handles GET /api/v1/accounts/{id}/entities
func (h *InsightsHandler) Entities(w http.ResponseWriter, r *http.Request) {
	account, err := accountFromPath(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	ctx, cancel := h.computeContext(r)
	defer cancel()

	result, err := h.useCases.Entities.Execute(ctx, account)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, h.presenter.Entities(result))
}

// Ccu handles GET /api/v1/accounts/{id}/ccu
func (h *InsightsHandler) Ccu(w http.ResponseWriter, r *http.Request) {
	q, err := h.query(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	serveView(h, w, r, viewCcu, q.Account.ID, q.TimeRange,
		func(ctx context.Context) (*insights.CcuResult, error) {
			return h.useCases.Ccu.Execute(ctx, q)
		},
		func(res *insights.CcuResult) any { return h.presenter.Ccu(res) },
	)
}

// Policies handles GET /api/v1/accounts/{id}/policies
func (h *InsightsHandler) Policies(w http.ResponseWriter, r *http.Request) {
	account, err := accountFromPath(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	ctx, cancel := h.computeContext(r)
	defer cancel()

	policies, err := h.useCases.Policies.Policies(ctx, account)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, h.presenter.Policies(account, policies))
}

// PolicyConditions handles GET /api/v1/accounts/{id}/policies/{policyId}/conditions
func (h *InsightsHandler) PolicyConditions(w http.ResponseWriter, r *http.Request) {
	account, err := accountFromPath(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	policyID := r.PathValue("policyId")

	ctx, cancel := h.computeContext(r)
	defer cancel()

	conditions, err := h.useCases.Policies.Conditions(ctx, account, policyID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, h.presenter.PolicyConditions(account, policyID, conditions))
}

// Timeline handles GET /api/v1/accounts/{id}/conditions/{conditionId}/timeline
func (h *InsightsHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	q, err := h.query(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	conditionID := r.PathValue("conditionId")

	serveView(h, w, r, viewTimeline, q.Account.ID, q.TimeRange,
		func(ctx context.Context) (*insights.TimelineResult, error) {
			return h.useCases.Timeline.Execute(ctx, q, conditionID)
		},
		func(res *insights.TimelineResult) any { return h.presenter.Timeline(res) },
	)
}

// Scorecard handles GET /api/v1/accounts/{id}/scorecard
func (h *InsightsHandler) Scorecard(w http.ResponseWriter, r *http.Request) {
	q, err := h.query(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	serveView(h, w, r, viewScorecard, q.Account.ID, q.TimeRange,
		func(ctx context.Context) (*entity.Scorecard, error) {
			return h.useCases.Scorecard.Execute(ctx, q)
		},
		func(res *entity.Scorecard) any { return h.presenter.Scorecard(res) },
	)
}

// Digest handles POST /api/v1/accounts/{id}/digest
func (h *InsightsHandler) Digest(w http.ResponseWriter, r *http.Request) {
	q, err := h.query(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	ctx, cancel := h.computeContext(r)
	defer cancel()

	result, err := h.useCases.Digest.Execute(ctx, q)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, h.presenter.Digest(result))
}

// query reads the account path segment and the duration parameter.
func (h *InsightsHandler) query(r *http.Request) (insights.Query, error) {
	account, err := accountFromPath(r)
	if err != nil {
		return insights.Query{}, err
	}
	timeRange, err := timeRangeFromQuery(r, h.cfg.DefaultDuration, h.cfg.MaxDuration)
	if err != nil {
		return insights.Query{}, err
	}
	return insights.Query{Account: account, TimeRange: timeRange}, nil
}
