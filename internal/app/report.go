package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/qj0r9j0vc2/alert-insights/internal/adapter/dto"
	"github.com/qj0r9j0vc2/alert-insights/internal/adapter/presenter"
	"github.com/qj0r9j0vc2/alert-insights/internal/domain/entity"
	"github.com/qj0r9j0vc2/alert-insights/internal/usecase/insights"
)

// ErrUnknownView is returned by Report for a view name it does not serve.
var ErrUnknownView = errors.New("unknown view")

// ReportViews lists the views Report can print.
var ReportViews = []string{
	"overview",
	"incidents",
	"notifications",
	"entities",
	"ccu",
	"policies",
	"conditions",
	"timeline",
	"scorecard",
}

// ReportOptions selects one view of one account.
type ReportOptions struct {
	View        string
	Account     int64
	Duration    time.Duration // zero uses views.default_duration
	PolicyID    string
	ConditionID string
	Filters     []string
	Search      string
}

// Report computes one view outside the HTTP server and returns its response body.
func (app *Application) Report(ctx context.Context, opts ReportOptions) (any, error) {
	q, err := app.reportQuery(opts)
	if err != nil {
		return nil, err
	}

	p := presenter.NewInsightsPresenter()
	uc := app.useCases

	switch opts.View {
	case "overview":
		res, err := uc.Overview.Execute(ctx, q.TimeRange)
		if err != nil {
			return nil, err
		}
		return p.Overview(res), nil
	case "incidents":
		filters, err := entity.ParseFilters(opts.Filters)
		if err != nil {
			return nil, err
		}
		res, err := uc.Incidents.Execute(ctx, insights.IncidentQuery{Query: q, Filters: filters, Search: opts.Search})
		if err != nil {
			return nil, err
		}
		return p.Incidents(res), nil
	case "notifications":
		res, err := uc.Notifications.Execute(ctx, q)
		if err != nil {
			return nil, err
		}
		return p.Notifications(res), nil
	case "entities":
		res, err := uc.Entities.Execute(ctx, q.Account)
		if err != nil {
			return nil, err
		}
		return p.Entities(res), nil
	case "ccu":
		res, err := uc.Ccu.Execute(ctx, q)
		if err != nil {
			return nil, err
		}
		return p.Ccu(res), nil
	case "policies":
		res, err := uc.Policies.Policies(ctx, q.Account)
		if err != nil {
			return nil, err
		}
		return p.Policies(q.Account, res), nil
	case "conditions":
		res, err := uc.Policies.Conditions(ctx, q.Account, opts.PolicyID)
		if err != nil {
			return nil, err
		}
		return p.PolicyConditions(q.Account, opts.PolicyID, res), nil
	case "timeline":
		res, err := uc.Timeline.Execute(ctx, q, opts.ConditionID)
		if err != nil {
			return nil, err
		}
		return p.Timeline(res), nil
	case "scorecard":
		res, err := uc.Scorecard.Execute(ctx, q)
		if err != nil {
			return nil, err
		}
		return p.Scorecard(res), nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownView, opts.View)
	}
}

// Digest computes the scorecard of account and posts it to Slack.
func (app *Application) Digest(ctx context.Context, account int64, duration time.Duration) (dto.DigestResponse, error) {
	q, err := app.reportQuery(ReportOptions{Account: account, Duration: duration})
	if err != nil {
		return dto.DigestResponse{}, err
	}

	res, err := app.useCases.Digest.Execute(ctx, q)
	if err != nil {
		return dto.DigestResponse{}, err
	}
	return presenter.NewInsightsPresenter().Digest(res), nil
}

func (app *Application) reportQuery(opts ReportOptions) (insights.Query, error) {
	d := opts.Duration
	if d == 0 {
		d = app.config.Views.DefaultDuration
	}
	if d > app.config.Views.MaxDuration {
		return insights.Query{}, fmt.Errorf("duration %s exceeds views.max_duration %s: %w", d, app.config.Views.MaxDuration, entity.ErrInvalidTimeRange)
	}
	timeRange, err := entity.NewTimeRange(d)
	if err != nil {
		return insights.Query{}, err
	}
	return insights.Query{Account: entity.Account{ID: opts.Account}, TimeRange: timeRange}, nil
}
