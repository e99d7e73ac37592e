package presenter

import (
	"github.com/qj0r9j0vc2/alert-insights/internal/adapter/dto"
	"github.com/qj0r9j0vc2/alert-insights/internal/domain/entity"
	"github.com/qj0r9j0vc2/alert-insights/internal/usecase/insights"
)

// InsightsPresenter converts view results into API responses.
// Every slice in a response is non-nil so clients always receive JSON arrays.
type InsightsPresenter struct{}

// NewInsightsPresenter creates a new insights presenter.
func NewInsightsPresenter() *InsightsPresenter {
	return &InsightsPresenter{}
}

// Overview formats the cross-account overview.
func (p *InsightsPresenter) Overview(r *insights.OverviewResult) dto.OverviewResponse {
	accounts := make([]dto.AccountCountsResponse, 0, len(r.Accounts))
	for _, c := range r.Accounts {
		accounts = append(accounts, dto.AccountCountsResponse{
			AccountID:         c.AccountID,
			AccountName:       c.AccountName,
			NotificationCount: c.NotificationCount,
			IssueCount:        c.IssueCount,
		})
	}
	return dto.OverviewResponse{
		TimeRange: p.timeRange(r.TimeRange),
		Accounts:  accounts,
		Degraded:  nonNil(r.Degraded),
	}
}

// Incidents formats the incident duration view.
func (p *InsightsPresenter) Incidents(r *insights.IncidentsResult) dto.IncidentsResponse {
	return dto.IncidentsResponse{
		AccountID: r.Account.ID,
		TimeRange: p.timeRange(r.TimeRange),
		Short: dto.IncidentSection{
			Card:   p.Card(entity.NewCard(entity.CardFlappingIncidents, r.ShortPercent)),
			Facets: p.facets(r.ShortFacets),
		},
		Long: dto.IncidentSection{
			Card:   p.Card(entity.NewCard(entity.CardLongIncidents, r.LongPercent)),
			Facets: p.facets(r.LongFacets),
		},
		Degraded: nonNil(r.Degraded),
	}
}

func (p *InsightsPresenter) facets(rows []insights.FacetRow) []dto.IncidentFacetResponse {
	out := make([]dto.IncidentFacetResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, dto.IncidentFacetResponse{
			PolicyName:    row.PolicyName,
			ConditionName: row.ConditionName,
			Percent:       row.Percent,
			ExploreQuery:  row.ExploreQuery,
		})
	}
	return out
}

// Notifications formats the notification health view.
func (p *InsightsPresenter) Notifications(r *insights.NotificationsResult) dto.NotificationsResponse {
	issues := make([]dto.IssueResponse, 0, len(r.Unsent.Issues))
	for _, i := range r.Unsent.Issues {
		issues = append(issues, dto.IssueResponse{
			IssueID:       i.IssueID,
			Title:         i.Title,
			PolicyName:    i.PolicyName,
			ConditionName: i.ConditionName,
			ActivatedAt:   i.ActivatedAt,
			ClosedAt:      i.ClosedAt,
		})
	}

	destinations := make([]dto.UnusedDestinationResponse, 0, len(r.Destinations.Destinations))
	for _, d := range r.Destinations.Destinations {
		destinations = append(destinations, dto.UnusedDestinationResponse{
			GUID:            d.GUID,
			Name:            d.Name,
			DestinationID:   d.DestinationID,
			DestinationType: d.DestinationType,
		})
	}

	groups := make([]dto.WorkflowGroupResponse, 0, len(r.Workflows.Duplicates))
	for _, g := range r.Workflows.Duplicates {
		groups = append(groups, dto.WorkflowGroupResponse{
			Signature: g.Signature,
			Workflows: p.workflows(g.Workflows),
		})
	}

	return dto.NotificationsResponse{
		AccountID: r.Account.ID,
		TimeRange: p.timeRange(r.TimeRange),
		UnsentIssues: dto.UnsentIssuesResponse{
			Card:   p.Card(entity.NewCard(entity.CardUnsentIssues, r.Unsent.Percent)),
			Total:  r.Unsent.Total,
			Issues: issues,
		},
		UnusedDestinations: dto.UnusedDestinationsResponse{
			Card:         p.Card(entity.NewCard(entity.CardUnusedDests, r.Destinations.Percent)),
			Total:        r.Destinations.Total,
			Destinations: destinations,
		},
		Workflows: dto.WorkflowOverlapResponse{
			DuplicateCard: p.Card(entity.NewCard(entity.CardOverlapWorkflows, r.Workflows.DupePercent)),
			NoChannelCard: p.Card(entity.NewCard(entity.CardNoChannels, r.Workflows.NoChannelsPercent)),
			Total:         r.Workflows.Total,
			Duplicates:    groups,
			NoChannels:    p.workflows(r.Workflows.NoChannels),
		},
		Degraded: nonNil(r.Degraded),
	}
}

func (p *InsightsPresenter) workflows(in []entity.Workflow) []dto.WorkflowResponse {
	out := make([]dto.WorkflowResponse, 0, len(in))
	for _, w := range in {
		out = append(out, dto.WorkflowResponse{
			ID:       w.ID,
			Name:     w.Name,
			Enabled:  w.Enabled,
			Channels: len(w.DestinationConfigurations),
		})
	}
	return out
}

// Entities formats the entity coverage view.
func (p *InsightsPresenter) Entities(r *insights.EntitiesResult) dto.EntitiesResponse {
	missing := make([]dto.EntityResponse, 0, len(r.Missing))
	for _, e := range r.Missing {
		missing = append(missing, dto.EntityResponse{GUID: e.GUID, Name: e.Name, Type: e.Type})
	}
	return dto.EntitiesResponse{
		AccountID: r.Account.ID,
		Card:      p.Card(entity.NewCard(entity.CardEntityCoverage, r.MissingPercent)),
		Total:     r.Total,
		Missing:   missing,
	}
}

// Ccu formats the compute usage view.
func (p *InsightsPresenter) Ccu(r *insights.CcuResult) dto.CcuResponse {
	conditions := make([]dto.ConditionResponse, 0, len(r.Conditions))
	for _, c := range r.Conditions {
		conditions = append(conditions, dto.ConditionResponse{
			ConditionID:      c.ConditionID,
			Name:             c.Name,
			CCU:              c.CCU,
			CCUPercent:       c.CCUPercent,
			NRQL:             c.NRQL,
			HasSlidingWindow: c.HasSlidingWindow,
			Recommendations:  nonNil(c.Recommendations),
		})
	}
	return dto.CcuResponse{
		AccountID:  r.Account.ID,
		TimeRange:  p.timeRange(r.TimeRange),
		TotalCCU:   r.TotalCCU,
		Conditions: conditions,
		Degraded:   nonNil(r.Degraded),
	}
}

// Policies formats the policy list.
func (p *InsightsPresenter) Policies(account entity.Account, policies []entity.Policy) dto.PoliciesResponse {
	out := make([]dto.PolicyResponse, 0, len(policies))
	for _, pol := range policies {
		out = append(out, dto.PolicyResponse{ID: pol.ID, Name: pol.Name})
	}
	return dto.PoliciesResponse{AccountID: account.ID, Policies: out}
}

// PolicyConditions formats the conditions of one policy.
func (p *InsightsPresenter) PolicyConditions(account entity.Account, policyID string, conditions []entity.PolicyCondition) dto.PolicyConditionsResponse {
	out := make([]dto.PolicyConditionResponse, 0, len(conditions))
	for _, c := range conditions {
		out = append(out, dto.PolicyConditionResponse{
			GUID:      c.GUID,
			ID:        c.ID,
			Name:      c.Name,
			SubType:   c.SubType,
			Permalink: c.Permalink,
		})
	}
	return dto.PolicyConditionsResponse{AccountID: account.ID, PolicyID: policyID, Conditions: out}
}

// Timeline formats a condition timeline.
func (p *InsightsPresenter) Timeline(r *insights.TimelineResult) dto.TimelineResponse {
	ticks := make([]dto.TimelineTickResponse, 0, len(r.Ticks))
	for _, t := range r.Ticks {
		ticks = append(ticks, dto.TimelineTickResponse{Timestamp: t.Timestamp, Label: t.Label, Position: t.Position})
	}
	return dto.TimelineResponse{
		AccountID:   r.Account.ID,
		ConditionID: r.ConditionID,
		TimeRange:   p.timeRange(r.TimeRange),
		Ticks:       ticks,
		Critical:    p.points(r.Critical),
		Warning:     p.points(r.Warning),
		Muted:       p.points(r.Muted),
	}
}

func (p *InsightsPresenter) points(in []entity.TimelinePoint) []dto.TimelinePointResponse {
	out := make([]dto.TimelinePointResponse, 0, len(in))
	for _, pt := range in {
		out = append(out, dto.TimelinePointResponse{Timestamp: pt.Timestamp, Position: pt.Position})
	}
	return out
}

// Scorecard formats an account scorecard.
func (p *InsightsPresenter) Scorecard(s *entity.Scorecard) dto.ScorecardResponse {
	cards := s.Cards()
	out := make([]dto.Card, 0, len(cards))
	for _, c := range cards {
		out = append(out, p.Card(c))
	}
	return dto.ScorecardResponse{
		AccountID:   s.Account.ID,
		AccountName: s.Account.Name,
		TimeRange:   p.timeRange(s.TimeRange),
		Cards:       out,
		Degraded:    nonNil(s.Degraded),
	}
}

// Digest formats a posted digest.
func (p *InsightsPresenter) Digest(r *insights.DigestResult) dto.DigestResponse {
	return dto.DigestResponse{
		Notifier:  r.Notifier,
		MessageID: r.MessageID,
		Scorecard: p.Scorecard(r.Scorecard),
	}
}

// Card formats a graded card.
func (p *InsightsPresenter) Card(c entity.Card) dto.Card {
	return dto.Card{
		Kind:    string(c.Kind),
		Title:   c.Kind.Title(),
		Percent: c.Percent,
		Color:   string(c.Color),
		Tooltip: c.Kind.Tooltip(),
	}
}

func (p *InsightsPresenter) timeRange(r entity.TimeRange) dto.TimeRange {
	return dto.TimeRange{
		Duration: r.Duration.String(),
		Minutes:  r.Minutes(),
		Since:    r.SinceClause(),
	}
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
