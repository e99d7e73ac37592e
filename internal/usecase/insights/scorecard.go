package insights

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/qj0r9j0vc2/alert-insights/internal/domain/entity"
)

// Scorecard sections.
const (
	SectionIncidents = "incidents"
	SectionCoverage  = "entity coverage"
)

// ScorecardUseCase gathers the headline percentages of one account.
type ScorecardUseCase struct {
	accounts      AccountSource
	incidents     *IncidentsUseCase
	notifications *NotificationsUseCase
	entities      *EntitiesUseCase
	deps          Deps
}

// NewScorecardUseCase creates a scorecard use case composed of the incident,
// notification and entity views.
func NewScorecardUseCase(source Source, deps Deps) *ScorecardUseCase {
	deps = deps.withDefaults()
	// Sub-views report under the scorecard only.
	inner := deps
	inner.Recorder = nil
	return &ScorecardUseCase{
		accounts:      source,
		incidents:     NewIncidentsUseCase(source, inner),
		notifications: NewNotificationsUseCase(source, inner),
		entities:      NewEntitiesUseCase(source, inner),
		deps:          deps,
	}
}

// Execute computes the three views concurrently. A section that fails stays
// at zero and is named in Degraded.
func (uc *ScorecardUseCase) Execute(ctx context.Context, q Query) (*entity.Scorecard, error) {
	began := time.Now()
	if err := q.Validate(); err != nil {
		return nil, err
	}

	card := &entity.Scorecard{
		Account:   uc.resolveAccount(ctx, q.Account),
		TimeRange: q.TimeRange,
	}
	q.Account = card.Account

	var (
		g        errgroup.Group
		sections scorecardSections
	)
	g.Go(func() error {
		sections.incidents, sections.incidentsErr = uc.incidents.Execute(ctx, IncidentQuery{Query: q})
		return nil
	})
	g.Go(func() error {
		sections.notifications, sections.notificationsErr = uc.notifications.Execute(ctx, q)
		return nil
	})
	g.Go(func() error {
		sections.coverage, sections.coverageErr = uc.entities.Execute(ctx, q.Account)
		return nil
	})
	_ = g.Wait()

	sections.apply(card, newDegradation(uc.deps.Logger, "scorecard"))

	uc.deps.observe(ctx, "scorecard", began, len(card.Degraded) > 0)
	return card, nil
}

// scorecardSections holds the settled sub-views of one scorecard.
type scorecardSections struct {
	incidents        *IncidentsResult
	incidentsErr     error
	notifications    *NotificationsResult
	notificationsErr error
	coverage         *EntitiesResult
	coverageErr      error
}

// apply copies the section percentages into card. A failed section stays at
// zero and every slice it covers is listed in card.Degraded.
func (s scorecardSections) apply(card *entity.Scorecard, degraded *degradation) {
	if s.incidentsErr != nil || s.incidents == nil {
		degraded.fail(SectionIncidents, s.incidentsErr)
	} else {
		card.ShortIncidentPercent = s.incidents.ShortPercent
		card.LongIncidentPercent = s.incidents.LongPercent
		if len(s.incidents.Degraded) > 0 {
			degraded.names = append(degraded.names, SectionIncidents)
		}
	}

	if s.notificationsErr != nil || s.notifications == nil {
		for _, slice := range []string{SliceUnsentIssues, SliceUnusedDestinations, SliceWorkflows} {
			degraded.fail(slice, s.notificationsErr)
		}
	} else {
		card.UnsentIssuePercent = s.notifications.Unsent.Percent
		card.UnusedDestinationPercent = s.notifications.Destinations.Percent
		card.DuplicateWorkflowPercent = s.notifications.Workflows.DupePercent
		card.NoChannelWorkflowPercent = s.notifications.Workflows.NoChannelsPercent
		degraded.names = append(degraded.names, s.notifications.Degraded...)
	}

	if s.coverageErr != nil || s.coverage == nil {
		degraded.fail(SectionCoverage, s.coverageErr)
	} else {
		card.MissingCoveragePercent = s.coverage.MissingPercent
	}

	card.Degraded = degraded.list()
}

// resolveAccount fills in the account name when the caller only knows the id.
func (uc *ScorecardUseCase) resolveAccount(ctx context.Context, account entity.Account) entity.Account {
	if account.Name != "" {
		return account
	}
	accounts, err := uc.accounts.Accounts(ctx)
	if err != nil {
		uc.deps.Logger.Debug("resolving account name failed", "account", account.String(), "error", err)
		return account
	}
	for _, a := range accounts {
		if a.ID == account.ID {
			return a
		}
	}
	return account
}
