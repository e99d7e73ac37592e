package insights

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/qj0r9j0vc2/alert-insights/internal/domain/entity"
	"github.com/qj0r9j0vc2/alert-insights/internal/domain/timewindow"
	"github.com/qj0r9j0vc2/alert-insights/internal/usecase/aggregate"
	"github.com/qj0r9j0vc2/alert-insights/internal/usecase/batch"
	"github.com/qj0r9j0vc2/alert-insights/internal/usecase/pagination"
)

// Notification view slices.
const (
	SliceUnsentIssues       = "unsent issues"
	SliceUnusedDestinations = "unused destinations"
	SliceWorkflows          = "workflows"
)

// NotificationsResult combines the notification-side views of one account.
type NotificationsResult struct {
	Account   entity.Account
	TimeRange entity.TimeRange
	entity.NotificationInsights
	Degraded []string
}

// NotificationsUseCase finds unsent issues, unused destinations and overlapping workflows.
type NotificationsUseCase struct {
	source NotificationSource
	deps   Deps
}

// NewNotificationsUseCase creates a new notifications use case.
func NewNotificationsUseCase(source NotificationSource, deps Deps) *NotificationsUseCase {
	return &NotificationsUseCase{source: source, deps: deps.withDefaults()}
}

// Execute computes the three slices concurrently. Each slice degrades on its own.
func (uc *NotificationsUseCase) Execute(ctx context.Context, q Query) (*NotificationsResult, error) {
	began := time.Now()
	if err := q.Validate(); err != nil {
		return nil, err
	}

	var (
		g        errgroup.Group
		unsent   entity.UnsentIssues
		unused   entity.UnusedDestinations
		overlap  entity.WorkflowOverlap
		failures = make([]error, 3)
	)
	now := uc.deps.Now()

	g.Go(func() error {
		unsent, failures[0] = uc.unsentIssues(ctx, q, now)
		return nil
	})
	g.Go(func() error {
		unused, failures[1] = uc.unusedDestinations(ctx, q.Account)
		return nil
	})
	g.Go(func() error {
		overlap, failures[2] = uc.workflowOverlap(ctx, q.Account)
		return nil
	})
	_ = g.Wait()

	degraded := newDegradation(uc.deps.Logger, "notifications")
	for i, slice := range []string{SliceUnsentIssues, SliceUnusedDestinations, SliceWorkflows} {
		if failures[i] != nil {
			degraded.fail(slice, failures[i])
		}
	}

	result := &NotificationsResult{
		Account:   q.Account,
		TimeRange: q.TimeRange,
		NotificationInsights: entity.NotificationInsights{
			Unsent:       orEmptyUnsent(unsent),
			Destinations: orEmptyUnused(unused),
			Workflows:    orEmptyOverlap(overlap),
		},
		Degraded: degraded.list(),
	}

	uc.deps.observe(ctx, "notifications", began, len(result.Degraded) > 0)
	return result, nil
}

// unsentIssues compares issues activated in [now-d, now] against the ids notified
// in the same window. Windows over one day query notifications per day.
func (uc *NotificationsUseCase) unsentIssues(ctx context.Context, q Query, now time.Time) (entity.UnsentIssues, error) {
	windowStart := q.TimeRange.Start(now)

	issues, err := pagination.FetchAll(ctx, uc.deps.Walker, "issues",
		func(ctx context.Context, cursor *string) (entity.Page[entity.Issue], error) {
			return uc.source.IssuesPage(ctx, q.Account, windowStart, now, cursor)
		})
	if err != nil {
		return entity.UnsentIssues{}, err
	}

	plan := timewindow.DayChunks(q.TimeRange.Duration, now)
	clauses := plan.Clauses()
	tasks := make([]batch.Task[string, []string], 0, len(clauses))
	for _, clause := range clauses {
		tasks = append(tasks, batch.Task[string, []string]{
			Key: clause,
			Run: func(ctx context.Context) ([]string, error) {
				return uc.source.NotifiedIssueIDs(ctx, q.Account, clause)
			},
		})
	}
	outcome := batch.RunAll(ctx, uc.deps.Runner, "notified_issues", tasks)
	if err := outcome.Err(); err != nil {
		uc.deps.Logger.Debug("notified issue chunks failed", "account", q.Account.String(), "error", err)
	}

	notified := aggregate.NotifiedSet(outcome.Values()...)
	return uc.deps.Engine.UnsentIssues(issues, notified, windowStart), nil
}

// unusedDestinations resolves destination relationships in chunks of the entities API limit.
func (uc *NotificationsUseCase) unusedDestinations(ctx context.Context, account entity.Account) (entity.UnusedDestinations, error) {
	destinations, err := pagination.FetchAll(ctx, uc.deps.Walker, "destinations",
		func(ctx context.Context, cursor *string) (entity.Page[entity.Destination], error) {
			return uc.source.DestinationsPage(ctx, account, cursor)
		})
	if err != nil {
		return entity.UnusedDestinations{}, err
	}

	guids := make([]string, 0, len(destinations))
	for _, d := range destinations {
		guids = append(guids, d.GUID)
	}

	chunks := batch.Chunk(guids, relationshipChunkSize)
	tasks := make([]batch.Task[int, []entity.DestinationRelationship], 0, len(chunks))
	for i, chunk := range chunks {
		tasks = append(tasks, batch.Task[int, []entity.DestinationRelationship]{
			Key: i,
			Run: func(ctx context.Context) ([]entity.DestinationRelationship, error) {
				return uc.source.DestinationRelationships(ctx, chunk)
			},
		})
	}
	outcome := batch.RunAll(ctx, uc.deps.Runner, "destination_relationships", tasks)
	if err := outcome.Err(); err != nil {
		uc.deps.Logger.Debug("relationship chunks failed", "account", account.String(), "error", err)
	}

	relationships := make([]entity.DestinationRelationship, 0, len(guids))
	for _, res := range sortedByIndex(outcome) {
		relationships = append(relationships, res...)
	}
	return uc.deps.Engine.UnusedDestinations(destinations, relationships), nil
}

func (uc *NotificationsUseCase) workflowOverlap(ctx context.Context, account entity.Account) (entity.WorkflowOverlap, error) {
	workflows, err := pagination.FetchAll(ctx, uc.deps.Walker, "workflows",
		func(ctx context.Context, cursor *string) (entity.Page[entity.Workflow], error) {
			return uc.source.WorkflowsPage(ctx, account, cursor)
		})
	if err != nil {
		return entity.WorkflowOverlap{}, err
	}
	return uc.deps.Engine.DuplicateWorkflows(workflows), nil
}

// sortedByIndex returns the successful values of an index-keyed batch in key order.
func sortedByIndex[R any](outcome batch.Outcome[int, R]) []R {
	slots := make([]*R, 0)
	for _, res := range outcome.Results {
		if res.Err != nil {
			continue
		}
		for len(slots) <= res.Key {
			slots = append(slots, nil)
		}
		v := res.Value
		slots[res.Key] = &v
	}

	values := make([]R, 0, len(slots))
	for _, v := range slots {
		if v != nil {
			values = append(values, *v)
		}
	}
	return values
}

func orEmptyUnsent(u entity.UnsentIssues) entity.UnsentIssues {
	if u.Issues == nil {
		u.Issues = []entity.Issue{}
	}
	return u
}

func orEmptyUnused(u entity.UnusedDestinations) entity.UnusedDestinations {
	if u.Destinations == nil {
		u.Destinations = []entity.UnusedDestination{}
	}
	return u
}

func orEmptyOverlap(o entity.WorkflowOverlap) entity.WorkflowOverlap {
	if o.Duplicates == nil {
		o.Duplicates = []entity.WorkflowGroup{}
	}
	if o.NoChannels == nil {
		o.NoChannels = []entity.Workflow{}
	}
	return o
}
