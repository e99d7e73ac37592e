package insights

import (
	"context"
	"time"

	"github.com/qj0r9j0vc2/alert-insights/internal/domain/entity"
)

// AccountSource lists accounts and their alert volume.
type AccountSource interface {
	Accounts(ctx context.Context) ([]entity.Account, error)
	AlertCounts(ctx context.Context, account entity.Account, timeClause string) (entity.AlertCounts, error)
}

// IncidentSource fetches incident duration rows.
type IncidentSource interface {
	IncidentDurations(ctx context.Context, account entity.Account, timeClause string, filters []entity.Filter) (entity.IncidentDurationRows, error)

	// ExploreQuery renders the query a user runs to inspect one facet row.
	ExploreQuery(longLived bool, policy, condition string, filters []entity.Filter, timeClause string) string
}

// NotificationSource fetches issues, notifications, workflows and destinations.
type NotificationSource interface {
	IssuesPage(ctx context.Context, account entity.Account, start, end time.Time, cursor *string) (entity.Page[entity.Issue], error)
	NotifiedIssueIDs(ctx context.Context, account entity.Account, timeClause string) ([]string, error)
	WorkflowsPage(ctx context.Context, account entity.Account, cursor *string) (entity.Page[entity.Workflow], error)
	DestinationsPage(ctx context.Context, account entity.Account, cursor *string) (entity.Page[entity.Destination], error)
	DestinationRelationships(ctx context.Context, guids []string) ([]entity.DestinationRelationship, error)
}

// EntitySource pages through reporting entities.
type EntitySource interface {
	EntitiesPage(ctx context.Context, account entity.Account, excludedTypes []string, cursor *string) (entity.Page[entity.MonitoredEntity], error)
}

// ConditionSource fetches policies, conditions and their usage.
type ConditionSource interface {
	PoliciesPage(ctx context.Context, account entity.Account, cursor *string) (entity.Page[entity.Policy], error)
	ConditionsPage(ctx context.Context, account entity.Account, policyID string, cursor *string) (entity.Page[entity.PolicyCondition], error)
	ConditionTimestamps(ctx context.Context, account entity.Account, conditionID, timeClause string) (entity.ConditionTimestamps, error)
	ConditionUsage(ctx context.Context, account entity.Account, timeClause string) ([]entity.ConditionUsage, float64, error)
	ConditionDetails(ctx context.Context, account entity.Account, ids []string) ([]entity.ConditionDetail, error)
}

// Source is every port at once. The NerdGraph source implements it.
type Source interface {
	AccountSource
	IncidentSource
	NotificationSource
	EntitySource
	ConditionSource
}

// ScorecardNotifier delivers a scorecard to a chat channel.
type ScorecardNotifier interface {
	// NotifyScorecard posts card and returns a channel-specific message id.
	NotifyScorecard(ctx context.Context, card entity.Scorecard) (messageID string, err error)

	// Name returns the notifier identifier.
	Name() string
}
