package nerdgraph

import (
	"fmt"
	"strings"

	"github.com/qj0r9j0vc2/alert-insights/internal/domain/entity"
)

// QueryOptions holds the tunables baked into NRQL text.
type QueryOptions struct {
	// ShortIncidentSeconds and LongIncidentSeconds are the inclusive incident duration thresholds.
	ShortIncidentSeconds int
	LongIncidentSeconds  int

	FacetLimit               int
	NotificationUniquesLimit int
	TimelineUniquesLimit     int

	// NRQLTimeoutSeconds applies to analysis queries, CountTimeoutSeconds to overview counts.
	NRQLTimeoutSeconds  int
	CountTimeoutSeconds int
}

// DefaultQueryOptions returns the standard query tunables.
func DefaultQueryOptions() QueryOptions {
	return QueryOptions{
		ShortIncidentSeconds:     300,
		LongIncidentSeconds:      86400,
		FacetLimit:               100,
		NotificationUniquesLimit: 10000,
		TimelineUniquesLimit:     3000,
		NRQLTimeoutSeconds:       120,
		CountTimeoutSeconds:      90,
	}
}

func (o QueryOptions) withDefaults() QueryOptions {
	d := DefaultQueryOptions()
	if o.ShortIncidentSeconds <= 0 {
		o.ShortIncidentSeconds = d.ShortIncidentSeconds
	}
	if o.LongIncidentSeconds <= 0 {
		o.LongIncidentSeconds = d.LongIncidentSeconds
	}
	if o.FacetLimit <= 0 {
		o.FacetLimit = d.FacetLimit
	}
	if o.NotificationUniquesLimit <= 0 {
		o.NotificationUniquesLimit = d.NotificationUniquesLimit
	}
	if o.TimelineUniquesLimit <= 0 {
		o.TimelineUniquesLimit = d.TimelineUniquesLimit
	}
	if o.NRQLTimeoutSeconds <= 0 {
		o.NRQLTimeoutSeconds = d.NRQLTimeoutSeconds
	}
	if o.CountTimeoutSeconds <= 0 {
		o.CountTimeoutSeconds = d.CountTimeoutSeconds
	}
	return o
}

// issueLinkPattern extracts the issue id from a notification's issue link.
const issueLinkPattern = "https://radar-api.service.newrelic.com/accounts/%/issues/*?%"

// FilterClause renders filters as NRQL conjuncts, or "" when there are none.
func FilterClause(filters []entity.Filter) string {
	parts := make([]string, 0, len(filters))
	for _, f := range filters {
		parts = append(parts, fmt.Sprintf("%s = %s", f.Attribute, quote(f.Value)))
	}
	return strings.Join(parts, " and ")
}

// quote renders s as an NRQL string literal.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}

func whereWith(filterClause, predicate string) string {
	if filterClause == "" {
		return "WHERE " + predicate
	}
	return "WHERE " + filterClause + " and " + predicate
}

// IncidentKind selects the short- or long-lived incident threshold.
type IncidentKind string

const (
	IncidentShort IncidentKind = "short"
	IncidentLong  IncidentKind = "long"
)

func (o QueryOptions) durationPredicate(kind IncidentKind) string {
	if kind == IncidentLong {
		return fmt.Sprintf("durationSeconds >= %d", o.LongIncidentSeconds)
	}
	return fmt.Sprintf("durationSeconds <= %d", o.ShortIncidentSeconds)
}

// Result column names of the incident queries.
const (
	shortPercentColumn = "percentUnder5"
	longPercentColumn  = "percentOverADay"
)

func percentColumn(kind IncidentKind) string {
	if kind == IncidentLong {
		return longPercentColumn
	}
	return shortPercentColumn
}

// IncidentSummaryQuery computes the share of closed incidents beyond the kind's threshold.
func (o QueryOptions) IncidentSummaryQuery(kind IncidentKind, filterClause, timeClause string) string {
	return fmt.Sprintf("FROM NrAiIncident SELECT percentage(count(*), WHERE %s) as '%s' %s %s",
		o.durationPredicate(kind), percentColumn(kind), whereWith(filterClause, "event = 'close'"), timeClause)
}

// IncidentDrilldownQuery is IncidentSummaryQuery faceted by policy and condition.
func (o QueryOptions) IncidentDrilldownQuery(kind IncidentKind, filterClause, timeClause string) string {
	return fmt.Sprintf("FROM NrAiIncident SELECT percentage(count(*), WHERE %s) as '%s' %s FACET policyName, conditionName LIMIT %d %s",
		o.durationPredicate(kind), percentColumn(kind), whereWith(filterClause, "event = 'close'"), o.FacetLimit, timeClause)
}

// IncidentExploreQuery is a timeseries of one policy/condition's incidents beyond the kind's threshold.
func (o QueryOptions) IncidentExploreQuery(kind IncidentKind, policy, condition, filterClause, timeClause string) string {
	predicate := fmt.Sprintf("event = 'close' and %s and policyName = %s and conditionName = %s",
		o.durationPredicate(kind), quote(policy), quote(condition))
	return fmt.Sprintf("FROM NrAiIncident SELECT count(*) %s %s TIMESERIES MAX", whereWith(filterClause, predicate), timeClause)
}

// NotificationCountQuery counts notifications sent in the window.
func (o QueryOptions) NotificationCountQuery(timeClause string) string {
	return "FROM NrAiNotification SELECT count(*) " + timeClause
}

// IssueCountQuery counts distinct issues activated or closed in the window.
func (o QueryOptions) IssueCountQuery(timeClause string) string {
	return "FROM NrAiIssue SELECT uniqueCount(issueId) as 'issueCount' where event in ('activate', 'close') " + timeClause
}

// NotifiedIssuesQuery lists the issue ids that produced a notification.
func (o QueryOptions) NotifiedIssuesQuery(timeClause string) string {
	return fmt.Sprintf("WITH aparse(issueLink, '%s') as id FROM NrAiNotification SELECT uniques(id, %d) as 'notifications' %s",
		issueLinkPattern, o.NotificationUniquesLimit, timeClause)
}

// Timeline priorities.
const (
	PriorityCritical = "critical"
	PriorityWarning  = "warning"
	PriorityMuted    = "muted"
)

// TimelineQuery lists the open timestamps of one condition's incidents for a priority.
func (o QueryOptions) TimelineQuery(priority, conditionID, timeClause string) string {
	predicate := fmt.Sprintf("priority = %s", quote(priority))
	if priority == PriorityMuted {
		predicate = "muted is true"
	}
	return fmt.Sprintf("FROM NrAiIncident SELECT uniques(timestamp, %d) as '%s_times' where event = 'open' and %s and conditionId = %s %s",
		o.TimelineUniquesLimit, priority, predicate, conditionID, timeClause)
}

// CcuByConditionQuery ranks alert conditions by compute usage.
func (o QueryOptions) CcuByConditionQuery(timeClause string) string {
	return fmt.Sprintf("FROM NrComputeUsage SELECT sum(usage) as 'ccu' WHERE productCapability = 'Alert Conditions' FACET dimension_conditionId LIMIT %d %s",
		o.FacetLimit, timeClause)
}

// CcuTotalQuery sums alert condition compute usage for the account.
func (o QueryOptions) CcuTotalQuery(timeClause string) string {
	return "FROM NrComputeUsage SELECT sum(usage) as 'ccu' WHERE productCapability = 'Alert Conditions' " + timeClause
}

// EntitySearchQuery selects reporting entities of the account outside excluded types.
func EntitySearchQuery(accountID int64, excludedTypes []string) string {
	q := fmt.Sprintf("accountId = %d and reporting = 'true'", accountID)
	if len(excludedTypes) == 0 {
		return q
	}
	quoted := make([]string, len(excludedTypes))
	for i, t := range excludedTypes {
		quoted[i] = quote(t)
	}
	return q + " and type not in (" + strings.Join(quoted, ", ") + ")"
}

// ConditionSearchQuery selects the condition entities of a policy.
func ConditionSearchQuery(accountID int64, policyID string) string {
	return fmt.Sprintf("accountId = %d and type = 'CONDITION' and tags.policyId = %s", accountID, quote(policyID))
}
