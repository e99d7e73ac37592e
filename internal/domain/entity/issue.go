package entity

import "time"

// Issue is an activated alert issue as reported by the issues API.
type Issue struct {
	IssueID       string
	PolicyName    string
	ConditionName string
	Title         string

	// ActivatedAt and ClosedAt are epoch milliseconds. ClosedAt is zero for open issues.
	ActivatedAt int64
	ClosedAt    int64

	EventType string
}

// ActivatedAfter reports whether the issue was activated strictly after t.
func (i Issue) ActivatedAfter(t time.Time) bool {
	return i.ActivatedAt > t.UnixMilli()
}

// AlertCounts holds the notification and issue volume of one account.
type AlertCounts struct {
	AccountID         int64
	AccountName       string
	NotificationCount int64
	IssueCount        int64
}

// IncidentFacet is one (policy, condition) row of a faceted incident percentage query.
type IncidentFacet struct {
	PolicyName    string
	ConditionName string
	Percent       float64
}

// IncidentDurationRows is the raw output of the incident duration queries.
// Summary values are nil when the remote aggregation returned null.
type IncidentDurationRows struct {
	ShortSummary *float64
	ShortFacets  []IncidentFacet
	LongSummary  *float64
	LongFacets   []IncidentFacet
}
