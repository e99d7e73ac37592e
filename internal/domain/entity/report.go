package entity

// IncidentDurationStats summarises how long incidents stay open.
type IncidentDurationStats struct {
	// ShortPercent is the share of closed incidents open for at most the short threshold.
	ShortPercent float64
	ShortFacets  []IncidentFacet

	// LongPercent is the share of closed incidents open for at least the long threshold.
	LongPercent float64
	LongFacets  []IncidentFacet
}

// UnsentIssues lists issues activated in the window that never produced a notification.
type UnsentIssues struct {
	Issues  []Issue
	Total   int
	Percent float64
}

// UnusedDestinations lists destinations that nothing references.
type UnusedDestinations struct {
	Destinations []UnusedDestination
	Total        int
	Percent      float64
}

// WorkflowGroup is a set of workflows sharing an identical issues filter.
type WorkflowGroup struct {
	Signature string
	Workflows []Workflow
}

// WorkflowOverlap reports duplicated filters and workflows without channels.
type WorkflowOverlap struct {
	Duplicates        []WorkflowGroup
	DupePercent       float64
	NoChannels        []Workflow
	NoChannelsPercent float64
	Total             int
}

// EntityCoverage reports entities no alert condition covers.
type EntityCoverage struct {
	Missing        []MonitoredEntity
	Total          int
	MissingPercent float64
}

// NotificationInsights combines the notification-side views of one account.
type NotificationInsights struct {
	Unsent       UnsentIssues
	Destinations UnusedDestinations
	Workflows    WorkflowOverlap
}

// TimelinePoint places one timestamp on the display timeline.
type TimelinePoint struct {
	Timestamp int64
	Position  float64
}

// TimelineTick is a labelled bucket boundary on the display timeline.
type TimelineTick struct {
	Timestamp int64
	Label     string
	Position  float64
}

// ConditionTimeline is the violation history of one condition placed on a timeline.
type ConditionTimeline struct {
	ConditionID string
	Ticks       []TimelineTick
	Critical    []TimelinePoint
	Warning     []TimelinePoint
	Muted       []TimelinePoint
}

// Scorecard gathers the headline percentages of one account.
// A section that could not be fetched is left at its zero value and named in Degraded.
type Scorecard struct {
	Account                  Account
	TimeRange                TimeRange
	ShortIncidentPercent     float64
	LongIncidentPercent      float64
	UnsentIssuePercent       float64
	UnusedDestinationPercent float64
	DuplicateWorkflowPercent float64
	NoChannelWorkflowPercent float64
	MissingCoveragePercent   float64
	Degraded                 []string
}
