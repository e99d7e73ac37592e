package dto

// TimeRange describes the trailing window a view was computed over.
type TimeRange struct {
	Duration string  `json:"duration"`
	Minutes  float64 `json:"minutes"`
	Since    string  `json:"since"`
}

// Card is a graded headline percentage.
type Card struct {
	Kind    string  `json:"kind"`
	Title   string  `json:"title"`
	Percent float64 `json:"percent"`
	Color   string  `json:"color"` // "green", "orange" or "red"
	Tooltip string  `json:"tooltip,omitempty"`
}

// OverviewResponse lists alert volume for every account.
type OverviewResponse struct {
	TimeRange TimeRange               `json:"time_range"`
	Accounts  []AccountCountsResponse `json:"accounts"`
	Degraded  []string                `json:"degraded"`
}

// AccountCountsResponse is the alert volume of one account.
type AccountCountsResponse struct {
	AccountID         int64  `json:"account_id"`
	AccountName       string `json:"account_name"`
	NotificationCount int64  `json:"notification_count"`
	IssueCount        int64  `json:"issue_count"`
}

// IncidentsResponse reports short and long lived incidents.
type IncidentsResponse struct {
	AccountID int64           `json:"account_id"`
	TimeRange TimeRange       `json:"time_range"`
	Short     IncidentSection `json:"short"`
	Long      IncidentSection `json:"long"`
	Degraded  []string        `json:"degraded"`
}

// IncidentSection is one incident duration card with its facet breakdown.
type IncidentSection struct {
	Card   Card                    `json:"card"`
	Facets []IncidentFacetResponse `json:"facets"`
}

// IncidentFacetResponse is one (policy, condition) row.
type IncidentFacetResponse struct {
	PolicyName    string  `json:"policy_name"`
	ConditionName string  `json:"condition_name"`
	Percent       float64 `json:"percent"`
	ExploreQuery  string  `json:"explore_query"`
}

// NotificationsResponse reports the notification health of an account.
type NotificationsResponse struct {
	AccountID          int64                      `json:"account_id"`
	TimeRange          TimeRange                  `json:"time_range"`
	UnsentIssues       UnsentIssuesResponse       `json:"unsent_issues"`
	UnusedDestinations UnusedDestinationsResponse `json:"unused_destinations"`
	Workflows          WorkflowOverlapResponse    `json:"workflows"`
	Degraded           []string                   `json:"degraded"`
}

// UnsentIssuesResponse lists issues that never produced a notification.
type UnsentIssuesResponse struct {
	Card   Card            `json:"card"`
	Total  int             `json:"total"`
	Issues []IssueResponse `json:"issues"`
}

// IssueResponse is an activated issue.
type IssueResponse struct {
	IssueID       string `json:"issue_id"`
	Title         string `json:"title"`
	PolicyName    string `json:"policy_name"`
	ConditionName string `json:"condition_name"`
	ActivatedAt   int64  `json:"activated_at"`
	ClosedAt      int64  `json:"closed_at,omitempty"`
}

// UnusedDestinationsResponse lists destinations nothing references.
type UnusedDestinationsResponse struct {
	Card         Card                        `json:"card"`
	Total        int                         `json:"total"`
	Destinations []UnusedDestinationResponse `json:"destinations"`
}

// UnusedDestinationResponse is one unreferenced destination.
type UnusedDestinationResponse struct {
	GUID            string `json:"guid"`
	Name            string `json:"name"`
	DestinationID   string `json:"destination_id"`
	DestinationType string `json:"destination_type"`
}

// WorkflowOverlapResponse reports duplicated and channel-less workflows.
type WorkflowOverlapResponse struct {
	DuplicateCard Card                    `json:"duplicate_card"`
	NoChannelCard Card                    `json:"no_channel_card"`
	Total         int                     `json:"total"`
	Duplicates    []WorkflowGroupResponse `json:"duplicates"`
	NoChannels    []WorkflowResponse      `json:"no_channels"`
}

// WorkflowGroupResponse is a set of workflows sharing one issues filter.
type WorkflowGroupResponse struct {
	Signature string             `json:"signature"`
	Workflows []WorkflowResponse `json:"workflows"`
}

// WorkflowResponse is a workflow summary.
type WorkflowResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Enabled  bool   `json:"enabled"`
	Channels int    `json:"channels"`
}

// EntitiesResponse reports alert coverage of monitored entities.
type EntitiesResponse struct {
	AccountID int64            `json:"account_id"`
	Card      Card             `json:"card"`
	Total     int              `json:"total"`
	Missing   []EntityResponse `json:"missing"`
}

// EntityResponse is a monitored entity.
type EntityResponse struct {
	GUID string `json:"guid"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// CcuResponse ranks conditions by compute usage.
type CcuResponse struct {
	AccountID  int64               `json:"account_id"`
	TimeRange  TimeRange           `json:"time_range"`
	TotalCCU   float64             `json:"total_ccu"`
	Conditions []ConditionResponse `json:"conditions"`
	Degraded   []string            `json:"degraded"`
}

// ConditionResponse is one condition with its usage and recommendations.
type ConditionResponse struct {
	ConditionID      string   `json:"condition_id"`
	Name             string   `json:"name"`
	CCU              float64  `json:"ccu"`
	CCUPercent       float64  `json:"ccu_percent"`
	NRQL             *string  `json:"nrql"`
	HasSlidingWindow bool     `json:"has_sliding_window"`
	Recommendations  []string `json:"recommendations"`
}

// PoliciesResponse lists the alert policies of an account.
type PoliciesResponse struct {
	AccountID int64            `json:"account_id"`
	Policies  []PolicyResponse `json:"policies"`
}

// PolicyResponse is an alert policy.
type PolicyResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PolicyConditionsResponse lists the conditions of one policy.
type PolicyConditionsResponse struct {
	AccountID  int64                     `json:"account_id"`
	PolicyID   string                    `json:"policy_id"`
	Conditions []PolicyConditionResponse `json:"conditions"`
}

// PolicyConditionResponse is a condition listed under a policy.
type PolicyConditionResponse struct {
	GUID      string `json:"guid"`
	ID        string `json:"id"`
	Name      string `json:"name"`
	SubType   string `json:"sub_type"`
	Permalink string `json:"permalink"`
}

// TimelineResponse places violation open times of a condition on a timeline.
type TimelineResponse struct {
	AccountID   int64                   `json:"account_id"`
	ConditionID string                  `json:"condition_id"`
	TimeRange   TimeRange               `json:"time_range"`
	Ticks       []TimelineTickResponse  `json:"ticks"`
	Critical    []TimelinePointResponse `json:"critical"`
	Warning     []TimelinePointResponse `json:"warning"`
	Muted       []TimelinePointResponse `json:"muted"`
}

// TimelineTickResponse is a labelled timeline boundary.
type TimelineTickResponse struct {
	Timestamp int64   `json:"timestamp"`
	Label     string  `json:"label"`
	Position  float64 `json:"position"`
}

// TimelinePointResponse is one timestamp on the timeline.
type TimelinePointResponse struct {
	Timestamp int64   `json:"timestamp"`
	Position  float64 `json:"position"`
}

// ScorecardResponse gathers the headline cards of an account.
type ScorecardResponse struct {
	AccountID   int64     `json:"account_id"`
	AccountName string    `json:"account_name"`
	TimeRange   TimeRange `json:"time_range"`
	Cards       []Card    `json:"cards"`
	Degraded    []string  `json:"degraded"`
}

// DigestResponse reports where a scorecard was posted.
type DigestResponse struct {
	Notifier  string            `json:"notifier"`
	MessageID string            `json:"message_id"`
	Scorecard ScorecardResponse `json:"scorecard"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error     string `json:"error"`   // machine readable kind, e.g. "superseded"
	Message   string `json:"message"` // human readable detail
	RequestID string `json:"request_id,omitempty"`
}
