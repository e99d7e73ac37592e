package entity

// Workflow routes issues matching its filter to notification channels.
type Workflow struct {
	ID      string
	GUID    string
	Name    string
	Enabled bool
	LastRun string

	DestinationConfigurations []DestinationConfiguration
	IssuesFilter              IssuesFilter
}

// HasChannels reports whether the workflow delivers to at least one destination.
func (w Workflow) HasChannels() bool {
	return len(w.DestinationConfigurations) > 0
}

// DestinationConfiguration is one channel a workflow notifies.
type DestinationConfiguration struct {
	ChannelID string `json:"channelId"`
	Name      string `json:"name"`
	Type      string `json:"type"`
}

// IssuesFilter selects the issues a workflow handles.
type IssuesFilter struct {
	Name       string      `json:"name"`
	Predicates []Predicate `json:"predicates"`
}

// Predicate is a single attribute test of an issues filter.
type Predicate struct {
	Attribute string   `json:"attribute"`
	Operator  string   `json:"operator"`
	Values    []string `json:"values"`
}
