package entity

// Condition is an alert condition ranked by compute usage.
type Condition struct {
	ConditionID string
	Name        string

	// CCU is the compute consumption of the condition over the window.
	CCU float64

	// CCUPercent is the share of the account total, rounded to an integer.
	CCUPercent float64

	// NRQL is the condition query, nil when the condition has none.
	NRQL *string

	HasSlidingWindow bool

	// Recommendations is never nil once the condition has been analysed.
	Recommendations []string
}

// ConditionUsage is a per-condition compute usage facet row.
type ConditionUsage struct {
	ConditionID string
	CCU         float64
}

// ConditionDetail holds the configuration fields needed to analyse a condition.
type ConditionDetail struct {
	ID               string
	Name             string
	NRQL             *string
	HasSlidingWindow bool
}

// Policy is an alert policy.
type Policy struct {
	ID   string
	Name string
}

// PolicyCondition is a condition listed under a policy.
type PolicyCondition struct {
	GUID      string
	ID        string
	Name      string
	SubType   string
	Permalink string
}

// Tag is a key with one or more values attached to an entity.
type Tag struct {
	Key    string
	Values []string
}

// PluckTag returns the first value of the tag with the given key.
func PluckTag(tags []Tag, key string) string {
	for _, t := range tags {
		if t.Key == key && len(t.Values) > 0 {
			return t.Values[0]
		}
	}
	return ""
}

// ConditionTimestamps lists the violation open times of one condition by priority.
type ConditionTimestamps struct {
	Critical []int64
	Warning  []int64
	Muted    []int64
}
