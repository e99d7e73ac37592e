// Package aggregate turns raw query rows into alert-hygiene statistics.
//
// Every function is pure: inputs are never mutated and outputs never alias them.
package aggregate

// Default recommendation texts.
const (
	DefaultTopLevelWhereRecommendation = "Add a top-level WHERE clause to the condition query so fewer events are scanned. " +
		"Filters inside SELECT functions still evaluate every event."
	DefaultSlidingWindowRecommendation = "Validate that sliding window aggregation is needed. " +
		"Overlapping windows make each data point count more than once, which increases CCU."
)

// DefaultFacetLimit caps per-policy/condition drilldown rows.
const DefaultFacetLimit = 100

// DefaultExcludedEntityTypes are entity types that never carry alert coverage of their own.
var DefaultExcludedEntityTypes = []string{
	"DASHBOARD", "WORKFLOW", "CONDITION", "DESTINATION", "SECURE_CRED",
	"ENDPOINT", "ISSUE", "POLICY", "MONITOR_DOWNTIME", "KEY_TRANSACTION",
	"AWSLAMBDAREGION", "AWSUSAGE", "PRIVATE_LOCATION", "CONTAINER",
}

// Recommendations holds the texts emitted by CCU analysis.
type Recommendations struct {
	TopLevelWhere string
	SlidingWindow string
}

// Options configures an Engine.
type Options struct {
	FacetLimit          int
	ExcludedEntityTypes []string
	Recommendations     Recommendations
}

// DefaultOptions returns the standard engine configuration.
func DefaultOptions() Options {
	return Options{
		FacetLimit:          DefaultFacetLimit,
		ExcludedEntityTypes: append([]string(nil), DefaultExcludedEntityTypes...),
		Recommendations: Recommendations{
			TopLevelWhere: DefaultTopLevelWhereRecommendation,
			SlidingWindow: DefaultSlidingWindowRecommendation,
		},
	}
}

// Engine computes derived statistics. It is safe for concurrent use.
type Engine struct {
	facetLimit      int
	excluded        map[string]struct{}
	excludedTypes   []string
	recommendations Recommendations
}

// NewEngine creates an engine. Zero-valued options fall back to the defaults.
func NewEngine(opts Options) *Engine {
	defaults := DefaultOptions()
	if opts.FacetLimit <= 0 {
		opts.FacetLimit = defaults.FacetLimit
	}
	if opts.ExcludedEntityTypes == nil {
		opts.ExcludedEntityTypes = defaults.ExcludedEntityTypes
	}
	if opts.Recommendations.TopLevelWhere == "" {
		opts.Recommendations.TopLevelWhere = defaults.Recommendations.TopLevelWhere
	}
	if opts.Recommendations.SlidingWindow == "" {
		opts.Recommendations.SlidingWindow = defaults.Recommendations.SlidingWindow
	}

	excluded := make(map[string]struct{}, len(opts.ExcludedEntityTypes))
	for _, t := range opts.ExcludedEntityTypes {
		excluded[t] = struct{}{}
	}

	return &Engine{
		facetLimit:      opts.FacetLimit,
		excluded:        excluded,
		excludedTypes:   append([]string(nil), opts.ExcludedEntityTypes...),
		recommendations: opts.Recommendations,
	}
}

// FacetLimit returns the drilldown row cap.
func (e *Engine) FacetLimit() int { return e.facetLimit }

// ExcludedEntityTypes returns a copy of the excluded entity types.
func (e *Engine) ExcludedEntityTypes() []string {
	return append([]string(nil), e.excludedTypes...)
}
