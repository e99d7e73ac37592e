package aggregate

import (
	"strings"

	"github.com/qj0r9j0vc2/alert-insights/internal/domain/entity"
)

// IncidentDurationStats normalises the remote short- and long-lived incident aggregations.
// Missing summaries report 0 and facet rows are capped at the facet limit in API order.
func (e *Engine) IncidentDurationStats(rows entity.IncidentDurationRows) entity.IncidentDurationStats {
	return entity.IncidentDurationStats{
		ShortPercent: percentOrZero(rows.ShortSummary),
		ShortFacets:  e.normaliseFacets(rows.ShortFacets),
		LongPercent:  percentOrZero(rows.LongSummary),
		LongFacets:   e.normaliseFacets(rows.LongFacets),
	}
}

func (e *Engine) normaliseFacets(facets []entity.IncidentFacet) []entity.IncidentFacet {
	n := min(len(facets), e.facetLimit)
	out := make([]entity.IncidentFacet, 0, n)
	for _, f := range facets[:n] {
		f.Percent = Round2(f.Percent)
		out = append(out, f)
	}
	return out
}

// FilterFacets keeps facets with a positive percentage whose policy or
// condition name contains search, ignoring case. An empty search matches everything.
func FilterFacets(facets []entity.IncidentFacet, search string) []entity.IncidentFacet {
	needle := strings.ToLower(search)
	out := make([]entity.IncidentFacet, 0, len(facets))
	for _, f := range facets {
		if f.Percent <= 0 {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(f.PolicyName), needle) &&
			!strings.Contains(strings.ToLower(f.ConditionName), needle) {
			continue
		}
		out = append(out, f)
	}
	return out
}
