package insights

import (
	"context"
	"time"

	"github.com/qj0r9j0vc2/alert-insights/internal/domain/entity"
	"github.com/qj0r9j0vc2/alert-insights/internal/usecase/aggregate"
)

// IncidentQuery narrows the incident view.
type IncidentQuery struct {
	Query
	Filters []entity.Filter

	// Search keeps facet rows whose policy or condition name contains it.
	Search string
}

// FacetRow is an incident facet with the query that explores it.
type FacetRow struct {
	entity.IncidentFacet
	ExploreQuery string
}

// IncidentsResult reports how long incidents stay open.
type IncidentsResult struct {
	Account      entity.Account
	TimeRange    entity.TimeRange
	ShortPercent float64
	ShortFacets  []FacetRow
	LongPercent  float64
	LongFacets   []FacetRow
	Degraded     []string
}

// IncidentsUseCase computes incident duration statistics.
type IncidentsUseCase struct {
	source IncidentSource
	deps   Deps
}

// NewIncidentsUseCase creates a new incidents use case.
func NewIncidentsUseCase(source IncidentSource, deps Deps) *IncidentsUseCase {
	return &IncidentsUseCase{source: source, deps: deps.withDefaults()}
}

// Execute fetches the incident rows. A failed fetch degrades to zero percentages.
func (uc *IncidentsUseCase) Execute(ctx context.Context, q IncidentQuery) (*IncidentsResult, error) {
	began := time.Now()
	if err := q.Validate(); err != nil {
		return nil, err
	}

	clause := q.TimeRange.SinceClause()
	degraded := newDegradation(uc.deps.Logger, "incidents")

	rows, err := uc.source.IncidentDurations(ctx, q.Account, clause, q.Filters)
	if err != nil {
		degraded.fail("incident durations", err)
		rows = entity.IncidentDurationRows{}
	}
	stats := uc.deps.Engine.IncidentDurationStats(rows)

	result := &IncidentsResult{
		Account:      q.Account,
		TimeRange:    q.TimeRange,
		ShortPercent: stats.ShortPercent,
		ShortFacets:  uc.rows(false, aggregate.FilterFacets(stats.ShortFacets, q.Search), q.Filters, clause),
		LongPercent:  stats.LongPercent,
		LongFacets:   uc.rows(true, aggregate.FilterFacets(stats.LongFacets, q.Search), q.Filters, clause),
		Degraded:     degraded.list(),
	}

	uc.deps.observe(ctx, "incidents", began, len(result.Degraded) > 0)
	return result, nil
}

func (uc *IncidentsUseCase) rows(longLived bool, facets []entity.IncidentFacet, filters []entity.Filter, clause string) []FacetRow {
	out := make([]FacetRow, 0, len(facets))
	for _, f := range facets {
		out = append(out, FacetRow{
			IncidentFacet: f,
			ExploreQuery:  uc.source.ExploreQuery(longLived, f.PolicyName, f.ConditionName, filters, clause),
		})
	}
	return out
}
