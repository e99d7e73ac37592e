package aggregate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qj0r9j0vc2/alert-insights/internal/domain/entity"
)

func ptr[T any](v T) *T { return &v }

func TestIncidentDurationStats(t *testing.T) {
	e := NewEngine(DefaultOptions())

	t.Run("empty input reports zero", func(t *testing.T) {
		stats := e.IncidentDurationStats(entity.IncidentDurationRows{})

		assert.Equal(t, 0.0, stats.ShortPercent)
		assert.Equal(t, 0.0, stats.LongPercent)
		assert.NotNil(t, stats.ShortFacets)
		assert.Empty(t, stats.ShortFacets)
		assert.Empty(t, stats.LongFacets)
	})

	t.Run("rounds summaries and facets", func(t *testing.T) {
		stats := e.IncidentDurationStats(entity.IncidentDurationRows{
			ShortSummary: ptr(12.3456),
			ShortFacets: []entity.IncidentFacet{
				{PolicyName: "p1", ConditionName: "c1", Percent: 50.006},
			},
			LongSummary: ptr(1.0),
		})

		assert.Equal(t, 12.35, stats.ShortPercent)
		assert.Equal(t, 1.0, stats.LongPercent)
		require.Len(t, stats.ShortFacets, 1)
		assert.Equal(t, "p1", stats.ShortFacets[0].PolicyName)
		assert.InDelta(t, 50.01, stats.ShortFacets[0].Percent, 0.001)
	})

	t.Run("caps facets in API order", func(t *testing.T) {
		capped := NewEngine(Options{FacetLimit: 3})
		facets := make([]entity.IncidentFacet, 10)
		for i := range facets {
			facets[i] = entity.IncidentFacet{PolicyName: fmt.Sprintf("p%d", i), Percent: 10}
		}

		stats := capped.IncidentDurationStats(entity.IncidentDurationRows{LongFacets: facets})

		require.Len(t, stats.LongFacets, 3)
		assert.Equal(t, "p0", stats.LongFacets[0].PolicyName)
		assert.Equal(t, "p2", stats.LongFacets[2].PolicyName)
	})
}

func TestFilterFacets(t *testing.T) {
	facets := []entity.IncidentFacet{
		{PolicyName: "Payments", ConditionName: "High latency", Percent: 40},
		{PolicyName: "Search", ConditionName: "Errors", Percent: 0},
		{PolicyName: "Checkout", ConditionName: "payment errors", Percent: 12},
	}

	t.Run("drops zero rows", func(t *testing.T) {
		got := FilterFacets(facets, "")
		require.Len(t, got, 2)
		assert.Equal(t, "Payments", got[0].PolicyName)
	})

	t.Run("matches policy or condition ignoring case", func(t *testing.T) {
		got := FilterFacets(facets, "PAYMENT")
		require.Len(t, got, 2)
		assert.Equal(t, "Checkout", got[1].PolicyName)
	})
}
