package aggregate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewEngineDefaults(t *testing.T) {
	e := NewEngine(Options{})

	assert.Equal(t, DefaultFacetLimit, e.FacetLimit())
	assert.Equal(t, DefaultExcludedEntityTypes, e.ExcludedEntityTypes())
	assert.Equal(t, DefaultTopLevelWhereRecommendation, e.recommendations.TopLevelWhere)
	assert.Equal(t, DefaultSlidingWindowRecommendation, e.recommendations.SlidingWindow)
}

func TestNewEngineCustomOptions(t *testing.T) {
	e := NewEngine(Options{
		FacetLimit:          5,
		ExcludedEntityTypes: []string{},
		Recommendations:     Recommendations{TopLevelWhere: "filter it", SlidingWindow: "slide less"},
	})

	assert.Equal(t, 5, e.FacetLimit())
	assert.Empty(t, e.ExcludedEntityTypes())
	assert.Equal(t, "filter it", e.recommendations.TopLevelWhere)
}

func TestPercent(t *testing.T) {
	tests := []struct {
		name     string
		matching int
		total    int
		want     float64
	}{
		{"zero total", 0, 0, 0},
		{"two thirds", 2, 3, 66.67},
		{"one third", 1, 3, 33.33},
		{"all", 4, 4, 100},
		{"none", 0, 9, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Percent(tt.matching, tt.total))
		})
	}
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 12.35, Round2(12.346))
	assert.Equal(t, 0.0, Round2(math.NaN()))
	assert.Equal(t, 0.0, Round2(math.Inf(1)))
}
