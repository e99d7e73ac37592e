package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qj0r9j0vc2/alert-insights/internal/domain/entity"
)

func TestCcuRecommendations(t *testing.T) {
	e := NewEngine(DefaultOptions())
	conditions := []entity.Condition{
		{ConditionID: "1", CCU: 500.4, NRQL: ptr("FROM Transaction SELECT count(*) WHERE appName='x'")},
		{ConditionID: "2", CCU: 300.6, NRQL: ptr("FROM Log SELECT filter(count(*), WHERE message LIKE '%e%') FACET host")},
		{ConditionID: "3", CCU: 199, NRQL: ptr("FROM X SELECT count(*)"), HasSlidingWindow: true},
		{ConditionID: "4", CCU: 0, NRQL: nil, HasSlidingWindow: true},
		{ConditionID: "5", CCU: 0, NRQL: nil},
	}

	got := e.CcuRecommendations(conditions, 1000)

	require.Len(t, got, 5)

	assert.NotNil(t, got[0].Recommendations)
	assert.Empty(t, got[0].Recommendations)
	assert.Equal(t, 50.0, got[0].CCUPercent)

	assert.Equal(t, []string{DefaultTopLevelWhereRecommendation}, got[1].Recommendations)
	assert.Equal(t, 30.0, got[1].CCUPercent)

	assert.Equal(t, []string{DefaultTopLevelWhereRecommendation, DefaultSlidingWindowRecommendation}, got[2].Recommendations)
	assert.Equal(t, 20.0, got[2].CCUPercent)

	assert.Equal(t, []string{DefaultSlidingWindowRecommendation}, got[3].Recommendations)

	assert.NotNil(t, got[4].Recommendations)
	assert.Empty(t, got[4].Recommendations)
}

func TestCcuRecommendationsDoesNotModifyInput(t *testing.T) {
	e := NewEngine(DefaultOptions())
	input := func() []entity.Condition {
		return []entity.Condition{
			{ConditionID: "1", CCU: 500.4, NRQL: ptr("FROM X SELECT count(*)"), Recommendations: []string{"stale"}},
			{ConditionID: "2", CCU: 10, NRQL: nil, HasSlidingWindow: true},
		}
	}
	conditions := input()

	got := e.CcuRecommendations(conditions, 1000)
	require.Len(t, got, 2)
	*got[0].NRQL = "changed"
	got[1].Recommendations[0] = "changed"

	assert.Equal(t, input(), conditions)
	assert.NotSame(t, conditions[0].NRQL, got[0].NRQL)
}

func TestCcuRecommendationsZeroTotal(t *testing.T) {
	e := NewEngine(DefaultOptions())

	got := e.CcuRecommendations([]entity.Condition{{ConditionID: "1", CCU: 0.2, NRQL: ptr("FROM X SELECT count(*) WHERE a = 1")}}, 0.4)

	require.Len(t, got, 1)
	assert.Equal(t, 0.0, got[0].CCUPercent)
}

func TestCcuRecommendationsEmpty(t *testing.T) {
	got := NewEngine(DefaultOptions()).CcuRecommendations(nil, 10)

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCheckNRQL(t *testing.T) {
	assert.Error(t, checkNRQL(entity.Condition{ConditionID: "1"}))
	assert.Error(t, checkNRQL(entity.Condition{ConditionID: "1", NRQL: ptr("  ")}))
	assert.NoError(t, checkNRQL(entity.Condition{ConditionID: "1", NRQL: ptr("FROM X SELECT 1")}))
}
