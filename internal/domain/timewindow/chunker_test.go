package timewindow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayChunks(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("one day or less is relative", func(t *testing.T) {
		plan := DayChunks(86_400_000*time.Millisecond, now)

		assert.True(t, plan.IsRelative())
		assert.Equal(t, "SINCE 1440 minutes ago", plan.Relative)
		assert.Nil(t, plan.Windows)
		assert.Equal(t, []string{"SINCE 1440 minutes ago"}, plan.Clauses())
	})

	t.Run("one millisecond over a day splits", func(t *testing.T) {
		plan := DayChunks(86_400_001*time.Millisecond, now)

		require.False(t, plan.IsRelative())
		require.Len(t, plan.Windows, 2)
		assert.Equal(t, now.Add(-86_400_001*time.Millisecond), plan.Windows[0].Since)
		assert.Equal(t, now.Add(-time.Millisecond), plan.Windows[0].Until)
		assert.Equal(t, now.Add(-time.Millisecond), plan.Windows[1].Since)
		assert.Equal(t, now, plan.Windows[1].Until)
	})

	t.Run("whole days", func(t *testing.T) {
		plan := DayChunks(3*Day, now)

		require.Len(t, plan.Windows, 3)
		for i, w := range plan.Windows {
			assert.Equal(t, Day, w.Until.Sub(w.Since), "window %d", i)
		}
		assert.Equal(t, now.Add(-3*Day), plan.Windows[0].Since)
		assert.Equal(t, now, plan.Windows[2].Until)
	})

	t.Run("partial final day", func(t *testing.T) {
		plan := DayChunks(60*time.Hour, now)

		require.Len(t, plan.Windows, 3)
		assert.Equal(t, 12*time.Hour, plan.Windows[2].Until.Sub(plan.Windows[2].Since))
		for i := 1; i < len(plan.Windows); i++ {
			assert.Equal(t, plan.Windows[i-1].Until, plan.Windows[i].Since)
		}
	})

	t.Run("fractional minutes", func(t *testing.T) {
		plan := DayChunks(90*time.Second, now)
		assert.Equal(t, "SINCE 1.5 minutes ago", plan.Relative)
	})
}

func TestWindowClause(t *testing.T) {
	w := Window{
		Since: time.UnixMilli(1_700_000_000_000),
		Until: time.UnixMilli(1_700_086_400_000),
	}
	assert.Equal(t, "SINCE 1700000000000 UNTIL 1700086400000", w.Clause())
}
