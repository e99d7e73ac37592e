package aggregate

import (
	"cmp"
	"slices"

	"github.com/qj0r9j0vc2/alert-insights/internal/domain/entity"
)

// AlertCountsOverview orders accounts by notification volume, busiest first.
// Accounts with equal counts keep their input order.
func (e *Engine) AlertCountsOverview(counts []entity.AlertCounts) []entity.AlertCounts {
	out := slices.Clone(counts)
	if out == nil {
		out = []entity.AlertCounts{}
	}
	slices.SortStableFunc(out, func(a, b entity.AlertCounts) int {
		return cmp.Compare(b.NotificationCount, a.NotificationCount)
	})
	return out
}
