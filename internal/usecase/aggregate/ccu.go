package aggregate

import (
	"math"
	"strings"

	"github.com/qj0r9j0vc2/alert-insights/internal/domain/entity"
	domainerrors "github.com/qj0r9j0vc2/alert-insights/internal/domain/errors"
)

// CcuRecommendations analyses each condition and attaches its recommendations.
// Output keeps input order. A condition without NRQL skips the query
// analysis but still gets the sliding window check. CCUPercent is the share
// of totalCCU, both rounded to integers first, or 0 when the total rounds to 0.
func (e *Engine) CcuRecommendations(conditions []entity.Condition, totalCCU float64) []entity.Condition {
	out := make([]entity.Condition, 0, len(conditions))
	total := math.Round(totalCCU)

	for _, c := range conditions {
		c.Recommendations = e.recommend(c)
		if c.NRQL != nil {
			q := *c.NRQL
			c.NRQL = &q
		}
		c.CCUPercent = 0
		if total != 0 {
			c.CCUPercent = math.Round(math.Round(c.CCU) / total * 100)
		}
		out = append(out, c)
	}
	return out
}

func (e *Engine) recommend(c entity.Condition) []string {
	recs := make([]string, 0, 2)
	if err := checkNRQL(c); err == nil && !HasTopLevelWhere(*c.NRQL) {
		recs = append(recs, e.recommendations.TopLevelWhere)
	}
	if c.HasSlidingWindow {
		recs = append(recs, e.recommendations.SlidingWindow)
	}
	return recs
}

// checkNRQL reports a MalformedInputError when a condition carries no query to analyse.
func checkNRQL(c entity.Condition) error {
	if c.NRQL == nil || strings.TrimSpace(*c.NRQL) == "" {
		return &domainerrors.MalformedInputError{Item: "condition " + c.ConditionID, Reason: "missing nrql"}
	}
	return nil
}
