package aggregate

import (
	"time"

	"github.com/qj0r9j0vc2/alert-insights/internal/domain/entity"
)

// UnsentIssues returns issues that are absent from notified and were
// activated strictly after windowStart. Issues opened before the window may
// have been notified earlier and are never reported.
func (e *Engine) UnsentIssues(issues []entity.Issue, notified map[string]struct{}, windowStart time.Time) entity.UnsentIssues {
	unsent := make([]entity.Issue, 0)
	for _, issue := range issues {
		if _, ok := notified[issue.IssueID]; ok {
			continue
		}
		if !issue.ActivatedAfter(windowStart) {
			continue
		}
		unsent = append(unsent, issue)
	}

	return entity.UnsentIssues{
		Issues:  unsent,
		Total:   len(issues),
		Percent: Percent(len(unsent), len(issues)),
	}
}

// NotifiedSet merges notification id lists into a membership set.
func NotifiedSet(lists ...[]string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, ids := range lists {
		for _, id := range ids {
			set[id] = struct{}{}
		}
	}
	return set
}
