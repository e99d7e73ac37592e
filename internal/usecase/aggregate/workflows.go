package aggregate

import (
	"encoding/json"

	"github.com/qj0r9j0vc2/alert-insights/internal/domain/entity"
)

// FilterSignature serialises predicates in order. Workflows whose predicates
// differ only in order get different signatures.
func FilterSignature(predicates []entity.Predicate) string {
	b, err := json.Marshal(predicates)
	if err != nil {
		// Predicates hold only strings; Marshal cannot fail on them.
		return ""
	}
	return string(b)
}

// DuplicateWorkflows groups workflows by filter signature, keeping groups
// with two or more members in order of first appearance, and lists workflows
// that notify no channel.
func (e *Engine) DuplicateWorkflows(workflows []entity.Workflow) entity.WorkflowOverlap {
	var (
		order  []string
		groups = make(map[string][]entity.Workflow)
	)
	noChannels := make([]entity.Workflow, 0)

	for _, w := range workflows {
		if !w.HasChannels() {
			noChannels = append(noChannels, copyWorkflow(w))
		}

		sig := FilterSignature(w.IssuesFilter.Predicates)
		if _, ok := groups[sig]; !ok {
			order = append(order, sig)
		}
		groups[sig] = append(groups[sig], copyWorkflow(w))
	}

	duplicates := make([]entity.WorkflowGroup, 0)
	dupeCount := 0
	for _, sig := range order {
		members := groups[sig]
		if len(members) < 2 {
			continue
		}
		dupeCount += len(members)
		duplicates = append(duplicates, entity.WorkflowGroup{Signature: sig, Workflows: members})
	}

	return entity.WorkflowOverlap{
		Duplicates:        duplicates,
		DupePercent:       Percent(dupeCount, len(workflows)),
		NoChannels:        noChannels,
		NoChannelsPercent: Percent(len(noChannels), len(workflows)),
		Total:             len(workflows),
	}
}

func copyWorkflow(w entity.Workflow) entity.Workflow {
	w.DestinationConfigurations = append([]entity.DestinationConfiguration(nil), w.DestinationConfigurations...)
	if w.IssuesFilter.Predicates != nil {
		preds := make([]entity.Predicate, len(w.IssuesFilter.Predicates))
		for i, p := range w.IssuesFilter.Predicates {
			p.Values = append([]string(nil), p.Values...)
			preds[i] = p
		}
		w.IssuesFilter.Predicates = preds
	}
	return w
}
