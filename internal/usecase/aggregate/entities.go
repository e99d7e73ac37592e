package aggregate

import "github.com/qj0r9j0vc2/alert-insights/internal/domain/entity"

// EntityCoverage drops excluded entity types, then reports entities with no alert coverage.
func (e *Engine) EntityCoverage(entities []entity.MonitoredEntity) entity.EntityCoverage {
	total := 0
	missing := make([]entity.MonitoredEntity, 0)
	for _, ent := range entities {
		if _, skip := e.excluded[ent.Type]; skip {
			continue
		}
		total++
		if !ent.IsCovered() {
			missing = append(missing, ent)
		}
	}

	return entity.EntityCoverage{
		Missing:        missing,
		Total:          total,
		MissingPercent: Percent(len(missing), total),
	}
}
