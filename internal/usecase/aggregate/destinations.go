package aggregate

import "github.com/qj0r9j0vc2/alert-insights/internal/domain/entity"

// UnusedDestinations reports relationships with no related entities.
// The percentage is taken over the relationships actually resolved, so a
// failed lookup chunk shrinks the denominator instead of inflating the result.
func (e *Engine) UnusedDestinations(destinations []entity.Destination, relationships []entity.DestinationRelationship) entity.UnusedDestinations {
	byGUID := make(map[string]entity.Destination, len(destinations))
	for _, d := range destinations {
		if _, seen := byGUID[d.GUID]; !seen {
			byGUID[d.GUID] = d
		}
	}

	unused := make([]entity.UnusedDestination, 0)
	for _, rel := range relationships {
		if rel.RelatedEntityCount != 0 {
			continue
		}

		u := entity.UnusedDestination{
			GUID: rel.GUID,
			Name: rel.Name,
			Type: rel.Type,
		}
		if d, ok := byGUID[rel.GUID]; ok {
			if d.Type == entity.DestinationTypeEmail && len(d.Properties) > 0 {
				u.Name = d.Properties[0].Value
			}
			u.DestinationID = d.ID
			u.DestinationType = d.Type
		}
		unused = append(unused, u)
	}

	return entity.UnusedDestinations{
		Destinations: unused,
		Total:        len(relationships),
		Percent:      Percent(len(unused), len(relationships)),
	}
}
