package entity

// AlertSeverityNotConfigured marks an entity that no alert condition covers.
const AlertSeverityNotConfigured = "NOT_CONFIGURED"

// MonitoredEntity is a reporting entity returned by entity search.
type MonitoredEntity struct {
	GUID          string
	Name          string
	Type          string
	AlertSeverity string
	AccountID     int64
}

// IsCovered reports whether at least one alert condition targets the entity.
func (e MonitoredEntity) IsCovered() bool {
	return e.AlertSeverity != AlertSeverityNotConfigured
}
