package entity

// DestinationTypeEmail is the destination type whose display name lives in its properties.
const DestinationTypeEmail = "EMAIL"

// Destination is a notification endpoint.
type Destination struct {
	ID         string
	GUID       string
	Name       string
	Type       string
	Active     bool
	Status     string
	Properties []DestinationProperty

	// LastSent is the timestamp of the last delivery as returned by the API, or empty.
	LastSent string
}

// DestinationProperty is a key/value setting of a destination.
type DestinationProperty struct {
	Key   string
	Value string
}

// DestinationRelationship is the entity-relationship view of a destination.
type DestinationRelationship struct {
	GUID string
	Name string
	Type string

	// RelatedEntityCount is how many workflows (or other entities) reference the destination.
	RelatedEntityCount int
}

// UnusedDestination is a destination referenced by nothing, enriched from the destination list.
type UnusedDestination struct {
	GUID            string
	Name            string
	Type            string
	DestinationID   string
	DestinationType string
}
