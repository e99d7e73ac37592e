package repository

import "errors"

// Common repository errors.
var (
	// ErrSuperseded indicates a newer request for the same view replaced this one.
	ErrSuperseded = errors.New("superseded by a newer request")

	// ErrInvalidKey indicates a view key without a view name.
	ErrInvalidKey = errors.New("view key requires a view name")
)
