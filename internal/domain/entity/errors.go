package entity

import "errors"

// Domain validation errors.
var (
	ErrInvalidTimeRange = errors.New("time range must be positive")
	ErrInvalidAccount   = errors.New("account id must be positive")
	ErrInvalidCondition = errors.New("condition id must be numeric")
	ErrInvalidPolicy    = errors.New("policy id must not be empty")
	ErrInvalidFilter    = errors.New("invalid filter")
)
