package repository

import (
	"context"

	"github.com/qj0r9j0vc2/alert-insights/internal/domain/entity"
)

// ViewRegistry tracks the most recent time range requested per view key.
// It backs the superseded-response check of the HTTP layer.
type ViewRegistry interface {
	// Begin records timeRange as the latest range for key and returns a ticket for it.
	Begin(ctx context.Context, key entity.ViewKey, timeRange string) (entity.ViewTicket, error)

	// IsCurrent reports whether the ticket's range is still the latest one for its key.
	// A key that has expired counts as current.
	IsCurrent(ctx context.Context, ticket entity.ViewTicket) (bool, error)

	// DeleteExpired removes keys not touched within the registry's TTL.
	// Returns the number of removed keys.
	DeleteExpired(ctx context.Context) (int, error)
}
