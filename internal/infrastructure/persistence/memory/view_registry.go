package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/qj0r9j0vc2/alert-insights/internal/domain/entity"
	"github.com/qj0r9j0vc2/alert-insights/internal/domain/repository"
)

var _ repository.ViewRegistry = (*ViewRegistry)(nil)

type viewEntry struct {
	ticket  entity.ViewTicket
	touched time.Time
}

// ViewRegistry provides an in-memory implementation of repository.ViewRegistry.
// Thread-safe for concurrent access.
type ViewRegistry struct {
	mu      sync.RWMutex
	entries map[entity.ViewKey]viewEntry // key -> latest ticket
	ttl     time.Duration
	now     func() time.Time
}

// NewViewRegistry creates a registry that forgets keys idle for longer than ttl.
func NewViewRegistry(ttl time.Duration) *ViewRegistry {
	return &ViewRegistry{
		entries: make(map[entity.ViewKey]viewEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Begin records timeRange as the latest range for key.
func (r *ViewRegistry) Begin(ctx context.Context, key entity.ViewKey, timeRange string) (entity.ViewTicket, error) {
	if key.View == "" {
		return entity.ViewTicket{}, repository.ErrInvalidKey
	}

	now := r.now()
	ticket := entity.ViewTicket{
		ID:        uuid.NewString(),
		Key:       key,
		TimeRange: timeRange,
		IssuedAt:  now,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = viewEntry{ticket: ticket, touched: now}
	return ticket, nil
}

// IsCurrent reports whether the ticket's range is still the latest for its key.
func (r *ViewRegistry) IsCurrent(ctx context.Context, ticket entity.ViewTicket) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[ticket.Key]
	if !ok || r.expired(entry) {
		return true, nil
	}
	return entry.ticket.TimeRange == ticket.TimeRange, nil
}

// DeleteExpired removes keys idle for longer than the TTL.
func (r *ViewRegistry) DeleteExpired(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var expired []entity.ViewKey
	for key, entry := range r.entries {
		if r.expired(entry) {
			expired = append(expired, key)
		}
	}
	for _, key := range expired {
		delete(r.entries, key)
	}
	return len(expired), nil
}

// Len returns the number of tracked keys.
func (r *ViewRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func (r *ViewRegistry) expired(entry viewEntry) bool {
	return r.ttl > 0 && r.now().Sub(entry.touched) > r.ttl
}
