package entity

import (
	"fmt"
	"strconv"
	"time"
)

// Account is a monitoring platform account that insights are computed for.
type Account struct {
	// ID is the numeric account identifier.
	ID int64

	// Name is the display name of the account.
	Name string
}

// String returns the account identifier as it appears in query URLs.
func (a Account) String() string {
	return strconv.FormatInt(a.ID, 10)
}

// TimeRange is a trailing window that ends at the moment of the request.
type TimeRange struct {
	// Duration is the length of the window.
	Duration time.Duration
}

// NewTimeRange creates a time range of the given duration.
func NewTimeRange(d time.Duration) (TimeRange, error) {
	if d <= 0 {
		return TimeRange{}, ErrInvalidTimeRange
	}
	return TimeRange{Duration: d}, nil
}

// Minutes returns the window length in (possibly fractional) minutes.
func (r TimeRange) Minutes() float64 {
	return float64(r.Duration) / float64(time.Minute)
}

// SinceClause renders the relative NRQL time clause for this range.
func (r TimeRange) SinceClause() string {
	return fmt.Sprintf("SINCE %s minutes ago", strconv.FormatFloat(r.Minutes(), 'f', -1, 64))
}

// Start returns the window start for the given reference time.
func (r TimeRange) Start(now time.Time) time.Time {
	return now.Add(-r.Duration)
}

// Page is one page of a cursor-paginated result.
// A nil or empty NextCursor marks the final page.
type Page[T any] struct {
	Items      []T
	NextCursor *string
}

// HasMore reports whether another page follows this one.
func (p Page[T]) HasMore() bool {
	return p.NextCursor != nil && *p.NextCursor != ""
}
