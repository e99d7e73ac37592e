// Package pagination walks cursor-paginated queries to completion.
package pagination

import (
	"context"

	"github.com/qj0r9j0vc2/alert-insights/internal/domain/entity"
	domainerrors "github.com/qj0r9j0vc2/alert-insights/internal/domain/errors"
)

// PageFetcher fetches the page that starts at cursor. A nil cursor requests the first page.
type PageFetcher[T any] func(ctx context.Context, cursor *string) (entity.Page[T], error)

// PageObserver is notified after each page is fetched.
type PageObserver interface {
	RecordPageFetched(ctx context.Context, request string, items int)
}

// Walker follows cursors until the terminal page.
type Walker struct {
	observer PageObserver
}

// NewWalker creates a walker. observer may be nil.
func NewWalker(observer PageObserver) *Walker {
	return &Walker{observer: observer}
}

// FetchAll concatenates every page of request in encounter order.
// Any page failure aborts the walk with a FetchFailedError; partial results are dropped.
func FetchAll[T any](ctx context.Context, w *Walker, request string, fetch PageFetcher[T]) ([]T, error) {
	var (
		all    []T
		cursor *string
	)

	for {
		if err := ctx.Err(); err != nil {
			return nil, domainerrors.NewFetchFailedError(request, cursor, err)
		}

		page, err := fetch(ctx, cursor)
		if err != nil {
			return nil, domainerrors.NewFetchFailedError(request, cursor, err)
		}

		all = append(all, page.Items...)
		if w != nil && w.observer != nil {
			w.observer.RecordPageFetched(ctx, request, len(page.Items))
		}

		if !page.HasMore() {
			break
		}
		next := *page.NextCursor
		cursor = &next
	}

	if all == nil {
		all = []T{}
	}
	return all, nil
}
