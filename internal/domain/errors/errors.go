// Package errors defines the error kinds shared by the query, batching and
// aggregation layers.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// TransientError is a failure that may clear up on a later request
// (network trouble, rate limiting, upstream 5xx).
type TransientError struct {
	Message string
	Err     error
}

// NewTransientError wraps err as a transient failure.
func NewTransientError(message string, err error) *TransientError {
	return &TransientError{Message: message, Err: err}
}

func (e *TransientError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// PermanentError is a failure that repeating the request will not fix
// (bad credentials, unknown channel, malformed query).
type PermanentError struct {
	Message string
	Err     error
}

// NewPermanentError wraps err as a permanent failure.
func NewPermanentError(message string, err error) *PermanentError {
	return &PermanentError{Message: message, Err: err}
}

func (e *PermanentError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *PermanentError) Unwrap() error { return e.Err }

// IsTransientError reports whether err or anything it wraps is transient.
func IsTransientError(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}

// IsPermanentError reports whether err or anything it wraps is permanent.
func IsPermanentError(err error) bool {
	var p *PermanentError
	return errors.As(err, &p)
}

// FetchFailedError reports that a remote query could not be completed.
// Callers treat the affected view slice as empty.
type FetchFailedError struct {
	// Request names the logical query, e.g. "workflows".
	Request string

	// Cursor is the page cursor in use when the failure happened, nil for the first page.
	Cursor *string

	Err error
}

// NewFetchFailedError creates a FetchFailedError.
func NewFetchFailedError(request string, cursor *string, err error) *FetchFailedError {
	return &FetchFailedError{Request: request, Cursor: cursor, Err: err}
}

func (e *FetchFailedError) Error() string {
	if e.Cursor != nil {
		return fmt.Sprintf("fetching %s (cursor %q): %v", e.Request, *e.Cursor, e.Err)
	}
	return fmt.Sprintf("fetching %s: %v", e.Request, e.Err)
}

func (e *FetchFailedError) Unwrap() error { return e.Err }

// IsFetchFailed reports whether err is or wraps a FetchFailedError.
func IsFetchFailed(err error) bool {
	var f *FetchFailedError
	return errors.As(err, &f)
}

// PartialBatchFailureError reports that some tasks of a batch failed.
// The successful results remain usable.
type PartialBatchFailureError struct {
	Batch  string
	Failed []string
	Total  int

	// Errs holds the task errors in the same order as Failed.
	Errs []error
}

func (e *PartialBatchFailureError) Error() string {
	return fmt.Sprintf("batch %s: %d of %d tasks failed (%s)",
		e.Batch, len(e.Failed), e.Total, strings.Join(e.Failed, ", "))
}

// Unwrap exposes the individual task errors to errors.Is and errors.As.
func (e *PartialBatchFailureError) Unwrap() []error { return e.Errs }

// AllFailed reports whether no task of the batch succeeded.
func (e *PartialBatchFailureError) AllFailed() bool {
	return e.Total > 0 && len(e.Failed) == e.Total
}

// MalformedInputError reports an item that lacks data its analysis needs.
type MalformedInputError struct {
	Item   string
	Reason string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input %s: %s", e.Item, e.Reason)
}
