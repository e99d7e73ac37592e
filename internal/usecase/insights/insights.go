// Package insights computes the alert-hygiene views of an account.
//
// Each view fetches its raw inputs through a narrow source port, walks
// cursors with the pagination walker, fans independent calls out through the
// batch runner and hands the rows to the aggregation engine. A slice of a view
// whose fetch fails degrades to its zero value and is named in Degraded; only
// a failure of a view's primary list is returned as an error.
package insights

import (
	"context"
	"time"

	"github.com/qj0r9j0vc2/alert-insights/internal/domain/entity"
	"github.com/qj0r9j0vc2/alert-insights/internal/domain/logger"
	"github.com/qj0r9j0vc2/alert-insights/internal/usecase/aggregate"
	"github.com/qj0r9j0vc2/alert-insights/internal/usecase/batch"
	"github.com/qj0r9j0vc2/alert-insights/internal/usecase/pagination"
)

// relationshipChunkSize is the per-request guid limit of the entities API.
const relationshipChunkSize = 25

// conditionChunkSize bounds the aliases of one condition details request.
const conditionChunkSize = 25

// Query selects the account and trailing window a view is computed for.
type Query struct {
	Account   entity.Account
	TimeRange entity.TimeRange
}

// Validate reports whether the query can be executed.
func (q Query) Validate() error {
	if q.Account.ID <= 0 {
		return entity.ErrInvalidAccount
	}
	if q.TimeRange.Duration <= 0 {
		return entity.ErrInvalidTimeRange
	}
	return nil
}

// ViewRecorder receives one call per computed view.
type ViewRecorder interface {
	RecordView(ctx context.Context, view string, duration time.Duration, degraded bool)
}

// Deps are the collaborators shared by every view.
type Deps struct {
	Walker   *pagination.Walker
	Runner   *batch.Runner
	Engine   *aggregate.Engine
	Logger   logger.Logger
	Recorder ViewRecorder

	// Now is the reference clock; windows end at Now().
	Now func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = logger.Nop{}
	}
	if d.Walker == nil {
		d.Walker = pagination.NewWalker(nil)
	}
	if d.Runner == nil {
		d.Runner = batch.NewRunner(batch.DefaultMaxConcurrency, d.Logger, nil)
	}
	if d.Engine == nil {
		d.Engine = aggregate.NewEngine(aggregate.DefaultOptions())
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// observe records the duration of a view computation started at start.
func (d Deps) observe(ctx context.Context, view string, start time.Time, degraded bool) {
	if d.Recorder != nil {
		d.Recorder.RecordView(ctx, view, time.Since(start), degraded)
	}
}

// degradation collects the names of slices that could not be fetched.
type degradation struct {
	log   logger.Logger
	view  string
	names []string
}

func newDegradation(log logger.Logger, view string) *degradation {
	return &degradation{log: log, view: view}
}

// fail logs err at debug and records slice as degraded.
func (d *degradation) fail(slice string, err error) {
	d.log.Debug("view slice degraded",
		"view", d.view,
		"slice", slice,
		"error", err,
	)
	d.names = append(d.names, slice)
}

// partial logs a batch that lost some of its tasks. The slice keeps whatever succeeded.
func (d *degradation) partial(err error) {
	if err != nil {
		d.log.Debug("batch partially failed", "view", d.view, "error", err)
	}
}

func (d *degradation) list() []string {
	if d.names == nil {
		return []string{}
	}
	return append([]string(nil), d.names...)
}
