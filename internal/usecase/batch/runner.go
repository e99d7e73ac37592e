// Package batch runs independent keyed tasks with a fixed concurrency ceiling.
package batch

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	domainerrors "github.com/qj0r9j0vc2/alert-insights/internal/domain/errors"
	"github.com/qj0r9j0vc2/alert-insights/internal/domain/logger"
)

// DefaultMaxConcurrency is the ceiling used when none is configured.
const DefaultMaxConcurrency = 25

// Task is a unit of work identified by Key.
type Task[K comparable, R any] struct {
	Key K
	Run func(ctx context.Context) (R, error)
}

// Result is the settled outcome of one task.
type Result[K comparable, R any] struct {
	Key   K
	Value R
	Err   error
}

// Recorder receives one call per settled task.
type Recorder interface {
	RecordBatchTask(ctx context.Context, batch string, success bool)
}

// Runner executes task batches with at most MaxConcurrency tasks in flight.
type Runner struct {
	maxConcurrency int
	logger         logger.Logger
	recorder       Recorder
}

// NewRunner creates a runner. A non-positive maxConcurrency selects DefaultMaxConcurrency.
// recorder may be nil.
func NewRunner(maxConcurrency int, log logger.Logger, recorder Recorder) *Runner {
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultMaxConcurrency
	}
	if log == nil {
		log = logger.Nop{}
	}
	return &Runner{
		maxConcurrency: maxConcurrency,
		logger:         log,
		recorder:       recorder,
	}
}

// MaxConcurrency returns the configured ceiling.
func (r *Runner) MaxConcurrency() int { return r.maxConcurrency }

// Outcome holds every settled result of a batch in completion order.
type Outcome[K comparable, R any] struct {
	Batch   string
	Results []Result[K, R]
}

// Values returns the values of the successful tasks in completion order.
func (o Outcome[K, R]) Values() []R {
	values := make([]R, 0, len(o.Results))
	for _, res := range o.Results {
		if res.Err == nil {
			values = append(values, res.Value)
		}
	}
	return values
}

// Err returns a PartialBatchFailureError naming the failed keys, or nil when every task succeeded.
func (o Outcome[K, R]) Err() error {
	var (
		failed []string
		errs   []error
	)
	for _, res := range o.Results {
		if res.Err != nil {
			failed = append(failed, fmt.Sprint(res.Key))
			errs = append(errs, res.Err)
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return &domainerrors.PartialBatchFailureError{
		Batch:  o.Batch,
		Failed: failed,
		Total:  len(o.Results),
		Errs:   errs,
	}
}

// RunAll runs every task and returns once all of them have settled.
// A failing task is logged and recorded in its Result; it never cancels its siblings.
func RunAll[K comparable, R any](ctx context.Context, r *Runner, batch string, tasks []Task[K, R]) Outcome[K, R] {
	var (
		g  errgroup.Group
		mu sync.Mutex
	)
	g.SetLimit(r.maxConcurrency)

	out := Outcome[K, R]{
		Batch:   batch,
		Results: make([]Result[K, R], 0, len(tasks)),
	}

	for _, task := range tasks {
		g.Go(func() error {
			value, err := runTask(ctx, task)
			if err != nil {
				r.logger.Debug("batch task failed",
					"batch", batch,
					"key", fmt.Sprint(task.Key),
					"error", err,
				)
			}
			if r.recorder != nil {
				r.recorder.RecordBatchTask(ctx, batch, err == nil)
			}

			mu.Lock()
			out.Results = append(out.Results, Result[K, R]{Key: task.Key, Value: value, Err: err})
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	return out
}

// runTask isolates a panicking task so the rest of the batch still settles.
func runTask[K comparable, R any](ctx context.Context, task Task[K, R]) (value R, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("task panicked: %v", p)
		}
	}()
	if err := ctx.Err(); err != nil {
		return value, err
	}
	return task.Run(ctx)
}
