package insights

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/qj0r9j0vc2/alert-insights/internal/domain/entity"
	"github.com/qj0r9j0vc2/alert-insights/internal/usecase/batch"
)

// OverviewResult is the alert volume of every readable account.
type OverviewResult struct {
	TimeRange entity.TimeRange
	Accounts  []entity.AlertCounts

	// Degraded lists the ids of accounts whose counts could not be fetched.
	Degraded []string
}

// OverviewUseCase ranks accounts by notification volume.
type OverviewUseCase struct {
	source AccountSource
	deps   Deps
}

// NewOverviewUseCase creates a new overview use case.
func NewOverviewUseCase(source AccountSource, deps Deps) *OverviewUseCase {
	return &OverviewUseCase{source: source, deps: deps.withDefaults()}
}

// Execute fetches the counts of every account concurrently.
// Accounts whose counts fail are left out of the ranking.
func (uc *OverviewUseCase) Execute(ctx context.Context, timeRange entity.TimeRange) (*OverviewResult, error) {
	began := time.Now()
	if timeRange.Duration <= 0 {
		return nil, entity.ErrInvalidTimeRange
	}

	accounts, err := uc.source.Accounts(ctx)
	if err != nil {
		uc.deps.Logger.Debug("listing accounts failed", "error", err)
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	clause := timeRange.SinceClause()
	tasks := make([]batch.Task[int64, entity.AlertCounts], 0, len(accounts))
	for _, account := range accounts {
		tasks = append(tasks, batch.Task[int64, entity.AlertCounts]{
			Key: account.ID,
			Run: func(ctx context.Context) (entity.AlertCounts, error) {
				return uc.source.AlertCounts(ctx, account, clause)
			},
		})
	}
	outcome := batch.RunAll(ctx, uc.deps.Runner, "alert_counts", tasks)

	uc.deps.observe(ctx, "overview", began, outcome.Err() != nil)
	return uc.collect(timeRange, accounts, outcome), nil
}

// collect restores account order before ranking so ties do not depend on completion order.
func (uc *OverviewUseCase) collect(timeRange entity.TimeRange, accounts []entity.Account, outcome batch.Outcome[int64, entity.AlertCounts]) *OverviewResult {
	settled := make(map[int64]batch.Result[int64, entity.AlertCounts], len(outcome.Results))
	for _, res := range outcome.Results {
		settled[res.Key] = res
	}

	counts := make([]entity.AlertCounts, 0, len(accounts))
	degraded := []string{}
	for _, account := range accounts {
		res, ok := settled[account.ID]
		if !ok || res.Err != nil {
			degraded = append(degraded, strconv.FormatInt(account.ID, 10))
			continue
		}
		counts = append(counts, res.Value)
	}

	return &OverviewResult{
		TimeRange: timeRange,
		Accounts:  uc.deps.Engine.AlertCountsOverview(counts),
		Degraded:  degraded,
	}
}
