package insights

import (
	"context"
	"fmt"
	"time"

	"github.com/qj0r9j0vc2/alert-insights/internal/domain/entity"
	"github.com/qj0r9j0vc2/alert-insights/internal/usecase/batch"
)

// CcuResult ranks alert conditions by compute usage.
type CcuResult struct {
	Account    entity.Account
	TimeRange  entity.TimeRange
	TotalCCU   float64
	Conditions []entity.Condition
	Degraded   []string
}

// CcuUseCase analyses the conditions that consume the most compute.
type CcuUseCase struct {
	source ConditionSource
	deps   Deps
}

// NewCcuUseCase creates a new CCU use case.
func NewCcuUseCase(source ConditionSource, deps Deps) *CcuUseCase {
	return &CcuUseCase{source: source, deps: deps.withDefaults()}
}

// Execute ranks conditions by usage and attaches recommendations.
// Conditions whose details could not be fetched keep their usage and get
// only the recommendations that need no query text.
func (uc *CcuUseCase) Execute(ctx context.Context, q Query) (*CcuResult, error) {
	began := time.Now()
	if err := q.Validate(); err != nil {
		return nil, err
	}

	usage, total, err := uc.source.ConditionUsage(ctx, q.Account, q.TimeRange.SinceClause())
	if err != nil {
		uc.deps.Logger.Debug("fetching condition usage failed", "account", q.Account.String(), "error", err)
		uc.deps.observe(ctx, "ccu", began, true)
		return nil, fmt.Errorf("failed to fetch condition usage: %w", err)
	}

	degraded := newDegradation(uc.deps.Logger, "ccu")
	details := uc.details(ctx, q.Account, usage, degraded)

	conditions := make([]entity.Condition, 0, len(usage))
	for _, u := range usage {
		c := entity.Condition{ConditionID: u.ConditionID, CCU: u.CCU}
		if d, ok := details[u.ConditionID]; ok {
			c.Name = d.Name
			c.NRQL = d.NRQL
			c.HasSlidingWindow = d.HasSlidingWindow
		}
		conditions = append(conditions, c)
	}

	result := &CcuResult{
		Account:    q.Account,
		TimeRange:  q.TimeRange,
		TotalCCU:   total,
		Conditions: uc.deps.Engine.CcuRecommendations(conditions, total),
		Degraded:   degraded.list(),
	}

	uc.deps.observe(ctx, "ccu", began, len(result.Degraded) > 0)
	return result, nil
}

func (uc *CcuUseCase) details(ctx context.Context, account entity.Account, usage []entity.ConditionUsage, degraded *degradation) map[string]entity.ConditionDetail {
	ids := make([]string, 0, len(usage))
	for _, u := range usage {
		ids = append(ids, u.ConditionID)
	}

	chunks := batch.Chunk(ids, conditionChunkSize)
	tasks := make([]batch.Task[int, []entity.ConditionDetail], 0, len(chunks))
	for i, chunk := range chunks {
		tasks = append(tasks, batch.Task[int, []entity.ConditionDetail]{
			Key: i,
			Run: func(ctx context.Context) ([]entity.ConditionDetail, error) {
				return uc.source.ConditionDetails(ctx, account, chunk)
			},
		})
	}
	outcome := batch.RunAll(ctx, uc.deps.Runner, "condition_details", tasks)
	if err := outcome.Err(); err != nil {
		degraded.fail("condition details", err)
	}

	byID := make(map[string]entity.ConditionDetail, len(ids))
	for _, chunk := range outcome.Values() {
		for _, d := range chunk {
			byID[d.ID] = d
		}
	}
	return byID
}
