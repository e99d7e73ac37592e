package insights

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/qj0r9j0vc2/alert-insights/internal/domain/entity"
	"github.com/qj0r9j0vc2/alert-insights/internal/domain/timewindow"
)

// TimelineResult is a condition's violation history on the display timeline.
type TimelineResult struct {
	Account   entity.Account
	TimeRange entity.TimeRange
	entity.ConditionTimeline
}

// TimelineUseCase places condition violations on a bucketed timeline.
type TimelineUseCase struct {
	source ConditionSource
	deps   Deps
}

// NewTimelineUseCase creates a new timeline use case.
func NewTimelineUseCase(source ConditionSource, deps Deps) *TimelineUseCase {
	return &TimelineUseCase{source: source, deps: deps.withDefaults()}
}

// Execute fetches the open timestamps of conditionID and maps them onto the timeline.
func (uc *TimelineUseCase) Execute(ctx context.Context, q Query, conditionID string) (*TimelineResult, error) {
	began := time.Now()
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if _, err := strconv.ParseInt(conditionID, 10, 64); err != nil {
		return nil, fmt.Errorf("condition id %q: %w", conditionID, entity.ErrInvalidCondition)
	}

	now := uc.deps.Now()
	ts, err := uc.source.ConditionTimestamps(ctx, q.Account, conditionID, q.TimeRange.SinceClause())
	if err != nil {
		uc.deps.Logger.Debug("fetching condition timestamps failed",
			"account", q.Account.String(),
			"condition", conditionID,
			"error", err,
		)
		uc.deps.observe(ctx, "timeline", began, true)
		return nil, fmt.Errorf("failed to fetch timeline of condition %s: %w", conditionID, err)
	}

	scale := timewindow.NewTimelineScale(q.TimeRange.Duration, now)
	uc.deps.observe(ctx, "timeline", began, false)
	return &TimelineResult{
		Account:   q.Account,
		TimeRange: q.TimeRange,
		ConditionTimeline: entity.ConditionTimeline{
			ConditionID: conditionID,
			Ticks:       scale.Ticks(),
			Critical:    scale.Place(ts.Critical),
			Warning:     scale.Place(ts.Warning),
			Muted:       scale.Place(ts.Muted),
		},
	}, nil
}
