package insights

import (
	"context"
	"errors"
	"fmt"

	"github.com/qj0r9j0vc2/alert-insights/internal/domain/entity"
)

// ErrNotifierDisabled is returned when no chat notifier is configured.
var ErrNotifierDisabled = errors.New("no scorecard notifier configured")

// DigestRecorder is implemented by view recorders that also count digest deliveries.
type DigestRecorder interface {
	RecordDigestSent(ctx context.Context, notifier string, success bool)
}

// DigestResult records where a scorecard was delivered.
type DigestResult struct {
	Scorecard *entity.Scorecard
	Notifier  string
	MessageID string
}

// DigestUseCase posts an account scorecard to chat.
type DigestUseCase struct {
	scorecard *ScorecardUseCase
	notifier  ScorecardNotifier
	deps      Deps
}

// NewDigestUseCase creates a new digest use case. notifier may be nil.
func NewDigestUseCase(scorecard *ScorecardUseCase, notifier ScorecardNotifier, deps Deps) *DigestUseCase {
	return &DigestUseCase{scorecard: scorecard, notifier: notifier, deps: deps.withDefaults()}
}

// Execute computes the scorecard and posts it.
func (uc *DigestUseCase) Execute(ctx context.Context, q Query) (*DigestResult, error) {
	if uc.notifier == nil {
		return nil, ErrNotifierDisabled
	}

	card, err := uc.scorecard.Execute(ctx, q)
	if err != nil {
		return nil, err
	}

	messageID, err := uc.notifier.NotifyScorecard(ctx, *card)
	if rec, ok := uc.deps.Recorder.(DigestRecorder); ok {
		rec.RecordDigestSent(ctx, uc.notifier.Name(), err == nil)
	}
	if err != nil {
		uc.deps.Logger.Warn("posting scorecard failed",
			"notifier", uc.notifier.Name(),
			"account", card.Account.String(),
			"error", err,
		)
		return nil, fmt.Errorf("failed to post scorecard via %s: %w", uc.notifier.Name(), err)
	}

	uc.deps.Logger.Info("scorecard posted",
		"notifier", uc.notifier.Name(),
		"account", card.Account.String(),
		"message_id", messageID,
	)
	return &DigestResult{Scorecard: card, Notifier: uc.notifier.Name(), MessageID: messageID}, nil
}
