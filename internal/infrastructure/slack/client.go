package slack

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/slack-go/slack"

	"github.com/qj0r9j0vc2/alert-insights/internal/domain/entity"
	domainerrors "github.com/qj0r9j0vc2/alert-insights/internal/domain/errors"
)

// Client posts scorecard digests to a Slack channel.
// Implements the insights.ScorecardNotifier interface.
type Client struct {
	api            *slack.Client
	channelID      string
	messageBuilder *MessageBuilder
}

// NewClient creates a new Slack client.
// apiURL overrides the Slack API base URL and is used against fake servers in tests.
func NewClient(botToken, channelID string, apiURL ...string) *Client {
	var api *slack.Client
	if len(apiURL) > 0 && apiURL[0] != "" {
		api = slack.New(botToken, slack.OptionAPIURL(apiURL[0]))
	} else {
		api = slack.New(botToken)
	}

	return &Client{
		api:            api,
		channelID:      channelID,
		messageBuilder: NewMessageBuilder(),
	}
}

// NotifyScorecard posts the scorecard to the configured channel.
// Returns the message ID in the format "channel:timestamp".
func (c *Client) NotifyScorecard(ctx context.Context, scorecard entity.Scorecard) (string, error) {
	options := []slack.MsgOption{
		slack.MsgOptionBlocks(c.messageBuilder.BuildScorecardMessage(scorecard)...),
		slack.MsgOptionText(c.messageBuilder.FallbackText(scorecard), false),
	}

	channelID, timestamp, err := c.api.PostMessageContext(ctx, c.channelID, options...)
	if err != nil {
		return "", categorizeSlackError(err, "posting slack message")
	}

	return fmt.Sprintf("%s:%s", channelID, timestamp), nil
}

// Name returns the notifier identifier.
func (c *Client) Name() string {
	return "slack"
}

// HealthCheck verifies the bot token with auth.test.
func (c *Client) HealthCheck(ctx context.Context) error {
	if _, err := c.api.AuthTestContext(ctx); err != nil {
		return categorizeSlackError(err, "slack auth test")
	}
	return nil
}

// categorizeSlackError wraps Slack API errors as transient or permanent domain errors.
func categorizeSlackError(err error, operation string) error {
	if err == nil {
		return nil
	}

	// Check for network errors (transient)
	var netErr net.Error
	if errors.As(err, &netErr) {
		return domainerrors.NewTransientError(
			fmt.Sprintf("%s: network error", operation),
			err,
		)
	}

	// Rate limits surface as their own type with a Retry-After hint
	var rateErr *slack.RateLimitedError
	if errors.As(err, &rateErr) {
		return domainerrors.NewTransientError(
			fmt.Sprintf("%s: rate limited, retry after %s", operation, rateErr.RetryAfter),
			err,
		)
	}

	// Check for Slack API errors
	var slackErr slack.SlackErrorResponse
	if errors.As(err, &slackErr) {
		switch slackErr.Err {
		case "rate_limited", "ratelimited":
			return domainerrors.NewTransientError(
				fmt.Sprintf("%s: rate limited", operation),
				err,
			)

		case "internal_error", "fatal_error", "service_unavailable":
			return domainerrors.NewTransientError(
				fmt.Sprintf("%s: slack server error", operation),
				err,
			)

		// Client errors and anything unknown are permanent
		default:
			return domainerrors.NewPermanentError(
				fmt.Sprintf("%s: %s", operation, slackErr.Err),
				err,
			)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domainerrors.NewTransientError(
			fmt.Sprintf("%s: context timeout", operation),
			err,
		)
	}

	var statusErr slack.StatusCodeError
	if errors.As(err, &statusErr) && statusErr.Retryable() {
		return domainerrors.NewTransientError(
			fmt.Sprintf("%s: slack returned %d", operation, statusErr.Code),
			err,
		)
	}

	return domainerrors.NewPermanentError(
		fmt.Sprintf("%s: %v", operation, err),
		err,
	)
}
