package slack

import (
	"fmt"
	"strings"

	"github.com/slack-go/slack"

	"github.com/qj0r9j0vc2/alert-insights/internal/domain/entity"
)

// MessageBuilder constructs Slack Block Kit messages for scorecards.
type MessageBuilder struct{}

// NewMessageBuilder creates a new message builder.
func NewMessageBuilder() *MessageBuilder {
	return &MessageBuilder{}
}

// BuildScorecardMessage creates a Block Kit message for a scorecard.
func (b *MessageBuilder) BuildScorecardMessage(scorecard entity.Scorecard) []slack.Block {
	var blocks []slack.Block

	blocks = append(blocks, slack.NewHeaderBlock(
		slack.NewTextBlockObject(slack.PlainTextType, b.title(scorecard), true, false),
	))

	blocks = append(blocks, slack.NewContextBlock("",
		slack.NewTextBlockObject(slack.MarkdownType,
			fmt.Sprintf("Account `%d`  •  `%s`", scorecard.Account.ID, scorecard.TimeRange.SinceClause()), false, false),
	))

	blocks = append(blocks, slack.NewDividerBlock())

	// Slack renders at most 10 fields per section
	cards := scorecard.Cards()
	for start := 0; start < len(cards); start += 10 {
		end := min(start+10, len(cards))
		fields := make([]*slack.TextBlockObject, 0, end-start)
		for _, card := range cards[start:end] {
			fields = append(fields, b.cardField(card))
		}
		blocks = append(blocks, slack.NewSectionBlock(nil, fields, nil))
	}

	if len(scorecard.Degraded) > 0 {
		blocks = append(blocks, slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType,
				fmt.Sprintf("⚠️ Incomplete data: %s", strings.Join(scorecard.Degraded, ", ")), false, false),
		))
	}

	return blocks
}

// FallbackText is the plain text shown in notifications and clients without Block Kit.
func (b *MessageBuilder) FallbackText(scorecard entity.Scorecard) string {
	return fmt.Sprintf("%s (%s)", b.title(scorecard), scorecard.TimeRange.SinceClause())
}

func (b *MessageBuilder) title(scorecard entity.Scorecard) string {
	name := scorecard.Account.Name
	if name == "" {
		name = fmt.Sprintf("Account %d", scorecard.Account.ID)
	}
	return fmt.Sprintf("Alert quality scorecard: %s", name)
}

func (b *MessageBuilder) cardField(card entity.Card) *slack.TextBlockObject {
	return slack.NewTextBlockObject(slack.MarkdownType,
		fmt.Sprintf("*%s %s*\n`%.2f%%`", b.colorEmoji(card.Color), card.Kind.Title(), card.Percent), false, false)
}

// colorEmoji maps card colors onto Slack emoji.
func (b *MessageBuilder) colorEmoji(color entity.CardColor) string {
	switch color {
	case entity.CardRed:
		return "🔴"
	case entity.CardOrange:
		return "🟠"
	default:
		return "🟢"
	}
}
