package slack

import (
	"math"
	"testing"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qj0r9j0vc2/alert-insights/internal/domain/entity"
)

func TestMessageBuilder_BuildScorecardMessage(t *testing.T) {
	b := NewMessageBuilder()

	blocks := b.BuildScorecardMessage(testScorecard())

	require.Len(t, blocks, 5)
	header, ok := blocks[0].(*slack.HeaderBlock)
	require.True(t, ok)
	assert.Equal(t, "Alert quality scorecard: Production", header.Text.Text)

	section, ok := blocks[3].(*slack.SectionBlock)
	require.True(t, ok)
	require.Len(t, section.Fields, 7)
	assert.Equal(t, "*🟢 Flapping incidents*\n`12.50%`", section.Fields[0].Text)
	assert.Equal(t, "*🟠 Long running incidents*\n`30.00%`", section.Fields[1].Text)
	assert.Equal(t, "*🔴 Issues without notifications*\n`50.00%`", section.Fields[2].Text)

	degraded, ok := blocks[4].(*slack.ContextBlock)
	require.True(t, ok)
	require.Len(t, degraded.ContextElements.Elements, 1)
}

func TestMessageBuilder_NoDegradedBlockWhenComplete(t *testing.T) {
	sc := testScorecard()
	sc.Degraded = nil

	blocks := NewMessageBuilder().BuildScorecardMessage(sc)

	assert.Len(t, blocks, 4)
}

func TestMessageBuilder_UnnamedAccount(t *testing.T) {
	sc := entity.Scorecard{Account: entity.Account{ID: 7}}

	assert.Equal(t, "Alert quality scorecard: Account 7 (SINCE 0 minutes ago)", NewMessageBuilder().FallbackText(sc))
}

func TestMessageBuilder_ColorEmoji(t *testing.T) {
	b := NewMessageBuilder()
	assert.Equal(t, "🟢", b.colorEmoji(entity.ColorFor(math.NaN())))
	assert.Equal(t, "🟠", b.colorEmoji(entity.CardOrange))
	assert.Equal(t, "🔴", b.colorEmoji(entity.CardRed))
}
