package entity

import "math"

// CardColor grades a headline percentage.
type CardColor string

const (
	CardGreen  CardColor = "green"
	CardOrange CardColor = "orange"
	CardRed    CardColor = "red"
)

// ColorFor grades percent: below 25 (or NaN) is green, below 50 orange, otherwise red.
func ColorFor(percent float64) CardColor {
	switch {
	case math.IsNaN(percent) || percent < 25:
		return CardGreen
	case percent < 50:
		return CardOrange
	default:
		return CardRed
	}
}

// CardKind names a headline percentage shown on a card.
type CardKind string

const (
	CardFlappingIncidents CardKind = "flapping_incidents"
	CardLongIncidents     CardKind = "long_incidents"
	CardUnsentIssues      CardKind = "unsent_issues"
	CardUnusedDests       CardKind = "unused_dests"
	CardOverlapWorkflows  CardKind = "overlap_workflows"
	CardNoChannels        CardKind = "no_channels"
	CardEntityCoverage    CardKind = "entity_coverage"
	CardCondIncidents     CardKind = "cond_incidents"
	CardCondSignal        CardKind = "cond_signal"
	CardCondEntities      CardKind = "cond_entities"
	CardCondAudit         CardKind = "cond_audit"
)

var cardTitles = map[CardKind]string{
	CardFlappingIncidents: "Flapping incidents",
	CardLongIncidents:     "Long running incidents",
	CardUnsentIssues:      "Issues without notifications",
	CardUnusedDests:       "Unused destinations",
	CardOverlapWorkflows:  "Overlapping workflows",
	CardNoChannels:        "Workflows without channels",
	CardEntityCoverage:    "Entities without conditions",
	CardCondIncidents:     "Open incidents",
	CardCondSignal:        "Signal errors",
	CardCondEntities:      "Violating entities",
	CardCondAudit:         "Condition changes",
}

var cardTooltips = map[CardKind]string{
	CardFlappingIncidents: "The percentage of incidents that are open for less than 5 minutes.",
	CardLongIncidents:     "The percentage of incidents that are open for longer than 1 day.",
	CardUnsentIssues:      "The percentage of issues that did not route to any destinations (no notifications sent).",
	CardUnusedDests:       "The percentage of destinations that are not attached to any workflows.",
	CardOverlapWorkflows:  "The percentage of workflows with duplicate filters.",
	CardNoChannels:        "The percentage of workflows with no destinations (channels) attached. This often stems from removing workflows or channels via API/Terraform.",
	CardEntityCoverage:    "The percentage of entities that do not have alert conditions attached.",
	CardCondIncidents:     "The trend of open incidents over the time period selected.",
	CardCondSignal:        "The trend of errors when evaluating the signal exhibited over the time period selected.",
	CardCondEntities:      "The top 50 entities that have violated the selected condition over the time period selected.",
	CardCondAudit:         "A list of any changes made to the condition over the time period selected.",
}

// Title returns the display title, or the kind itself when unknown.
func (k CardKind) Title() string {
	if t, ok := cardTitles[k]; ok {
		return t
	}
	return string(k)
}

// Tooltip returns the explanatory text, empty when unknown.
func (k CardKind) Tooltip() string {
	return cardTooltips[k]
}

// Card is one graded headline percentage.
type Card struct {
	Kind    CardKind
	Percent float64
	Color   CardColor
}

// NewCard grades percent for kind.
func NewCard(kind CardKind, percent float64) Card {
	return Card{Kind: kind, Percent: percent, Color: ColorFor(percent)}
}

// Cards returns the scorecard percentages in display order.
func (s Scorecard) Cards() []Card {
	return []Card{
		NewCard(CardFlappingIncidents, s.ShortIncidentPercent),
		NewCard(CardLongIncidents, s.LongIncidentPercent),
		NewCard(CardUnsentIssues, s.UnsentIssuePercent),
		NewCard(CardUnusedDests, s.UnusedDestinationPercent),
		NewCard(CardOverlapWorkflows, s.DuplicateWorkflowPercent),
		NewCard(CardNoChannels, s.NoChannelWorkflowPercent),
		NewCard(CardEntityCoverage, s.MissingCoveragePercent),
	}
}
