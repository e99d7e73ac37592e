package nerdgraph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/qj0r9j0vc2/alert-insights/internal/domain/entity"
)

// nrqlRow is one NRQL result row keyed by column name.
type nrqlRow map[string]json.RawMessage

type nrqlResult struct {
	Results []nrqlRow `json:"results"`
}

type nrqlBatchData struct {
	Actor map[string]*nrqlResult `json:"actor"`
}

func (d nrqlBatchData) rows(alias string) []nrqlRow {
	if r := d.Actor[alias]; r != nil {
		return r.Results
	}
	return nil
}

// number reads a numeric column. Missing, null and non-finite values yield nil.
func (r nrqlRow) number(key string) *float64 {
	raw, ok := r[key]
	if !ok || isNull(raw) {
		return nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func (r nrqlRow) text(key string) string {
	raw, ok := r[key]
	if !ok || isNull(raw) {
		return ""
	}
	return scalarString(raw)
}

// facet returns the facet values of the row; single-attribute facets arrive as a scalar.
func (r nrqlRow) facet() []string {
	raw, ok := r["facet"]
	if !ok || isNull(raw) {
		return nil
	}
	var many []json.RawMessage
	if err := json.Unmarshal(raw, &many); err == nil {
		out := make([]string, len(many))
		for i, m := range many {
			out[i] = scalarString(m)
		}
		return out
	}
	return []string{scalarString(raw)}
}

// texts reads an array column, rendering non-string members in their JSON form.
func (r nrqlRow) texts(key string) []string {
	raw, ok := r[key]
	if !ok || isNull(raw) {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if isNull(item) {
			continue
		}
		out = append(out, scalarString(item))
	}
	return out
}

// int64s reads an array of numbers, skipping members that are not numeric.
func (r nrqlRow) int64s(key string) []int64 {
	raw, ok := r[key]
	if !ok || isNull(raw) {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]int64, 0, len(items))
	for _, item := range items {
		var v float64
		if err := json.Unmarshal(item, &v); err != nil {
			continue
		}
		out = append(out, int64(v))
	}
	return out
}

func scalarString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if isNull(b) {
		*f = ""
		return nil
	}
	*f = flexString(scalarString(b))
	return nil
}

// flexInt64 accepts a JSON number or numeric string.
type flexInt64 int64

func (f *flexInt64) UnmarshalJSON(b []byte) error {
	if isNull(b) {
		*f = 0
		return nil
	}
	s := scalarString(b)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parsing %q as number: %w", s, err)
	}
	*f = flexInt64(v)
	return nil
}

// first returns the first element of a NerdGraph list field, which the issues API uses for names.
func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func cursorOf(next *string) *string {
	if next == nil || *next == "" {
		return nil
	}
	c := *next
	return &c
}

type accountsData struct {
	Actor struct {
		Accounts []struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		} `json:"accounts"`
	} `json:"actor"`
}

type issueNode struct {
	IssueID       string     `json:"issueId"`
	Title         []string   `json:"title"`
	PolicyName    []string   `json:"policyName"`
	ConditionName []string   `json:"conditionName"`
	ActivatedAt   flexInt64  `json:"activatedAt"`
	ClosedAt      flexInt64  `json:"closedAt"`
	EventType     flexString `json:"eventType"`
}

func (n issueNode) toEntity() entity.Issue {
	return entity.Issue{
		IssueID:       n.IssueID,
		PolicyName:    first(n.PolicyName),
		ConditionName: first(n.ConditionName),
		Title:         first(n.Title),
		ActivatedAt:   int64(n.ActivatedAt),
		ClosedAt:      int64(n.ClosedAt),
		EventType:     string(n.EventType),
	}
}

type issuesData struct {
	Actor struct {
		Account struct {
			AIIssues struct {
				Issues struct {
					Issues     []issueNode `json:"issues"`
					NextCursor *string     `json:"nextCursor"`
				} `json:"issues"`
			} `json:"aiIssues"`
		} `json:"account"`
	} `json:"actor"`
}

type workflowNode struct {
	ID                        flexString                        `json:"id"`
	GUID                      string                            `json:"guid"`
	Name                      string                            `json:"name"`
	WorkflowEnabled           bool                              `json:"workflowEnabled"`
	LastRun                   flexString                        `json:"lastRun"`
	DestinationConfigurations []entity.DestinationConfiguration `json:"destinationConfigurations"`
	IssuesFilter              *entity.IssuesFilter              `json:"issuesFilter"`
}

func (n workflowNode) toEntity() entity.Workflow {
	w := entity.Workflow{
		ID:                        string(n.ID),
		GUID:                      n.GUID,
		Name:                      n.Name,
		Enabled:                   n.WorkflowEnabled,
		LastRun:                   string(n.LastRun),
		DestinationConfigurations: n.DestinationConfigurations,
	}
	if n.IssuesFilter != nil {
		w.IssuesFilter = *n.IssuesFilter
	}
	return w
}

type workflowsData struct {
	Actor struct {
		Account struct {
			AIWorkflows struct {
				Workflows struct {
					Entities   []workflowNode `json:"entities"`
					NextCursor *string        `json:"nextCursor"`
				} `json:"workflows"`
			} `json:"aiWorkflows"`
		} `json:"account"`
	} `json:"actor"`
}

type destinationNode struct {
	ID         flexString `json:"id"`
	GUID       string     `json:"guid"`
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	Active     bool       `json:"active"`
	Status     string     `json:"status"`
	LastSent   flexString `json:"lastSent"`
	Properties []struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	} `json:"properties"`
}

func (n destinationNode) toEntity() entity.Destination {
	d := entity.Destination{
		ID:       string(n.ID),
		GUID:     n.GUID,
		Name:     n.Name,
		Type:     n.Type,
		Active:   n.Active,
		Status:   n.Status,
		LastSent: string(n.LastSent),
	}
	for _, p := range n.Properties {
		d.Properties = append(d.Properties, entity.DestinationProperty{Key: p.Key, Value: p.Value})
	}
	return d
}

type destinationsData struct {
	Actor struct {
		Account struct {
			AINotifications struct {
				Destinations struct {
					Entities   []destinationNode `json:"entities"`
					NextCursor *string           `json:"nextCursor"`
				} `json:"destinations"`
			} `json:"aiNotifications"`
		} `json:"account"`
	} `json:"actor"`
}

type relationshipsData struct {
	Actor struct {
		Entities []struct {
			GUID            string `json:"guid"`
			Name            string `json:"name"`
			Type            string `json:"type"`
			RelatedEntities *struct {
				Results []json.RawMessage `json:"results"`
			} `json:"relatedEntities"`
		} `json:"entities"`
	} `json:"actor"`
}

type entityNode struct {
	GUID          string    `json:"guid"`
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	AccountID     flexInt64 `json:"accountId"`
	AlertSeverity string    `json:"alertSeverity"`
	Permalink     string    `json:"permalink"`
	Tags          []struct {
		Key    string   `json:"key"`
		Values []string `json:"values"`
	} `json:"tags"`
}

func (n entityNode) tags() []entity.Tag {
	tags := make([]entity.Tag, 0, len(n.Tags))
	for _, t := range n.Tags {
		tags = append(tags, entity.Tag{Key: t.Key, Values: t.Values})
	}
	return tags
}

type entitySearchData struct {
	Actor struct {
		EntitySearch struct {
			Results struct {
				Entities   []entityNode `json:"entities"`
				NextCursor *string      `json:"nextCursor"`
			} `json:"results"`
		} `json:"entitySearch"`
	} `json:"actor"`
}

type policiesData struct {
	Actor struct {
		Account struct {
			Alerts struct {
				PoliciesSearch struct {
					Policies []struct {
						ID   flexString `json:"id"`
						Name string     `json:"name"`
					} `json:"policies"`
					NextCursor *string `json:"nextCursor"`
				} `json:"policiesSearch"`
			} `json:"alerts"`
		} `json:"account"`
	} `json:"actor"`
}

type conditionNode struct {
	ID   flexString `json:"id"`
	Name string     `json:"name"`
	NRQL *struct {
		Query string `json:"query"`
	} `json:"nrql"`
	Signal *struct {
		SlideBy *float64 `json:"slideBy"`
	} `json:"signal"`
}

func (n conditionNode) toEntity() entity.ConditionDetail {
	d := entity.ConditionDetail{ID: string(n.ID), Name: n.Name}
	if n.NRQL != nil {
		q := n.NRQL.Query
		d.NRQL = &q
	}
	d.HasSlidingWindow = n.Signal != nil && n.Signal.SlideBy != nil && *n.Signal.SlideBy > 0
	return d
}

type conditionDetailsData struct {
	Actor struct {
		Account struct {
			Alerts map[string]*conditionNode `json:"alerts"`
		} `json:"account"`
	} `json:"actor"`
}
