package insights

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/qj0r9j0vc2/alert-insights/internal/domain/entity"
)

var errUpstream = errors.New("upstream unavailable")

var (
	testNow     = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	testAccount = entity.Account{ID: 42, Name: "Production"}
	testHour    = entity.TimeRange{Duration: time.Hour}
)

func testDeps() Deps {
	return Deps{Now: func() time.Time { return testNow }}
}

// fakeSource serves canned pages and records the calls it receives.
type fakeSource struct {
	mu sync.Mutex

	accounts    []entity.Account
	accountsErr error
	counts      map[int64]entity.AlertCounts
	countsErr   map[int64]error

	incidentRows entity.IncidentDurationRows
	incidentErr  error
	incidentArgs []string

	issuePages      []entity.Page[entity.Issue]
	issuesErr       error
	issueWindow     [2]time.Time
	notified        map[string][]string
	notifiedErr     map[string]error
	notifiedClauses []string

	workflowPages    []entity.Page[entity.Workflow]
	workflowsErr     error
	destinationPages []entity.Page[entity.Destination]
	relationships    map[string]entity.DestinationRelationship
	relationshipErr  error
	relationshipReqs [][]string

	entityPages   []entity.Page[entity.MonitoredEntity]
	entitiesErr   error
	excludedTypes []string

	policyPages    []entity.Page[entity.Policy]
	conditionPages []entity.Page[entity.PolicyCondition]
	conditionsErr  error

	timestamps    entity.ConditionTimestamps
	timestampsErr error

	usage        []entity.ConditionUsage
	totalCCU     float64
	usageErr     error
	details      map[string]entity.ConditionDetail
	detailsErr   error
	detailChunks [][]string
}

// page serves pages[i] for cursor "i", the first page for a nil cursor.
func page[T any](pages []entity.Page[T], cursor *string) (entity.Page[T], error) {
	if len(pages) == 0 {
		return entity.Page[T]{}, nil
	}
	i := 0
	if cursor != nil {
		n, err := strconv.Atoi(*cursor)
		if err != nil || n >= len(pages) {
			return entity.Page[T]{}, fmt.Errorf("bad cursor %q", *cursor)
		}
		i = n
	}
	return pages[i], nil
}

// pages splits items into pages of size n linked by index cursors.
func pages[T any](n int, items ...T) []entity.Page[T] {
	var out []entity.Page[T]
	for start := 0; start < len(items); start += n {
		end := min(start+n, len(items))
		p := entity.Page[T]{Items: items[start:end]}
		if end < len(items) {
			next := strconv.Itoa(len(out) + 1)
			p.NextCursor = &next
		}
		out = append(out, p)
	}
	return out
}

func (f *fakeSource) Accounts(context.Context) ([]entity.Account, error) {
	return f.accounts, f.accountsErr
}

func (f *fakeSource) AlertCounts(_ context.Context, account entity.Account, _ string) (entity.AlertCounts, error) {
	if err := f.countsErr[account.ID]; err != nil {
		return entity.AlertCounts{}, err
	}
	c := f.counts[account.ID]
	c.AccountID, c.AccountName = account.ID, account.Name
	return c, nil
}

func (f *fakeSource) IncidentDurations(_ context.Context, _ entity.Account, timeClause string, filters []entity.Filter) (entity.IncidentDurationRows, error) {
	f.mu.Lock()
	f.incidentArgs = append(f.incidentArgs, timeClause)
	for _, flt := range filters {
		f.incidentArgs = append(f.incidentArgs, flt.Attribute+"="+flt.Value)
	}
	f.mu.Unlock()
	return f.incidentRows, f.incidentErr
}

func (f *fakeSource) ExploreQuery(longLived bool, policy, condition string, _ []entity.Filter, _ string) string {
	return fmt.Sprintf("explore long=%t %s/%s", longLived, policy, condition)
}

func (f *fakeSource) IssuesPage(_ context.Context, _ entity.Account, start, end time.Time, cursor *string) (entity.Page[entity.Issue], error) {
	f.mu.Lock()
	f.issueWindow = [2]time.Time{start, end}
	f.mu.Unlock()
	if f.issuesErr != nil {
		return entity.Page[entity.Issue]{}, f.issuesErr
	}
	return page(f.issuePages, cursor)
}

func (f *fakeSource) NotifiedIssueIDs(_ context.Context, _ entity.Account, timeClause string) ([]string, error) {
	f.mu.Lock()
	f.notifiedClauses = append(f.notifiedClauses, timeClause)
	f.mu.Unlock()
	if err := f.notifiedErr[timeClause]; err != nil {
		return nil, err
	}
	return f.notified[timeClause], nil
}

func (f *fakeSource) WorkflowsPage(_ context.Context, _ entity.Account, cursor *string) (entity.Page[entity.Workflow], error) {
	if f.workflowsErr != nil {
		return entity.Page[entity.Workflow]{}, f.workflowsErr
	}
	return page(f.workflowPages, cursor)
}

func (f *fakeSource) DestinationsPage(_ context.Context, _ entity.Account, cursor *string) (entity.Page[entity.Destination], error) {
	return page(f.destinationPages, cursor)
}

func (f *fakeSource) DestinationRelationships(_ context.Context, guids []string) ([]entity.DestinationRelationship, error) {
	f.mu.Lock()
	f.relationshipReqs = append(f.relationshipReqs, append([]string(nil), guids...))
	f.mu.Unlock()
	if f.relationshipErr != nil {
		return nil, f.relationshipErr
	}
	out := make([]entity.DestinationRelationship, 0, len(guids))
	for _, g := range guids {
		if rel, ok := f.relationships[g]; ok {
			out = append(out, rel)
		}
	}
	return out, nil
}

func (f *fakeSource) EntitiesPage(_ context.Context, _ entity.Account, excludedTypes []string, cursor *string) (entity.Page[entity.MonitoredEntity], error) {
	f.mu.Lock()
	f.excludedTypes = excludedTypes
	f.mu.Unlock()
	if f.entitiesErr != nil {
		return entity.Page[entity.MonitoredEntity]{}, f.entitiesErr
	}
	return page(f.entityPages, cursor)
}

func (f *fakeSource) PoliciesPage(_ context.Context, _ entity.Account, cursor *string) (entity.Page[entity.Policy], error) {
	return page(f.policyPages, cursor)
}

func (f *fakeSource) ConditionsPage(_ context.Context, _ entity.Account, _ string, cursor *string) (entity.Page[entity.PolicyCondition], error) {
	if f.conditionsErr != nil {
		return entity.Page[entity.PolicyCondition]{}, f.conditionsErr
	}
	return page(f.conditionPages, cursor)
}

func (f *fakeSource) ConditionTimestamps(context.Context, entity.Account, string, string) (entity.ConditionTimestamps, error) {
	return f.timestamps, f.timestampsErr
}

func (f *fakeSource) ConditionUsage(context.Context, entity.Account, string) ([]entity.ConditionUsage, float64, error) {
	return f.usage, f.totalCCU, f.usageErr
}

func (f *fakeSource) ConditionDetails(_ context.Context, _ entity.Account, ids []string) ([]entity.ConditionDetail, error) {
	f.mu.Lock()
	f.detailChunks = append(f.detailChunks, append([]string(nil), ids...))
	f.mu.Unlock()
	if f.detailsErr != nil {
		return nil, f.detailsErr
	}
	out := make([]entity.ConditionDetail, 0, len(ids))
	for _, id := range ids {
		if d, ok := f.details[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

// recordingViews captures view recordings.
type recordingViews struct {
	mu    sync.Mutex
	views []string
}

func (r *recordingViews) RecordView(_ context.Context, view string, _ time.Duration, degraded bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, fmt.Sprintf("%s:%t", view, degraded))
}

func (r *recordingViews) RecordDigestSent(_ context.Context, notifier string, success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, fmt.Sprintf("digest:%s:%t", notifier, success))
}

type fakeNotifier struct {
	posted []entity.Scorecard
	err    error
}

func (n *fakeNotifier) NotifyScorecard(_ context.Context, card entity.Scorecard) (string, error) {
	if n.err != nil {
		return "", n.err
	}
	n.posted = append(n.posted, card)
	return "C1:1700000000.000100", nil
}

func (n *fakeNotifier) Name() string { return "fake" }
