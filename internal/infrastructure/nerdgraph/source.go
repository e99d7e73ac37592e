package nerdgraph

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/qj0r9j0vc2/alert-insights/internal/domain/entity"
	domainerrors "github.com/qj0r9j0vc2/alert-insights/internal/domain/errors"
)

// Doer executes one GraphQL request. *Client implements it.
type Doer interface {
	Do(ctx context.Context, req Request, out any) error
}

// Source fetches the raw inputs of every insight view.
type Source struct {
	client Doer
	opts   QueryOptions
}

// NewSource creates a source issuing requests through client.
func NewSource(client Doer, opts QueryOptions) *Source {
	return &Source{client: client, opts: opts.withDefaults()}
}

// Options returns the effective query tunables.
func (s *Source) Options() QueryOptions { return s.opts }

// Accounts lists the accounts the API key can read.
func (s *Source) Accounts(ctx context.Context) ([]entity.Account, error) {
	var data accountsData
	if err := s.fetch(ctx, Request{Operation: "accounts", Query: accountsDocument}, &data); err != nil {
		return nil, err
	}
	accounts := make([]entity.Account, 0, len(data.Actor.Accounts))
	for _, a := range data.Actor.Accounts {
		accounts = append(accounts, entity.Account{ID: a.ID, Name: a.Name})
	}
	return accounts, nil
}

// fetch runs a single round trip that is not part of a paginated walk.
// Failures come back as FetchFailedError, as the pagination walker reports page failures.
func (s *Source) fetch(ctx context.Context, req Request, out any) error {
	if err := s.client.Do(ctx, req, out); err != nil {
		return domainerrors.NewFetchFailedError(req.Operation, nil, err)
	}
	return nil
}

func (s *Source) nrqlBatch(ctx context.Context, operation string, accountID int64, timeout int, aliases []nrqlAlias) (nrqlBatchData, error) {
	doc, vars := nrqlBatchDocument(accountID, timeout, aliases)
	var data nrqlBatchData
	err := s.fetch(ctx, Request{Operation: operation, Query: doc, Variables: vars}, &data)
	return data, err
}

// AlertCounts fetches the notification and issue volume of account in one round trip.
func (s *Source) AlertCounts(ctx context.Context, account entity.Account, timeClause string) (entity.AlertCounts, error) {
	data, err := s.nrqlBatch(ctx, "alert_counts", account.ID, s.opts.CountTimeoutSeconds, []nrqlAlias{
		{Alias: "notificationCount", Query: s.opts.NotificationCountQuery(timeClause)},
		{Alias: "issueCount", Query: s.opts.IssueCountQuery(timeClause)},
	})
	if err != nil {
		return entity.AlertCounts{}, err
	}

	counts := entity.AlertCounts{AccountID: account.ID, AccountName: account.Name}
	if rows := data.rows("notificationCount"); len(rows) > 0 {
		if v := rows[0].number("count"); v != nil {
			counts.NotificationCount = int64(*v)
		}
	}
	if rows := data.rows("issueCount"); len(rows) > 0 {
		if v := rows[0].number("issueCount"); v != nil {
			counts.IssueCount = int64(*v)
		}
	}
	return counts, nil
}

// IncidentDurations fetches the short and long incident summaries and drilldowns in one round trip.
func (s *Source) IncidentDurations(ctx context.Context, account entity.Account, timeClause string, filters []entity.Filter) (entity.IncidentDurationRows, error) {
	fc := FilterClause(filters)
	data, err := s.nrqlBatch(ctx, "incident_durations", account.ID, s.opts.NRQLTimeoutSeconds, []nrqlAlias{
		{Alias: "under5Summary", Query: s.opts.IncidentSummaryQuery(IncidentShort, fc, timeClause)},
		{Alias: "under5Drilldown", Query: s.opts.IncidentDrilldownQuery(IncidentShort, fc, timeClause)},
		{Alias: "over1Summary", Query: s.opts.IncidentSummaryQuery(IncidentLong, fc, timeClause)},
		{Alias: "over1Drilldown", Query: s.opts.IncidentDrilldownQuery(IncidentLong, fc, timeClause)},
	})
	if err != nil {
		return entity.IncidentDurationRows{}, err
	}

	return entity.IncidentDurationRows{
		ShortSummary: summaryValue(data.rows("under5Summary"), shortPercentColumn),
		ShortFacets:  incidentFacets(data.rows("under5Drilldown"), shortPercentColumn),
		LongSummary:  summaryValue(data.rows("over1Summary"), longPercentColumn),
		LongFacets:   incidentFacets(data.rows("over1Drilldown"), longPercentColumn),
	}, nil
}

// ExploreQuery renders the timeseries query behind one incident facet row.
func (s *Source) ExploreQuery(longLived bool, policy, condition string, filters []entity.Filter, timeClause string) string {
	kind := IncidentShort
	if longLived {
		kind = IncidentLong
	}
	return s.opts.IncidentExploreQuery(kind, policy, condition, FilterClause(filters), timeClause)
}

func summaryValue(rows []nrqlRow, column string) *float64 {
	if len(rows) == 0 {
		return nil
	}
	return rows[0].number(column)
}

func incidentFacets(rows []nrqlRow, column string) []entity.IncidentFacet {
	facets := make([]entity.IncidentFacet, 0, len(rows))
	for _, row := range rows {
		f := entity.IncidentFacet{
			PolicyName:    row.text("policyName"),
			ConditionName: row.text("conditionName"),
		}
		if names := row.facet(); len(names) == 2 {
			f.PolicyName, f.ConditionName = names[0], names[1]
		}
		if v := row.number(column); v != nil {
			f.Percent = *v
		}
		facets = append(facets, f)
	}
	return facets
}

// IssuesPage fetches one page of issues activated inside [start, end].
func (s *Source) IssuesPage(ctx context.Context, account entity.Account, start, end time.Time, cursor *string) (entity.Page[entity.Issue], error) {
	var data issuesData
	err := s.client.Do(ctx, Request{
		Operation: "issues",
		Query:     issuesDocument,
		Variables: map[string]any{
			"accountId": account.ID,
			"cursor":    cursor,
			"startTime": start.UnixMilli(),
			"endTime":   end.UnixMilli(),
		},
	}, &data)
	if err != nil {
		return entity.Page[entity.Issue]{}, err
	}

	page := data.Actor.Account.AIIssues.Issues
	issues := make([]entity.Issue, 0, len(page.Issues))
	for _, n := range page.Issues {
		issues = append(issues, n.toEntity())
	}
	return entity.Page[entity.Issue]{Items: issues, NextCursor: cursorOf(page.NextCursor)}, nil
}

// NotifiedIssueIDs lists the issue ids notified within one time clause.
func (s *Source) NotifiedIssueIDs(ctx context.Context, account entity.Account, timeClause string) ([]string, error) {
	data, err := s.nrqlBatch(ctx, "notified_issues", account.ID, s.opts.NRQLTimeoutSeconds, []nrqlAlias{
		{Alias: "notifications", Query: s.opts.NotifiedIssuesQuery(timeClause)},
	})
	if err != nil {
		return nil, err
	}
	rows := data.rows("notifications")
	if len(rows) == 0 {
		return []string{}, nil
	}
	return rows[0].texts("notifications"), nil
}

// WorkflowsPage fetches one page of workflows, bypassing caches.
func (s *Source) WorkflowsPage(ctx context.Context, account entity.Account, cursor *string) (entity.Page[entity.Workflow], error) {
	var data workflowsData
	err := s.client.Do(ctx, Request{
		Operation:   "workflows",
		Query:       workflowsDocument,
		Variables:   map[string]any{"accountId": account.ID, "cursor": cursor},
		CachePolicy: CachePolicyNoCache,
	}, &data)
	if err != nil {
		return entity.Page[entity.Workflow]{}, err
	}

	page := data.Actor.Account.AIWorkflows.Workflows
	workflows := make([]entity.Workflow, 0, len(page.Entities))
	for _, n := range page.Entities {
		workflows = append(workflows, n.toEntity())
	}
	return entity.Page[entity.Workflow]{Items: workflows, NextCursor: cursorOf(page.NextCursor)}, nil
}

// DestinationsPage fetches one page of notification destinations, bypassing caches.
func (s *Source) DestinationsPage(ctx context.Context, account entity.Account, cursor *string) (entity.Page[entity.Destination], error) {
	var data destinationsData
	err := s.client.Do(ctx, Request{
		Operation:   "destinations",
		Query:       destinationsDocument,
		Variables:   map[string]any{"accountId": account.ID, "cursor": cursor},
		CachePolicy: CachePolicyNoCache,
	}, &data)
	if err != nil {
		return entity.Page[entity.Destination]{}, err
	}

	page := data.Actor.Account.AINotifications.Destinations
	destinations := make([]entity.Destination, 0, len(page.Entities))
	for _, n := range page.Entities {
		destinations = append(destinations, n.toEntity())
	}
	return entity.Page[entity.Destination]{Items: destinations, NextCursor: cursorOf(page.NextCursor)}, nil
}

// DestinationRelationships resolves how many entities reference each destination guid.
// Callers keep guids within the per-request limit of the entities API.
func (s *Source) DestinationRelationships(ctx context.Context, guids []string) ([]entity.DestinationRelationship, error) {
	var data relationshipsData
	err := s.fetch(ctx, Request{
		Operation: "destination_relationships",
		Query:     destinationRelationshipsDocument,
		Variables: map[string]any{"guids": guids},
	}, &data)
	if err != nil {
		return nil, err
	}

	rels := make([]entity.DestinationRelationship, 0, len(data.Actor.Entities))
	for _, e := range data.Actor.Entities {
		rel := entity.DestinationRelationship{GUID: e.GUID, Name: e.Name, Type: e.Type}
		if e.RelatedEntities != nil {
			rel.RelatedEntityCount = len(e.RelatedEntities.Results)
		}
		rels = append(rels, rel)
	}
	return rels, nil
}

// EntitiesPage fetches one page of reporting entities outside excludedTypes.
func (s *Source) EntitiesPage(ctx context.Context, account entity.Account, excludedTypes []string, cursor *string) (entity.Page[entity.MonitoredEntity], error) {
	var data entitySearchData
	err := s.client.Do(ctx, Request{
		Operation: "entities",
		Query:     entitySearchDocument,
		Variables: map[string]any{"query": EntitySearchQuery(account.ID, excludedTypes), "cursor": cursor},
	}, &data)
	if err != nil {
		return entity.Page[entity.MonitoredEntity]{}, err
	}

	page := data.Actor.EntitySearch.Results
	entities := make([]entity.MonitoredEntity, 0, len(page.Entities))
	for _, n := range page.Entities {
		entities = append(entities, entity.MonitoredEntity{
			GUID:          n.GUID,
			Name:          n.Name,
			Type:          n.Type,
			AlertSeverity: n.AlertSeverity,
			AccountID:     int64(n.AccountID),
		})
	}
	return entity.Page[entity.MonitoredEntity]{Items: entities, NextCursor: cursorOf(page.NextCursor)}, nil
}

// PoliciesPage fetches one page of alert policies.
func (s *Source) PoliciesPage(ctx context.Context, account entity.Account, cursor *string) (entity.Page[entity.Policy], error) {
	var data policiesData
	err := s.client.Do(ctx, Request{
		Operation: "policies",
		Query:     policiesDocument,
		Variables: map[string]any{"accountId": account.ID, "cursor": cursor},
	}, &data)
	if err != nil {
		return entity.Page[entity.Policy]{}, err
	}

	page := data.Actor.Account.Alerts.PoliciesSearch
	policies := make([]entity.Policy, 0, len(page.Policies))
	for _, p := range page.Policies {
		policies = append(policies, entity.Policy{ID: string(p.ID), Name: p.Name})
	}
	return entity.Page[entity.Policy]{Items: policies, NextCursor: cursorOf(page.NextCursor)}, nil
}

// ConditionsPage fetches one page of the conditions attached to a policy.
func (s *Source) ConditionsPage(ctx context.Context, account entity.Account, policyID string, cursor *string) (entity.Page[entity.PolicyCondition], error) {
	var data entitySearchData
	err := s.client.Do(ctx, Request{
		Operation: "policy_conditions",
		Query:     conditionSearchDocument,
		Variables: map[string]any{"query": ConditionSearchQuery(account.ID, policyID), "cursor": cursor},
	}, &data)
	if err != nil {
		return entity.Page[entity.PolicyCondition]{}, err
	}

	page := data.Actor.EntitySearch.Results
	conditions := make([]entity.PolicyCondition, 0, len(page.Entities))
	for _, n := range page.Entities {
		tags := n.tags()
		conditions = append(conditions, entity.PolicyCondition{
			GUID:      n.GUID,
			ID:        entity.PluckTag(tags, "id"),
			Name:      n.Name,
			SubType:   entity.PluckTag(tags, "type"),
			Permalink: n.Permalink,
		})
	}
	return entity.Page[entity.PolicyCondition]{Items: conditions, NextCursor: cursorOf(page.NextCursor)}, nil
}

// ConditionTimestamps fetches the critical, warning and muted open times of a condition.
func (s *Source) ConditionTimestamps(ctx context.Context, account entity.Account, conditionID, timeClause string) (entity.ConditionTimestamps, error) {
	if _, err := strconv.ParseInt(conditionID, 10, 64); err != nil {
		return entity.ConditionTimestamps{}, fmt.Errorf("condition id %q: %w", conditionID, entity.ErrInvalidCondition)
	}

	data, err := s.nrqlBatch(ctx, "condition_timeline", account.ID, s.opts.NRQLTimeoutSeconds, []nrqlAlias{
		{Alias: "criticalTimestamps", Query: s.opts.TimelineQuery(PriorityCritical, conditionID, timeClause)},
		{Alias: "warningTimestamps", Query: s.opts.TimelineQuery(PriorityWarning, conditionID, timeClause)},
		{Alias: "mutedTimestamps", Query: s.opts.TimelineQuery(PriorityMuted, conditionID, timeClause)},
	})
	if err != nil {
		return entity.ConditionTimestamps{}, err
	}

	timestamps := func(alias, column string) []int64 {
		rows := data.rows(alias)
		if len(rows) == 0 {
			return []int64{}
		}
		return rows[0].int64s(column)
	}
	return entity.ConditionTimestamps{
		Critical: timestamps("criticalTimestamps", PriorityCritical+"_times"),
		Warning:  timestamps("warningTimestamps", PriorityWarning+"_times"),
		Muted:    timestamps("mutedTimestamps", PriorityMuted+"_times"),
	}, nil
}

// ConditionUsage ranks conditions by compute usage and returns the account total alongside.
func (s *Source) ConditionUsage(ctx context.Context, account entity.Account, timeClause string) ([]entity.ConditionUsage, float64, error) {
	data, err := s.nrqlBatch(ctx, "condition_usage", account.ID, s.opts.NRQLTimeoutSeconds, []nrqlAlias{
		{Alias: "byCondition", Query: s.opts.CcuByConditionQuery(timeClause)},
		{Alias: "total", Query: s.opts.CcuTotalQuery(timeClause)},
	})
	if err != nil {
		return nil, 0, err
	}

	rows := data.rows("byCondition")
	usage := make([]entity.ConditionUsage, 0, len(rows))
	for _, row := range rows {
		id := row.text("dimension_conditionId")
		if names := row.facet(); len(names) > 0 {
			id = names[0]
		}
		if id == "" {
			continue
		}
		u := entity.ConditionUsage{ConditionID: id}
		if v := row.number("ccu"); v != nil {
			u.CCU = *v
		}
		usage = append(usage, u)
	}

	var total float64
	if v := summaryValue(data.rows("total"), "ccu"); v != nil {
		total = *v
	}
	return usage, total, nil
}

// ConditionDetails fetches query text and signal settings for several conditions in one round trip.
// Conditions the API does not return are left out.
func (s *Source) ConditionDetails(ctx context.Context, account entity.Account, ids []string) ([]entity.ConditionDetail, error) {
	if len(ids) == 0 {
		return []entity.ConditionDetail{}, nil
	}

	doc, vars := conditionDetailsDocument(account.ID, ids)
	var data conditionDetailsData
	if err := s.fetch(ctx, Request{Operation: "condition_details", Query: doc, Variables: vars}, &data); err != nil {
		return nil, err
	}

	details := make([]entity.ConditionDetail, 0, len(ids))
	for i, id := range ids {
		node := data.Actor.Account.Alerts[fmt.Sprintf("c%d", i)]
		if node == nil {
			continue
		}
		d := node.toEntity()
		if d.ID == "" {
			d.ID = id
		}
		details = append(details, d)
	}
	return details, nil
}
