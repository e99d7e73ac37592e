package nerdgraph

import (
	"fmt"
	"strings"
)

const accountsDocument = `query {
  actor {
    accounts {
      id
      name
    }
  }
}`

const issuesDocument = `query($accountId: Int!, $cursor: String, $startTime: EpochMilliseconds, $endTime: EpochMilliseconds) {
  actor {
    account(id: $accountId) {
      aiIssues {
        issues(cursor: $cursor, filter: {states: [ACTIVATED]}, timeWindow: {startTime: $startTime, endTime: $endTime}) {
          issues {
            issueId
            title
            policyName
            conditionName
            activatedAt
            closedAt
            eventType
          }
          nextCursor
        }
      }
    }
  }
}`

const workflowsDocument = `query($accountId: Int!, $cursor: String) {
  actor {
    account(id: $accountId) {
      aiWorkflows {
        workflows(cursor: $cursor) {
          entities {
            id
            guid
            name
            workflowEnabled
            lastRun
            destinationConfigurations {
              channelId
              name
              type
            }
            issuesFilter {
              name
              predicates {
                attribute
                operator
                values
              }
            }
          }
          nextCursor
        }
      }
    }
  }
}`

const destinationsDocument = `query($accountId: Int!, $cursor: String) {
  actor {
    account(id: $accountId) {
      aiNotifications {
        destinations(cursor: $cursor) {
          entities {
            id
            guid
            name
            type
            active
            status
            lastSent
            properties {
              key
              value
            }
          }
          nextCursor
        }
      }
    }
  }
}`

const destinationRelationshipsDocument = `query($guids: [EntityGuid]!) {
  actor {
    entities(guids: $guids) {
      guid
      name
      type
      relatedEntities {
        results {
          target {
            entity {
              guid
              name
              type
            }
          }
        }
      }
    }
  }
}`

const entitySearchDocument = `query($query: String, $cursor: String) {
  actor {
    entitySearch(query: $query) {
      results(cursor: $cursor) {
        entities {
          guid
          name
          type
          accountId
          ... on AlertableEntityOutline {
            alertSeverity
          }
        }
        nextCursor
      }
    }
  }
}`

const policiesDocument = `query($accountId: Int!, $cursor: String) {
  actor {
    account(id: $accountId) {
      alerts {
        policiesSearch(cursor: $cursor) {
          policies {
            id
            name
          }
          nextCursor
        }
      }
    }
  }
}`

const conditionSearchDocument = `query($query: String, $cursor: String) {
  actor {
    entitySearch(query: $query) {
      results(cursor: $cursor) {
        entities {
          guid
          name
          permalink
          type
          tags {
            key
            values
          }
        }
        nextCursor
      }
    }
  }
}`

// nrqlAlias is one NRQL sub-query of a batched request.
type nrqlAlias struct {
	Alias string
	Query string
}

// nrqlBatchDocument builds a single request running every alias against the account.
// Queries travel as variables so their text never needs GraphQL escaping.
func nrqlBatchDocument(accountID int64, timeoutSeconds int, aliases []nrqlAlias) (string, map[string]any) {
	var params, fields strings.Builder
	vars := map[string]any{"accountIds": []int64{accountID}}

	params.WriteString("$accountIds: [Int!]!")
	for i, a := range aliases {
		name := fmt.Sprintf("q%d", i)
		vars[name] = a.Query
		fmt.Fprintf(&params, ", $%s: Nrql!", name)
		fmt.Fprintf(&fields, "    %s: nrql(accounts: $accountIds, query: $%s, timeout: %d) {\n      results\n    }\n",
			a.Alias, name, timeoutSeconds)
	}

	doc := fmt.Sprintf("query(%s) {\n  actor {\n%s  }\n}", params.String(), fields.String())
	return doc, vars
}

// conditionDetailsDocument fetches several NRQL conditions of one account under aliases c0..cN.
func conditionDetailsDocument(accountID int64, ids []string) (string, map[string]any) {
	var params, fields strings.Builder
	vars := map[string]any{"accountId": accountID}

	params.WriteString("$accountId: Int!")
	for i, id := range ids {
		name := fmt.Sprintf("id%d", i)
		vars[name] = id
		fmt.Fprintf(&params, ", $%s: ID!", name)
		fmt.Fprintf(&fields, "        c%d: nrqlCondition(id: $%s) {\n          id\n          name\n          nrql {\n            query\n          }\n          signal {\n            slideBy\n          }\n        }\n", i, name)
	}

	doc := fmt.Sprintf("query(%s) {\n  actor {\n    account(id: $accountId) {\n      alerts {\n%s      }\n    }\n  }\n}",
		params.String(), fields.String())
	return doc, vars
}
