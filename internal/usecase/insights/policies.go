package insights

import (
	"context"
	"fmt"
	"strings"

	"github.com/qj0r9j0vc2/alert-insights/internal/domain/entity"
	"github.com/qj0r9j0vc2/alert-insights/internal/usecase/pagination"
)

// PoliciesUseCase lists alert policies and the conditions under them.
type PoliciesUseCase struct {
	source ConditionSource
	deps   Deps
}

// NewPoliciesUseCase creates a new policies use case.
func NewPoliciesUseCase(source ConditionSource, deps Deps) *PoliciesUseCase {
	return &PoliciesUseCase{source: source, deps: deps.withDefaults()}
}

// Policies returns every policy of account in API order.
func (uc *PoliciesUseCase) Policies(ctx context.Context, account entity.Account) ([]entity.Policy, error) {
	if account.ID <= 0 {
		return nil, entity.ErrInvalidAccount
	}

	policies, err := pagination.FetchAll(ctx, uc.deps.Walker, "policies",
		func(ctx context.Context, cursor *string) (entity.Page[entity.Policy], error) {
			return uc.source.PoliciesPage(ctx, account, cursor)
		})
	if err != nil {
		uc.deps.Logger.Debug("fetching policies failed", "account", account.String(), "error", err)
		return nil, fmt.Errorf("failed to fetch policies: %w", err)
	}
	return policies, nil
}

// Conditions returns every condition of one policy in API order.
func (uc *PoliciesUseCase) Conditions(ctx context.Context, account entity.Account, policyID string) ([]entity.PolicyCondition, error) {
	if account.ID <= 0 {
		return nil, entity.ErrInvalidAccount
	}
	policyID = strings.TrimSpace(policyID)
	if policyID == "" {
		return nil, entity.ErrInvalidPolicy
	}

	conditions, err := pagination.FetchAll(ctx, uc.deps.Walker, "policy_conditions",
		func(ctx context.Context, cursor *string) (entity.Page[entity.PolicyCondition], error) {
			return uc.source.ConditionsPage(ctx, account, policyID, cursor)
		})
	if err != nil {
		uc.deps.Logger.Debug("fetching policy conditions failed", "account", account.String(), "policy", policyID, "error", err)
		return nil, fmt.Errorf("failed to fetch conditions of policy %s: %w", policyID, err)
	}
	return conditions, nil
}
