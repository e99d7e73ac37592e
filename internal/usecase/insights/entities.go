package insights

import (
	"context"
	"fmt"
	"time"

	"github.com/qj0r9j0vc2/alert-insights/internal/domain/entity"
	"github.com/qj0r9j0vc2/alert-insights/internal/usecase/pagination"
)

// EntitiesResult reports reporting entities that no alert condition covers.
type EntitiesResult struct {
	Account entity.Account
	entity.EntityCoverage
}

// EntitiesUseCase computes alert coverage of an account's entities.
type EntitiesUseCase struct {
	source EntitySource
	deps   Deps
}

// NewEntitiesUseCase creates a new entities use case.
func NewEntitiesUseCase(source EntitySource, deps Deps) *EntitiesUseCase {
	return &EntitiesUseCase{source: source, deps: deps.withDefaults()}
}

// Execute walks every entity page and computes coverage.
func (uc *EntitiesUseCase) Execute(ctx context.Context, account entity.Account) (*EntitiesResult, error) {
	began := time.Now()
	if account.ID <= 0 {
		return nil, entity.ErrInvalidAccount
	}

	excluded := uc.deps.Engine.ExcludedEntityTypes()
	entities, err := pagination.FetchAll(ctx, uc.deps.Walker, "entities",
		func(ctx context.Context, cursor *string) (entity.Page[entity.MonitoredEntity], error) {
			return uc.source.EntitiesPage(ctx, account, excluded, cursor)
		})
	if err != nil {
		uc.deps.Logger.Debug("fetching entities failed", "account", account.String(), "error", err)
		uc.deps.observe(ctx, "entities", began, true)
		return nil, fmt.Errorf("failed to fetch entities: %w", err)
	}

	uc.deps.observe(ctx, "entities", began, false)
	return &EntitiesResult{
		Account:        account,
		EntityCoverage: uc.deps.Engine.EntityCoverage(entities),
	}, nil
}
