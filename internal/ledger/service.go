package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bildin8/postergram-juice-sub000/pkg/db/models"
)

// Service exposes the read surface of the unit/cost ledger.
type Service interface {
	CostSnapshot(ctx context.Context, ingredientIDs []string) (map[string]decimal.Decimal, error)
	OnHand(ctx context.Context) (map[string]models.Ingredient, error)
}

type service struct {
	repo Repository
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo}, nil
}

// CostSnapshot returns the current weighted-average cost per requested
// ingredient. Unknown ingredients are simply absent from the map.
func (s *service) CostSnapshot(ctx context.Context, ingredientIDs []string) (map[string]decimal.Decimal, error) {
	rows, err := s.repo.GetByIDs(ctx, ingredientIDs)
	if err != nil {
		return nil, err
	}
	costs := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		costs[row.ID] = row.WeightedCost
	}
	return costs, nil
}

// OnHand returns every ledger row keyed by ingredient id.
func (s *service) OnHand(ctx context.Context) (map[string]models.Ingredient, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Ingredient, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	return byID, nil
}
