package receipts

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bildin8/postergram-juice-sub000/pkg/db/models"
	"github.com/bildin8/postergram-juice-sub000/pkg/errors"
	"github.com/bildin8/postergram-juice-sub000/pkg/logger"
)

// CreateItemParams is one delivered line on an incoming receipt.
type CreateItemParams struct {
	ItemName     string          `json:"itemName" validate:"required"`
	IngredientID string          `json:"ingredientId"`
	ReceivedQty  decimal.Decimal `json:"receivedQty" validate:"required"`
	UnitCost     decimal.Decimal `json:"unitCost"`
}

// CreateParams describes one supplier delivery.
type CreateParams struct {
	Supplier   string             `json:"supplier" validate:"required"`
	ReceivedAt time.Time          `json:"receivedAt" validate:"required"`
	Items      []CreateItemParams `json:"items" validate:"required,min=1,dive"`
}

// Service stores deliveries and answers the received-per-item question
// reconciliation asks.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*models.GoodsReceipt, error)
	ListByDay(ctx context.Context, day time.Time) ([]models.GoodsReceipt, error)
	ReceivedByItem(ctx context.Context, day time.Time) (map[string]decimal.Decimal, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, errors.New(errors.CodeInternal, "receipts service requires a repository")
	}
	if logg == nil {
		return nil, errors.New(errors.CodeInternal, "receipts service requires a logger")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, params CreateParams) (*models.GoodsReceipt, error) {
	if strings.TrimSpace(params.Supplier) == "" {
		return nil, errors.New(errors.CodeValidation, "supplier is required")
	}
	if params.ReceivedAt.IsZero() {
		return nil, errors.New(errors.CodeValidation, "receivedAt is required")
	}
	if len(params.Items) == 0 {
		return nil, errors.New(errors.CodeValidation, "a receipt needs at least one item")
	}

	receipt := &models.GoodsReceipt{
		Supplier:   strings.TrimSpace(params.Supplier),
		ReceivedAt: params.ReceivedAt,
		Items:      make([]models.GoodsReceiptItem, 0, len(params.Items)),
	}
	for _, item := range params.Items {
		name := strings.TrimSpace(item.ItemName)
		if name == "" {
			return nil, errors.New(errors.CodeValidation, "item name is required")
		}
		if !item.ReceivedQty.IsPositive() {
			return nil, errors.New(errors.CodeValidation, "received quantity must be positive").
				WithDetails(map[string]any{"itemName": name})
		}
		receipt.Items = append(receipt.Items, models.GoodsReceiptItem{
			ItemName:     name,
			IngredientID: item.IngredientID,
			ReceivedQty:  item.ReceivedQty,
			UnitCost:     item.UnitCost,
		})
	}

	if err := s.repo.Create(ctx, receipt); err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"receipt_id": receipt.ID,
		"supplier":   receipt.Supplier,
		"items":      len(receipt.Items),
	}), "goods receipt created")
	return receipt, nil
}

func (s *service) ListByDay(ctx context.Context, day time.Time) ([]models.GoodsReceipt, error) {
	return s.repo.ListByDay(ctx, day)
}

// ReceivedByItem sums the day's deliveries per item name. Names are trimmed,
// not case-folded: session entries and receipt lines are expected to use the
// item catalog's exact names.
func (s *service) ReceivedByItem(ctx context.Context, day time.Time) (map[string]decimal.Decimal, error) {
	rows, err := s.repo.ListByDay(ctx, day)
	if err != nil {
		return nil, err
	}
	totals := make(map[string]decimal.Decimal)
	for _, receipt := range rows {
		for _, item := range receipt.Items {
			name := strings.TrimSpace(item.ItemName)
			totals[name] = totals[name].Add(item.ReceivedQty)
		}
	}
	return totals, nil
}
