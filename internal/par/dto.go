package par

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bildin8/postergram-juice-sub000/pkg/enums"
	"github.com/bildin8/postergram-juice-sub000/pkg/poster"
)

// MovementSource is the slice of the POS client the analyzer reads.
type MovementSource interface {
	GetIngredientMovements(ctx context.Context, dateFrom, dateTo time.Time) ([]poster.IngredientMovement, error)
}

// SuggestParams override the configured reorder defaults. Zero fields keep the
// defaults.
type SuggestParams struct {
	WindowDays    int `json:"windowDays"`
	LeadDays      int `json:"leadDays"`
	SafetyPercent int `json:"safetyPercent"`
}

// VelocityParams override the usage window for days-of-stock math.
type VelocityParams struct {
	WindowDays int `json:"windowDays"`
}

// Suggestion is one ingredient's reorder recommendation.
type Suggestion struct {
	IngredientID   string          `json:"ingredientId"`
	IngredientName string          `json:"ingredientName"`
	Unit           string          `json:"unit"`
	AvgDailyUsage  decimal.Decimal `json:"avgDailyUsage"`
	OnHand         decimal.Decimal `json:"onHand"`
	Par            decimal.Decimal `json:"par"`
	OrderQty       decimal.Decimal `json:"orderQty"`
}

// VelocityRow is one ingredient's days-of-stock estimate. DaysRemaining is the
// no-usage sentinel 9999 when the window shows no consumption.
type VelocityRow struct {
	IngredientID   string             `json:"ingredientId"`
	IngredientName string             `json:"ingredientName"`
	Unit           string             `json:"unit"`
	AvgDailyUsage  decimal.Decimal    `json:"avgDailyUsage"`
	OnHand         decimal.Decimal    `json:"onHand"`
	DaysRemaining  decimal.Decimal    `json:"daysRemaining"`
	Urgency        enums.StockUrgency `json:"urgency"`
}
