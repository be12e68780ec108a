package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ingredient is the unit/cost ledger row for one POS ingredient. The POS
// identifier is the primary key; cost and on-hand quantity are maintained by
// the offline sync and stock triggers, read-only to the analytics core.
type Ingredient struct {
	ID           string          `gorm:"column:id;primaryKey"`
	Name         string          `gorm:"column:name;not null"`
	Unit         string          `gorm:"column:unit;not null"`
	WeightedCost decimal.Decimal `gorm:"column:weighted_cost;type:numeric(14,4);not null;default:0"`
	OnHandQty    decimal.Decimal `gorm:"column:on_hand_qty;type:numeric(14,4);not null;default:0"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
