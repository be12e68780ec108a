package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ConsumptionRecord is one (transaction line, ingredient) usage row emitted by
// the aggregator. LineKey is the stable idempotency key `txnID:lineIdx`; the
// composite unique index makes reprocessing a no-op at the storage level.
type ConsumptionRecord struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TransactionID  string          `gorm:"column:transaction_id;not null;index"`
	LineKey        string          `gorm:"column:line_key;not null;uniqueIndex:idx_consumption_line_source,priority:1"`
	IngredientID   string          `gorm:"column:ingredient_id;not null;uniqueIndex:idx_consumption_line_source,priority:2"`
	SourceLabel    string          `gorm:"column:source_label;not null;uniqueIndex:idx_consumption_line_source,priority:3"`
	ProductID      string          `gorm:"column:product_id;not null"`
	IngredientName string          `gorm:"column:ingredient_name;not null"`
	Unit           string          `gorm:"column:unit;not null"`
	Quantity       decimal.Decimal `gorm:"column:quantity;type:numeric(14,4);not null"`
	UnitCost       decimal.Decimal `gorm:"column:unit_cost;type:numeric(14,4);not null;default:0"`
	FromModifier   bool            `gorm:"column:from_modifier;not null;default:false"`
	BusinessDate   time.Time       `gorm:"column:business_date;type:date;not null;index"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
}
