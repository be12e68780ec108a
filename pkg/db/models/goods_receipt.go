package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GoodsReceipt records one supplier delivery.
type GoodsReceipt struct {
	ID         uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Supplier   string             `gorm:"column:supplier;not null"`
	ReceivedAt time.Time          `gorm:"column:received_at;not null;index"`
	Items      []GoodsReceiptItem `gorm:"foreignKey:ReceiptID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time          `gorm:"column:created_at;autoCreateTime"`
}

// GoodsReceiptItem is one delivered line. ItemName matches the names used in
// stock session entries so reconciliation can join the three signals.
type GoodsReceiptItem struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ReceiptID    uuid.UUID       `gorm:"column:receipt_id;type:uuid;not null;index"`
	ItemName     string          `gorm:"column:item_name;not null"`
	IngredientID string          `gorm:"column:ingredient_id"`
	ReceivedQty  decimal.Decimal `gorm:"column:received_qty;type:numeric(14,4);not null"`
	UnitCost     decimal.Decimal `gorm:"column:unit_cost;type:numeric(14,4);not null;default:0"`
}
