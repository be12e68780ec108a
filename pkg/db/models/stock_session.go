package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bildin8/postergram-juice-sub000/pkg/enums"
)

// StockSession is one manual opening or closing count for a business day.
// At most one in-progress session may exist per (business_date, type); the
// partial unique index in the migration enforces it.
type StockSession struct {
	ID           uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Type         enums.SessionType   `gorm:"column:type;not null"`
	Status       enums.SessionStatus `gorm:"column:status;not null;default:'in_progress'"`
	BusinessDate time.Time           `gorm:"column:business_date;type:date;not null"`
	Entries      []StockEntry        `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime"`
	CompletedAt  *time.Time          `gorm:"column:completed_at"`
}

// StockEntry is one counted quantity of a named item within a session.
type StockEntry struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SessionID uuid.UUID       `gorm:"column:session_id;type:uuid;not null;index"`
	ItemName  string          `gorm:"column:item_name;not null"`
	Quantity  decimal.Decimal `gorm:"column:quantity;type:numeric(14,4);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
