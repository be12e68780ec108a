package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bildin8/postergram-juice-sub000/pkg/enums"
)

// Reconciliation is the header row for one completed opening/closing pair.
// Written once, fully formed; only NotifiedAt changes afterwards.
type Reconciliation struct {
	ID               uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BusinessDate     time.Time            `gorm:"column:business_date;type:date;not null;index"`
	OpeningSessionID uuid.UUID            `gorm:"column:opening_session_id;type:uuid;not null"`
	ClosingSessionID uuid.UUID            `gorm:"column:closing_session_id;type:uuid;not null"`
	OverCount        int                  `gorm:"column:over_count;not null;default:0"`
	UnderCount       int                  `gorm:"column:under_count;not null;default:0"`
	MatchedCount     int                  `gorm:"column:matched_count;not null;default:0"`
	Items            []ReconciliationItem `gorm:"foreignKey:ReconciliationID;constraint:OnDelete:CASCADE"`
	NotifiedAt       *time.Time           `gorm:"column:notified_at"`
	CreatedAt        time.Time            `gorm:"column:created_at;autoCreateTime"`
}

// ReconciliationItem holds the per-item variance detail.
type ReconciliationItem struct {
	ID               uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ReconciliationID uuid.UUID            `gorm:"column:reconciliation_id;type:uuid;not null;index"`
	ItemName         string               `gorm:"column:item_name;not null"`
	Opening          decimal.Decimal      `gorm:"column:opening;type:numeric(14,4);not null"`
	Received         decimal.Decimal      `gorm:"column:received;type:numeric(14,4);not null"`
	Closing          decimal.Decimal      `gorm:"column:closing;type:numeric(14,4);not null"`
	Expected         decimal.Decimal      `gorm:"column:expected;type:numeric(14,4);not null"`
	Variance         decimal.Decimal      `gorm:"column:variance;type:numeric(14,4);not null"`
	Status           enums.VarianceStatus `gorm:"column:status;not null"`
}
