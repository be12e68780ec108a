package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Recipe maps one sellable product to its ingredient list and modifier groups.
// Rows are written by the offline catalog sync and are read-only to the core.
type Recipe struct {
	ProductID      string             `gorm:"column:product_id;primaryKey"`
	ProductName    string             `gorm:"column:product_name;not null"`
	Ingredients    []RecipeIngredient `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	ModifierGroups []ModifierGroup    `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// RecipeIngredient is one base-ingredient link. Brutto is the gross quantity
// per unit sold; Netto the post-trim quantity, preferred when non-zero.
type RecipeIngredient struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID      string          `gorm:"column:product_id;not null;index"`
	IngredientID   string          `gorm:"column:ingredient_id;not null"`
	IngredientName string          `gorm:"column:ingredient_name;not null"`
	Unit           string          `gorm:"column:unit;not null"`
	Brutto         decimal.Decimal `gorm:"column:brutto;type:numeric(14,4);not null;default:0"`
	Netto          decimal.Decimal `gorm:"column:netto;type:numeric(14,4);not null;default:0"`
	Position       int             `gorm:"column:position;not null;default:0"`
}
