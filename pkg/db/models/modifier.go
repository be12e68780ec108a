package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bildin8/postergram-juice-sub000/pkg/enums"
)

// ModifierGroup is one selectable add-on group on a product.
type ModifierGroup struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID string     `gorm:"column:product_id;not null;index"`
	Name      string     `gorm:"column:name;not null"`
	Modifiers []Modifier `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
}

// Modifier either consumes an ingredient directly (kind=ingredient) or
// references another product's full recipe (kind=dish). A default-selected
// modifier applies to every sale line regardless of the line's modifier list.
type Modifier struct {
	ID              uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GroupID         uuid.UUID          `gorm:"column:group_id;type:uuid;not null;index"`
	Name            string             `gorm:"column:name;not null"`
	Kind            enums.ModifierKind `gorm:"column:kind;not null"`
	IngredientID    string             `gorm:"column:ingredient_id"`
	IngredientName  string             `gorm:"column:ingredient_name"`
	Unit            string             `gorm:"column:unit"`
	DishProductID   string             `gorm:"column:dish_product_id"`
	Brutto          decimal.Decimal    `gorm:"column:brutto;type:numeric(14,4);not null;default:0"`
	Netto           decimal.Decimal    `gorm:"column:netto;type:numeric(14,4);not null;default:0"`
	DefaultSelected bool               `gorm:"column:default_selected;not null;default:false"`
}
