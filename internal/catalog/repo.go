package catalog

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/bildin8/postergram-juice-sub000/pkg/db/models"
)

// Repository reads the recipe catalog. Recipes are written by the offline POS
// sync; the core never mutates them.
type Repository interface {
	GetRecipe(ctx context.Context, productID string) (*models.Recipe, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// GetRecipe returns the recipe with ingredients and modifier groups preloaded,
// or nil when the product has no recipe.
func (r *repository) GetRecipe(ctx context.Context, productID string) (*models.Recipe, error) {
	var recipe models.Recipe
	err := r.db.WithContext(ctx).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("ModifierGroups.Modifiers").
		First(&recipe, "product_id = ?", productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &recipe, nil
}
