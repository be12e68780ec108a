package ledger

import (
	"context"

	"gorm.io/gorm"

	"github.com/bildin8/postergram-juice-sub000/pkg/db/models"
)

// Repository reads the per-ingredient cost and on-hand ledger. Mutation happens
// through the offline sync and stock triggers, never through this package.
type Repository interface {
	GetByIDs(ctx context.Context, ids []string) ([]models.Ingredient, error)
	ListAll(ctx context.Context) ([]models.Ingredient, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByIDs(ctx context.Context, ids []string) ([]models.Ingredient, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Ingredient
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListAll(ctx context.Context) ([]models.Ingredient, error) {
	var rows []models.Ingredient
	if err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
