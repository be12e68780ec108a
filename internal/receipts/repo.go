package receipts

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/bildin8/postergram-juice-sub000/pkg/db/models"
	"github.com/bildin8/postergram-juice-sub000/pkg/errors"
)

type Repository interface {
	Create(ctx context.Context, receipt *models.GoodsReceipt) error
	ListByDay(ctx context.Context, day time.Time) ([]models.GoodsReceipt, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) (Repository, error) {
	if db == nil {
		return nil, errors.New(errors.CodeInternal, "receipts repository requires a database handle")
	}
	return &repository{db: db}, nil
}

func (r *repository) Create(ctx context.Context, receipt *models.GoodsReceipt) error {
	if err := r.db.WithContext(ctx).Create(receipt).Error; err != nil {
		return errors.Wrap(errors.CodeInternal, err, "creating goods receipt")
	}
	return nil
}

// ListByDay returns receipts whose received_at falls within the given
// calendar day, items included.
func (r *repository) ListByDay(ctx context.Context, day time.Time) ([]models.GoodsReceipt, error) {
	start := day.Truncate(24 * time.Hour)
	end := start.Add(24 * time.Hour)

	var rows []models.GoodsReceipt
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("received_at >= ? AND received_at < ?", start, end).
		Order("received_at").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "listing goods receipts")
	}
	return rows, nil
}
