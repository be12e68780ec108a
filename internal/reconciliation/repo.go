package reconciliation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bildin8/postergram-juice-sub000/pkg/db/models"
	"github.com/bildin8/postergram-juice-sub000/pkg/errors"
)

type Repository interface {
	Create(ctx context.Context, reconciliation *models.Reconciliation) error
	MarkNotified(ctx context.Context, id uuid.UUID, at time.Time) error
	ListByDate(ctx context.Context, date time.Time) ([]models.Reconciliation, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) (Repository, error) {
	if db == nil {
		return nil, errors.New(errors.CodeInternal, "reconciliation repository requires a database handle")
	}
	return &repository{db: db}, nil
}

// Create persists the header and its items in one transaction.
func (r *repository) Create(ctx context.Context, reconciliation *models.Reconciliation) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(reconciliation).Error
	})
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "creating reconciliation")
	}
	return nil
}

func (r *repository) MarkNotified(ctx context.Context, id uuid.UUID, at time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&models.Reconciliation{}).
		Where("id = ?", id).
		Update("notified_at", at).Error
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "marking reconciliation notified")
	}
	return nil
}

func (r *repository) ListByDate(ctx context.Context, date time.Time) ([]models.Reconciliation, error) {
	var rows []models.Reconciliation
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("business_date = ?", date.Truncate(24*time.Hour)).
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "listing reconciliations")
	}
	return rows, nil
}
