package notifications

import (
	"context"

	"gorm.io/gorm"

	"github.com/bildin8/postergram-juice-sub000/pkg/db/models"
	"github.com/bildin8/postergram-juice-sub000/pkg/enums"
	"github.com/bildin8/postergram-juice-sub000/pkg/errors"
)

type Repository interface {
	ListActiveByAudience(ctx context.Context, audience enums.Audience) ([]models.NotificationRecipient, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) (Repository, error) {
	if db == nil {
		return nil, errors.New(errors.CodeInternal, "notifications repository requires a database handle")
	}
	return &repository{db: db}, nil
}

func (r *repository) ListActiveByAudience(ctx context.Context, audience enums.Audience) ([]models.NotificationRecipient, error) {
	var rows []models.NotificationRecipient
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Where("? = ANY(roles)", string(audience)).
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "listing notification recipients")
	}
	return rows, nil
}
