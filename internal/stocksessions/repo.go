package stocksessions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bildin8/postergram-juice-sub000/pkg/db/models"
	"github.com/bildin8/postergram-juice-sub000/pkg/enums"
	pkgerrors "github.com/bildin8/postergram-juice-sub000/pkg/errors"
)

type Repository interface {
	Create(ctx context.Context, session *models.StockSession) error
	GetWithEntries(ctx context.Context, id uuid.UUID) (*models.StockSession, error)
	FindByStatus(ctx context.Context, date time.Time, sessionType enums.SessionType, status enums.SessionStatus) (*models.StockSession, error)
	AddEntry(ctx context.Context, entry *models.StockEntry) error
	MarkCompleted(ctx context.Context, id uuid.UUID, at time.Time) error
	ListByDate(ctx context.Context, date time.Time) ([]models.StockSession, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) (Repository, error) {
	if db == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stock sessions repository requires a database handle")
	}
	return &repository{db: db}, nil
}

func (r *repository) Create(ctx context.Context, session *models.StockSession) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating stock session")
	}
	return nil
}

// GetWithEntries returns the session and its entries, or nil when the id is
// unknown.
func (r *repository) GetWithEntries(ctx context.Context, id uuid.UUID) (*models.StockSession, error) {
	var session models.StockSession
	err := r.db.WithContext(ctx).
		Preload("Entries").
		First(&session, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading stock session")
	}
	return &session, nil
}

func (r *repository) FindByStatus(ctx context.Context, date time.Time, sessionType enums.SessionType, status enums.SessionStatus) (*models.StockSession, error) {
	var session models.StockSession
	err := r.db.WithContext(ctx).
		Preload("Entries").
		Where("business_date = ? AND type = ? AND status = ?", date.Truncate(24*time.Hour), sessionType, status).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "finding stock session")
	}
	return &session, nil
}

func (r *repository) AddEntry(ctx context.Context, entry *models.StockEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating stock entry")
	}
	return nil
}

// MarkCompleted flips an in-progress session to completed. The status guard
// in the WHERE clause makes completion race-safe.
func (r *repository) MarkCompleted(ctx context.Context, id uuid.UUID, at time.Time) error {
	tx := r.db.WithContext(ctx).
		Model(&models.StockSession{}).
		Where("id = ? AND status = ?", id, enums.SessionStatusInProgress).
		Updates(map[string]any{
			"status":       enums.SessionStatusCompleted,
			"completed_at": at,
		})
	if tx.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, tx.Error, "completing stock session")
	}
	if tx.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "stock session is not in progress")
	}
	return nil
}

func (r *repository) ListByDate(ctx context.Context, date time.Time) ([]models.StockSession, error) {
	var sessions []models.StockSession
	err := r.db.WithContext(ctx).
		Preload("Entries").
		Where("business_date = ?", date.Truncate(24*time.Hour)).
		Order("created_at").
		Find(&sessions).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing stock sessions")
	}
	return sessions, nil
}
