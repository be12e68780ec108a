package sync

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bildin8/postergram-juice-sub000/pkg/db/models"
	pkgerrors "github.com/bildin8/postergram-juice-sub000/pkg/errors"
)

// CheckpointStore persists per-job watermarks.
type CheckpointStore interface {
	Get(ctx context.Context, name string) (*models.SyncCheckpoint, error)
	Set(ctx context.Context, name string, at time.Time) error
}

type checkpointStore struct {
	db *gorm.DB
}

func NewCheckpointStore(db *gorm.DB) (CheckpointStore, error) {
	if db == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "checkpoint store requires a database handle")
	}
	return &checkpointStore{db: db}, nil
}

// Get returns the named checkpoint, or nil when the job has never run.
func (s *checkpointStore) Get(ctx context.Context, name string) (*models.SyncCheckpoint, error) {
	var checkpoint models.SyncCheckpoint
	err := s.db.WithContext(ctx).First(&checkpoint, "name = ?", name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading sync checkpoint")
	}
	return &checkpoint, nil
}

func (s *checkpointStore) Set(ctx context.Context, name string, at time.Time) error {
	checkpoint := models.SyncCheckpoint{Name: name, LastSyncedAt: at}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"last_synced_at"}),
		}).
		Create(&checkpoint).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving sync checkpoint")
	}
	return nil
}
