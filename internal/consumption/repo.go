package consumption

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bildin8/postergram-juice-sub000/pkg/db/models"
	"github.com/bildin8/postergram-juice-sub000/pkg/errors"
)

type Repository interface {
	InsertRecords(ctx context.Context, records []models.ConsumptionRecord) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) (Repository, error) {
	if db == nil {
		return nil, errors.New(errors.CodeInternal, "consumption repository requires a database handle")
	}
	return &repository{db: db}, nil
}

// InsertRecords writes the batch and returns the number of rows actually
// inserted. Rows whose (line_key, ingredient_id, source_label) already exist
// are left untouched, which is what makes re-running a range safe.
func (r *repository) InsertRecords(ctx context.Context, records []models.ConsumptionRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}
	tx := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&records)
	if tx.Error != nil {
		return 0, errors.Wrap(errors.CodeInternal, tx.Error, "inserting consumption records")
	}
	return tx.RowsAffected, nil
}
