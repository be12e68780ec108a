package sync

import (
	"context"
	"time"

	"github.com/bildin8/postergram-juice-sub000/internal/consumption"
	"github.com/bildin8/postergram-juice-sub000/pkg/errors"
	"github.com/bildin8/postergram-juice-sub000/pkg/logger"
)

// feedCheckpoint names the transaction feed watermark.
const feedCheckpoint = "transaction-feed"

const defaultBackfillMax = 7 * 24 * time.Hour

// Recorder is the slice of the consumption service the job drives.
type Recorder interface {
	RecordRange(ctx context.Context, dateFrom, dateTo time.Time) (*consumption.RecordResult, error)
}

// FeedSyncJob pulls closed transactions since the last watermark and records
// their consumption. The watermark only advances after a successful run, so a
// failed range is retried in full next cycle; the storage-level idempotency
// keeps the retry harmless.
type FeedSyncJob struct {
	recorder    Recorder
	checkpoints CheckpointStore
	backfillMax time.Duration
	logg        *logger.Logger
	now         func() time.Time
}

func NewFeedSyncJob(recorder Recorder, checkpoints CheckpointStore, backfillMax time.Duration, logg *logger.Logger) (*FeedSyncJob, error) {
	if recorder == nil {
		return nil, errors.New(errors.CodeInternal, "feed sync job requires a recorder")
	}
	if checkpoints == nil {
		return nil, errors.New(errors.CodeInternal, "feed sync job requires a checkpoint store")
	}
	if logg == nil {
		return nil, errors.New(errors.CodeInternal, "feed sync job requires a logger")
	}
	if backfillMax <= 0 {
		backfillMax = defaultBackfillMax
	}
	return &FeedSyncJob{
		recorder:    recorder,
		checkpoints: checkpoints,
		backfillMax: backfillMax,
		logg:        logg,
		now:         time.Now,
	}, nil
}

func (j *FeedSyncJob) Name() string { return "transaction-feed-sync" }

func (j *FeedSyncJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	earliest := now.Add(-j.backfillMax)

	from := earliest
	checkpoint, err := j.checkpoints.Get(ctx, feedCheckpoint)
	if err != nil {
		return err
	}
	if checkpoint != nil && checkpoint.LastSyncedAt.After(earliest) {
		from = checkpoint.LastSyncedAt
	}
	if !from.Before(now) {
		return nil
	}

	result, err := j.recorder.RecordRange(ctx, from, now)
	if err != nil {
		return err
	}
	if err := j.checkpoints.Set(ctx, feedCheckpoint, now); err != nil {
		return err
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"from":     from,
		"to":       now,
		"lines":    result.Lines,
		"inserted": result.Inserted,
		"skipped":  result.Skipped,
	}), "transaction feed synced")
	return nil
}
