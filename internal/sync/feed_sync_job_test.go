package sync

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/bildin8/postergram-juice-sub000/internal/consumption"
	"github.com/bildin8/postergram-juice-sub000/pkg/db/models"
	"github.com/bildin8/postergram-juice-sub000/pkg/logger"
)

type fakeCheckpoints struct {
	checkpoints map[string]time.Time
	getErr      error
	setErr      error
}

func newFakeCheckpoints() *fakeCheckpoints {
	return &fakeCheckpoints{checkpoints: make(map[string]time.Time)}
}

func (f *fakeCheckpoints) Get(_ context.Context, name string) (*models.SyncCheckpoint, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	at, ok := f.checkpoints[name]
	if !ok {
		return nil, nil
	}
	return &models.SyncCheckpoint{Name: name, LastSyncedAt: at}, nil
}

func (f *fakeCheckpoints) Set(_ context.Context, name string, at time.Time) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.checkpoints[name] = at
	return nil
}

type fakeRecorder struct {
	ranges [][2]time.Time
	err    error
}

func (f *fakeRecorder) RecordRange(_ context.Context, dateFrom, dateTo time.Time) (*consumption.RecordResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.ranges = append(f.ranges, [2]time.Time{dateFrom, dateTo})
	return &consumption.RecordResult{Lines: 3, Inserted: 5}, nil
}

var syncNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func testFeedJob(t *testing.T, recorder Recorder, checkpoints CheckpointStore, backfillMax time.Duration) *FeedSyncJob {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	job, err := NewFeedSyncJob(recorder, checkpoints, backfillMax, logg)
	if err != nil {
		t.Fatalf("NewFeedSyncJob: %v", err)
	}
	job.now = func() time.Time { return syncNow }
	return job
}

func TestFeedSyncFirstRunUsesBackfillWindow(t *testing.T) {
	recorder := &fakeRecorder{}
	checkpoints := newFakeCheckpoints()
	job := testFeedJob(t, recorder, checkpoints, 48*time.Hour)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(recorder.ranges) != 1 {
		t.Fatalf("record calls = %d, want 1", len(recorder.ranges))
	}
	if !recorder.ranges[0][0].Equal(syncNow.Add(-48 * time.Hour)) {
		t.Fatalf("from = %s, want backfill start", recorder.ranges[0][0])
	}
	if !checkpoints.checkpoints[feedCheckpoint].Equal(syncNow) {
		t.Fatalf("watermark = %s, want %s", checkpoints.checkpoints[feedCheckpoint], syncNow)
	}
}

func TestFeedSyncResumesFromWatermark(t *testing.T) {
	watermark := syncNow.Add(-30 * time.Minute)
	recorder := &fakeRecorder{}
	checkpoints := newFakeCheckpoints()
	checkpoints.checkpoints[feedCheckpoint] = watermark
	job := testFeedJob(t, recorder, checkpoints, 48*time.Hour)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !recorder.ranges[0][0].Equal(watermark) {
		t.Fatalf("from = %s, want watermark %s", recorder.ranges[0][0], watermark)
	}
}

func TestFeedSyncClampsStaleWatermark(t *testing.T) {
	recorder := &fakeRecorder{}
	checkpoints := newFakeCheckpoints()
	checkpoints.checkpoints[feedCheckpoint] = syncNow.Add(-200 * time.Hour)
	job := testFeedJob(t, recorder, checkpoints, 48*time.Hour)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !recorder.ranges[0][0].Equal(syncNow.Add(-48 * time.Hour)) {
		t.Fatalf("from = %s, want clamped to backfill window", recorder.ranges[0][0])
	}
}

func TestFeedSyncKeepsWatermarkOnFailure(t *testing.T) {
	watermark := syncNow.Add(-time.Hour)
	recorder := &fakeRecorder{err: fmt.Errorf("pos unreachable")}
	checkpoints := newFakeCheckpoints()
	checkpoints.checkpoints[feedCheckpoint] = watermark
	job := testFeedJob(t, recorder, checkpoints, 48*time.Hour)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected run to fail")
	}
	if !checkpoints.checkpoints[feedCheckpoint].Equal(watermark) {
		t.Fatalf("watermark moved to %s despite failure", checkpoints.checkpoints[feedCheckpoint])
	}
}

func TestFeedSyncNoopWhenWatermarkIsCurrent(t *testing.T) {
	recorder := &fakeRecorder{}
	checkpoints := newFakeCheckpoints()
	checkpoints.checkpoints[feedCheckpoint] = syncNow
	job := testFeedJob(t, recorder, checkpoints, 48*time.Hour)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(recorder.ranges) != 0 {
		t.Fatalf("record calls = %d, want 0", len(recorder.ranges))
	}
}
