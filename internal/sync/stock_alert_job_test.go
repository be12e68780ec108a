package sync

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bildin8/postergram-juice-sub000/internal/par"
	"github.com/bildin8/postergram-juice-sub000/pkg/enums"
	"github.com/bildin8/postergram-juice-sub000/pkg/logger"
)

type fakeVelocity struct {
	rows []par.VelocityRow
	err  error
}

func (f *fakeVelocity) Velocity(_ context.Context, _ par.VelocityParams) ([]par.VelocityRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

type fakeNotifier struct {
	audiences []enums.Audience
	messages  []string
}

func (f *fakeNotifier) Send(_ context.Context, audience enums.Audience, message string) (int, error) {
	f.audiences = append(f.audiences, audience)
	f.messages = append(f.messages, message)
	return 1, nil
}

func velocityRow(name string, days string, urgency enums.StockUrgency) par.VelocityRow {
	return par.VelocityRow{
		IngredientName: name,
		Unit:           "kg",
		DaysRemaining:  decimal.RequireFromString(days),
		Urgency:        urgency,
	}
}

func testAlertJob(t *testing.T, velocity VelocityAnalyzer, notifier Notifier, checkpoints CheckpointStore) *StockAlertJob {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	job, err := NewStockAlertJob(velocity, notifier, checkpoints, logg)
	if err != nil {
		t.Fatalf("NewStockAlertJob: %v", err)
	}
	job.now = func() time.Time { return syncNow }
	return job
}

func TestStockAlertSendsUrgentItemsToManagers(t *testing.T) {
	velocity := &fakeVelocity{rows: []par.VelocityRow{
		velocityRow("Tomato", "1.5", enums.StockUrgencyCritical),
		velocityRow("Basil", "4", enums.StockUrgencyWarning),
		velocityRow("Flour", "30", enums.StockUrgencyOK),
	}}
	notifier := &fakeNotifier{}
	checkpoints := newFakeCheckpoints()

	job := testAlertJob(t, velocity, notifier, checkpoints)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(notifier.messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(notifier.messages))
	}
	if notifier.audiences[0] != enums.AudienceManager {
		t.Fatalf("audience = %s, want manager", notifier.audiences[0])
	}
	message := notifier.messages[0]
	if !strings.Contains(message, "Tomato") || !strings.Contains(message, "Basil") {
		t.Fatalf("message = %q, want both urgent items", message)
	}
	if strings.Contains(message, "Flour") {
		t.Fatalf("message = %q, healthy item should not appear", message)
	}
}

func TestStockAlertQuietDayStillAdvancesCheckpoint(t *testing.T) {
	velocity := &fakeVelocity{rows: []par.VelocityRow{
		velocityRow("Flour", "30", enums.StockUrgencyOK),
	}}
	notifier := &fakeNotifier{}
	checkpoints := newFakeCheckpoints()

	job := testAlertJob(t, velocity, notifier, checkpoints)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(notifier.messages) != 0 {
		t.Fatalf("messages = %d, want 0", len(notifier.messages))
	}
	if _, ok := checkpoints.checkpoints[alertCheckpoint]; !ok {
		t.Fatal("checkpoint not advanced on quiet day")
	}
}

func TestStockAlertRunsOncePerDay(t *testing.T) {
	velocity := &fakeVelocity{rows: []par.VelocityRow{
		velocityRow("Tomato", "1", enums.StockUrgencyCritical),
	}}
	notifier := &fakeNotifier{}
	checkpoints := newFakeCheckpoints()
	checkpoints.checkpoints[alertCheckpoint] = syncNow.Add(-2 * time.Hour)

	job := testAlertJob(t, velocity, notifier, checkpoints)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(notifier.messages) != 0 {
		t.Fatalf("messages = %d, want 0 (already ran today)", len(notifier.messages))
	}
}
