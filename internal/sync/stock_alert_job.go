package sync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bildin8/postergram-juice-sub000/internal/par"
	"github.com/bildin8/postergram-juice-sub000/pkg/enums"
	"github.com/bildin8/postergram-juice-sub000/pkg/errors"
	"github.com/bildin8/postergram-juice-sub000/pkg/logger"
)

const alertCheckpoint = "stock-alert"

// VelocityAnalyzer is the slice of the par service the job reads.
type VelocityAnalyzer interface {
	Velocity(ctx context.Context, params par.VelocityParams) ([]par.VelocityRow, error)
}

// Notifier fans the alert out to the manager audience.
type Notifier interface {
	Send(ctx context.Context, audience enums.Audience, message string) (int, error)
}

// StockAlertJob scans days-of-stock once per UTC day and messages managers
// about critical and warning items. Quiet days advance the checkpoint without
// sending anything.
type StockAlertJob struct {
	velocity    VelocityAnalyzer
	notifier    Notifier
	checkpoints CheckpointStore
	logg        *logger.Logger
	now         func() time.Time
}

func NewStockAlertJob(velocity VelocityAnalyzer, notifier Notifier, checkpoints CheckpointStore, logg *logger.Logger) (*StockAlertJob, error) {
	if velocity == nil {
		return nil, errors.New(errors.CodeInternal, "stock alert job requires a velocity analyzer")
	}
	if notifier == nil {
		return nil, errors.New(errors.CodeInternal, "stock alert job requires a notifier")
	}
	if checkpoints == nil {
		return nil, errors.New(errors.CodeInternal, "stock alert job requires a checkpoint store")
	}
	if logg == nil {
		return nil, errors.New(errors.CodeInternal, "stock alert job requires a logger")
	}
	return &StockAlertJob{
		velocity:    velocity,
		notifier:    notifier,
		checkpoints: checkpoints,
		logg:        logg,
		now:         time.Now,
	}, nil
}

func (j *StockAlertJob) Name() string { return "stock-alert" }

func (j *StockAlertJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	checkpoint, err := j.checkpoints.Get(ctx, alertCheckpoint)
	if err != nil {
		return err
	}
	if checkpoint != nil && sameDay(checkpoint.LastSyncedAt, now) {
		return nil
	}

	rows, err := j.velocity.Velocity(ctx, par.VelocityParams{})
	if err != nil {
		return err
	}

	var urgent []par.VelocityRow
	for _, row := range rows {
		if row.Urgency == enums.StockUrgencyCritical || row.Urgency == enums.StockUrgencyWarning {
			urgent = append(urgent, row)
		}
	}
	if len(urgent) > 0 {
		if _, err := j.notifier.Send(ctx, enums.AudienceManager, formatAlert(now, urgent)); err != nil {
			return err
		}
	}
	if err := j.checkpoints.Set(ctx, alertCheckpoint, now); err != nil {
		return err
	}
	j.logg.Info(j.logg.WithField(ctx, "urgent_items", len(urgent)), "stock alert scan complete")
	return nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

func formatAlert(now time.Time, rows []par.VelocityRow) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Low stock %s\n", now.Format("2006-01-02"))
	for _, row := range rows {
		fmt.Fprintf(&sb, "- [%s] %s: %s days left (%s %s on hand)\n",
			row.Urgency, row.IngredientName, row.DaysRemaining, row.OnHand, row.Unit)
	}
	return strings.TrimRight(sb.String(), "\n")
}
