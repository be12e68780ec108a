package reconciliation

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bildin8/postergram-juice-sub000/pkg/db/models"
	"github.com/bildin8/postergram-juice-sub000/pkg/enums"
	"github.com/bildin8/postergram-juice-sub000/pkg/errors"
	"github.com/bildin8/postergram-juice-sub000/pkg/logger"
)

// SessionSource loads counting sessions. internal/stocksessions.Repository
// satisfies it.
type SessionSource interface {
	GetWithEntries(ctx context.Context, id uuid.UUID) (*models.StockSession, error)
}

// ReceiptSource answers how much of each item was delivered within a business
// day. internal/receipts.Service satisfies it.
type ReceiptSource interface {
	ReceivedByItem(ctx context.Context, day time.Time) (map[string]decimal.Decimal, error)
}

// Notifier fans the summary out. internal/notifications.Service satisfies it.
type Notifier interface {
	Send(ctx context.Context, audience enums.Audience, message string) (int, error)
}

// Service compares a day's opening count plus deliveries against the closing
// count. Expected = opening + received; variance = closing - expected. The
// result is written once; the summary notification is best-effort.
type Service interface {
	Reconcile(ctx context.Context, openingSessionID, closingSessionID uuid.UUID) (*models.Reconciliation, error)
	ListByDate(ctx context.Context, date time.Time) ([]models.Reconciliation, error)
}

type service struct {
	sessions SessionSource
	receipts ReceiptSource
	notifier Notifier
	repo     Repository
	logg     *logger.Logger
	now      func() time.Time
}

func NewService(sessions SessionSource, receipts ReceiptSource, notifier Notifier, repo Repository, logg *logger.Logger) (Service, error) {
	if sessions == nil {
		return nil, errors.New(errors.CodeInternal, "reconciliation service requires a session source")
	}
	if receipts == nil {
		return nil, errors.New(errors.CodeInternal, "reconciliation service requires a receipt source")
	}
	if notifier == nil {
		return nil, errors.New(errors.CodeInternal, "reconciliation service requires a notifier")
	}
	if repo == nil {
		return nil, errors.New(errors.CodeInternal, "reconciliation service requires a repository")
	}
	if logg == nil {
		return nil, errors.New(errors.CodeInternal, "reconciliation service requires a logger")
	}
	return &service{
		sessions: sessions,
		receipts: receipts,
		notifier: notifier,
		repo:     repo,
		logg:     logg,
		now:      time.Now,
	}, nil
}

func (s *service) Reconcile(ctx context.Context, openingSessionID, closingSessionID uuid.UUID) (*models.Reconciliation, error) {
	opening, err := s.loadSession(ctx, openingSessionID, enums.SessionTypeOpening)
	if err != nil {
		return nil, err
	}
	closing, err := s.loadSession(ctx, closingSessionID, enums.SessionTypeClosing)
	if err != nil {
		return nil, err
	}
	if !opening.BusinessDate.Equal(closing.BusinessDate) {
		return nil, errors.New(errors.CodeValidation, "sessions belong to different business dates").
			WithDetails(map[string]any{
				"openingDate": opening.BusinessDate.Format("2006-01-02"),
				"closingDate": closing.BusinessDate.Format("2006-01-02"),
			})
	}

	received, err := s.receipts.ReceivedByItem(ctx, opening.BusinessDate)
	if err != nil {
		return nil, err
	}

	openingQty := entryTotals(opening.Entries)
	closingQty := entryTotals(closing.Entries)

	reconciliation := &models.Reconciliation{
		BusinessDate:     opening.BusinessDate,
		OpeningSessionID: opening.ID,
		ClosingSessionID: closing.ID,
	}
	for _, name := range itemNameUnion(openingQty, closingQty, received) {
		expected := openingQty[name].Add(received[name])
		variance := closingQty[name].Sub(expected)

		status := enums.VarianceStatusEqual
		switch {
		case variance.IsPositive():
			status = enums.VarianceStatusOver
			reconciliation.OverCount++
		case variance.IsNegative():
			status = enums.VarianceStatusUnder
			reconciliation.UnderCount++
		default:
			reconciliation.MatchedCount++
		}
		reconciliation.Items = append(reconciliation.Items, models.ReconciliationItem{
			ItemName: name,
			Opening:  openingQty[name],
			Received: received[name],
			Closing:  closingQty[name],
			Expected: expected,
			Variance: variance,
			Status:   status,
		})
	}

	if err := s.repo.Create(ctx, reconciliation); err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"reconciliation_id": reconciliation.ID,
		"date":              reconciliation.BusinessDate.Format("2006-01-02"),
		"over":              reconciliation.OverCount,
		"under":             reconciliation.UnderCount,
		"matched":           reconciliation.MatchedCount,
	}), "reconciliation completed")

	s.notify(ctx, reconciliation)
	return reconciliation, nil
}

func (s *service) ListByDate(ctx context.Context, date time.Time) ([]models.Reconciliation, error) {
	if date.IsZero() {
		return nil, errors.New(errors.CodeValidation, "date is required")
	}
	return s.repo.ListByDate(ctx, date)
}

func (s *service) loadSession(ctx context.Context, id uuid.UUID, wantType enums.SessionType) (*models.StockSession, error) {
	session, err := s.sessions.GetWithEntries(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, errors.New(errors.CodeNotFound, fmt.Sprintf("%s session not found", wantType))
	}
	if session.Type != wantType {
		return nil, errors.New(errors.CodeValidation, fmt.Sprintf("session %s is not a %s session", id, wantType))
	}
	if session.Status != enums.SessionStatusCompleted {
		return nil, errors.New(errors.CodeStateConflict, fmt.Sprintf("%s session is not completed", wantType))
	}
	return session, nil
}

// notify sends the summary to the owner audience. Delivery problems are
// logged and never surface to the caller.
func (s *service) notify(ctx context.Context, reconciliation *models.Reconciliation) {
	if _, err := s.notifier.Send(ctx, enums.AudienceOwner, formatSummary(reconciliation)); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "reconciliation_id", reconciliation.ID), "sending reconciliation summary failed", err)
		return
	}
	notifiedAt := s.now().UTC()
	if err := s.repo.MarkNotified(ctx, reconciliation.ID, notifiedAt); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "reconciliation_id", reconciliation.ID), "marking reconciliation notified failed", err)
		return
	}
	reconciliation.NotifiedAt = &notifiedAt
}

func entryTotals(entries []models.StockEntry) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal, len(entries))
	for _, entry := range entries {
		name := strings.TrimSpace(entry.ItemName)
		totals[name] = totals[name].Add(entry.Quantity)
	}
	return totals
}

func itemNameUnion(maps ...map[string]decimal.Decimal) []string {
	seen := map[string]struct{}{}
	var names []string
	for _, m := range maps {
		for name := range m {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func formatSummary(reconciliation *models.Reconciliation) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Stock reconciliation %s\n", reconciliation.BusinessDate.Format("2006-01-02"))
	fmt.Fprintf(&sb, "over: %d, under: %d, matched: %d\n", reconciliation.OverCount, reconciliation.UnderCount, reconciliation.MatchedCount)
	for _, item := range reconciliation.Items {
		if item.Status == enums.VarianceStatusEqual {
			continue
		}
		fmt.Fprintf(&sb, "- %s: expected %s, counted %s (%s %s)\n",
			item.ItemName, item.Expected, item.Closing, item.Status, item.Variance.Abs())
	}
	return strings.TrimRight(sb.String(), "\n")
}
