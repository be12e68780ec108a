package stocksessions

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bildin8/postergram-juice-sub000/pkg/db"
	"github.com/bildin8/postergram-juice-sub000/pkg/db/models"
	"github.com/bildin8/postergram-juice-sub000/pkg/enums"
	"github.com/bildin8/postergram-juice-sub000/pkg/errors"
	"github.com/bildin8/postergram-juice-sub000/pkg/logger"
)

// activeSessionIndex is the partial unique index guarding one in-progress
// session per (business_date, type).
const activeSessionIndex = "idx_stock_sessions_active"

// Reconciler is invoked when a closing session completes and a completed
// opening session exists for the same business date.
type Reconciler interface {
	Reconcile(ctx context.Context, openingSessionID, closingSessionID uuid.UUID) (*models.Reconciliation, error)
}

// OpenParams starts a counting session.
type OpenParams struct {
	Type         enums.SessionType `json:"type" validate:"required"`
	BusinessDate time.Time         `json:"businessDate" validate:"required"`
}

// EntryParams adds one counted item to a session.
type EntryParams struct {
	ItemName string          `json:"itemName" validate:"required"`
	Quantity decimal.Decimal `json:"quantity" validate:"required"`
}

// Service runs the session lifecycle: open, count, complete. Completed is
// terminal. Completing a closing session triggers reconciliation when the
// day's opening count is already in.
type Service interface {
	Open(ctx context.Context, params OpenParams) (*models.StockSession, error)
	AddEntry(ctx context.Context, sessionID uuid.UUID, params EntryParams) (*models.StockEntry, error)
	Complete(ctx context.Context, sessionID uuid.UUID) (*models.StockSession, error)
	Get(ctx context.Context, sessionID uuid.UUID) (*models.StockSession, error)
	ListByDate(ctx context.Context, date time.Time) ([]models.StockSession, error)
}

type service struct {
	repo       Repository
	reconciler Reconciler
	logg       *logger.Logger
	now        func() time.Time
}

func NewService(repo Repository, reconciler Reconciler, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, errors.New(errors.CodeInternal, "stock sessions service requires a repository")
	}
	if reconciler == nil {
		return nil, errors.New(errors.CodeInternal, "stock sessions service requires a reconciler")
	}
	if logg == nil {
		return nil, errors.New(errors.CodeInternal, "stock sessions service requires a logger")
	}
	return &service{
		repo:       repo,
		reconciler: reconciler,
		logg:       logg,
		now:        time.Now,
	}, nil
}

func (s *service) Open(ctx context.Context, params OpenParams) (*models.StockSession, error) {
	if !params.Type.IsValid() {
		return nil, errors.New(errors.CodeValidation, "session type must be opening or closing")
	}
	if params.BusinessDate.IsZero() {
		return nil, errors.New(errors.CodeValidation, "businessDate is required")
	}
	date := params.BusinessDate.Truncate(24 * time.Hour)

	existing, err := s.repo.FindByStatus(ctx, date, params.Type, enums.SessionStatusInProgress)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.New(errors.CodeConflict, "a session of this type is already in progress for the date").
			WithDetails(map[string]any{"sessionId": existing.ID})
	}

	session := &models.StockSession{
		Type:         params.Type,
		Status:       enums.SessionStatusInProgress,
		BusinessDate: date,
	}
	if err := s.repo.Create(ctx, session); err != nil {
		if db.IsUniqueViolation(err, activeSessionIndex) {
			return nil, errors.New(errors.CodeConflict, "a session of this type is already in progress for the date")
		}
		return nil, err
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"session_id": session.ID,
		"type":       session.Type,
		"date":       date.Format("2006-01-02"),
	}), "stock session opened")
	return session, nil
}

func (s *service) AddEntry(ctx context.Context, sessionID uuid.UUID, params EntryParams) (*models.StockEntry, error) {
	name := strings.TrimSpace(params.ItemName)
	if name == "" {
		return nil, errors.New(errors.CodeValidation, "item name is required")
	}
	if params.Quantity.IsNegative() {
		return nil, errors.New(errors.CodeValidation, "quantity cannot be negative")
	}

	session, err := s.repo.GetWithEntries(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, errors.New(errors.CodeNotFound, "stock session not found")
	}
	if session.Status != enums.SessionStatusInProgress {
		return nil, errors.New(errors.CodeStateConflict, "entries can only be added to an in-progress session")
	}

	entry := &models.StockEntry{
		SessionID: session.ID,
		ItemName:  name,
		Quantity:  params.Quantity,
	}
	if err := s.repo.AddEntry(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *service) Complete(ctx context.Context, sessionID uuid.UUID) (*models.StockSession, error) {
	session, err := s.repo.GetWithEntries(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, errors.New(errors.CodeNotFound, "stock session not found")
	}
	if session.Status != enums.SessionStatusInProgress {
		return nil, errors.New(errors.CodeStateConflict, "stock session is already completed")
	}

	completedAt := s.now().UTC()
	if err := s.repo.MarkCompleted(ctx, session.ID, completedAt); err != nil {
		return nil, err
	}
	session.Status = enums.SessionStatusCompleted
	session.CompletedAt = &completedAt
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"session_id": session.ID,
		"type":       session.Type,
	}), "stock session completed")

	if session.Type == enums.SessionTypeClosing {
		s.maybeReconcile(ctx, session)
	}
	return session, nil
}

// maybeReconcile kicks off reconciliation for the day when both counts are
// in. Failures are logged; completing the count never depends on the
// reconciliation outcome.
func (s *service) maybeReconcile(ctx context.Context, closing *models.StockSession) {
	opening, err := s.repo.FindByStatus(ctx, closing.BusinessDate, enums.SessionTypeOpening, enums.SessionStatusCompleted)
	if err != nil {
		s.logg.Error(ctx, "looking up opening session for reconciliation failed", err)
		return
	}
	if opening == nil {
		s.logg.Warn(s.logg.WithField(ctx, "date", closing.BusinessDate.Format("2006-01-02")), "no completed opening session, reconciliation skipped")
		return
	}
	if _, err := s.reconciler.Reconcile(ctx, opening.ID, closing.ID); err != nil {
		s.logg.Error(s.logg.WithFields(ctx, map[string]any{
			"opening_session_id": opening.ID,
			"closing_session_id": closing.ID,
		}), "auto reconciliation failed", err)
	}
}

func (s *service) Get(ctx context.Context, sessionID uuid.UUID) (*models.StockSession, error) {
	session, err := s.repo.GetWithEntries(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, errors.New(errors.CodeNotFound, "stock session not found")
	}
	return session, nil
}

func (s *service) ListByDate(ctx context.Context, date time.Time) ([]models.StockSession, error) {
	if date.IsZero() {
		return nil, errors.New(errors.CodeValidation, "date is required")
	}
	return s.repo.ListByDate(ctx, date)
}
