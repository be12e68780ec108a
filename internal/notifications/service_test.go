package notifications

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/bildin8/postergram-juice-sub000/pkg/db/models"
	"github.com/bildin8/postergram-juice-sub000/pkg/enums"
	"github.com/bildin8/postergram-juice-sub000/pkg/errors"
	"github.com/bildin8/postergram-juice-sub000/pkg/logger"
)

type fakeRepo struct {
	recipients []models.NotificationRecipient
	err        error
}

func (f *fakeRepo) ListActiveByAudience(_ context.Context, _ enums.Audience) ([]models.NotificationRecipient, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.recipients, nil
}

type fakeSender struct {
	sent    []int64
	failFor map[int64]bool
}

func (f *fakeSender) SendMessage(_ context.Context, chatID int64, _ string) error {
	if f.failFor[chatID] {
		return fmt.Errorf("chat %d unreachable", chatID)
	}
	f.sent = append(f.sent, chatID)
	return nil
}

func testService(t *testing.T, repo Repository, sender Sender) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(repo, sender, logg)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestSendFansOutToAllRecipients(t *testing.T) {
	repo := &fakeRepo{recipients: []models.NotificationRecipient{
		{ChatID: 100}, {ChatID: 200}, {ChatID: 300},
	}}
	sender := &fakeSender{}

	svc := testService(t, repo, sender)
	delivered, err := svc.Send(context.Background(), enums.AudienceOwner, "stock summary")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if delivered != 3 || len(sender.sent) != 3 {
		t.Fatalf("delivered = %d, want 3", delivered)
	}
}

func TestSendContinuesPastFailedRecipient(t *testing.T) {
	repo := &fakeRepo{recipients: []models.NotificationRecipient{
		{ChatID: 100}, {ChatID: 200}, {ChatID: 300},
	}}
	sender := &fakeSender{failFor: map[int64]bool{200: true}}

	svc := testService(t, repo, sender)
	delivered, err := svc.Send(context.Background(), enums.AudienceManager, "alert")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if delivered != 2 {
		t.Fatalf("delivered = %d, want 2", delivered)
	}
}

func TestSendNoRecipientsIsNotAnError(t *testing.T) {
	svc := testService(t, &fakeRepo{}, &fakeSender{})
	delivered, err := svc.Send(context.Background(), enums.AudienceStaff, "hello")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if delivered != 0 {
		t.Fatalf("delivered = %d, want 0", delivered)
	}
}

func TestSendValidatesInput(t *testing.T) {
	svc := testService(t, &fakeRepo{}, &fakeSender{})
	_, err := svc.Send(context.Background(), enums.Audience("nobody"), "hello")
	if got := errors.As(err); got == nil || got.Code() != errors.CodeValidation {
		t.Fatalf("error = %v, want validation", err)
	}
	_, err = svc.Send(context.Background(), enums.AudienceOwner, "")
	if got := errors.As(err); got == nil || got.Code() != errors.CodeValidation {
		t.Fatalf("error = %v, want validation", err)
	}
}
