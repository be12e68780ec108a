package notifications

import (
	"context"

	"github.com/bildin8/postergram-juice-sub000/pkg/enums"
	"github.com/bildin8/postergram-juice-sub000/pkg/errors"
	"github.com/bildin8/postergram-juice-sub000/pkg/logger"
)

// Sender is the transport the dispatcher fans out over. pkg/chatbot.Client
// satisfies it.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Service fans a message out to every active recipient subscribed to the
// audience. Per-recipient delivery failures are logged and do not stop the
// fan-out; only loading the recipient list can fail the call.
type Service interface {
	Send(ctx context.Context, audience enums.Audience, message string) (int, error)
}

type service struct {
	repo   Repository
	sender Sender
	logg   *logger.Logger
}

func NewService(repo Repository, sender Sender, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, errors.New(errors.CodeInternal, "notifications service requires a repository")
	}
	if sender == nil {
		return nil, errors.New(errors.CodeInternal, "notifications service requires a sender")
	}
	if logg == nil {
		return nil, errors.New(errors.CodeInternal, "notifications service requires a logger")
	}
	return &service{repo: repo, sender: sender, logg: logg}, nil
}

func (s *service) Send(ctx context.Context, audience enums.Audience, message string) (int, error) {
	if !audience.IsValid() {
		return 0, errors.New(errors.CodeValidation, "unknown audience").
			WithDetails(map[string]any{"audience": audience})
	}
	if message == "" {
		return 0, errors.New(errors.CodeValidation, "message is required")
	}

	recipients, err := s.repo.ListActiveByAudience(ctx, audience)
	if err != nil {
		return 0, err
	}
	if len(recipients) == 0 {
		s.logg.Warn(s.logg.WithField(ctx, "audience", audience), "no active recipients for audience")
		return 0, nil
	}

	delivered := 0
	for _, recipient := range recipients {
		if err := s.sender.SendMessage(ctx, recipient.ChatID, message); err != nil {
			s.logg.Error(s.logg.WithField(ctx, "chat_id", recipient.ChatID), "delivering notification failed", err)
			continue
		}
		delivered++
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"audience":   audience,
		"recipients": len(recipients),
		"delivered":  delivered,
	}), "notification dispatched")
	return delivered, nil
}
