package chatbot

import (
	"context"

	"github.com/bildin8/postergram-juice-sub000/pkg/logger"
)

// NoopSender drops every message. Used when no bot token is configured so the
// rest of the stack can run without chat delivery.
type NoopSender struct {
	logger *logger.Logger
}

func NewNoopSender(logg *logger.Logger) (*NoopSender, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	return &NoopSender{logger: logg}, nil
}

func (s *NoopSender) SendMessage(ctx context.Context, chatID int64, text string) error {
	s.logger.Warn(s.logger.WithField(ctx, "chat_id", chatID), "chat bot disabled, dropping message")
	return nil
}
