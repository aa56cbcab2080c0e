// Package mock provides a sender that logs intents and always succeeds, for
// local development when no gateway or mail API is configured.
package mock

import (
	"context"
	"log/slog"

	"github.com/erinb-maker-radio/banwell-wholesale/internal/notifier"
)

// MockSender logs notification intents instead of delivering them.
type MockSender struct {
	channel string
	logger  *slog.Logger
}

// NewMockSender creates a new mock sender for the given channel.
func NewMockSender(channel string, logger *slog.Logger) *MockSender {
	return &MockSender{
		channel: channel,
		logger:  logger,
	}
}

// Name returns the name of this sender.
func (s *MockSender) Name() string {
	return "mock-" + s.channel
}

// Send logs the intent details.
func (s *MockSender) Send(ctx context.Context, intent *notifier.Intent) error {
	s.logger.InfoContext(ctx, "mock sender: notification sent",
		slog.String("channel", s.channel),
		slog.String("recipient", intent.Recipient),
		slog.String("subject", intent.Subject),
		slog.String("priority", intent.Priority),
	)
	return nil
}
