// Package notifier delivers owner and customer notifications. Business code
// never sends directly: it returns Intents as plain data, and the caller hands
// them to a Dispatcher only after the surrounding transaction has committed.
package notifier

import (
	"context"
	"log/slog"
)

// Notification channels.
const (
	ChannelPush  = "push"
	ChannelEmail = "email"
)

// Push priorities.
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Intent is a pending notification described as data. Recipient is only set
// for email intents; push intents go to the shop owner's device.
type Intent struct {
	Channel   string
	Recipient string
	Subject   string
	Body      string
	Priority  string
	URL       string
	URLLabel  string
}

// Sender delivers intents through a specific channel.
type Sender interface {
	Name() string
	Send(ctx context.Context, intent *Intent) error
}

// Dispatcher routes intents to channel senders. Delivery failures are logged
// and swallowed; a notification must never fail the operation that produced it.
type Dispatcher struct {
	senders map[string]Sender
	logger  *slog.Logger
}

// NewDispatcher creates a dispatcher over the given senders, keyed by the
// channel each sender handles.
func NewDispatcher(logger *slog.Logger, senders map[string]Sender) *Dispatcher {
	return &Dispatcher{
		senders: senders,
		logger:  logger,
	}
}

// Dispatch delivers each intent on its channel. Intents for channels with no
// registered sender are skipped with a warning.
func (d *Dispatcher) Dispatch(ctx context.Context, intents []Intent) {
	for i := range intents {
		intent := &intents[i]

		s, ok := d.senders[intent.Channel]
		if !ok {
			d.logger.WarnContext(ctx, "no sender registered for channel",
				slog.String("channel", intent.Channel),
				slog.String("subject", intent.Subject),
			)
			continue
		}

		if err := s.Send(ctx, intent); err != nil {
			d.logger.ErrorContext(ctx, "notification delivery failed",
				slog.String("sender", s.Name()),
				slog.String("channel", intent.Channel),
				slog.String("subject", intent.Subject),
				slog.String("error", err.Error()),
			)
			continue
		}

		d.logger.DebugContext(ctx, "notification delivered",
			slog.String("sender", s.Name()),
			slog.String("channel", intent.Channel),
			slog.String("subject", intent.Subject),
		)
	}
}
