package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/erinb-maker-radio/banwell-wholesale/internal/domain"
	"github.com/erinb-maker-radio/banwell-wholesale/internal/event"
	"github.com/erinb-maker-radio/banwell-wholesale/internal/notifier"
	"github.com/erinb-maker-radio/banwell-wholesale/internal/provider/square"
	"github.com/erinb-maker-radio/banwell-wholesale/internal/repository"
	"github.com/erinb-maker-radio/banwell-wholesale/internal/workflow"
)

const (
	webhookDedupPrefix = "webhook:event:"
	webhookDedupTTL    = 24 * time.Hour
)

// DedupStore remembers processed webhook event IDs so redeliveries are
// acknowledged without acting twice.
type DedupStore interface {
	// MarkProcessed records the event ID. It returns false when the ID was
	// already recorded.
	MarkProcessed(ctx context.Context, eventID string) (bool, error)
	// Clear forgets the event ID so a provider redelivery is processed again.
	Clear(ctx context.Context, eventID string) error
}

// RedisDedupStore implements DedupStore on a shared Redis instance.
type RedisDedupStore struct {
	client *redis.Client
}

// NewRedisDedupStore creates a Redis-backed dedup store.
func NewRedisDedupStore(client *redis.Client) *RedisDedupStore {
	return &RedisDedupStore{client: client}
}

// MarkProcessed sets the event key if absent, with a 24h TTL. Provider
// redeliveries arrive within minutes, so a day of memory is plenty.
func (s *RedisDedupStore) MarkProcessed(ctx context.Context, eventID string) (bool, error) {
	ok, err := s.client.SetNX(ctx, webhookDedupPrefix+eventID, 1, webhookDedupTTL).Result()
	if err != nil {
		return false, fmt.Errorf("mark webhook event processed: %w", err)
	}
	return ok, nil
}

// Clear deletes the event key.
func (s *RedisDedupStore) Clear(ctx context.Context, eventID string) error {
	if err := s.client.Del(ctx, webhookDedupPrefix+eventID).Err(); err != nil {
		return fmt.Errorf("clear webhook event: %w", err)
	}
	return nil
}

// ReconciliationService applies asynchronous payment notifications to orders.
// It is deliberately tolerant: events that cannot be matched to exactly one
// pending order are acknowledged and logged rather than retried forever.
type ReconciliationService struct {
	orders     repository.OrderRepository
	customers  repository.CustomerRepository
	dedup      DedupStore
	dispatcher *notifier.Dispatcher
	producer   *event.Producer
	logger     *slog.Logger
}

// NewReconciliationService creates a new reconciliation service.
func NewReconciliationService(
	orders repository.OrderRepository,
	customers repository.CustomerRepository,
	dedup DedupStore,
	dispatcher *notifier.Dispatcher,
	producer *event.Producer,
	logger *slog.Logger,
) *ReconciliationService {
	return &ReconciliationService{
		orders:     orders,
		customers:  customers,
		dedup:      dedup,
		dispatcher: dispatcher,
		producer:   producer,
		logger:     logger,
	}
}

// PaymentEventInput is the normalized form of a provider payment event.
type PaymentEventInput struct {
	EventID       string
	Type          string
	PaymentID     string
	PaymentStatus string
	PaymentLinkID string
}

// HandlePaymentEvent processes one payment webhook event. A nil return means
// the event should be acknowledged; only transient failures (storage errors)
// are returned so the provider redelivers.
func (s *ReconciliationService) HandlePaymentEvent(ctx context.Context, input PaymentEventInput) (err error) {
	log := s.logger.With(
		slog.String("event_id", input.EventID),
		slog.String("event_type", input.Type),
	)

	if input.Type != square.EventPaymentCompleted && input.Type != square.EventPaymentUpdated {
		log.DebugContext(ctx, "ignoring unhandled webhook event type")
		return nil
	}
	if input.PaymentStatus != "" && input.PaymentStatus != "COMPLETED" {
		log.DebugContext(ctx, "ignoring payment event with non-completed status",
			slog.String("payment_status", input.PaymentStatus))
		return nil
	}
	if input.PaymentLinkID == "" {
		log.WarnContext(ctx, "payment event has no payment link id")
		return nil
	}

	if s.dedup != nil && input.EventID != "" {
		first, derr := s.dedup.MarkProcessed(ctx, input.EventID)
		if derr != nil {
			return derr
		}
		if !first {
			log.InfoContext(ctx, "duplicate webhook event ignored")
			return nil
		}
		// A transient failure below means the provider will redeliver; the
		// redelivery must not be mistaken for a duplicate.
		defer func() {
			if err == nil {
				return
			}
			if cerr := s.dedup.Clear(ctx, input.EventID); cerr != nil {
				log.ErrorContext(ctx, "failed to clear dedup key after transient failure",
					slog.String("error", cerr.Error()),
				)
			}
		}()
	}

	orders, err := s.orders.ListBySessionReference(ctx, input.PaymentLinkID)
	if err != nil {
		return fmt.Errorf("match payment link to orders: %w", err)
	}

	var candidates []domain.Order
	for _, o := range orders {
		if o.Status == domain.OrderStatusPendingPayment {
			candidates = append(candidates, o)
		}
	}
	switch len(candidates) {
	case 1:
		// Fall through to reconciliation.
	case 0:
		log.WarnContext(ctx, "no pending order matches payment link",
			slog.String("payment_link_id", input.PaymentLinkID),
			slog.Int("matched_orders", len(orders)),
		)
		return nil
	default:
		log.ErrorContext(ctx, "multiple pending orders match payment link; manual review needed",
			slog.String("payment_link_id", input.PaymentLinkID),
			slog.Int("candidates", len(candidates)),
		)
		return nil
	}

	order := candidates[0]

	// List queries skip items; reload the full order for the audit trail.
	full, err := s.orders.GetByID(ctx, order.ID)
	if err != nil {
		return fmt.Errorf("load matched order: %w", err)
	}

	customer, err := s.customers.GetByID(ctx, full.CustomerID)
	if err != nil {
		log.WarnContext(ctx, "customer lookup failed during reconciliation",
			slog.String("order_id", full.ID),
			slog.String("error", err.Error()),
		)
		customer = nil
	}

	result, err := workflow.Apply(*full, customer, domain.OrderStatusPaymentReceived, workflow.Input{
		Actor:             workflow.ActorSystem,
		ProviderPaymentID: input.PaymentID,
	}, time.Now().UTC())
	if err != nil {
		// A concurrent update won the race; the payment is already recorded.
		log.InfoContext(ctx, "order no longer pending, acknowledging event",
			slog.String("order_id", full.ID),
			slog.String("status", full.Status),
		)
		return nil
	}

	if err := s.orders.UpdateWithLog(ctx, &result.Order, &result.Communication); err != nil {
		return fmt.Errorf("record payment on order: %w", err)
	}

	log.InfoContext(ctx, "payment reconciled",
		slog.String("order_id", result.Order.ID),
		slog.String("order_number", result.Order.OrderNumber),
		slog.String("payment_id", input.PaymentID),
	)

	s.dispatcher.Dispatch(ctx, result.Intents)
	if err := s.producer.PublishPaymentReceived(ctx, &result.Order); err != nil {
		log.ErrorContext(ctx, "failed to publish payment.received event",
			slog.String("order_id", result.Order.ID),
			slog.String("error", err.Error()),
		)
	}
	return nil
}
