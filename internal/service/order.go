package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/erinb-maker-radio/banwell-wholesale/internal/domain"
	"github.com/erinb-maker-radio/banwell-wholesale/internal/event"
	"github.com/erinb-maker-radio/banwell-wholesale/internal/notifier"
	"github.com/erinb-maker-radio/banwell-wholesale/internal/repository"
	"github.com/erinb-maker-radio/banwell-wholesale/internal/workflow"
	apperrors "github.com/erinb-maker-radio/banwell-wholesale/pkg/errors"
)

// OrderService reads orders and advances them through the fulfillment
// workflow. Status changes always go through workflow.Apply; everything else
// about an order is corrected through CorrectOrder, which never touches
// status.
type OrderService struct {
	orders     repository.OrderRepository
	customers  repository.CustomerRepository
	dispatcher *notifier.Dispatcher
	producer   *event.Producer
	logger     *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orders repository.OrderRepository,
	customers repository.CustomerRepository,
	dispatcher *notifier.Dispatcher,
	producer *event.Producer,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		orders:     orders,
		customers:  customers,
		dispatcher: dispatcher,
		producer:   producer,
		logger:     logger,
	}
}

// Get returns an order with its items.
func (s *OrderService) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.orders.GetByID(ctx, id)
}

// List returns orders matching the filter, newest first, with the total count.
func (s *OrderService) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, int, error) {
	return s.orders.List(ctx, filter)
}

// TransitionInput holds the parameters for a workflow step.
type TransitionInput struct {
	Status         string `json:"status" validate:"required"`
	TrackingNumber string `json:"tracking_number,omitempty"`
	Actor          string `json:"-"`
}

// Transition advances an order one workflow step. The update and its audit
// log entry commit atomically; notifications and events follow afterwards and
// never fail the transition.
func (s *OrderService) Transition(ctx context.Context, orderID string, input TransitionInput) (*domain.Order, error) {
	if !domain.IsValidOrderStatus(input.Status) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown order status %q", input.Status))
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}

	customer, err := s.customers.GetByID(ctx, order.CustomerID)
	if err != nil {
		// Transition still proceeds; only customer notifications are lost.
		s.logger.WarnContext(ctx, "customer lookup failed during transition",
			slog.String("order_id", orderID),
			slog.String("error", err.Error()),
		)
		customer = nil
	}

	oldStatus := order.Status
	result, err := workflow.Apply(*order, customer, input.Status, workflow.Input{
		TrackingNumber: input.TrackingNumber,
		Actor:          input.Actor,
	}, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err := s.orders.UpdateWithLog(ctx, &result.Order, &result.Communication); err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}

	s.dispatcher.Dispatch(ctx, result.Intents)
	if err := s.producer.PublishOrderStatusChanged(ctx, &result.Order, oldStatus); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.status_changed event",
			slog.String("order_id", result.Order.ID),
			slog.String("error", err.Error()),
		)
	}

	return &result.Order, nil
}

// CorrectOrderInput holds the correctable order fields. Nil means unchanged.
type CorrectOrderInput struct {
	ShippingAddress *string `json:"shipping_address,omitempty"`
	TrackingNumber  *string `json:"tracking_number,omitempty"`
	Notes           *string `json:"notes,omitempty"`
	Actor           string  `json:"-"`
}

// CorrectOrder fixes operational details of an order without touching its
// status. Every correction is recorded in the customer's communication log.
func (s *OrderService) CorrectOrder(ctx context.Context, orderID string, input CorrectOrderInput) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}

	changed := false
	if input.ShippingAddress != nil && *input.ShippingAddress != order.ShippingAddress {
		order.ShippingAddress = *input.ShippingAddress
		changed = true
	}
	if input.TrackingNumber != nil && *input.TrackingNumber != order.TrackingNumber {
		order.TrackingNumber = *input.TrackingNumber
		changed = true
	}
	if input.Notes != nil && *input.Notes != order.Notes {
		order.Notes = *input.Notes
		changed = true
	}
	if !changed {
		return order, nil
	}

	now := time.Now().UTC()
	order.UpdatedAt = now

	actor := input.Actor
	if actor == "" {
		actor = workflow.ActorAdmin
	}
	comm := &domain.Communication{
		ID:         uuid.New().String(),
		CustomerID: order.CustomerID,
		Type:       domain.CommunicationTypeNote,
		Subject:    fmt.Sprintf("Order %s corrected", order.OrderNumber),
		Content:    "Order details corrected by " + actor + ".",
		Date:       now,
		LoggedBy:   actor,
		CreatedAt:  now,
	}

	if err := s.orders.UpdateWithLog(ctx, order, comm); err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}
	return order, nil
}

// FollowUpSweepResult summarizes one follow-up sweep run.
type FollowUpSweepResult struct {
	Processed int    `json:"processed"`
	Sent      int    `json:"sent"`
	Message   string `json:"message"`
}

// RunFollowUpSweep finds delivered orders whose 30-day follow-up is due and
// advances each to follow_up as the system actor, sending the reorder
// reminder. A failure on one order is logged and the sweep continues.
func (s *OrderService) RunFollowUpSweep(ctx context.Context, asOf time.Time) (*FollowUpSweepResult, error) {
	due, err := s.orders.ListFollowUpDue(ctx, asOf)
	if err != nil {
		return nil, fmt.Errorf("list follow-ups due: %w", err)
	}

	result := &FollowUpSweepResult{Processed: len(due)}
	for i := range due {
		order := due[i]

		customer, err := s.customers.GetByID(ctx, order.CustomerID)
		if err != nil {
			s.logger.ErrorContext(ctx, "follow-up skipped: customer lookup failed",
				slog.String("order_id", order.ID),
				slog.String("error", err.Error()),
			)
			continue
		}

		applied, err := workflow.Apply(order, customer, domain.OrderStatusFollowUp, workflow.Input{
			Actor: workflow.ActorSystem,
		}, asOf)
		if err != nil {
			s.logger.ErrorContext(ctx, "follow-up skipped: workflow rejected order",
				slog.String("order_id", order.ID),
				slog.String("status", order.Status),
				slog.String("error", err.Error()),
			)
			continue
		}

		if err := s.orders.UpdateWithLog(ctx, &applied.Order, &applied.Communication); err != nil {
			s.logger.ErrorContext(ctx, "follow-up skipped: update failed",
				slog.String("order_id", order.ID),
				slog.String("error", err.Error()),
			)
			continue
		}

		s.dispatcher.Dispatch(ctx, applied.Intents)
		if err := s.producer.PublishFollowUpSent(ctx, &applied.Order); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish followup.sent event",
				slog.String("order_id", applied.Order.ID),
				slog.String("error", err.Error()),
			)
		}
		result.Sent++
	}

	result.Message = fmt.Sprintf("Processed %d orders, sent %d reminders", result.Processed, result.Sent)
	s.logger.InfoContext(ctx, "follow-up sweep completed",
		slog.Int("processed", result.Processed),
		slog.Int("sent", result.Sent),
	)
	return result, nil
}
