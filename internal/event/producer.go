// Package event publishes wholesale domain events to Kafka for downstream
// consumers (reporting, accounting sync). Publishing is best-effort: callers
// log failures and never roll back business state over them.
package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/erinb-maker-radio/banwell-wholesale/internal/domain"
	pkgkafka "github.com/erinb-maker-radio/banwell-wholesale/pkg/kafka"
)

// Kafka topic constants for wholesale domain events.
const (
	TopicOrderCreated       = "wholesale.order.created"
	TopicOrderStatusChanged = "wholesale.order.status_changed"
	TopicPaymentReceived    = "wholesale.payment.received"
	TopicInvoiceCreated     = "wholesale.invoice.created"
	TopicFollowUpSent       = "wholesale.followup.sent"
)

// Aggregate type constants.
const (
	AggregateTypeOrder   = "order"
	AggregateTypeInvoice = "invoice"
)

// Source identifier for events originating from this service.
const SourceWholesale = "wholesale-api"

// OrderCreatedData is the payload for an order.created event (full snapshot).
type OrderCreatedData struct {
	ID              string          `json:"id"`
	OrderNumber     string          `json:"order_number"`
	CustomerID      string          `json:"customer_id"`
	Status          string          `json:"status"`
	PaymentMethod   string          `json:"payment_method"`
	Items           []OrderItemData `json:"items"`
	Subtotal        int64           `json:"subtotal"`
	DiscountPercent int             `json:"discount_percent"`
	DiscountAmount  int64           `json:"discount_amount"`
	Total           int64           `json:"total"`
}

// OrderItemData is the event payload for an order item.
type OrderItemData struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	LineTotal int64  `json:"line_total"`
}

// OrderStatusChangedData is the payload for an order.status_changed event.
type OrderStatusChangedData struct {
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	OldStatus   string `json:"old_status"`
	NewStatus   string `json:"new_status"`
}

// PaymentReceivedData is the payload for a payment.received event.
type PaymentReceivedData struct {
	OrderID           string `json:"order_id"`
	OrderNumber       string `json:"order_number"`
	ProviderPaymentID string `json:"provider_payment_id"`
	Amount            int64  `json:"amount"`
}

// InvoiceCreatedData is the payload for an invoice.created event.
type InvoiceCreatedData struct {
	InvoiceID     string `json:"invoice_id"`
	InvoiceNumber string `json:"invoice_number"`
	OrderID       string `json:"order_id"`
	CustomerID    string `json:"customer_id"`
	Amount        int64  `json:"amount"`
	DueDate       string `json:"due_date"`
}

// FollowUpSentData is the payload for a followup.sent event.
type FollowUpSentData struct {
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	CustomerID  string `json:"customer_id"`
}

// Producer publishes wholesale domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishOrderCreated publishes an order.created event with the full order
// snapshot.
func (p *Producer) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	items := make([]OrderItemData, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemData{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
		}
	}

	data := OrderCreatedData{
		ID:              order.ID,
		OrderNumber:     order.OrderNumber,
		CustomerID:      order.CustomerID,
		Status:          order.Status,
		PaymentMethod:   order.PaymentMethod,
		Items:           items,
		Subtotal:        order.Subtotal,
		DiscountPercent: order.DiscountPercent,
		DiscountAmount:  order.DiscountAmount,
		Total:           order.Total,
	}

	event, err := pkgkafka.NewEvent(TopicOrderCreated, order.ID, AggregateTypeOrder, SourceWholesale, data)
	if err != nil {
		return fmt.Errorf("create order.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderCreated, event); err != nil {
		return fmt.Errorf("publish order.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.created event",
		slog.String("order_id", order.ID),
		slog.String("order_number", order.OrderNumber),
	)

	return nil
}

// PublishOrderStatusChanged publishes an order.status_changed event.
func (p *Producer) PublishOrderStatusChanged(ctx context.Context, order *domain.Order, oldStatus string) error {
	data := OrderStatusChangedData{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		OldStatus:   oldStatus,
		NewStatus:   order.Status,
	}

	event, err := pkgkafka.NewEvent(TopicOrderStatusChanged, order.ID, AggregateTypeOrder, SourceWholesale, data)
	if err != nil {
		return fmt.Errorf("create order.status_changed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderStatusChanged, event); err != nil {
		return fmt.Errorf("publish order.status_changed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.status_changed event",
		slog.String("order_id", order.ID),
		slog.String("old_status", oldStatus),
		slog.String("new_status", order.Status),
	)

	return nil
}

// PublishPaymentReceived publishes a payment.received event.
func (p *Producer) PublishPaymentReceived(ctx context.Context, order *domain.Order) error {
	data := PaymentReceivedData{
		OrderID:           order.ID,
		OrderNumber:       order.OrderNumber,
		ProviderPaymentID: order.ProviderPaymentID,
		Amount:            order.Total,
	}

	event, err := pkgkafka.NewEvent(TopicPaymentReceived, order.ID, AggregateTypeOrder, SourceWholesale, data)
	if err != nil {
		return fmt.Errorf("create payment.received event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicPaymentReceived, event); err != nil {
		return fmt.Errorf("publish payment.received event: %w", err)
	}

	p.logger.DebugContext(ctx, "published payment.received event",
		slog.String("order_id", order.ID),
		slog.String("provider_payment_id", order.ProviderPaymentID),
	)

	return nil
}

// PublishInvoiceCreated publishes an invoice.created event.
func (p *Producer) PublishInvoiceCreated(ctx context.Context, inv *domain.Invoice) error {
	data := InvoiceCreatedData{
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		OrderID:       inv.OrderID,
		CustomerID:    inv.CustomerID,
		Amount:        inv.Amount,
		DueDate:       inv.DueDate.Format("2006-01-02"),
	}

	event, err := pkgkafka.NewEvent(TopicInvoiceCreated, inv.ID, AggregateTypeInvoice, SourceWholesale, data)
	if err != nil {
		return fmt.Errorf("create invoice.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicInvoiceCreated, event); err != nil {
		return fmt.Errorf("publish invoice.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published invoice.created event",
		slog.String("invoice_id", inv.ID),
		slog.String("invoice_number", inv.InvoiceNumber),
	)

	return nil
}

// PublishFollowUpSent publishes a followup.sent event.
func (p *Producer) PublishFollowUpSent(ctx context.Context, order *domain.Order) error {
	data := FollowUpSentData{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		CustomerID:  order.CustomerID,
	}

	event, err := pkgkafka.NewEvent(TopicFollowUpSent, order.ID, AggregateTypeOrder, SourceWholesale, data)
	if err != nil {
		return fmt.Errorf("create followup.sent event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicFollowUpSent, event); err != nil {
		return fmt.Errorf("publish followup.sent event: %w", err)
	}

	p.logger.DebugContext(ctx, "published followup.sent event",
		slog.String("order_id", order.ID),
	)

	return nil
}
