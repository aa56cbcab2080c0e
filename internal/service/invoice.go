package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/erinb-maker-radio/banwell-wholesale/internal/domain"
	"github.com/erinb-maker-radio/banwell-wholesale/internal/notifier"
	"github.com/erinb-maker-radio/banwell-wholesale/internal/repository"
	"github.com/erinb-maker-radio/banwell-wholesale/internal/workflow"
	apperrors "github.com/erinb-maker-radio/banwell-wholesale/pkg/errors"
)

// InvoiceService manages net-30 invoices.
type InvoiceService struct {
	cfg        CheckoutConfig
	invoices   repository.InvoiceRepository
	customers  repository.CustomerRepository
	dispatcher *notifier.Dispatcher
	logger     *slog.Logger
}

// NewInvoiceService creates a new invoice service.
func NewInvoiceService(
	cfg CheckoutConfig,
	invoices repository.InvoiceRepository,
	customers repository.CustomerRepository,
	dispatcher *notifier.Dispatcher,
	logger *slog.Logger,
) *InvoiceService {
	return &InvoiceService{
		cfg:        cfg,
		invoices:   invoices,
		customers:  customers,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Get returns an invoice by id.
func (s *InvoiceService) Get(ctx context.Context, id string) (*domain.Invoice, error) {
	return s.invoices.GetByID(ctx, id)
}

// GetByOrderID returns the invoice of an order.
func (s *InvoiceService) GetByOrderID(ctx context.Context, orderID string) (*domain.Invoice, error) {
	return s.invoices.GetByOrderID(ctx, orderID)
}

// List returns invoices matching the filter with the total count.
func (s *InvoiceService) List(ctx context.Context, filter repository.InvoiceFilter) ([]domain.Invoice, int, error) {
	return s.invoices.List(ctx, filter)
}

// UpdateInvoiceInput holds the parameters for an invoice status change.
type UpdateInvoiceInput struct {
	Status     string `json:"status" validate:"required"`
	PaidAmount int64  `json:"paid_amount,omitempty" validate:"gte=0"`
	Notes      string `json:"notes,omitempty"`
}

// UpdateStatus moves an invoice through its lifecycle. Sending records the
// sent date and emails the customer; paying records the paid date and amount.
func (s *InvoiceService) UpdateStatus(ctx context.Context, id string, input UpdateInvoiceInput) (*domain.Invoice, error) {
	inv, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load invoice: %w", err)
	}

	if !inv.CanTransitionTo(input.Status) {
		return nil, apperrors.InvalidTransition(inv.Status, input.Status)
	}

	now := time.Now().UTC()
	oldStatus := inv.Status
	inv.Status = input.Status
	inv.UpdatedAt = now
	if input.Notes != "" {
		inv.Notes = input.Notes
	}

	switch input.Status {
	case domain.InvoiceStatusSent:
		inv.SentDate = &now
	case domain.InvoiceStatusPaid:
		inv.PaidDate = &now
		if input.PaidAmount > 0 {
			inv.PaidAmount = input.PaidAmount
		} else {
			inv.PaidAmount = inv.Amount
		}
	}

	if err := s.invoices.Update(ctx, inv); err != nil {
		return nil, fmt.Errorf("update invoice: %w", err)
	}

	s.logger.InfoContext(ctx, "invoice status updated",
		slog.String("invoice_id", inv.ID),
		slog.String("invoice_number", inv.InvoiceNumber),
		slog.String("from", oldStatus),
		slog.String("to", inv.Status),
	)

	if inv.Status == domain.InvoiceStatusSent {
		s.notifyInvoiceSent(ctx, inv)
	}
	return inv, nil
}

func (s *InvoiceService) notifyInvoiceSent(ctx context.Context, inv *domain.Invoice) {
	customer, err := s.customers.GetByID(ctx, inv.CustomerID)
	if err != nil {
		s.logger.WarnContext(ctx, "customer lookup failed, invoice email skipped",
			slog.String("invoice_id", inv.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	s.dispatcher.Dispatch(ctx, []notifier.Intent{
		{
			Channel:   notifier.ChannelEmail,
			Recipient: customer.Email,
			Subject:   fmt.Sprintf("Invoice %s - Banwell Designs", inv.InvoiceNumber),
			Body: fmt.Sprintf(
				"Hi %s,\n\nYour invoice %s for $%s is attached. Payment is due by %s (net 30).\n\nThank you,\nBanwell Designs",
				customer.ContactName, inv.InvoiceNumber, workflow.FormatCents(inv.Amount),
				inv.DueDate.Format("January 2, 2006")),
		},
	})
}
