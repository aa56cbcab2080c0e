package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/erinb-maker-radio/banwell-wholesale/internal/domain"
	apperrors "github.com/erinb-maker-radio/banwell-wholesale/pkg/errors"
)

type invoiceFixture struct {
	svc       *InvoiceService
	invoices  *mockInvoiceRepository
	customers *mockCustomerRepository
	email     *capturingSender
}

func newInvoiceFixture() *invoiceFixture {
	invoices := new(mockInvoiceRepository)
	customers := new(mockCustomerRepository)
	dispatcher, email, _ := newTestDispatcher()
	cfg := CheckoutConfig{BaseURL: "https://wholesale.example.com", AdminEmail: "owner@example.com"}
	svc := NewInvoiceService(cfg, invoices, customers, dispatcher, newTestLogger())
	return &invoiceFixture{svc: svc, invoices: invoices, customers: customers, email: email}
}

func draftInvoice() *domain.Invoice {
	return &domain.Invoice{
		ID:            "inv-1",
		OrderID:       "order-1",
		CustomerID:    "cust-1",
		InvoiceNumber: "BDI-2026-004",
		Amount:        27000,
		DueDate:       time.Date(2026, 9, 27, 0, 0, 0, 0, time.UTC),
		Status:        domain.InvoiceStatusDraft,
	}
}

func TestUpdateInvoiceStatus_SendEmailsCustomer(t *testing.T) {
	f := newInvoiceFixture()
	ctx := context.Background()

	f.invoices.On("GetByID", ctx, "inv-1").Return(draftInvoice(), nil)
	f.invoices.On("Update", ctx, mock.AnythingOfType("*domain.Invoice")).Return(nil)
	f.customers.On("GetByID", ctx, "cust-1").Return(testCustomer(), nil)

	inv, err := f.svc.UpdateStatus(ctx, "inv-1", UpdateInvoiceInput{Status: domain.InvoiceStatusSent})

	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusSent, inv.Status)
	require.NotNil(t, inv.SentDate)

	emails := f.email.intents()
	require.Len(t, emails, 1)
	assert.Equal(t, "buyer@shopco.com", emails[0].Recipient)
	assert.Contains(t, emails[0].Subject, "Invoice BDI-2026-004")
	assert.Contains(t, emails[0].Body, "$270.00")
}

func TestUpdateInvoiceStatus_PaidRecordsAmount(t *testing.T) {
	f := newInvoiceFixture()
	ctx := context.Background()

	sent := draftInvoice()
	sent.Status = domain.InvoiceStatusSent
	f.invoices.On("GetByID", ctx, "inv-1").Return(sent, nil)
	f.invoices.On("Update", ctx, mock.AnythingOfType("*domain.Invoice")).Return(nil)

	inv, err := f.svc.UpdateStatus(ctx, "inv-1", UpdateInvoiceInput{Status: domain.InvoiceStatusPaid})

	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPaid, inv.Status)
	require.NotNil(t, inv.PaidDate)
	// Defaults to the full invoice amount.
	assert.Equal(t, int64(27000), inv.PaidAmount)
	assert.Empty(t, f.email.intents())
}

func TestUpdateInvoiceStatus_PartialPayment(t *testing.T) {
	f := newInvoiceFixture()
	ctx := context.Background()

	sent := draftInvoice()
	sent.Status = domain.InvoiceStatusSent
	f.invoices.On("GetByID", ctx, "inv-1").Return(sent, nil)
	f.invoices.On("Update", ctx, mock.AnythingOfType("*domain.Invoice")).Return(nil)

	inv, err := f.svc.UpdateStatus(ctx, "inv-1", UpdateInvoiceInput{
		Status:     domain.InvoiceStatusPaid,
		PaidAmount: 20000,
		Notes:      "short paid, remainder waived",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(20000), inv.PaidAmount)
	assert.Equal(t, "short paid, remainder waived", inv.Notes)
}

func TestUpdateInvoiceStatus_InvalidTransition(t *testing.T) {
	f := newInvoiceFixture()
	ctx := context.Background()

	f.invoices.On("GetByID", ctx, "inv-1").Return(draftInvoice(), nil)

	inv, err := f.svc.UpdateStatus(ctx, "inv-1", UpdateInvoiceInput{Status: domain.InvoiceStatusPaid})

	assert.Nil(t, inv)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	f.invoices.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateInvoiceStatus_TerminalStateRejected(t *testing.T) {
	f := newInvoiceFixture()
	ctx := context.Background()

	paid := draftInvoice()
	paid.Status = domain.InvoiceStatusPaid
	f.invoices.On("GetByID", ctx, "inv-1").Return(paid, nil)

	_, err := f.svc.UpdateStatus(ctx, "inv-1", UpdateInvoiceInput{Status: domain.InvoiceStatusCancelled})

	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}
