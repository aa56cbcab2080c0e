package domain

import "time"

// Invoice status constants.
const (
	InvoiceStatusDraft     = "draft"
	InvoiceStatusSent      = "sent"
	InvoiceStatusPaid      = "paid"
	InvoiceStatusOverdue   = "overdue"
	InvoiceStatusCancelled = "cancelled"
)

// Invoice is the net-30 billing record for invoice-method orders. Amount is
// copied from the order total at creation and never recomputed.
type Invoice struct {
	ID                string     `json:"id"`
	OrderID           string     `json:"order_id"`
	CustomerID        string     `json:"customer_id"`
	InvoiceNumber     string     `json:"invoice_number"`
	Amount            int64      `json:"amount"`
	DueDate           time.Time  `json:"due_date"`
	Status            string     `json:"status"`
	ProviderPaymentID string     `json:"provider_payment_id,omitempty"`
	SentDate          *time.Time `json:"sent_date,omitempty"`
	PaidDate          *time.Time `json:"paid_date,omitempty"`
	PaidAmount        int64      `json:"paid_amount,omitempty"`
	Notes             string     `json:"notes,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// AllowedInvoiceTransitions defines which invoice status transitions are valid.
// paid and cancelled are terminal.
func AllowedInvoiceTransitions() map[string][]string {
	return map[string][]string{
		InvoiceStatusDraft:     {InvoiceStatusSent, InvoiceStatusCancelled},
		InvoiceStatusSent:      {InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled},
		InvoiceStatusOverdue:   {InvoiceStatusPaid, InvoiceStatusCancelled},
		InvoiceStatusPaid:      {},
		InvoiceStatusCancelled: {},
	}
}

// CanTransitionTo checks if the invoice can move to the target status.
func (i *Invoice) CanTransitionTo(target string) bool {
	allowed, ok := AllowedInvoiceTransitions()[i.Status]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}
