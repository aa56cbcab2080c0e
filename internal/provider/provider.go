// Package provider abstracts the external payment processor. The square
// subpackage is the production implementation; mock is for development.
package provider

import "context"

// LineItem is one order line shown on the hosted checkout page.
type LineItem struct {
	Name      string
	Quantity  int
	UnitPrice int64 // cents
}

// CheckoutLinkParams describes the hosted payment link to create.
type CheckoutLinkParams struct {
	OrderID       string
	OrderNumber   string
	Total         int64 // cents
	CustomerEmail string
	LineItems     []LineItem
	RedirectURL   string
}

// CheckoutLink is a hosted payment page created for an order. PaymentLinkID is
// stored on the order as the session reference so the payment webhook can be
// matched back.
type CheckoutLink struct {
	URL           string
	PaymentLinkID string
}

// PaymentProvider is the interface to the external payment processor.
type PaymentProvider interface {
	// CreateCheckoutLink creates a hosted payment page for the order total.
	CreateCheckoutLink(ctx context.Context, params CheckoutLinkParams) (*CheckoutLink, error)

	// EnsureCustomer returns a provider customer ID for the email, reusing
	// existingID when it is still valid and creating a new record otherwise.
	EnsureCustomer(ctx context.Context, email, companyName, existingID string) (string, error)
}
