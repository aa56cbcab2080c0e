// Package mock provides an in-memory payment provider for development and
// tests. Checkout links point at a fake URL and every customer resolves.
package mock

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/erinb-maker-radio/banwell-wholesale/internal/provider"
)

// Provider is a fake payment provider.
type Provider struct {
	counter atomic.Int64
}

// New creates a mock provider.
func New() *Provider {
	return &Provider{}
}

// CreateCheckoutLink returns a deterministic fake payment link.
func (p *Provider) CreateCheckoutLink(_ context.Context, params provider.CheckoutLinkParams) (*provider.CheckoutLink, error) {
	n := p.counter.Add(1)
	return &provider.CheckoutLink{
		URL:           fmt.Sprintf("https://pay.example.com/l/%s-%d", params.OrderID, n),
		PaymentLinkID: fmt.Sprintf("plink-%s-%d", params.OrderID, n),
	}, nil
}

// EnsureCustomer returns the existing ID when present, a fake one otherwise.
func (p *Provider) EnsureCustomer(_ context.Context, email, _, existingID string) (string, error) {
	if existingID != "" {
		return existingID, nil
	}
	return "mock-customer-" + email, nil
}
