// Package square implements the payment provider against the Square REST API.
package square

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/erinb-maker-radio/banwell-wholesale/internal/provider"
	apperrors "github.com/erinb-maker-radio/banwell-wholesale/pkg/errors"
	"github.com/erinb-maker-radio/banwell-wholesale/pkg/httpclient"
)

const (
	apiVersion  = "2024-01-18"
	serviceName = "square"
)

// Config holds Square API settings.
type Config struct {
	BaseURL     string
	AccessToken string
	// LocationID pins the location; when empty the first listed location is
	// used and cached.
	LocationID string
}

// Client is the Square payment provider. All outbound calls go through the
// circuit breaker.
type Client struct {
	cfg  Config
	http *httpclient.CircuitBreakerClient

	mu               sync.Mutex
	cachedLocationID string
}

// New creates a Square client.
func New(cfg Config, cb *httpclient.CircuitBreakerClient) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://connect.squareup.com"
	}
	return &Client{cfg: cfg, http: cb}
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return apperrors.Wrap(err, "marshal square request")
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return apperrors.Wrap(err, "build square request")
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	req.Header.Set("Square-Version", apiVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return apperrors.ExternalService(serviceName, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return httpclient.ParseResponseError(resp, serviceName)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return apperrors.ExternalService(serviceName, "decode response: "+err.Error())
		}
	}
	return nil
}

type money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type location struct {
	ID string `json:"id"`
}

// locationID returns the configured location or resolves and caches the
// account's first location.
func (c *Client) locationID(ctx context.Context) (string, error) {
	if c.cfg.LocationID != "" {
		return c.cfg.LocationID, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cachedLocationID != "" {
		return c.cachedLocationID, nil
	}

	var out struct {
		Locations []location `json:"locations"`
	}
	if err := c.do(ctx, http.MethodGet, "/v2/locations", nil, &out); err != nil {
		return "", err
	}
	if len(out.Locations) == 0 {
		return "", apperrors.ExternalService(serviceName, "no locations found")
	}

	c.cachedLocationID = out.Locations[0].ID
	return c.cachedLocationID, nil
}

type quickPay struct {
	Name       string `json:"name"`
	PriceMoney money  `json:"price_money"`
	LocationID string `json:"location_id"`
}

type checkoutOptions struct {
	RedirectURL           string `json:"redirect_url,omitempty"`
	AskForShippingAddress bool   `json:"ask_for_shipping_address"`
}

type createPaymentLinkRequest struct {
	IdempotencyKey  string          `json:"idempotency_key"`
	Description     string          `json:"description,omitempty"`
	CheckoutOptions checkoutOptions `json:"checkout_options"`
	QuickPay        quickPay        `json:"quick_pay"`
}

type paymentLink struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CreateCheckoutLink creates a hosted quick-pay payment link for the order
// total.
func (c *Client) CreateCheckoutLink(ctx context.Context, params provider.CheckoutLinkParams) (*provider.CheckoutLink, error) {
	locationID, err := c.locationID(ctx)
	if err != nil {
		return nil, err
	}

	req := createPaymentLinkRequest{
		IdempotencyKey: fmt.Sprintf("wholesale-%s-%d", params.OrderID, time.Now().UnixMilli()),
		Description:    fmt.Sprintf("Wholesale order %s", params.OrderNumber),
		CheckoutOptions: checkoutOptions{
			RedirectURL:           params.RedirectURL,
			AskForShippingAddress: false,
		},
		QuickPay: quickPay{
			Name:       fmt.Sprintf("Order %s", params.OrderNumber),
			PriceMoney: money{Amount: params.Total, Currency: "USD"},
			LocationID: locationID,
		},
	}

	var out struct {
		PaymentLink paymentLink `json:"payment_link"`
	}
	if err := c.do(ctx, http.MethodPost, "/v2/online-checkout/payment-links", req, &out); err != nil {
		return nil, err
	}
	if out.PaymentLink.ID == "" || out.PaymentLink.URL == "" {
		return nil, apperrors.ExternalService(serviceName, "payment link missing id or url")
	}

	return &provider.CheckoutLink{
		URL:           out.PaymentLink.URL,
		PaymentLinkID: out.PaymentLink.ID,
	}, nil
}

type createCustomerRequest struct {
	EmailAddress   string `json:"email_address"`
	CompanyName    string `json:"company_name,omitempty"`
	IdempotencyKey string `json:"idempotency_key"`
}

// EnsureCustomer returns a provider customer ID, reusing existingID when it
// still resolves and creating a new customer record otherwise.
func (c *Client) EnsureCustomer(ctx context.Context, email, companyName, existingID string) (string, error) {
	if existingID != "" {
		err := c.do(ctx, http.MethodGet, "/v2/customers/"+existingID, nil, nil)
		if err == nil {
			return existingID, nil
		}
		// Stale reference: fall through and create a new customer.
	}

	req := createCustomerRequest{
		EmailAddress:   email,
		CompanyName:    companyName,
		IdempotencyKey: uuid.NewString(),
	}

	var out struct {
		Customer struct {
			ID string `json:"id"`
		} `json:"customer"`
	}
	if err := c.do(ctx, http.MethodPost, "/v2/customers", req, &out); err != nil {
		return "", err
	}
	if out.Customer.ID == "" {
		return "", apperrors.ExternalService(serviceName, "customer response missing id")
	}
	return out.Customer.ID, nil
}
