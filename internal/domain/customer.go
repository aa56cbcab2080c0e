package domain

import (
	"time"

	"github.com/erinb-maker-radio/banwell-wholesale/internal/pricing"
)

// Customer status constants.
const (
	CustomerStatusActive   = "active"
	CustomerStatusInactive = "inactive"
	CustomerStatusPending  = "pending"
)

// Customer represents a wholesale business account.
type Customer struct {
	ID                 string            `json:"id"`
	Email              string            `json:"email"`
	BusinessName       string            `json:"business_name"`
	ContactName        string            `json:"contact_name"`
	Phone              string            `json:"phone,omitempty"`
	Address            string            `json:"address,omitempty"`
	City               string            `json:"city,omitempty"`
	State              string            `json:"state,omitempty"`
	Zip                string            `json:"zip,omitempty"`
	Website            string            `json:"website,omitempty"`
	Notes              string            `json:"notes,omitempty"`
	Status             string            `json:"status"`
	DiscountTier       pricing.TierLevel `json:"discount_tier"`
	ProviderCustomerID string            `json:"provider_customer_id,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// CuratedProduct pins one product to a customer's personalized catalog.
// Entries are ordered by SortOrder; at most one entry exists per customer
// and product pair.
type CuratedProduct struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customer_id"`
	ProductID  string    `json:"product_id"`
	SortOrder  int       `json:"sort_order"`
	Product    *Product  `json:"product,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ValidCustomerStatuses returns all valid customer statuses.
func ValidCustomerStatuses() []string {
	return []string{CustomerStatusActive, CustomerStatusInactive, CustomerStatusPending}
}

// IsValidCustomerStatus checks if a status string is valid.
func IsValidCustomerStatus(status string) bool {
	for _, s := range ValidCustomerStatuses() {
		if s == status {
			return true
		}
	}
	return false
}
