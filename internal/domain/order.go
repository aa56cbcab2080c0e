package domain

import "time"

// Order status constants, in strict forward lifecycle order.
const (
	OrderStatusPendingPayment  = "pending_payment"
	OrderStatusPaymentReceived = "payment_received"
	OrderStatusBeingFulfilled  = "being_fulfilled"
	OrderStatusShipped         = "shipped"
	OrderStatusDelivered       = "delivered"
	OrderStatusFollowUp        = "follow_up"
)

// Payment method constants.
const (
	PaymentMethodCard    = "card"
	PaymentMethodInvoice = "invoice"
)

// Order represents a wholesale order. All currency amounts are integer cents.
// Status is written only by the workflow; orders are never deleted.
type Order struct {
	ID                string      `json:"id"`
	OrderNumber       string      `json:"order_number"`
	CustomerID        string      `json:"customer_id"`
	Status            string      `json:"status"`
	PaymentMethod     string      `json:"payment_method"`
	Subtotal          int64       `json:"subtotal"`
	DiscountPercent   int         `json:"discount_percent"`
	DiscountAmount    int64       `json:"discount_amount"`
	Total             int64       `json:"total"`
	ProviderPaymentID string      `json:"provider_payment_id,omitempty"`
	SessionReference  string      `json:"session_reference,omitempty"`
	CheckoutURL       string      `json:"checkout_url,omitempty"`
	CartReference     string      `json:"cart_reference,omitempty"`
	InvoiceTerms      string      `json:"invoice_terms,omitempty"`
	ShippingAddress   string      `json:"shipping_address,omitempty"`
	TrackingNumber    string      `json:"tracking_number,omitempty"`
	ShippedDate       *time.Time  `json:"shipped_date,omitempty"`
	DeliveredDate     *time.Time  `json:"delivered_date,omitempty"`
	FollowUpDate      *time.Time  `json:"follow_up_date,omitempty"`
	FollowUpSent      bool        `json:"follow_up_sent"`
	Notes             string      `json:"notes,omitempty"`
	Items             []OrderItem `json:"items,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// OrderItem is a line item. UnitPrice is a snapshot of the product's retail
// price at checkout time, not the live price. Immutable once created.
type OrderItem struct {
	ID        string `json:"id"`
	OrderID   string `json:"order_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	LineTotal int64  `json:"line_total"`
}

// ValidOrderStatuses returns all valid order statuses in lifecycle order.
func ValidOrderStatuses() []string {
	return []string{
		OrderStatusPendingPayment,
		OrderStatusPaymentReceived,
		OrderStatusBeingFulfilled,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusFollowUp,
	}
}

// IsValidOrderStatus checks if a status string is valid.
func IsValidOrderStatus(status string) bool {
	for _, s := range ValidOrderStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// ValidPaymentMethods returns the accepted payment methods.
func ValidPaymentMethods() []string {
	return []string{PaymentMethodCard, PaymentMethodInvoice}
}

// IsValidPaymentMethod checks if a payment method string is valid.
func IsValidPaymentMethod(method string) bool {
	for _, m := range ValidPaymentMethods() {
		if m == method {
			return true
		}
	}
	return false
}
