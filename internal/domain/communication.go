package domain

import "time"

// Communication type constants.
const (
	CommunicationTypeCall            = "call"
	CommunicationTypeEmail           = "email"
	CommunicationTypeMeeting         = "meeting"
	CommunicationTypeNote            = "note"
	CommunicationTypeOrderPlaced     = "order_placed"
	CommunicationTypePaymentReceived = "payment_received"
	CommunicationTypeShipped         = "shipped"
	CommunicationTypeFollowUp        = "follow_up"
)

// Communication is one entry in a customer's append-only audit trail. Entries
// are never edited or deleted.
type Communication struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customer_id"`
	Type       string    `json:"type"`
	Subject    string    `json:"subject,omitempty"`
	Content    string    `json:"content,omitempty"`
	Date       time.Time `json:"date"`
	LoggedBy   string    `json:"logged_by,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ValidCommunicationTypes returns all valid communication types.
func ValidCommunicationTypes() []string {
	return []string{
		CommunicationTypeCall,
		CommunicationTypeEmail,
		CommunicationTypeMeeting,
		CommunicationTypeNote,
		CommunicationTypeOrderPlaced,
		CommunicationTypePaymentReceived,
		CommunicationTypeShipped,
		CommunicationTypeFollowUp,
	}
}

// IsValidCommunicationType checks if a type string is valid.
func IsValidCommunicationType(t string) bool {
	for _, v := range ValidCommunicationTypes() {
		if v == t {
			return true
		}
	}
	return false
}
