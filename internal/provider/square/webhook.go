package square

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
)

// Webhook event types that mark a payment as settled.
const (
	EventPaymentCompleted = "payment.completed"
	EventPaymentUpdated   = "payment.updated"
)

// WebhookPayment is the payment object carried by a webhook event.
type WebhookPayment struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	PaymentLinkID string `json:"payment_link_id"`
}

// WebhookEvent is the envelope Square posts to the webhook endpoint.
type WebhookEvent struct {
	EventID string `json:"event_id"`
	Type    string `json:"type"`
	Data    struct {
		Object struct {
			Payment *WebhookPayment `json:"payment"`
		} `json:"object"`
	} `json:"data"`
}

// ParseWebhookEvent decodes a webhook request body.
func ParseWebhookEvent(body []byte) (*WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// VerifySignature checks the x-square-hmacsha256-signature header. Square
// signs the notification URL concatenated with the raw body using HMAC-SHA256
// of the subscription's signature key, base64 encoded.
func VerifySignature(signatureKey, notificationURL string, body []byte, signature string) bool {
	if signatureKey == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(signatureKey))
	mac.Write([]byte(notificationURL))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
