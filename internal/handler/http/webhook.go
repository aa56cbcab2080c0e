package http

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/erinb-maker-radio/banwell-wholesale/internal/provider/square"
	"github.com/erinb-maker-radio/banwell-wholesale/internal/service"
	"github.com/erinb-maker-radio/banwell-wholesale/pkg/httputil"
)

// signatureHeader carries the provider's HMAC of the notification URL + body.
const signatureHeader = "x-square-hmacsha256-signature"

// WebhookHandler receives asynchronous payment notifications.
type WebhookHandler struct {
	service         *service.ReconciliationService
	signatureKey    string
	notificationURL string
	logger          *slog.Logger
}

// NewWebhookHandler creates a new webhook HTTP handler. The notification URL
// must match the URL registered with the provider exactly; it is part of the
// signed payload.
func NewWebhookHandler(svc *service.ReconciliationService, signatureKey, notificationURL string, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		service:         svc,
		signatureKey:    signatureKey,
		notificationURL: notificationURL,
		logger:          logger,
	}
}

// HandleSquare handles POST /api/v1/webhooks/square
func (h *WebhookHandler) HandleSquare(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "failed to read request body"},
		})
		return
	}

	if !square.VerifySignature(h.signatureKey, h.notificationURL, body, r.Header.Get(signatureHeader)) {
		h.logger.WarnContext(r.Context(), "webhook signature verification failed",
			slog.String("remote_addr", r.RemoteAddr),
		)
		httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: "invalid webhook signature"},
		})
		return
	}

	event, err := square.ParseWebhookEvent(body)
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "malformed webhook payload"},
		})
		return
	}

	input := service.PaymentEventInput{
		EventID: event.EventID,
		Type:    event.Type,
	}
	if payment := event.Data.Object.Payment; payment != nil {
		input.PaymentID = payment.ID
		input.PaymentStatus = payment.Status
		input.PaymentLinkID = payment.PaymentLinkID
	}
	if err := h.service.HandlePaymentEvent(r.Context(), input); err != nil {
		// Non-2xx makes the provider redeliver; reserved for transient faults.
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]bool{"received": true}})
}
