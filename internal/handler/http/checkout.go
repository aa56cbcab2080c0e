// Package http exposes the wholesale platform's REST API.
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/erinb-maker-radio/banwell-wholesale/internal/service"
	"github.com/erinb-maker-radio/banwell-wholesale/pkg/httputil"
	"github.com/erinb-maker-radio/banwell-wholesale/pkg/validator"
)

// CheckoutHandler handles HTTP requests for checkout endpoints.
type CheckoutHandler struct {
	service *service.CheckoutService
	logger  *slog.Logger
}

// NewCheckoutHandler creates a new checkout HTTP handler.
func NewCheckoutHandler(svc *service.CheckoutService, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{service: svc, logger: logger}
}

// CheckoutRequest is the JSON request body for both checkout endpoints.
type CheckoutRequest struct {
	CustomerID      string                      `json:"customer_id" validate:"required,uuid"`
	Items           []service.CheckoutItemInput `json:"items" validate:"dive"`
	CartReference   string                      `json:"cart_reference"`
	ShippingAddress string                      `json:"shipping_address"`
	Notes           string                      `json:"notes"`
}

func (h *CheckoutHandler) decode(w http.ResponseWriter, r *http.Request) (service.CheckoutInput, bool) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return service.CheckoutInput{}, false
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return service.CheckoutInput{}, false
	}

	return service.CheckoutInput{
		CustomerID:      req.CustomerID,
		Items:           req.Items,
		CartReference:   req.CartReference,
		ShippingAddress: req.ShippingAddress,
		Notes:           req.Notes,
	}, true
}

// PayNow handles POST /api/v1/checkout/pay-now
func (h *CheckoutHandler) PayNow(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decode(w, r)
	if !ok {
		return
	}

	result, err := h.service.PayNow(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: result})
}

// RequestInvoice handles POST /api/v1/checkout/request-invoice
func (h *CheckoutHandler) RequestInvoice(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decode(w, r)
	if !ok {
		return
	}

	result, err := h.service.RequestInvoice(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: result})
}
