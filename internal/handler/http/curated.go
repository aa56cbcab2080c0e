package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/erinb-maker-radio/banwell-wholesale/internal/service"
	"github.com/erinb-maker-radio/banwell-wholesale/pkg/httputil"
	"github.com/erinb-maker-radio/banwell-wholesale/pkg/validator"
)

// CurationHandler handles HTTP requests for per-customer curated catalogs.
type CurationHandler struct {
	service *service.CurationService
	logger  *slog.Logger
}

// NewCurationHandler creates a new curation HTTP handler.
func NewCurationHandler(svc *service.CurationService, logger *slog.Logger) *CurationHandler {
	return &CurationHandler{service: svc, logger: logger}
}

// addCuratedRequest is the body for adding curated products.
type addCuratedRequest struct {
	ProductIDs []string `json:"product_ids" validate:"required,min=1,dive,uuid"`
}

// ListCurated handles GET /api/v1/customers/{id}/curated
func (h *CurationHandler) ListCurated(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	entries, err := h.service.ListCurated(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: entries})
}

// AddCurated handles POST /api/v1/customers/{id}/curated
func (h *CurationHandler) AddCurated(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req addCuratedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	entries, err := h.service.AddCurated(r.Context(), id.String(), req.ProductIDs)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: entries})
}

// RemoveCurated handles DELETE /api/v1/customers/{id}/curated/{productID}
func (h *CurationHandler) RemoveCurated(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	productID, ok := httputil.ParseUUID(w, chi.URLParam(r, "productID"))
	if !ok {
		return
	}

	if err := h.service.RemoveCurated(r.Context(), id.String(), productID.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
