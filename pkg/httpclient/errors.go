package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/erinb-maker-radio/banwell-wholesale/pkg/errors"
)

// ProviderError is a single error entry in a payment-provider error payload
// (Square and compatible APIs return an "errors" array of these).
type ProviderError struct {
	Category string `json:"category"`
	Code     string `json:"code"`
	Detail   string `json:"detail"`
	Field    string `json:"field,omitempty"`
}

// ProviderErrorResponse is the error envelope returned by the payment provider.
type ProviderErrorResponse struct {
	Errors []ProviderError `json:"errors"`
}

// ParseResponseError reads the body of a non-2xx HTTP response from the payment
// provider and translates it into an appropriate AppError. If the body matches
// the provider's errors-array format, the codes and details are preserved.
// Otherwise a generic external-service error carries the status and raw body.
//
// The caller should only invoke this when resp.StatusCode indicates an error
// (i.e., not 2xx). The response body is fully consumed and closed.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB limit
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", serviceName, resp.StatusCode, err)
	}

	var provider ProviderErrorResponse
	if json.Unmarshal(bodyBytes, &provider) == nil && len(provider.Errors) > 0 {
		return mapProviderError(resp.StatusCode, provider.Errors, serviceName)
	}

	return apperrors.ExternalService(serviceName, fmt.Sprintf("status %d: %s", resp.StatusCode, string(bodyBytes)))
}

// mapProviderError translates provider error entries into an AppError that
// preserves the error semantics. Client errors (4xx) indicate a bad request on
// our side; everything else is an external-service failure.
func mapProviderError(status int, errs []ProviderError, serviceName string) error {
	details := make([]string, 0, len(errs))
	for _, e := range errs {
		if e.Field != "" {
			details = append(details, fmt.Sprintf("%s (%s, field %s)", e.Detail, e.Code, e.Field))
		} else {
			details = append(details, fmt.Sprintf("%s (%s)", e.Detail, e.Code))
		}
	}
	msg := fmt.Sprintf("%s: %s", serviceName, strings.Join(details, "; "))

	switch {
	case status == http.StatusUnauthorized:
		return apperrors.Unauthorized(msg)
	case status == http.StatusForbidden:
		return apperrors.Forbidden(msg)
	case status == http.StatusNotFound:
		return apperrors.NotFound(serviceName, errs[0].Code)
	case status == http.StatusConflict:
		return apperrors.Conflict(msg)
	case IsClientError(status):
		return apperrors.InvalidInput(msg)
	default:
		return apperrors.ExternalService(serviceName, strings.Join(details, "; "))
	}
}

// IsClientError returns true if the HTTP status code is a 4xx client error.
// Client errors are not retried: the request was rejected, not lost.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
