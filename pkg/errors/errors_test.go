package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	err := NotFound("order", "ord-123")

	assert.Contains(t, err.Error(), "NOT_FOUND")
	assert.Contains(t, err.Error(), "ord-123")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestInvalidTransition(t *testing.T) {
	err := InvalidTransition("pending_payment", "shipped")

	require.True(t, errors.Is(err, ErrInvalidTransition))
	assert.Equal(t, http.StatusUnprocessableEntity, err.Status)
	assert.Contains(t, err.Message, "pending_payment")
	assert.Contains(t, err.Message, "shipped")
}

func TestEmptyCart(t *testing.T) {
	err := EmptyCart()

	assert.True(t, errors.Is(err, ErrEmptyCart))
	assert.Equal(t, http.StatusBadRequest, err.Status)
}

func TestExternalService(t *testing.T) {
	err := ExternalService("square", "payment link creation failed")

	assert.True(t, errors.Is(err, ErrExternalService))
	assert.Equal(t, http.StatusBadGateway, err.Status)
	assert.Contains(t, err.Message, "square")
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"app error", NotFound("customer", "c1"), http.StatusNotFound},
		{"wrapped app error", fmt.Errorf("outer: %w", EmptyCart()), http.StatusBadRequest},
		{"sentinel not found", ErrNotFound, http.StatusNotFound},
		{"sentinel invalid input", ErrInvalidInput, http.StatusBadRequest},
		{"sentinel invalid transition", ErrInvalidTransition, http.StatusUnprocessableEntity},
		{"sentinel external", ErrExternalService, http.StatusBadGateway},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
