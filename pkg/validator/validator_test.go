package validator

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkoutLine struct {
	ProductID string `validate:"required"`
	Quantity  int    `validate:"required,gt=0"`
}

func TestValidate_Success(t *testing.T) {
	line := checkoutLine{ProductID: "prod-1", Quantity: 3}
	assert.NoError(t, Validate(line))
}

func TestValidate_FieldErrors(t *testing.T) {
	line := checkoutLine{Quantity: 0}
	err := Validate(line)
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)

	fields := valErr.Fields()
	assert.Equal(t, "is required", fields["ProductID"])
	assert.Contains(t, fields, "Quantity")
}

func TestDecodeAndValidate(t *testing.T) {
	body := bytes.NewBufferString(`{"ProductID":"prod-1","Quantity":2}`)
	r := httptest.NewRequest("POST", "/", body)

	var line checkoutLine
	require.NoError(t, DecodeAndValidate(r, &line))
	assert.Equal(t, "prod-1", line.ProductID)

	r = httptest.NewRequest("POST", "/", bytes.NewBufferString(`{bad json`))
	assert.Error(t, DecodeAndValidate(r, &line))
}
