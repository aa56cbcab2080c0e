package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheControl_SetsHeaderOnGet(t *testing.T) {
	handler := CacheControl(300)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, "public, max-age=300", rr.Header().Get("Cache-Control"))
}

func TestCacheControl_SkipsWrites(t *testing.T) {
	handler := CacheControl(300)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Empty(t, rr.Header().Get("Cache-Control"))
}
