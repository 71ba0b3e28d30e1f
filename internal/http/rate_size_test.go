package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeletePolicyThrottlesBeforeAuth(t *testing.T) {
	ta := newTestApp(t)
	path := "/api/admin/products/33333333-3333-4333-8333-333333333301"

	for i := 0; i < 10; i++ {
		r := ta.do(t, http.MethodDelete, path, nil)
		require.Equal(t, http.StatusUnauthorized, r.status, "request %d", i+1)
	}
	r := ta.do(t, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusTooManyRequests, r.status, r.raw)
	assert.Equal(t, "10", r.header.Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", r.header.Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, r.header.Get("Retry-After"))

	// Reads are counted separately.
	r = ta.do(t, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusUnauthorized, r.status)
}

func TestPoliciesKeyedByClientIP(t *testing.T) {
	ta := newTestApp(t)
	path := "/api/admin/products/33333333-3333-4333-8333-333333333301"
	for i := 0; i < 10; i++ {
		ta.do(t, http.MethodDelete, path, nil, header("X-Forwarded-For", "198.51.100.1"))
	}
	r := ta.do(t, http.MethodDelete, path, nil, header("X-Forwarded-For", "198.51.100.1"))
	require.Equal(t, http.StatusTooManyRequests, r.status)

	r = ta.do(t, http.MethodDelete, path, nil, header("X-Forwarded-For", "198.51.100.2"))
	assert.Equal(t, http.StatusUnauthorized, r.status)
}

func TestStorefrontLimiter(t *testing.T) {
	ta := newTestApp(t)
	for i := 0; i < 60; i++ {
		r := ta.do(t, http.MethodGet, "/api/brands", nil)
		require.Equal(t, http.StatusOK, r.status, "request %d", i+1)
	}
	r := ta.do(t, http.MethodGet, "/api/brands", nil)
	assert.Equal(t, http.StatusTooManyRequests, r.status)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", r.errCode())
}
