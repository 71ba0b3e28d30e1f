package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voltcart/internal/domain"
)

func TestLoginSessionLogout(t *testing.T) {
	ta := newTestApp(t)
	_, err := ta.idp.CreateUser(context.Background(), "admin@voltcart.test", "Admin", "correct-horse", domain.JSONMap{"is_admin": true})
	require.NoError(t, err)

	r := ta.do(t, http.MethodPost, "/api/auth/login", map[string]any{"email": "admin@voltcart.test", "password": "correct-horse"})
	require.Equal(t, http.StatusOK, r.status, r.raw)
	assert.Equal(t, true, r.data()["isAdmin"])
	sess := r.data()["session"].(map[string]any)
	tok, _ := sess["access_token"].(string)
	require.NotEmpty(t, tok)
	assert.Equal(t, "bearer", sess["token_type"])

	r = ta.do(t, http.MethodGet, "/api/auth/session", nil, bearer(tok))
	require.Equal(t, http.StatusOK, r.status, r.raw)
	assert.NotNil(t, r.data()["session"])

	r = ta.do(t, http.MethodGet, "/api/admin/brands", nil, bearer(tok))
	require.Equal(t, http.StatusOK, r.status, r.raw)

	r = ta.do(t, http.MethodPost, "/api/auth/logout", nil, bearer(tok))
	require.Equal(t, http.StatusOK, r.status, r.raw)

	r = ta.do(t, http.MethodGet, "/api/auth/session", nil, bearer(tok))
	require.Equal(t, http.StatusOK, r.status)
	assert.Nil(t, r.data()["session"])

	r = ta.do(t, http.MethodGet, "/api/admin/brands", nil, bearer(tok))
	assert.Equal(t, http.StatusUnauthorized, r.status)
	assert.Equal(t, "Invalid or expired token", r.errMessage())
}

func TestLoginRejectsBadInput(t *testing.T) {
	ta := newTestApp(t)

	r := ta.do(t, http.MethodPost, "/api/auth/login", map[string]any{"email": "nobody", "password": "short"})
	require.Equal(t, http.StatusBadRequest, r.status, r.raw)
	assert.Equal(t, "VALIDATION_ERROR", r.errCode())

	r = ta.do(t, http.MethodPost, "/api/auth/login", map[string]any{"email": "nobody@voltcart.test", "password": "long-enough"})
	assert.Equal(t, http.StatusUnauthorized, r.status)
	assert.Equal(t, "Invalid login credentials", r.errMessage())
}

func TestLogoutRequiresBearer(t *testing.T) {
	ta := newTestApp(t)
	r := ta.do(t, http.MethodPost, "/api/auth/logout", nil)
	assert.Equal(t, http.StatusUnauthorized, r.status)
	assert.Equal(t, "Missing or invalid authorization header", r.errMessage())
}
