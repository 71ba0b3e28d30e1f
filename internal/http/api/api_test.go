package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voltcart/internal/apperr"
	"voltcart/internal/domain"
	"voltcart/internal/identity"
	"voltcart/internal/log"
	"voltcart/internal/ratelimit"
	"voltcart/internal/services"
	"voltcart/internal/validate"
)

type stubProvider struct {
	users map[string]*domain.User
	calls int
}

func (s *stubProvider) SignInWithPassword(context.Context, string, string) (*identity.Session, error) {
	return nil, identity.ErrInvalidCredentials
}
func (s *stubProvider) SignOut(context.Context, string) error { return nil }
func (s *stubProvider) GetSession(context.Context, string) (*identity.Session, error) {
	return nil, identity.ErrInvalidToken
}
func (s *stubProvider) GetUser(_ context.Context, token string) (*domain.User, error) {
	s.calls++
	if u, ok := s.users[token]; ok {
		return u, nil
	}
	return nil, identity.ErrInvalidToken
}
func (s *stubProvider) OnAuthStateChange(identity.Listener) func() { return func() {} }

type fixture struct {
	app  *fiber.App
	prov *stubProvider
	logs *bytes.Buffer
	p    *Pipeline
}

func newFixture(t *testing.T, production bool) *fixture {
	t.Helper()
	prov := &stubProvider{users: map[string]*domain.User{
		"admin-token": {ID: "u-admin", AppMetadata: domain.JSONMap{"is_admin": true}},
		"user-token":  {ID: "u-shopper", UserMetadata: domain.JSONMap{"is_admin": true}},
	}}
	var buf bytes.Buffer
	l := log.New(log.Options{Mode: log.Production, Out: &buf})
	p := &Pipeline{
		Limiter:    ratelimit.New(),
		Auth:       services.NewAuthService(prov, l),
		Log:        l,
		Production: production,
		Timeout:    time.Second,
	}
	app := fiber.New(fiber.Config{ErrorHandler: p.ErrorHandler})
	return &fixture{app: app, prov: prov, logs: &buf, p: p}
}

func (f *fixture) do(t *testing.T, method, path, token, body string) (int, map[string]any, http.Header) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m), string(raw))
	return resp.StatusCode, m, resp.Header
}

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	sc := bufio.NewScanner(bytes.NewReader(buf.Bytes()))
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m), sc.Text())
		out = append(out, m)
	}
	return out
}

func errMessage(m map[string]any) string {
	e, _ := m["error"].(map[string]any)
	s, _ := e["message"].(string)
	return s
}

func TestMissingBearerNeverReachesProvider(t *testing.T) {
	f := newFixture(t, true)
	reached := false
	f.app.Get("/admin", f.p.Route(RouteOpts{Access: Admin}, func(c *fiber.Ctx) error {
		reached = true
		return Success(c, fiber.StatusOK, nil, "")
	}))

	status, body, _ := f.do(t, "GET", "/admin", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Missing or invalid authorization header", errMessage(body))
	assert.False(t, reached)
	assert.Zero(t, f.prov.calls)

	status, body, _ = f.do(t, "GET", "/admin", "stale-token", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Invalid or expired token", errMessage(body))
	assert.Equal(t, 1, f.prov.calls)
}

func TestAdminGate(t *testing.T) {
	f := newFixture(t, true)
	f.app.Get("/admin", f.p.Route(RouteOpts{Access: Admin}, func(c *fiber.Ctx) error {
		return Success(c, fiber.StatusOK, fiber.Map{"id": CurrentUser(c).ID}, "ok")
	}))

	status, body, _ := f.do(t, "GET", "/admin", "user-token", "")
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "Admin access required", errMessage(body))

	status, body, _ = f.do(t, "GET", "/admin", "admin-token", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "u-admin", body["data"].(map[string]any)["id"])
}

func TestOneLogEntryPerRequest(t *testing.T) {
	f := newFixture(t, true)
	f.app.Get("/ok", f.p.Route(RouteOpts{}, func(c *fiber.Ctx) error {
		return Success(c, fiber.StatusOK, []string{}, "")
	}))
	f.app.Get("/gone", f.p.Route(RouteOpts{}, func(c *fiber.Ctx) error {
		return apperr.NotFound("Product")
	}))

	f.do(t, "GET", "/ok", "", "")
	entries := logLines(t, f.logs)
	require.Len(t, entries, 1)
	assert.Equal(t, "API Request", entries[0]["message"])
	ctx := entries[0]["context"].(map[string]any)
	assert.EqualValues(t, 200, ctx["status"])
	assert.Equal(t, "/ok", ctx["path"])

	f.logs.Reset()
	status, body, _ := f.do(t, "GET", "/gone", "", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body["error"].(map[string]any)["code"])
	entries = logLines(t, f.logs)
	require.Len(t, entries, 1)
	assert.Equal(t, "warn", entries[0]["level"])
	assert.Equal(t, "API Error: Product not found", entries[0]["message"])
}

func TestRateLimitRunsFirst(t *testing.T) {
	f := newFixture(t, true)
	policy := ratelimit.Policy{Name: "test", Max: 2, Window: time.Minute}
	f.app.Get("/admin", f.p.Route(RouteOpts{Limit: policy, Access: Admin}, func(c *fiber.Ctx) error {
		return Success(c, fiber.StatusOK, nil, "")
	}))

	for i := 0; i < 2; i++ {
		status, _, hdr := f.do(t, "GET", "/admin", "", "")
		require.Equal(t, fiber.StatusUnauthorized, status)
		assert.Equal(t, "2", hdr.Get("X-RateLimit-Limit"))
		assert.Equal(t, "1m", hdr.Get("X-RateLimit-Window"))
	}
	f.logs.Reset()

	status, body, hdr := f.do(t, "GET", "/admin", "admin-token", "")
	assert.Equal(t, fiber.StatusTooManyRequests, status)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", body["error"].(map[string]any)["code"])
	assert.Equal(t, "0", hdr.Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, hdr.Get("Retry-After"))
	assert.Zero(t, f.prov.calls)

	entries := logLines(t, f.logs)
	require.Len(t, entries, 1)
	assert.Equal(t, "rate_limit_exceeded", entries[0]["context"].(map[string]any)["security_event"])
}

func TestMountRejectsUnlistedMethod(t *testing.T) {
	f := newFixture(t, true)
	f.p.Mount(f.app, "/things", map[string]Endpoint{
		fiber.MethodGet:  {Handler: func(c *fiber.Ctx) error { return Success(c, fiber.StatusOK, "got", "") }},
		fiber.MethodPost: {Handler: func(c *fiber.Ctx) error { return Success(c, fiber.StatusCreated, "made", "") }},
	})

	status, body, _ := f.do(t, "POST", "/things", "", "")
	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "made", body["data"])

	status, body, hdr := f.do(t, "PATCH", "/things", "", "")
	assert.Equal(t, fiber.StatusMethodNotAllowed, status)
	assert.Equal(t, "Method PATCH not allowed", errMessage(body))
	assert.Equal(t, "GET, POST", hdr.Get("Allow"))
}

func TestInternalErrorsHiddenInProduction(t *testing.T) {
	boom := func(c *fiber.Ctx) error { return errors.New("pq: relation secret_table does not exist") }

	prod := newFixture(t, true)
	prod.app.Get("/x", prod.p.Route(RouteOpts{}, boom))
	status, body, _ := prod.do(t, "GET", "/x", "", "")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	e := body["error"].(map[string]any)
	assert.Equal(t, "Internal server error", e["message"])
	assert.Equal(t, "INTERNAL_ERROR", e["code"])
	assert.Nil(t, e["details"])
	entries := logLines(t, prod.logs)
	require.Len(t, entries, 1)
	assert.Equal(t, "error", entries[0]["level"])

	dev := newFixture(t, false)
	dev.app.Get("/x", dev.p.Route(RouteOpts{}, boom))
	_, body, _ = dev.do(t, "GET", "/x", "", "")
	e = body["error"].(map[string]any)
	assert.Contains(t, e["message"], "secret_table")
	require.NotNil(t, e["details"])
	assert.Contains(t, e["details"].(map[string]any)["stack"], "InternalError")
}

func TestParseBody(t *testing.T) {
	f := newFixture(t, true)
	f.app.Post("/brands", f.p.Route(RouteOpts{}, func(c *fiber.Ctx) error {
		in, err := ParseBody(c, validate.ValidateBrand)
		if err != nil {
			return err
		}
		return Success(c, fiber.StatusCreated, in.Slug, "")
	}))

	status, body, _ := f.do(t, "POST", "/brands", "", `{"name":`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Invalid JSON in request body", errMessage(body))

	status, body, _ = f.do(t, "POST", "/brands", "", `{"name":"Volt","slug":"Not A Slug"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	e := body["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_ERROR", e["code"])
	assert.Contains(t, e["message"], "slug")
	assert.NotEmpty(t, e["fields"])

	status, body, _ = f.do(t, "POST", "/brands", "", `{"name":"Volt","slug":"volt-labs"}`)
	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "volt-labs", body["data"])
}

func TestPathIDAndQuery(t *testing.T) {
	f := newFixture(t, true)
	f.app.Get("/products/:id", f.p.Route(RouteOpts{}, func(c *fiber.Ctx) error {
		id, err := PathID(c, "id", "product")
		if err != nil {
			return err
		}
		return Success(c, fiber.StatusOK, fiber.Map{"id": id, "q": ParseQuery(c)}, "")
	}))

	status, body, _ := f.do(t, "GET", "/products/not-a-uuid", "", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Invalid product ID format", errMessage(body))

	status, body, _ = f.do(t, "GET", "/products/3F2504E0-4F89-41D3-9A0C-0305E82C3301?tag=a&tag=b", "", "")
	require.Equal(t, fiber.StatusOK, status)
	data := body["data"].(map[string]any)
	assert.Equal(t, "3f2504e0-4f89-41d3-9a0c-0305e82c3301", data["id"])
	assert.Equal(t, []any{"a", "b"}, data["q"].(map[string]any)["tag"])
}

func TestWindowLabel(t *testing.T) {
	assert.Equal(t, "15m", window(15*time.Minute))
	assert.Equal(t, "1h", window(time.Hour))
	assert.Equal(t, "30s", window(30*time.Second))
}

func TestMeasure(t *testing.T) {
	var buf bytes.Buffer
	l := log.New(log.Options{Mode: log.Production, Out: &buf})
	n, err := Measure(l, "ping", nil, func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Zero(t, buf.Len(), "debug is silent in production")

	_, err = Measure(l, "ping", map[string]any{"db": "sqlite"}, func() (int, error) { return 0, errors.New("down") })
	require.Error(t, err)
	entries := logLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "Performance: ping failed", entries[0]["message"])
}
