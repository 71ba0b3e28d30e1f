package handlers_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"voltcart/internal/config"
	"voltcart/internal/domain"
	"voltcart/internal/http/handlers"
	"voltcart/internal/identity"
	"voltcart/internal/log"
	"voltcart/internal/repos"
	"voltcart/internal/services"
)

// lockedBuffer collects log output written from request goroutines.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) entries(t *testing.T) []map[string]any {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []map[string]any
	sc := bufio.NewScanner(bytes.NewReader(b.buf.Bytes()))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		var m map[string]any
		if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
			t.Fatalf("log line is not JSON: %v\n%s", err, sc.Text())
		}
		out = append(out, m)
	}
	return out
}

func (b *lockedBuffer) reset() {
	b.mu.Lock()
	b.buf.Reset()
	b.mu.Unlock()
}

type testApp struct {
	app  *fiber.App
	db   *sqlx.DB
	idp  *identity.Local
	logs *lockedBuffer
}

func newTestApp(t *testing.T, mutate ...func(*config.Config)) *testApp {
	t.Helper()
	cfg := config.Defaults()
	cfg.DBDSN = ":memory:"
	cfg.JWTSecret = "test-signing-secret"
	cfg.Version = "test"
	for _, m := range mutate {
		m(&cfg)
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logs := &lockedBuffer{}
	mode := log.Production
	if cfg.IsDevelopment() {
		mode = log.Development
	}
	l := log.New(log.Options{Mode: mode, Out: logs})
	idp := identity.NewLocal(repos.NewUserRepo(db), cfg.SigningSecret(), identity.WithBcryptCost(bcrypt.MinCost))
	auth := services.NewAuthService(idp, l)

	app := handlers.NewApp(handlers.NewDeps(db, cfg, auth, l))
	return &testApp{app: app, db: db, idp: idp, logs: logs}
}

// token signs in a fresh user and returns the bearer token.
func (ta *testApp) token(t *testing.T, email string, admin bool) string {
	t.Helper()
	ctx := context.Background()
	md := domain.JSONMap{}
	if admin {
		md["is_admin"] = true
	}
	if _, err := ta.idp.CreateUser(ctx, email, "Tester", "correct-horse", md); err != nil {
		t.Fatalf("create user: %v", err)
	}
	sess, err := ta.idp.SignInWithPassword(ctx, email, "correct-horse")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	return sess.AccessToken
}

type reply struct {
	status int
	header http.Header
	body   map[string]any
	raw    string
}

func (r reply) errMessage() string {
	e, _ := r.body["error"].(map[string]any)
	s, _ := e["message"].(string)
	return s
}

func (r reply) errCode() string {
	e, _ := r.body["error"].(map[string]any)
	s, _ := e["code"].(string)
	return s
}

func (r reply) data() map[string]any {
	d, _ := r.body["data"].(map[string]any)
	return d
}

func (r reply) list() []any {
	d, _ := r.body["data"].([]any)
	return d
}

type reqOpt func(*http.Request)

func bearer(tok string) reqOpt {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) }
}

func header(k, v string) reqOpt {
	return func(r *http.Request) { r.Header.Set(k, v) }
}

func (ta *testApp) do(t *testing.T, method, path string, body any, opts ...reqOpt) reply {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, o := range opts {
		o(req)
	}
	resp, err := ta.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)

	r := reply{status: resp.StatusCode, header: resp.Header, raw: string(raw)}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &r.body)
	}
	return r
}

// requestEntries keeps the per-request summaries, dropping audit and
// security trail entries.
func requestEntries(all []map[string]any) []map[string]any {
	var out []map[string]any
	for _, e := range all {
		msg, _ := e["message"].(string)
		if msg == "API Request" || strings.HasPrefix(msg, "API Error") {
			out = append(out, e)
		}
	}
	return out
}

func countRows(t *testing.T, db *sqlx.DB, table string) int {
	t.Helper()
	var n int
	if err := db.Get(&n, "SELECT COUNT(*) FROM "+table); err != nil {
		t.Fatal(err)
	}
	return n
}

func checkoutPayload(total string, lines ...map[string]any) map[string]any {
	addr := map[string]any{"street": "8223 Paint Branch Dr", "city": "College Park", "state": "MD", "zip": "20742", "country": "US"}
	return map[string]any{
		"customer_name":    "Tester",
		"customer_email":   "t@example.com",
		"shipping_address": addr,
		"billing_address":  addr,
		"total_amount":     json.Number(total),
		"items":            lines,
	}
}
