package identity_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"voltcart/internal/domain"
	"voltcart/internal/identity"
	"voltcart/internal/repos"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newProvider(t *testing.T, opts ...identity.Option) (*identity.Local, *repos.UserRepo) {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	users := repos.NewUserRepo(db)
	opts = append([]identity.Option{identity.WithBcryptCost(bcrypt.MinCost)}, opts...)
	return identity.NewLocal(users, "test-secret", opts...), users
}

func TestSignInIssuesVerifiableToken(t *testing.T) {
	ctx := context.Background()
	p, _ := newProvider(t)
	_, err := p.CreateUser(ctx, "Ada@Example.com", "Ada", "correct horse", nil)
	require.NoError(t, err)

	s, err := p.SignInWithPassword(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)
	require.Equal(t, "bearer", s.TokenType)
	require.NotEmpty(t, s.AccessToken)
	require.Equal(t, "ada@example.com", s.User.Email)

	u, err := p.GetUser(ctx, s.AccessToken)
	require.NoError(t, err)
	require.Equal(t, s.User.ID, u.ID)
	require.NotEmpty(t, u.Hash)
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	p, _ := newProvider(t)
	_, err := p.CreateUser(ctx, "ada@example.com", "Ada", "correct horse", nil)
	require.NoError(t, err)

	_, err = p.SignInWithPassword(ctx, "ada@example.com", "wrong password")
	require.ErrorIs(t, err, identity.ErrInvalidCredentials)

	_, err = p.SignInWithPassword(ctx, "nobody@example.com", "correct horse")
	require.ErrorIs(t, err, identity.ErrInvalidCredentials)
}

func TestSignOutRevokesToken(t *testing.T) {
	ctx := context.Background()
	p, _ := newProvider(t)
	_, err := p.CreateUser(ctx, "ada@example.com", "Ada", "correct horse", nil)
	require.NoError(t, err)
	s, err := p.SignInWithPassword(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)

	require.NoError(t, p.SignOut(ctx, s.AccessToken))

	_, err = p.GetUser(ctx, s.AccessToken)
	require.ErrorIs(t, err, identity.ErrInvalidToken)
	require.ErrorIs(t, p.SignOut(ctx, s.AccessToken), identity.ErrInvalidToken)
}

func TestExpiredTokenIsRejected(t *testing.T) {
	ctx := context.Background()
	clk := &clock{t: time.Now()}
	p, _ := newProvider(t, identity.WithClock(clk.Now), identity.WithTTL(time.Minute))
	_, err := p.CreateUser(ctx, "ada@example.com", "Ada", "correct horse", nil)
	require.NoError(t, err)
	s, err := p.SignInWithPassword(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)

	clk.Advance(2 * time.Minute)
	_, err = p.GetSession(ctx, s.AccessToken)
	require.ErrorIs(t, err, identity.ErrInvalidToken)
}

func TestForeignTokensAreRejected(t *testing.T) {
	ctx := context.Background()
	p, users := newProvider(t)
	u, err := p.CreateUser(ctx, "ada@example.com", "Ada", "correct horse", nil)
	require.NoError(t, err)
	require.NoError(t, users.BindSession(ctx, "6b0f3c62-3f7e-4d8e-9a55-0c1d2e3f4a5b", u.ID, time.Now().Add(time.Hour)))

	c := jwt.MapClaims{
		"sub": u.ID,
		"sid": "6b0f3c62-3f7e-4d8e-9a55-0c1d2e3f4a5b",
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	wrongKey, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, err = p.GetUser(ctx, wrongKey)
	require.ErrorIs(t, err, identity.ErrInvalidToken)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, c).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = p.GetUser(ctx, unsigned)
	require.ErrorIs(t, err, identity.ErrInvalidToken)

	_, err = p.GetUser(ctx, "not-a-jwt")
	require.ErrorIs(t, err, identity.ErrInvalidToken)
}

func TestAuthStateEventsAreRelayed(t *testing.T) {
	ctx := context.Background()
	p, _ := newProvider(t)
	u, err := p.CreateUser(ctx, "ada@example.com", "Ada", "correct horse", nil)
	require.NoError(t, err)

	var got []identity.Event
	unsubscribe := p.OnAuthStateChange(func(ev identity.Event, s *identity.Session) {
		require.NotNil(t, s)
		got = append(got, ev)
	})

	s, err := p.SignInWithPassword(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)
	updated, err := p.SetAppMetadata(ctx, u.ID, domain.JSONMap{"is_admin": true})
	require.NoError(t, err)
	require.True(t, updated.IsAdmin())
	require.NoError(t, p.SignOut(ctx, s.AccessToken))

	unsubscribe()
	_, err = p.SignInWithPassword(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)

	require.Equal(t, []identity.Event{identity.SignedIn, identity.UserUpdated, identity.SignedOut}, got)
}

func TestUnknownEmailComparesAtConfiguredCost(t *testing.T) {
	p, _ := newProvider(t, identity.WithBcryptCost(bcrypt.MinCost+1))
	cost, err := bcrypt.Cost(p.DummyHash())
	require.NoError(t, err)
	require.Equal(t, bcrypt.MinCost+1, cost)

	def := identity.NewLocal(nil, "test-secret")
	cost, err = bcrypt.Cost(def.DummyHash())
	require.NoError(t, err)
	require.Equal(t, bcrypt.DefaultCost, cost)
}
