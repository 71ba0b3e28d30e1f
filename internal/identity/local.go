package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"voltcart/internal/domain"
)

const tokenType = "bearer"

type claims struct {
	Email string `json:"email"`
	SID   string `json:"sid"`
	jwt.RegisteredClaims
}

// Local issues HS256 tokens for users stored in the application database.
// Every token is bound to a session row; signing out deletes the row, so the
// token stops verifying before it expires.
type Local struct {
	users  UserStore
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time

	// hashed at cost on first use; compared on unknown emails so both
	// failure paths cost one bcrypt compare at the same work factor
	dummyOnce sync.Once
	dummy     []byte

	mu        sync.RWMutex
	listeners map[int]Listener
	nextID    int
}

type Option func(*Local)

func WithTTL(d time.Duration) Option { return func(l *Local) { l.ttl = d } }

func WithBcryptCost(cost int) Option { return func(l *Local) { l.cost = cost } }

func WithClock(now func() time.Time) Option { return func(l *Local) { l.now = now } }

func NewLocal(users UserStore, secret string, opts ...Option) *Local {
	l := &Local{
		users:     users,
		secret:    []byte(secret),
		ttl:       time.Hour,
		cost:      bcrypt.DefaultCost,
		now:       time.Now,
		listeners: map[int]Listener{},
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

var _ Provider = (*Local)(nil)

func (l *Local) dummyHash() []byte {
	l.dummyOnce.Do(func() {
		l.dummy, _ = bcrypt.GenerateFromPassword([]byte("voltcart-dummy-password"), l.cost)
	})
	return l.dummy
}

func (l *Local) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	u, err := l.users.ByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		_ = bcrypt.CompareHashAndPassword(l.dummyHash(), []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	now := l.now()
	exp := now.Add(l.ttl)
	sid := uuid.NewString()
	if err := l.users.BindSession(ctx, sid, u.ID, exp); err != nil {
		return nil, fmt.Errorf("bind session: %w", err)
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: u.Email,
		SID:   sid,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			ID:        sid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}).SignedString(l.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	s := l.session(tok, exp, u)
	l.emit(SignedIn, s)
	return s, nil
}

func (l *Local) SignOut(ctx context.Context, accessToken string) error {
	s, c, err := l.verify(ctx, accessToken)
	if err != nil {
		return err
	}
	if err := l.users.UnbindSession(ctx, c.SID); err != nil {
		return fmt.Errorf("unbind session: %w", err)
	}
	l.emit(SignedOut, s)
	return nil
}

func (l *Local) GetSession(ctx context.Context, accessToken string) (*Session, error) {
	s, _, err := l.verify(ctx, accessToken)
	return s, err
}

func (l *Local) GetUser(ctx context.Context, accessToken string) (*domain.User, error) {
	s, _, err := l.verify(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return s.User, nil
}

func (l *Local) OnAuthStateChange(fn Listener) func() {
	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.listeners[id] = fn
	l.mu.Unlock()
	return func() {
		l.mu.Lock()
		delete(l.listeners, id)
		l.mu.Unlock()
	}
}

// CreateUser registers a user with a bcrypt hash of password. appMetadata is
// server-managed and is where the admin flag lives.
func (l *Local) CreateUser(ctx context.Context, email, name, password string, appMetadata domain.JSONMap) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), l.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &domain.User{
		Email:       email,
		Name:        name,
		Hash:        string(hash),
		AppMetadata: appMetadata,
	}
	if err := l.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (l *Local) SetAppMetadata(ctx context.Context, userID string, md domain.JSONMap) (*domain.User, error) {
	if err := l.users.SetAppMetadata(ctx, userID, md); err != nil {
		return nil, err
	}
	u, err := l.users.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	l.emit(UserUpdated, &Session{TokenType: tokenType, User: u})
	return u, nil
}

func (l *Local) verify(ctx context.Context, accessToken string) (*Session, *claims, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return nil, nil, ErrInvalidToken
	}
	var c claims
	_, err := jwt.ParseWithClaims(accessToken, &c, func(*jwt.Token) (any, error) {
		return l.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(l.now),
	)
	if err != nil || c.Subject == "" || c.SID == "" {
		return nil, nil, ErrInvalidToken
	}

	ok, err := l.users.SessionActive(ctx, c.SID, c.Subject)
	if err != nil {
		return nil, nil, fmt.Errorf("session lookup: %w", err)
	}
	if !ok {
		return nil, nil, ErrInvalidToken
	}
	u, err := l.users.ByID(ctx, c.Subject)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrInvalidToken
	}
	if err != nil {
		return nil, nil, fmt.Errorf("lookup user: %w", err)
	}
	return l.session(accessToken, c.ExpiresAt.Time, u), &c, nil
}

func (l *Local) session(tok string, exp time.Time, u *domain.User) *Session {
	in := int(exp.Sub(l.now()).Seconds())
	if in < 0 {
		in = 0
	}
	return &Session{AccessToken: tok, TokenType: tokenType, ExpiresAt: exp.UTC(), ExpiresIn: in, User: u}
}

func (l *Local) emit(ev Event, s *Session) {
	l.mu.RLock()
	fns := make([]Listener, 0, len(l.listeners))
	for _, fn := range l.listeners {
		fns = append(fns, fn)
	}
	l.mu.RUnlock()
	for _, fn := range fns {
		fn(ev, s)
	}
}
