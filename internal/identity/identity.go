// Package identity is the identity provider behind the auth service: password
// sign-in, bearer token verification, sign-out and auth-state events.
package identity

import (
	"context"
	"errors"
	"time"

	"voltcart/internal/domain"
)

type Event string

const (
	SignedIn    Event = "SIGNED_IN"
	SignedOut   Event = "SIGNED_OUT"
	UserUpdated Event = "USER_UPDATED"
)

var (
	ErrInvalidCredentials = errors.New("Invalid login credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

type Session struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	ExpiresIn   int          `json:"expires_in"`
	User        *domain.User `json:"user"`
}

// Listener receives every auth-state change. Session is nil for events that
// carry no token, such as USER_UPDATED triggered by an admin.
type Listener func(Event, *Session)

type Provider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, accessToken string) error
	GetSession(ctx context.Context, accessToken string) (*Session, error)
	GetUser(ctx context.Context, accessToken string) (*domain.User, error)
	OnAuthStateChange(fn Listener) (unsubscribe func())
}

// UserStore is the persistence the local provider needs. repos.UserRepo
// satisfies it.
type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	ByEmail(ctx context.Context, email string) (*domain.User, error)
	ByID(ctx context.Context, id string) (*domain.User, error)
	SetAppMetadata(ctx context.Context, id string, md domain.JSONMap) error
	BindSession(ctx context.Context, sid, userID string, expires time.Time) error
	SessionActive(ctx context.Context, sid, userID string) (bool, error)
	UnbindSession(ctx context.Context, sid string) error
}
