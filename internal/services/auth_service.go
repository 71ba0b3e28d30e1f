package services

import (
	"context"
	"errors"

	"voltcart/internal/apperr"
	"voltcart/internal/domain"
	"voltcart/internal/identity"
	"voltcart/internal/log"
)

// AuthService wraps the identity provider. Every call is scoped to the
// caller's access token; there is no process-wide "current user".
type AuthService struct {
	Provider identity.Provider
	Log      *log.Logger
}

func NewAuthService(p identity.Provider, l *log.Logger) *AuthService {
	return &AuthService{Provider: p, Log: l}
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*identity.Session, error) {
	sess, err := s.Provider.SignInWithPassword(ctx, email, password)
	if errors.Is(err, identity.ErrInvalidCredentials) {
		return nil, apperr.Authentication(err.Error())
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *AuthService) SignOut(ctx context.Context, accessToken string) error {
	err := s.Provider.SignOut(ctx, accessToken)
	if errors.Is(err, identity.ErrInvalidToken) {
		return apperr.Authentication("Invalid or expired token")
	}
	return err
}

// GetSession returns nil without error when the token does not verify.
func (s *AuthService) GetSession(ctx context.Context, accessToken string) (*identity.Session, error) {
	if accessToken == "" {
		return nil, nil
	}
	sess, err := s.Provider.GetSession(ctx, accessToken)
	if errors.Is(err, identity.ErrInvalidToken) {
		return nil, nil
	}
	return sess, err
}

// GetUser returns nil without error when the token does not verify.
func (s *AuthService) GetUser(ctx context.Context, accessToken string) (*domain.User, error) {
	if accessToken == "" {
		return nil, nil
	}
	u, err := s.Provider.GetUser(ctx, accessToken)
	if errors.Is(err, identity.ErrInvalidToken) {
		return nil, nil
	}
	return u, err
}

// IsAdmin trusts only the provider-managed app metadata. A user who sets the
// flag on their own metadata is reported, never promoted.
func (s *AuthService) IsAdmin(u *domain.User) bool {
	if u == nil {
		return false
	}
	if u.IsAdmin() {
		return true
	}
	if u.ClaimsAdmin() && s.Log != nil {
		s.Log.SecurityEvent(nil, "admin_claim_in_user_metadata", map[string]any{"user_id": u.ID})
	}
	return false
}

func (s *AuthService) OnAuthStateChange(fn identity.Listener) func() {
	return s.Provider.OnAuthStateChange(fn)
}
