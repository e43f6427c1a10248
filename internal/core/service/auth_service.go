package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/cascadeforum/portal/internal/core/domain"
	"github.com/cascadeforum/portal/internal/core/ports"
)

// AuthService implements login, signup and identity refresh on top of the
// backend's /auth endpoints.
type AuthService struct {
	backend ports.AuthBackend
	log     zerolog.Logger
}

func NewAuthService(backend ports.AuthBackend, log zerolog.Logger) *AuthService {
	return &AuthService{backend: backend, log: log}
}

// Login authenticates against the backend and caches the result in sess.
func (s *AuthService) Login(ctx context.Context, sess *Session, email, password string) (*domain.Identity, error) {
	res, err := s.backend.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if res.AccessToken == "" {
		return nil, fmt.Errorf("login: backend returned no token")
	}
	if !res.User.Role.Valid() {
		return nil, fmt.Errorf("login: backend returned unknown role %q", res.User.Role)
	}

	if err := sess.Establish(ctx, res.AccessToken, res.User); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.log.Info().
		Str("user_id", res.User.ID).
		Str("role", string(res.User.Role)).
		Msg("session established")

	identity := res.User
	return &identity, nil
}

// Register creates a client account. It does not log the caller in.
func (s *AuthService) Register(ctx context.Context, in ports.SignupInput) (*domain.Identity, error) {
	return s.backend.Register(ctx, in)
}

// Refresh re-reads the identity from the backend and updates the cache.
func (s *AuthService) Refresh(ctx context.Context, sess *Session) (*domain.Identity, error) {
	identity, err := s.backend.Me(ctx)
	if err != nil {
		return nil, err
	}
	if !identity.Role.Valid() {
		return nil, fmt.Errorf("refresh: backend returned unknown role %q", identity.Role)
	}
	if err := sess.UpdateIdentity(ctx, *identity); err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	return identity, nil
}
