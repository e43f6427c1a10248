package service

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/blake2b"

	"github.com/cascadeforum/portal/internal/core/domain"
	"github.com/cascadeforum/portal/internal/core/ports"
)

// Fixed keys under which a session caches its token and identity.
const (
	TokenKey    = "access_token"
	IdentityKey = "user"
)

// Session is the per-caller session context. It reads and writes the cached
// token and identity through a SessionStore, scoped by the session id.
type Session struct {
	store ports.SessionStore
	id    string
	ttl   time.Duration
	log   zerolog.Logger
	now   func() time.Time
}

// NewSession binds a session id to a store. An empty id yields a session that
// is never authenticated.
func NewSession(store ports.SessionStore, id string, ttl time.Duration, log zerolog.Logger) *Session {
	return &Session{store: store, id: id, ttl: ttl, log: log, now: time.Now}
}

// ID returns the opaque session id carried by the session cookie.
func (s *Session) ID() string {
	return s.id
}

// Token returns the cached bearer token, or "" when there is none.
func (s *Session) Token(ctx context.Context) string {
	v, ok := s.get(ctx, TokenKey)
	if !ok {
		return ""
	}
	return v
}

// IsAuthenticated reports whether a token is cached.
func (s *Session) IsAuthenticated(ctx context.Context) bool {
	return s.Token(ctx) != ""
}

// CurrentIdentity returns the cached identity. A missing, unreadable or
// malformed value is reported as absent, never as an error.
func (s *Session) CurrentIdentity(ctx context.Context) (*domain.Identity, bool) {
	raw, ok := s.get(ctx, IdentityKey)
	if !ok {
		return nil, false
	}

	var identity domain.Identity
	if err := json.Unmarshal([]byte(raw), &identity); err != nil {
		s.log.Warn().Err(err).Msg("discarding malformed cached identity")
		return nil, false
	}
	if !identity.Role.Valid() {
		s.log.Warn().Str("role", string(identity.Role)).Msg("discarding cached identity with unknown role")
		return nil, false
	}
	return &identity, true
}

// HasRole reports whether the cached identity ranks at least as high as
// required. An empty requirement means client.
func (s *Session) HasRole(ctx context.Context, required domain.Role) bool {
	identity, ok := s.CurrentIdentity(ctx)
	if !ok {
		return false
	}
	return identity.Role.Satisfies(required)
}

// Establish caches token and identity together.
func (s *Session) Establish(ctx context.Context, token string, identity domain.Identity) error {
	if s.id == "" {
		return errors.New("session: establish without session id")
	}
	if token == "" {
		return errors.New("session: empty token")
	}

	ttl, err := s.lifetime(token)
	if err != nil {
		return err
	}

	encoded, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("session: encode identity: %w", err)
	}

	return s.store.Set(ctx, map[string]string{
		s.key(TokenKey):    token,
		s.key(IdentityKey): string(encoded),
	}, ttl)
}

// UpdateIdentity replaces the cached identity, keeping the current token.
func (s *Session) UpdateIdentity(ctx context.Context, identity domain.Identity) error {
	token := s.Token(ctx)
	if token == "" {
		return domain.ErrAuthRejected
	}
	return s.Establish(ctx, token, identity)
}

// Logout clears token and identity together.
func (s *Session) Logout(ctx context.Context) error {
	if s.id == "" {
		return nil
	}
	return s.store.Clear(ctx, s.key(TokenKey), s.key(IdentityKey))
}

func (s *Session) get(ctx context.Context, name string) (string, bool) {
	if s.id == "" {
		return "", false
	}
	v, err := s.store.Get(ctx, s.key(name))
	if err != nil {
		if !errors.Is(err, ports.ErrKeyNotFound) {
			s.log.Warn().Err(err).Str("key", name).Msg("session store read failed")
		}
		return "", false
	}
	return v, true
}

func (s *Session) key(name string) string {
	return SessionKey(s.id, name)
}

// lifetime bounds the configured TTL by the token's own expiry when the token
// happens to be a JWT. The token stays opaque otherwise.
func (s *Session) lifetime(token string) (time.Duration, error) {
	ttl := s.ttl

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ttl, nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return ttl, nil
	}

	remaining := exp.Sub(s.now())
	if remaining <= 0 {
		return 0, fmt.Errorf("session: token already expired: %w", domain.ErrAuthRejected)
	}
	if ttl <= 0 || remaining < ttl {
		ttl = remaining
	}
	return ttl, nil
}

// SessionKey derives the store key for one value of a session. The session id
// is hashed so the store never holds live cookie values.
func SessionKey(sessionID, name string) string {
	return "session:" + hashID(sessionID) + ":" + name
}

// CheckoutKey derives the store key of a session's checkout flow for a registration.
func CheckoutKey(sessionID, registrationID string) string {
	return "checkout:" + hashID(sessionID) + ":" + registrationID
}

func hashID(id string) string {
	sum := blake2b.Sum256([]byte(id))
	return hex.EncodeToString(sum[:16])
}
