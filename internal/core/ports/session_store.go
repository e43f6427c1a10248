package ports

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned by SessionStore.Get for a missing or expired key.
var ErrKeyNotFound = errors.New("session key not found")

// SessionStore is the persistence behind a session: a flat key/value space.
//
// Set writes all values in one atomic step and Clear removes all keys in one
// atomic step, so a reader never observes a token without its identity.
type SessionStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, values map[string]string, ttl time.Duration) error
	Clear(ctx context.Context, keys ...string) error
}
