// Package memory holds in-process implementations of the portal's stores,
// used in tests and when running without Redis.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/cascadeforum/portal/internal/core/ports"
)

// SessionStore keeps session values in a TTL cache. Expired keys are evicted
// in the background until Close is called.
type SessionStore struct {
	// mu makes multi-key Set and Clear atomic for readers.
	mu    sync.RWMutex
	cache *ttlcache.Cache[string, string]
}

func NewSessionStore() *SessionStore {
	cache := ttlcache.New[string, string](
		ttlcache.WithDisableTouchOnHit[string, string](),
	)
	go cache.Start()
	return &SessionStore{cache: cache}
}

func (s *SessionStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	item := s.cache.Get(key)
	s.mu.RUnlock()
	if item == nil {
		return "", ports.ErrKeyNotFound
	}
	return item.Value(), nil
}

// Set stores all values under one lock. A non-positive ttl never expires.
func (s *SessionStore) Set(_ context.Context, values map[string]string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = ttlcache.NoTTL
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range values {
		s.cache.Set(k, v, ttl)
	}
	return nil
}

func (s *SessionStore) Clear(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		s.cache.Delete(k)
	}
	return nil
}

// Evictions reports how many keys have been removed so far.
func (s *SessionStore) Evictions() uint64 {
	return s.cache.Metrics().Evictions
}

// Close stops background eviction.
func (s *SessionStore) Close() {
	s.cache.Stop()
}
