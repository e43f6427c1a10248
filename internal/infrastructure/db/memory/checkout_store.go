package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/cascadeforum/portal/internal/core/domain"
	"github.com/cascadeforum/portal/internal/core/ports"
)

// CheckoutStore keeps checkout flows in a TTL cache. Update holds the store
// lock for the whole read-modify-write.
type CheckoutStore struct {
	mu    sync.Mutex
	flows *ttlcache.Cache[string, domain.CheckoutFlow]
	ttl   time.Duration
}

// NewCheckoutStore expires flows ttl after their last save. A non-positive
// ttl keeps them until Close.
func NewCheckoutStore(ttl time.Duration) *CheckoutStore {
	if ttl <= 0 {
		ttl = ttlcache.NoTTL
	}
	flows := ttlcache.New[string, domain.CheckoutFlow](
		ttlcache.WithDisableTouchOnHit[string, domain.CheckoutFlow](),
	)
	go flows.Start()
	return &CheckoutStore{flows: flows, ttl: ttl}
}

func (s *CheckoutStore) Load(_ context.Context, key string) (*domain.CheckoutFlow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(key)
}

func (s *CheckoutStore) Save(_ context.Context, key string, flow *domain.CheckoutFlow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flows.Set(key, *clone(flow), s.ttl)
	return nil
}

func (s *CheckoutStore) Update(_ context.Context, key string, fn func(*domain.CheckoutFlow) (*domain.CheckoutFlow, error)) (*domain.CheckoutFlow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load(key)
	if err != nil {
		current = nil
	}
	next, err := fn(current)
	if err != nil {
		return nil, err
	}
	s.flows.Set(key, *clone(next), s.ttl)
	return clone(next), nil
}

// Close stops background eviction.
func (s *CheckoutStore) Close() {
	s.flows.Stop()
}

func (s *CheckoutStore) load(key string) (*domain.CheckoutFlow, error) {
	item := s.flows.Get(key)
	if item == nil {
		return nil, ports.ErrFlowNotFound
	}
	flow := item.Value()
	return clone(&flow), nil
}

func clone(f *domain.CheckoutFlow) *domain.CheckoutFlow {
	c := *f
	if f.Order != nil {
		order := *f.Order
		c.Order = &order
	}
	return &c
}
