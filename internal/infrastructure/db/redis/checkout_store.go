package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cascadeforum/portal/internal/core/domain"
	"github.com/cascadeforum/portal/internal/core/ports"
)

const maxUpdateRetries = 5

// CheckoutStore persists checkout flows as JSON values. Update is an
// optimistic compare-and-set on WATCH.
type CheckoutStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCheckoutStore(client *redis.Client, ttl time.Duration) *CheckoutStore {
	return &CheckoutStore{client: client, ttl: ttl}
}

func (s *CheckoutStore) Load(ctx context.Context, key string) (*domain.CheckoutFlow, error) {
	return s.read(ctx, s.client, key)
}

func (s *CheckoutStore) Save(ctx context.Context, key string, flow *domain.CheckoutFlow) error {
	data, err := json.Marshal(flow)
	if err != nil {
		return fmt.Errorf("encode checkout flow: %w", err)
	}
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save checkout flow: %w", err)
	}
	return nil
}

func (s *CheckoutStore) Update(ctx context.Context, key string, fn func(*domain.CheckoutFlow) (*domain.CheckoutFlow, error)) (*domain.CheckoutFlow, error) {
	var result *domain.CheckoutFlow

	txf := func(tx *redis.Tx) error {
		current, err := s.read(ctx, tx, key)
		if err != nil {
			if !errors.Is(err, ports.ErrFlowNotFound) {
				return err
			}
			current = nil
		}

		next, err := fn(current)
		if err != nil {
			return err
		}
		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode checkout flow: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		if err == nil {
			result = next
		}
		return err
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return result, nil
	}
	return nil, fmt.Errorf("update checkout flow %s: too much contention", key)
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *CheckoutStore) read(ctx context.Context, c getter, key string) (*domain.CheckoutFlow, error) {
	data, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ports.ErrFlowNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load checkout flow: %w", err)
	}

	var flow domain.CheckoutFlow
	if err := json.Unmarshal(data, &flow); err != nil {
		return nil, fmt.Errorf("decode checkout flow: %w", err)
	}
	return &flow, nil
}
