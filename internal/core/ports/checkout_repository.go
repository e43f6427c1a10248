package ports

import (
	"context"
	"errors"

	"github.com/cascadeforum/portal/internal/core/domain"
)

// ErrFlowNotFound is returned when no checkout flow is stored under a key.
var ErrFlowNotFound = errors.New("checkout flow not found")

// CheckoutRepository persists checkout flows between the legs of a hand-off.
type CheckoutRepository interface {
	Load(ctx context.Context, key string) (*domain.CheckoutFlow, error)
	Save(ctx context.Context, key string, flow *domain.CheckoutFlow) error
	// Update atomically replaces the stored flow with fn's result. fn receives
	// nil when nothing is stored. If fn returns an error nothing is written
	// and that error is returned.
	Update(ctx context.Context, key string, fn func(current *domain.CheckoutFlow) (*domain.CheckoutFlow, error)) (*domain.CheckoutFlow, error)
}

// JournalRepository stores the history of checkout transitions.
type JournalRepository interface {
	Append(ctx context.Context, entry *domain.CheckoutJournalEntry) error
}
