package replay

import (
	"context"
	"time"

	"webhook-guard/internal/circuitbreaker"
)

// breakerStore routes every call through a circuit breaker, so that a store
// which keeps failing answers immediately instead of timing out per request.
type breakerStore struct {
	store   Store
	breaker *circuitbreaker.Breaker
}

// WithBreaker wraps store with breaker. While the breaker is open, Remember
// and Forget fail without touching store and the guard answers 503.
func WithBreaker(store Store, breaker *circuitbreaker.Breaker) Store {
	return &breakerStore{store: store, breaker: breaker}
}

func (s *breakerStore) Remember(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	var fresh bool
	err := s.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		fresh, err = s.store.Remember(ctx, id, ttl)
		return err
	})
	return fresh, err
}

func (s *breakerStore) Forget(ctx context.Context, id string) error {
	return s.breaker.Execute(ctx, func(ctx context.Context) error {
		return s.store.Forget(ctx, id)
	})
}
