package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"pouchstore/internal/core/cache"
	"pouchstore/internal/features/checkout/domain"
)

// checkoutKeyPrefix namespaces checkout state. Independent from the cart
// namespace so clearing one never affects the other.
const checkoutKeyPrefix = "checkout:"

// RedisCheckoutStore implements ports.CheckoutStore over the cache port.
type RedisCheckoutStore struct {
	cache cache.Cache
}

// NewRedisCheckoutStore creates a new RedisCheckoutStore.
func NewRedisCheckoutStore(c cache.Cache) *RedisCheckoutStore {
	return &RedisCheckoutStore{
		cache: c,
	}
}

func checkoutKey(sessionID string) string {
	return checkoutKeyPrefix + sessionID
}

// Load returns the stored checkout, or a fresh one when no state exists.
func (r *RedisCheckoutStore) Load(ctx context.Context, sessionID string) (*domain.Checkout, error) {
	data, err := r.cache.Get(ctx, checkoutKey(sessionID))
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return domain.New(), nil
		}
		return nil, fmt.Errorf("failed to load checkout state: %w", err)
	}

	var checkout domain.Checkout
	if err := json.Unmarshal(data, &checkout); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkout state: %w", err)
	}

	return &checkout, nil
}

// Save persists the whole checkout as a JSON snapshot with no expiration.
func (r *RedisCheckoutStore) Save(ctx context.Context, sessionID string, checkout *domain.Checkout) error {
	data, err := json.Marshal(checkout)
	if err != nil {
		return fmt.Errorf("failed to marshal checkout state: %w", err)
	}

	if err := r.cache.Set(ctx, checkoutKey(sessionID), data, 0); err != nil {
		return fmt.Errorf("failed to save checkout state: %w", err)
	}

	return nil
}

// Clear removes the stored checkout for the session.
func (r *RedisCheckoutStore) Clear(ctx context.Context, sessionID string) error {
	if err := r.cache.Delete(ctx, checkoutKey(sessionID)); err != nil {
		return fmt.Errorf("failed to clear checkout state: %w", err)
	}
	return nil
}
