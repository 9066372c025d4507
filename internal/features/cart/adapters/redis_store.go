package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"pouchstore/internal/core/cache"
	"pouchstore/internal/features/cart/domain"
)

// cartKeyPrefix namespaces cart snapshots. Independent from the checkout
// namespace so clearing one never affects the other.
const cartKeyPrefix = "cart:"

// RedisCartStore implements ports.CartStore over the cache port.
type RedisCartStore struct {
	cache cache.Cache
}

// NewRedisCartStore creates a new RedisCartStore.
func NewRedisCartStore(c cache.Cache) *RedisCartStore {
	return &RedisCartStore{
		cache: c,
	}
}

func cartKey(sessionID string) string {
	return cartKeyPrefix + sessionID
}

// Load returns the stored cart, or an empty cart when no snapshot exists.
func (r *RedisCartStore) Load(ctx context.Context, sessionID string) (*domain.Cart, error) {
	data, err := r.cache.Get(ctx, cartKey(sessionID))
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return domain.New(), nil
		}
		return nil, fmt.Errorf("failed to load cart snapshot: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart snapshot: %w", err)
	}

	return &cart, nil
}

// Save persists the whole cart as a JSON snapshot with no expiration.
func (r *RedisCartStore) Save(ctx context.Context, sessionID string, cart *domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to marshal cart snapshot: %w", err)
	}

	if err := r.cache.Set(ctx, cartKey(sessionID), data, 0); err != nil {
		return fmt.Errorf("failed to save cart snapshot: %w", err)
	}

	return nil
}

// Clear removes the stored cart for the session.
func (r *RedisCartStore) Clear(ctx context.Context, sessionID string) error {
	if err := r.cache.Delete(ctx, cartKey(sessionID)); err != nil {
		return fmt.Errorf("failed to clear cart snapshot: %w", err)
	}
	return nil
}
