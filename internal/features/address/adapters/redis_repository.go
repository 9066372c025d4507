package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"pouchstore/internal/features/address/domain"

	"github.com/redis/go-redis/v9"
)

// addressKeyPrefix namespaces per-customer address books.
const addressKeyPrefix = "addresses:"

// RedisAddressRepository implements ports.AddressRepository over Redis.
// Each customer's addresses live in one hash keyed by address ID, so a batch
// write of a default-flag change is a single transactional pipeline on one key.
type RedisAddressRepository struct {
	client *redis.Client
}

// NewRedisAddressRepository creates a new RedisAddressRepository.
func NewRedisAddressRepository(client *redis.Client) *RedisAddressRepository {
	return &RedisAddressRepository{client: client}
}

func ownerKey(ownerID string) string {
	return addressKeyPrefix + ownerID
}

// ListByOwner returns every address the owner has saved.
func (r *RedisAddressRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Address, error) {
	fields, err := r.client.HGetAll(ctx, ownerKey(ownerID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses for %s: %w", ownerID, err)
	}

	addresses := make([]*domain.Address, 0, len(fields))
	for id, data := range fields {
		var address domain.Address
		if err := json.Unmarshal([]byte(data), &address); err != nil {
			return nil, fmt.Errorf("failed to unmarshal address %s: %w", id, err)
		}
		addresses = append(addresses, &address)
	}

	return addresses, nil
}

// GetByID returns the owner's address, or (nil, nil) when absent.
func (r *RedisAddressRepository) GetByID(ctx context.Context, ownerID, addressID string) (*domain.Address, error) {
	data, err := r.client.HGet(ctx, ownerKey(ownerID), addressID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch address %s: %w", addressID, err)
	}

	var address domain.Address
	if err := json.Unmarshal([]byte(data), &address); err != nil {
		return nil, fmt.Errorf("failed to unmarshal address %s: %w", addressID, err)
	}

	return &address, nil
}

// SaveAll writes the batch in one transactional pipeline so a default-flag
// claim and its demotions are never observed half-applied.
func (r *RedisAddressRepository) SaveAll(ctx context.Context, ownerID string, addresses []*domain.Address) error {
	if len(addresses) == 0 {
		return nil
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, address := range addresses {
			data, err := json.Marshal(address)
			if err != nil {
				return fmt.Errorf("failed to marshal address %s: %w", address.ID, err)
			}
			pipe.HSet(ctx, ownerKey(ownerID), address.ID, data)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save addresses for %s: %w", ownerID, err)
	}

	return nil
}

// Delete removes the owner's address. Absent fields delete as a no-op.
func (r *RedisAddressRepository) Delete(ctx context.Context, ownerID, addressID string) error {
	if err := r.client.HDel(ctx, ownerKey(ownerID), addressID).Err(); err != nil {
		return fmt.Errorf("failed to delete address %s: %w", addressID, err)
	}
	return nil
}
