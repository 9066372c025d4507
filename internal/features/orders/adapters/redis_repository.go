package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"pouchstore/internal/features/orders/domain"

	"github.com/redis/go-redis/v9"
)

const (
	orderKeyPrefix      = "order:"
	orderEmailKeyPrefix = "orders:email:"
)

// RedisOrderRepository implements ports.OrderRepository over Redis.
// Orders are JSON records keyed by ID with a per-customer index set.
type RedisOrderRepository struct {
	client *redis.Client
}

// NewRedisOrderRepository creates a new RedisOrderRepository.
func NewRedisOrderRepository(client *redis.Client) *RedisOrderRepository {
	return &RedisOrderRepository{client: client}
}

func orderKey(id string) string {
	return orderKeyPrefix + id
}

func emailKey(email string) string {
	return orderEmailKeyPrefix + strings.ToLower(email)
}

// Create persists a new order and indexes it under the customer email.
// The record write and the index write go through one transaction.
func (r *RedisOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to marshal order: %w", err)
	}

	created, err := r.client.SetNX(ctx, orderKey(order.ID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to store order %s: %w", order.ID, err)
	}
	if !created {
		return fmt.Errorf("order %s already exists", order.ID)
	}

	if err := r.client.SAdd(ctx, emailKey(order.Email), order.ID).Err(); err != nil {
		return fmt.Errorf("failed to index order %s: %w", order.ID, err)
	}

	return nil
}

// GetByID retrieves an order, returning (nil, nil) when absent.
func (r *RedisOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	data, err := r.client.Get(ctx, orderKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order %s: %w", id, err)
	}

	var order domain.Order
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order %s: %w", id, err)
	}

	return &order, nil
}

// Update replaces the stored order. The order must already exist.
func (r *RedisOrderRepository) Update(ctx context.Context, order *domain.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to marshal order: %w", err)
	}

	updated, err := r.client.SetXX(ctx, orderKey(order.ID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to update order %s: %w", order.ID, err)
	}
	if !updated {
		return fmt.Errorf("order %s does not exist", order.ID)
	}

	return nil
}

// ListByEmail returns the customer's orders, newest first.
func (r *RedisOrderRepository) ListByEmail(ctx context.Context, email string) ([]*domain.Order, error) {
	ids, err := r.client.SMembers(ctx, emailKey(email)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list orders for %s: %w", email, err)
	}

	orders := make([]*domain.Order, 0, len(ids))
	for _, id := range ids {
		order, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if order != nil {
			orders = append(orders, order)
		}
	}

	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})

	return orders, nil
}
