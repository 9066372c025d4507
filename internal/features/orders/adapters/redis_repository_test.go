package adapters

import (
	"context"
	"testing"
	"time"

	"pouchstore/internal/features/orders/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepo(t *testing.T) *RedisOrderRepository {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisOrderRepository(client)
}

func sampleOrder(id, email string, createdAt time.Time) *domain.Order {
	return &domain.Order{
		ID:            id,
		OrderNumber:   "PS-20260201-" + id,
		Status:        domain.OrderStatusPending,
		PaymentStatus: domain.PaymentStatusSucceeded,
		Subtotal:      decimal.RequireFromString("49.90"),
		ShippingCost:  decimal.RequireFromString("5.99"),
		Tax:           decimal.RequireFromString("11.48"),
		Discount:      decimal.Zero,
		Total:         decimal.RequireFromString("67.37"),
		Email:         email,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
}

func TestRedisOrderRepository_CreateAndGet(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	created := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, sampleOrder("ord-1", "anna@example.ie", created)))

	got, err := repo.GetByID(ctx, "ord-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "PS-20260201-ord-1", got.OrderNumber)
	assert.True(t, got.Total.Equal(decimal.RequireFromString("67.37")))
	assert.True(t, got.CreatedAt.Equal(created))
}

func TestRedisOrderRepository_GetMissing(t *testing.T) {
	repo := setupRepo(t)

	got, err := repo.GetByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisOrderRepository_CreateDuplicate(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	created := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	order := sampleOrder("ord-1", "anna@example.ie", created)
	require.NoError(t, repo.Create(ctx, order))

	err := repo.Create(ctx, order)
	assert.ErrorContains(t, err, "already exists")
}

func TestRedisOrderRepository_Update(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	created := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	order := sampleOrder("ord-1", "anna@example.ie", created)
	require.NoError(t, repo.Create(ctx, order))

	order.Status = domain.OrderStatusProcessing
	order.UpdatedAt = created.Add(time.Hour)
	require.NoError(t, repo.Update(ctx, order))

	got, err := repo.GetByID(ctx, "ord-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.OrderStatusProcessing, got.Status)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))
}

func TestRedisOrderRepository_UpdateMissing(t *testing.T) {
	repo := setupRepo(t)
	created := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	err := repo.Update(context.Background(), sampleOrder("ghost", "anna@example.ie", created))
	assert.ErrorContains(t, err, "does not exist")
}

func TestRedisOrderRepository_ListByEmail(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, sampleOrder("ord-old", "anna@example.ie", base)))
	require.NoError(t, repo.Create(ctx, sampleOrder("ord-new", "anna@example.ie", base.Add(24*time.Hour))))
	require.NoError(t, repo.Create(ctx, sampleOrder("ord-other", "liam@example.ie", base)))

	orders, err := repo.ListByEmail(ctx, "anna@example.ie")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "ord-new", orders[0].ID)
	assert.Equal(t, "ord-old", orders[1].ID)
}

func TestRedisOrderRepository_ListByEmailCaseInsensitive(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, sampleOrder("ord-1", "Anna@Example.ie", base)))

	orders, err := repo.ListByEmail(ctx, "anna@example.ie")
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestRedisOrderRepository_ListByEmailEmpty(t *testing.T) {
	repo := setupRepo(t)

	orders, err := repo.ListByEmail(context.Background(), "nobody@example.ie")
	require.NoError(t, err)
	assert.Empty(t, orders)
}
