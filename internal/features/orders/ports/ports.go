package ports

import (
	"context"

	"pouchstore/internal/features/orders/domain"
)

// OrderRepository defines the persistence port for orders.
// Lookups return (nil, nil) when the order does not exist; the service maps
// that to its not-found sentinel.
type OrderRepository interface {
	// Create persists a new order. Fails if the ID is already taken.
	Create(ctx context.Context, order *domain.Order) error
	// GetByID retrieves an order by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// Update replaces the stored order.
	Update(ctx context.Context, order *domain.Order) error
	// ListByEmail returns the orders placed with the given email, newest first.
	ListByEmail(ctx context.Context, email string) ([]*domain.Order, error)
}

// Notifier defines the fire-and-forget notification port. Failures are
// logged by the caller and never roll back an already-placed order.
type Notifier interface {
	// OrderConfirmation announces a newly placed order.
	OrderConfirmation(ctx context.Context, order *domain.Order) error
	// StatusChanged announces a lifecycle transition.
	StatusChanged(ctx context.Context, order *domain.Order) error
}
