package ports

import (
	"context"

	"pouchstore/internal/features/cart/domain"
)

// CartStore defines the secondary port for cart snapshot persistence.
// The whole cart is persisted after every mutation; snapshots survive a page
// reload but are not a system of record.
type CartStore interface {
	// Load returns the cart for the session, or an empty cart if none is stored.
	Load(ctx context.Context, sessionID string) (*domain.Cart, error)
	// Save persists the whole cart for the session.
	Save(ctx context.Context, sessionID string, cart *domain.Cart) error
	// Clear removes the stored cart for the session.
	Clear(ctx context.Context, sessionID string) error
}
