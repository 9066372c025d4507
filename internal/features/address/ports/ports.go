package ports

import (
	"context"

	"pouchstore/internal/features/address/domain"
)

// AddressRepository defines the secondary port for address persistence.
// All reads and writes are scoped to a single owner.
type AddressRepository interface {
	// ListByOwner returns every address the owner has saved.
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Address, error)
	// GetByID returns the owner's address, or (nil, nil) when absent.
	GetByID(ctx context.Context, ownerID, addressID string) (*domain.Address, error)
	// SaveAll writes the given addresses for the owner in one atomic batch.
	// Used so a default-flag claim and the demotions it causes land together.
	SaveAll(ctx context.Context, ownerID string, addresses []*domain.Address) error
	// Delete removes the owner's address. Deleting an absent address is a no-op.
	Delete(ctx context.Context, ownerID, addressID string) error
}
