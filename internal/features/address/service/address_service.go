package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"pouchstore/internal/features/address/domain"
	"pouchstore/internal/features/address/ports"

	"github.com/google/uuid"
)

// ErrAddressNotFound is returned when the address does not exist for the
// owner. Another customer's address surfaces the same way so address IDs
// never leak across accounts.
var ErrAddressNotFound = errors.New("address not found")

// AddressService manages a customer's address book, holding the at-most-one
// default-shipping and default-billing invariant through every mutation.
type AddressService struct {
	repo ports.AddressRepository
	now  func() time.Time
}

// NewAddressService creates a new AddressService.
func NewAddressService(repo ports.AddressRepository) *AddressService {
	return &AddressService{
		repo: repo,
		now:  time.Now,
	}
}

// List returns the owner's addresses, defaults first, then newest first.
func (s *AddressService) List(ctx context.Context, ownerID string) ([]*domain.Address, error) {
	addresses, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list addresses: %w", err)
	}

	sort.Slice(addresses, func(i, j int) bool {
		a, b := addresses[i], addresses[j]
		if a.IsDefaultShipping != b.IsDefaultShipping {
			return a.IsDefaultShipping
		}
		if a.IsDefaultBilling != b.IsDefaultBilling {
			return a.IsDefaultBilling
		}
		return a.CreatedAt.After(b.CreatedAt)
	})

	return addresses, nil
}

// Get returns one of the owner's addresses.
func (s *AddressService) Get(ctx context.Context, ownerID, addressID string) (*domain.Address, error) {
	address, err := s.repo.GetByID(ctx, ownerID, addressID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch address: %w", err)
	}
	if address == nil {
		return nil, ErrAddressNotFound
	}
	return address, nil
}

// Create saves a new address. When it claims a default flag, every other
// address holding that flag is demoted in the same write.
func (s *AddressService) Create(ctx context.Context, address *domain.Address) (*domain.Address, error) {
	now := s.now()
	address.ID = uuid.NewString()
	if address.Country == "" {
		address.Country = "IE"
	}
	address.CreatedAt = now
	address.UpdatedAt = now

	others, err := s.repo.ListByOwner(ctx, address.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list addresses: %w", err)
	}

	// First address becomes the default for both roles.
	if len(others) == 0 {
		address.IsDefaultShipping = true
		address.IsDefaultBilling = true
	}

	batch := append(domain.ApplyDefaults(address, others, now), address)
	if err := s.repo.SaveAll(ctx, address.OwnerID, batch); err != nil {
		return nil, fmt.Errorf("service: failed to save address: %w", err)
	}

	return address, nil
}

// Update replaces an existing address's fields. Default-flag claims demote
// the previous holders atomically; dropping a flag promotes nobody.
func (s *AddressService) Update(ctx context.Context, address *domain.Address) (*domain.Address, error) {
	existing, err := s.repo.GetByID(ctx, address.OwnerID, address.ID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch address: %w", err)
	}
	if existing == nil {
		return nil, ErrAddressNotFound
	}

	now := s.now()
	address.CreatedAt = existing.CreatedAt
	address.UpdatedAt = now

	others, err := s.repo.ListByOwner(ctx, address.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list addresses: %w", err)
	}

	batch := append(domain.ApplyDefaults(address, others, now), address)
	if err := s.repo.SaveAll(ctx, address.OwnerID, batch); err != nil {
		return nil, fmt.Errorf("service: failed to save address: %w", err)
	}

	return address, nil
}

// SetDefault marks the address as the default for the given roles, demoting
// previous holders in the same atomic write.
func (s *AddressService) SetDefault(ctx context.Context, ownerID, addressID string, shipping, billing bool) (*domain.Address, error) {
	address, err := s.repo.GetByID(ctx, ownerID, addressID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch address: %w", err)
	}
	if address == nil {
		return nil, ErrAddressNotFound
	}

	now := s.now()
	if shipping {
		address.IsDefaultShipping = true
	}
	if billing {
		address.IsDefaultBilling = true
	}
	address.UpdatedAt = now

	others, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list addresses: %w", err)
	}

	batch := append(domain.ApplyDefaults(address, others, now), address)
	if err := s.repo.SaveAll(ctx, ownerID, batch); err != nil {
		return nil, fmt.Errorf("service: failed to save address: %w", err)
	}

	return address, nil
}

// Delete removes the owner's address. Deleting a default leaves the role
// vacant; the customer picks a new default explicitly.
func (s *AddressService) Delete(ctx context.Context, ownerID, addressID string) error {
	existing, err := s.repo.GetByID(ctx, ownerID, addressID)
	if err != nil {
		return fmt.Errorf("service: failed to fetch address: %w", err)
	}
	if existing == nil {
		return ErrAddressNotFound
	}

	if err := s.repo.Delete(ctx, ownerID, addressID); err != nil {
		return fmt.Errorf("service: failed to delete address: %w", err)
	}
	return nil
}
