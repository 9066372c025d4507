package service

import (
	"context"
	"fmt"

	"pouchstore/internal/features/cart/domain"
	"pouchstore/internal/features/cart/ports"
	"pouchstore/internal/features/pricing"
)

// CartView is a cart together with its pricing quote, computed on every read.
type CartView struct {
	// Cart is the current line items.
	Cart *domain.Cart `json:"cart"`
	// TotalItems is the sum of quantities across lines.
	TotalItems int `json:"total_items"`
	// Quote is the pricing breakdown for the cart.
	Quote pricing.Quote `json:"quote"`
}

// CartService orchestrates cart mutations: load, mutate in memory, persist
// the whole cart. Mutations themselves cannot fail, only the store can.
type CartService struct {
	store      ports.CartStore
	pricingCfg pricing.Config
}

// NewCartService creates a new CartService.
func NewCartService(store ports.CartStore, pricingCfg pricing.Config) *CartService {
	return &CartService{
		store:      store,
		pricingCfg: pricingCfg,
	}
}

// view builds the read model for a cart.
func (s *CartService) view(cart *domain.Cart) *CartView {
	return &CartView{
		Cart:       cart,
		TotalItems: cart.TotalItems(),
		Quote:      pricing.Calculate(cart.Subtotal(), cart.TotalItems(), s.pricingCfg),
	}
}

// GetCart returns the session's cart with its pricing quote.
func (s *CartService) GetCart(ctx context.Context, sessionID string) (*CartView, error) {
	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load cart: %w", err)
	}
	return s.view(cart), nil
}

// AddItem merges a line into the session's cart and persists it.
func (s *CartService) AddItem(ctx context.Context, sessionID string, line domain.Line) (*CartView, error) {
	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load cart: %w", err)
	}

	cart.AddLine(line)

	if err := s.store.Save(ctx, sessionID, cart); err != nil {
		return nil, fmt.Errorf("service: failed to save cart: %w", err)
	}
	return s.view(cart), nil
}

// RemoveItem deletes the matching line and persists the cart.
func (s *CartService) RemoveItem(ctx context.Context, sessionID, productID string, variant domain.Variant) (*CartView, error) {
	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load cart: %w", err)
	}

	cart.Remove(productID, variant)

	if err := s.store.Save(ctx, sessionID, cart); err != nil {
		return nil, fmt.Errorf("service: failed to save cart: %w", err)
	}
	return s.view(cart), nil
}

// UpdateQuantity sets the quantity of the matching line (zero removes it) and
// persists the cart.
func (s *CartService) UpdateQuantity(ctx context.Context, sessionID, productID string, variant domain.Variant, quantity int) (*CartView, error) {
	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load cart: %w", err)
	}

	cart.SetQuantity(productID, variant, quantity)

	if err := s.store.Save(ctx, sessionID, cart); err != nil {
		return nil, fmt.Errorf("service: failed to save cart: %w", err)
	}
	return s.view(cart), nil
}

// ClearCart removes the stored cart for the session.
func (s *CartService) ClearCart(ctx context.Context, sessionID string) error {
	if err := s.store.Clear(ctx, sessionID); err != nil {
		return fmt.Errorf("service: failed to clear cart: %w", err)
	}
	return nil
}
