package service

import (
	"context"
	"errors"
	"fmt"

	"pouchstore/internal/core/logger"
	cartdomain "pouchstore/internal/features/cart/domain"
	cartports "pouchstore/internal/features/cart/ports"
	"pouchstore/internal/features/checkout/domain"
	"pouchstore/internal/features/checkout/ports"
	orderdomain "pouchstore/internal/features/orders/domain"
	"pouchstore/internal/features/pricing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	// ErrMinimumOrderNotMet is returned when checkout is attempted with fewer
	// items than the store minimum.
	ErrMinimumOrderNotMet = errors.New("minimum order quantity not met")
	// ErrPaymentDeclined is returned when the gateway declines the payment.
	// The checkout stays at the payment step so the customer can retry.
	ErrPaymentDeclined = errors.New("payment declined")
)

// CheckoutService drives the checkout step machine for a session: loading and
// persisting its state, gating progression, and turning a successful payment
// into an order.
type CheckoutService struct {
	store      ports.CheckoutStore
	cartStore  cartports.CartStore
	gateway    ports.PaymentGateway
	placer     ports.OrderPlacer
	pricingCfg pricing.Config
	taxRate    decimal.Decimal
	currency   string
}

// NewCheckoutService creates a new CheckoutService.
func NewCheckoutService(
	store ports.CheckoutStore,
	cartStore cartports.CartStore,
	gateway ports.PaymentGateway,
	placer ports.OrderPlacer,
	pricingCfg pricing.Config,
	taxRate decimal.Decimal,
	currency string,
) *CheckoutService {
	return &CheckoutService{
		store:      store,
		cartStore:  cartStore,
		gateway:    gateway,
		placer:     placer,
		pricingCfg: pricingCfg,
		taxRate:    taxRate,
		currency:   currency,
	}
}

// Get returns the session's checkout state, fresh if none exists yet.
func (s *CheckoutService) Get(ctx context.Context, sessionID string) (*domain.Checkout, error) {
	checkout, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load checkout: %w", err)
	}
	return checkout, nil
}

// GoToStep moves the session's checkout to the target step. Leaving cart
// review additionally requires the cart to meet the minimum order quantity.
func (s *CheckoutService) GoToStep(ctx context.Context, sessionID string, target domain.Step) (*domain.Checkout, error) {
	checkout, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load checkout: %w", err)
	}

	if target > domain.StepCartReview && target > checkout.CurrentStep {
		cart, err := s.cartStore.Load(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("service: failed to load cart: %w", err)
		}
		if cart.TotalItems() < s.pricingCfg.MinimumOrderItems {
			return nil, fmt.Errorf("%w: %d of %d items",
				ErrMinimumOrderNotMet, cart.TotalItems(), s.pricingCfg.MinimumOrderItems)
		}
	}

	if err := checkout.GoToStep(target); err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, sessionID, checkout); err != nil {
		return nil, fmt.Errorf("service: failed to save checkout: %w", err)
	}
	return checkout, nil
}

// SubmitCustomerInfo records the step 2 payload.
func (s *CheckoutService) SubmitCustomerInfo(ctx context.Context, sessionID string, info domain.CustomerInfo) (*domain.Checkout, error) {
	return s.mutate(ctx, sessionID, func(c *domain.Checkout) { c.SetCustomerInfo(info) })
}

// SubmitShippingAddress records the step 3 payload.
func (s *CheckoutService) SubmitShippingAddress(ctx context.Context, sessionID string, addr domain.ShippingAddress) (*domain.Checkout, error) {
	return s.mutate(ctx, sessionID, func(c *domain.Checkout) { c.SetShippingAddress(addr) })
}

// SubmitShippingMethod records the step 4 payload.
func (s *CheckoutService) SubmitShippingMethod(ctx context.Context, sessionID string, method domain.ShippingMethod) (*domain.Checkout, error) {
	return s.mutate(ctx, sessionID, func(c *domain.Checkout) { c.SetShippingMethod(method) })
}

// ApplyCoupon records an applied discount code.
func (s *CheckoutService) ApplyCoupon(ctx context.Context, sessionID string, coupon domain.Coupon) (*domain.Checkout, error) {
	return s.mutate(ctx, sessionID, func(c *domain.Checkout) { c.SetCoupon(coupon) })
}

// Reset discards the session's checkout state.
func (s *CheckoutService) Reset(ctx context.Context, sessionID string) error {
	if err := s.store.Clear(ctx, sessionID); err != nil {
		return fmt.Errorf("service: failed to reset checkout: %w", err)
	}
	return nil
}

// Pay charges the customer and, on success, places the order and clears both
// the cart and the checkout state. A declined payment leaves everything
// untouched so the customer can retry from the payment step.
func (s *CheckoutService) Pay(ctx context.Context, sessionID, paymentToken string) (*orderdomain.Order, error) {
	checkout, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load checkout: %w", err)
	}
	if !checkout.CanProceedTo(domain.StepConfirmation) {
		return nil, fmt.Errorf("%w: payment requires completed checkout steps", domain.ErrStepLocked)
	}

	cart, err := s.cartStore.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load cart: %w", err)
	}
	if cart.TotalItems() < s.pricingCfg.MinimumOrderItems {
		return nil, fmt.Errorf("%w: %d of %d items",
			ErrMinimumOrderNotMet, cart.TotalItems(), s.pricingCfg.MinimumOrderItems)
	}

	amount := s.chargeAmount(cart, checkout.Data)

	result, err := s.gateway.AuthorizeAndCapture(ctx, amount, s.currency, paymentToken)
	if err != nil {
		return nil, fmt.Errorf("service: payment gateway failure: %w", err)
	}
	if !result.Succeeded {
		return nil, fmt.Errorf("%w: %s", ErrPaymentDeclined, result.DeclineReason)
	}

	order, err := s.placer.PlaceFromCheckout(ctx, cart, checkout.Data, result.Reference)
	if err != nil {
		return nil, fmt.Errorf("service: failed to place order after capture %s: %w", result.Reference, err)
	}

	// The money moved and the order exists; cleanup failures only mean a
	// stale session snapshot lingers until its next mutation.
	if err := s.cartStore.Clear(ctx, sessionID); err != nil {
		logger.Get().Warn("Failed to clear cart after order placement",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err),
		)
	}
	if err := s.store.Clear(ctx, sessionID); err != nil {
		logger.Get().Warn("Failed to clear checkout after order placement",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err),
		)
	}

	return order, nil
}

// chargeAmount computes the capture amount from server-held state only. The
// client never supplies a price. Mirrors the totals the order record will
// carry: subtotal, method shipping unless free shipping was earned, tax, and
// any coupon discount.
func (s *CheckoutService) chargeAmount(cart *cartdomain.Cart, data domain.Data) decimal.Decimal {
	subtotal := cart.Subtotal()
	quote := pricing.Calculate(subtotal, cart.TotalItems(), s.pricingCfg)

	shipping := decimal.Zero
	if data.ShippingMethod != nil && !quote.IsFreeShipping {
		shipping = data.ShippingMethod.Price
	}

	tax := subtotal.Mul(s.taxRate).Round(2)

	amount := subtotal.Add(shipping).Add(tax)
	if data.Coupon != nil && data.Coupon.Discount.IsPositive() {
		amount = amount.Sub(data.Coupon.Discount)
	}
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	return amount
}

// mutate is the shared load-edit-save cycle for step data submissions.
func (s *CheckoutService) mutate(ctx context.Context, sessionID string, edit func(*domain.Checkout)) (*domain.Checkout, error) {
	checkout, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load checkout: %w", err)
	}

	edit(checkout)

	if err := s.store.Save(ctx, sessionID, checkout); err != nil {
		return nil, fmt.Errorf("service: failed to save checkout: %w", err)
	}
	return checkout, nil
}
