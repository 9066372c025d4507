package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pouchstore/internal/core/logger"
	cartdomain "pouchstore/internal/features/cart/domain"
	checkoutdomain "pouchstore/internal/features/checkout/domain"
	"pouchstore/internal/features/orders/domain"
	"pouchstore/internal/features/orders/ports"
	"pouchstore/internal/features/pricing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	// ErrOrderNotFound is returned when the order does not exist. Ownership
	// violations surface the same way so resource existence never leaks.
	ErrOrderNotFound = errors.New("order not found")
	// ErrEmailMismatch is returned when the provided email does not match the order's email.
	ErrEmailMismatch = errors.New("email does not match order record")
	// ErrInvalidTransition is returned for illegal status transitions.
	ErrInvalidTransition = errors.New("invalid order status transition")
	// ErrStaleOrder is returned when a status mutation carries an outdated
	// updated-at token, to avoid clobbering a concurrent admin edit.
	ErrStaleOrder = errors.New("order was modified since it was read")
	// ErrIncompleteCheckout is returned when order placement is attempted
	// without the full checkout data or with an empty cart.
	ErrIncompleteCheckout = errors.New("checkout data incomplete")
)

// OrderService handles order placement and lifecycle mutations.
type OrderService struct {
	repo       ports.OrderRepository
	notifier   ports.Notifier
	pricingCfg pricing.Config
	taxRate    decimal.Decimal
	now        func() time.Time
}

// NewOrderService creates a new OrderService. notifier may be nil to disable
// notifications.
func NewOrderService(repo ports.OrderRepository, notifier ports.Notifier, pricingCfg pricing.Config, taxRate decimal.Decimal) *OrderService {
	return &OrderService{
		repo:       repo,
		notifier:   notifier,
		pricingCfg: pricingCfg,
		taxRate:    taxRate,
		now:        time.Now,
	}
}

// newOrderNumber builds the immutable human-facing order number.
func (s *OrderService) newOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("PS-%s-%s", s.now().Format("20060102"), suffix)
}

// PlaceFromCheckout creates the order record from the session's cart and
// accumulated checkout data. Totals are computed once, here, with
// server-confirmed values, and are never recomputed afterwards.
func (s *OrderService) PlaceFromCheckout(ctx context.Context, cart *cartdomain.Cart, data checkoutdomain.Data, paymentRef string) (*domain.Order, error) {
	if cart == nil || cart.IsEmpty() {
		return nil, fmt.Errorf("%w: cart is empty", ErrIncompleteCheckout)
	}
	if data.CustomerInfo == nil || data.ShippingAddress == nil || data.ShippingMethod == nil {
		return nil, fmt.Errorf("%w: missing step data", ErrIncompleteCheckout)
	}

	subtotal := cart.Subtotal()
	quote := pricing.Calculate(subtotal, cart.TotalItems(), s.pricingCfg)

	// The chosen method's price applies unless the subtotal earned free shipping.
	shipping := data.ShippingMethod.Price
	if quote.IsFreeShipping {
		shipping = decimal.Zero
	}

	tax := subtotal.Mul(s.taxRate).Round(2)

	discount := decimal.Zero
	if data.Coupon != nil && data.Coupon.Discount.IsPositive() {
		discount = data.Coupon.Discount
	}

	items := make([]domain.OrderItem, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		items = append(items, domain.OrderItem{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			ProductSKU:  line.ProductSKU,
			Flavor:      line.Variant.Flavor,
			Strength:    line.Variant.Strength,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			LineTotal:   line.Total(),
		})
	}

	now := s.now()
	order := &domain.Order{
		ID:            uuid.NewString(),
		OrderNumber:   s.newOrderNumber(),
		Status:        domain.OrderStatusPending,
		PaymentStatus: domain.PaymentStatusSucceeded,

		Subtotal:     subtotal,
		ShippingCost: shipping,
		Tax:          tax,
		Discount:     discount,
		Total:        subtotal.Add(shipping).Add(tax).Sub(discount),

		CustomerName: data.ShippingAddress.FullName,
		Email:        data.CustomerInfo.Email,
		Phone:        data.ShippingAddress.Phone,
		AddressLine1: data.ShippingAddress.AddressLine1,
		AddressLine2: data.ShippingAddress.AddressLine2,
		City:         data.ShippingAddress.City,
		County:       data.ShippingAddress.County,
		Eircode:      data.ShippingAddress.Eircode,
		Country:      "IE",

		ShippingMethod:   data.ShippingMethod.Name,
		PaymentReference: paymentRef,

		Items:     items,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("service: failed to create order: %w", err)
	}

	s.notify(ctx, order, func(n ports.Notifier) error { return n.OrderConfirmation(ctx, order) })

	return order, nil
}

// Get retrieves an order by ID, requiring a case-insensitive email match.
func (s *OrderService) Get(ctx context.Context, orderID, email string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !strings.EqualFold(order.Email, email) {
		return nil, ErrEmailMismatch
	}
	return order, nil
}

// GetTimeline derives the lifecycle timeline for an order.
func (s *OrderService) GetTimeline(ctx context.Context, orderID, email string) ([]domain.TimelineEvent, error) {
	order, err := s.Get(ctx, orderID, email)
	if err != nil {
		return nil, err
	}
	return domain.Timeline(order), nil
}

// GetForAdmin retrieves an order without the email guard.
func (s *OrderService) GetForAdmin(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListByEmail returns the customer's order history.
func (s *OrderService) ListByEmail(ctx context.Context, email string) ([]*domain.Order, error) {
	orders, err := s.repo.ListByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus applies an admin status transition. expectedUpdatedAt, when
// non-zero, must match the persisted UpdatedAt or the mutation is rejected as
// stale. Delivery sets CompletedAt exactly once.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, next domain.OrderStatus, expectedUpdatedAt time.Time) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	if !expectedUpdatedAt.IsZero() && !order.UpdatedAt.Equal(expectedUpdatedAt) {
		return nil, ErrStaleOrder
	}

	if !order.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, next)
	}

	now := s.now()
	order.Status = next
	order.UpdatedAt = now

	if next == domain.OrderStatusDelivered && order.CompletedAt == nil {
		order.CompletedAt = &now
	}
	if next == domain.OrderStatusRefunded {
		order.PaymentStatus = domain.PaymentStatusRefunded
	}

	if err := s.repo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("service: failed to update order: %w", err)
	}

	s.notify(ctx, order, func(n ports.Notifier) error { return n.StatusChanged(ctx, order) })

	return order, nil
}

// notify runs a best-effort notification. Failures are logged and swallowed:
// they must never roll back the order mutation they follow.
func (s *OrderService) notify(ctx context.Context, order *domain.Order, send func(ports.Notifier) error) {
	if s.notifier == nil {
		return
	}
	if err := send(s.notifier); err != nil {
		logger.Get().Warn("Order notification failed",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err),
		)
	}
}
