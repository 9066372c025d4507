package ports

import (
	"context"

	cartdomain "pouchstore/internal/features/cart/domain"
	"pouchstore/internal/features/checkout/domain"
	orderdomain "pouchstore/internal/features/orders/domain"

	"github.com/shopspring/decimal"
)

// CheckoutStore defines the secondary port for checkout state persistence.
// The step machine is persisted per session, independently of the cart.
type CheckoutStore interface {
	// Load returns the checkout for the session, or a fresh one if none is stored.
	Load(ctx context.Context, sessionID string) (*domain.Checkout, error)
	// Save persists the whole checkout for the session.
	Save(ctx context.Context, sessionID string, checkout *domain.Checkout) error
	// Clear removes the stored checkout for the session.
	Clear(ctx context.Context, sessionID string) error
}

// PaymentResult is the gateway's answer to a capture attempt.
type PaymentResult struct {
	// Succeeded reports whether the payment was captured.
	Succeeded bool
	// Reference is the gateway's transaction reference, set on success.
	Reference string
	// DeclineReason is the gateway's reason, set on decline.
	DeclineReason string
}

// PaymentGateway defines the secondary port for payment capture.
type PaymentGateway interface {
	// AuthorizeAndCapture attempts to capture the amount against the token.
	// A declined payment is a result, not an error; errors mean the gateway
	// could not be reached or answered unintelligibly.
	AuthorizeAndCapture(ctx context.Context, amount decimal.Decimal, currency, token string) (PaymentResult, error)
}

// OrderPlacer defines the primary port into order creation, decoupling the
// checkout flow from the orders feature.
type OrderPlacer interface {
	// PlaceFromCheckout creates the order from the cart and checkout data.
	PlaceFromCheckout(ctx context.Context, cart *cartdomain.Cart, data domain.Data, paymentRef string) (*orderdomain.Order, error)
}
