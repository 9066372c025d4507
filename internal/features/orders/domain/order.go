package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the current state of an order.
type OrderStatus string

const (
	// OrderStatusPending indicates the order has been placed but not yet processed.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusProcessing indicates the order is being prepared.
	OrderStatusProcessing OrderStatus = "processing"
	// OrderStatusShipped indicates the order has been handed to the carrier.
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusDelivered indicates the order has been delivered and finalized.
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled indicates the order was cancelled before processing.
	OrderStatusCancelled OrderStatus = "cancelled"
	// OrderStatusRefunded indicates payment was reversed after the fact.
	OrderStatusRefunded OrderStatus = "refunded"
)

// PaymentStatus represents the state of the order's payment.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusSucceeded  PaymentStatus = "succeeded"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusRefunded   PaymentStatus = "refunded"
)

// OrderItem is a snapshot of a cart line at order time. Immutable once
// created: a historical record independent of later product edits.
type OrderItem struct {
	// ProductID is the identifier of the product at order time.
	ProductID string `json:"product_id"`
	// ProductName is the product name at order time.
	ProductName string `json:"product_name"`
	// ProductSKU is the Stock Keeping Unit at order time.
	ProductSKU string `json:"product_sku"`
	// Flavor is the chosen variant flavor.
	Flavor string `json:"flavor"`
	// Strength is the chosen nicotine strength.
	Strength string `json:"strength"`
	// Quantity is the number of units purchased.
	Quantity int `json:"quantity"`
	// UnitPrice is the price per unit at order time.
	UnitPrice decimal.Decimal `json:"unit_price"`
	// LineTotal is UnitPrice multiplied by Quantity.
	LineTotal decimal.Decimal `json:"line_total"`
}

// Order is the immutable financial record created at checkout completion.
// The totals are never recomputed after creation.
type Order struct {
	// ID is the unique identifier for the order.
	ID string `json:"id"`
	// OrderNumber is the human-facing number, assigned at creation, immutable.
	OrderNumber string `json:"order_number"`
	// Status is the current lifecycle state.
	Status OrderStatus `json:"status"`
	// PaymentStatus is the current payment state.
	PaymentStatus PaymentStatus `json:"payment_status"`

	// Subtotal is the sum of line totals.
	Subtotal decimal.Decimal `json:"subtotal"`
	// ShippingCost is the shipping charged on the order.
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	// Tax is the flat VAT-style tax applied at creation.
	Tax decimal.Decimal `json:"tax"`
	// Discount is the absolute discount applied at creation.
	Discount decimal.Decimal `json:"discount"`
	// Total is Subtotal + ShippingCost + Tax - Discount.
	Total decimal.Decimal `json:"total"`

	// Shipping snapshot, copied at order time and independent of the
	// customer's saved addresses.
	CustomerName string `json:"customer_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city"`
	County       string `json:"county,omitempty"`
	Eircode      string `json:"eircode,omitempty"`
	Country      string `json:"country"`

	// ShippingMethod is the chosen method name.
	ShippingMethod string `json:"shipping_method"`
	// PaymentReference is the gateway's capture reference.
	PaymentReference string `json:"payment_reference,omitempty"`

	// Items are the purchased line snapshots.
	Items []OrderItem `json:"items"`

	// CreatedAt is when the order was placed.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is the timestamp of the most recent status change.
	UpdatedAt time.Time `json:"updated_at"`
	// CompletedAt is set exactly once, when the order is delivered.
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// TotalsConsistent reports whether Total equals
// Subtotal + ShippingCost + Tax - Discount exactly.
func (o *Order) TotalsConsistent() bool {
	return o.Total.Equal(o.Subtotal.Add(o.ShippingCost).Add(o.Tax).Sub(o.Discount))
}

// IsTerminal reports whether the status admits no further transitions.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCancelled || s == OrderStatusRefunded
}

// CanTransitionTo reports whether the forward transition from s to next is
// legal: the happy path moves pending -> processing -> shipped -> delivered,
// cancellation is only possible from pending, and refund is reachable from
// any non-terminal state.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.IsTerminal() {
		return false
	}

	switch next {
	case OrderStatusProcessing:
		return s == OrderStatusPending
	case OrderStatusShipped:
		return s == OrderStatusProcessing
	case OrderStatusDelivered:
		return s == OrderStatusShipped
	case OrderStatusCancelled:
		return s == OrderStatusPending
	case OrderStatusRefunded:
		return true
	default:
		return false
	}
}
