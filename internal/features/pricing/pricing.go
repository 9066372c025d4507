// Package pricing derives shipping cost, free-shipping eligibility and the
// provisional order total from a cart subtotal. Tax and discount are applied
// later, at order creation, with server-confirmed values.
package pricing

import (
	"github.com/shopspring/decimal"
)

// Config holds the storefront pricing rules.
type Config struct {
	// FlatShippingCost is charged whenever the subtotal is below the threshold.
	FlatShippingCost decimal.Decimal
	// FreeShippingThreshold is the subtotal at which shipping becomes free.
	FreeShippingThreshold decimal.Decimal
	// MinimumOrderItems is the minimum total item count required to check out.
	MinimumOrderItems int
}

// Quote is the pricing breakdown for a cart at summary stage.
type Quote struct {
	// Subtotal echoes the cart subtotal the quote was computed from.
	Subtotal decimal.Decimal `json:"subtotal"`
	// ShippingCost is zero when free shipping applies, else the flat cost.
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	// IsFreeShipping reports whether the subtotal met the threshold.
	IsFreeShipping bool `json:"is_free_shipping"`
	// Total is subtotal plus shipping. Provisional: tax and discount are
	// applied at order creation.
	Total decimal.Decimal `json:"total"`
	// MeetsMinimumOrder reports whether the item count allows checkout.
	MeetsMinimumOrder bool `json:"meets_minimum_order"`
	// AmountToFreeShipping is how much more subtotal is needed for free
	// shipping, never negative.
	AmountToFreeShipping decimal.Decimal `json:"amount_to_free_shipping"`
	// FreeShippingProgress is the subtotal as a percentage of the threshold,
	// capped at 100.
	FreeShippingProgress decimal.Decimal `json:"free_shipping_progress"`
}

var hundred = decimal.NewFromInt(100)

// Calculate is a pure function of (subtotal, itemCount, cfg). It never
// mutates state and never fails; it is re-evaluated on every read of cart
// state.
func Calculate(subtotal decimal.Decimal, itemCount int, cfg Config) Quote {
	free := subtotal.GreaterThanOrEqual(cfg.FreeShippingThreshold)

	shipping := cfg.FlatShippingCost
	if free {
		shipping = decimal.Zero
	}

	remaining := cfg.FreeShippingThreshold.Sub(subtotal)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	progress := hundred
	if !free && cfg.FreeShippingThreshold.IsPositive() {
		progress = subtotal.Div(cfg.FreeShippingThreshold).Mul(hundred)
		if progress.GreaterThan(hundred) {
			progress = hundred
		}
	}

	return Quote{
		Subtotal:             subtotal,
		ShippingCost:         shipping,
		IsFreeShipping:       free,
		Total:                subtotal.Add(shipping),
		MeetsMinimumOrder:    itemCount >= cfg.MinimumOrderItems,
		AmountToFreeShipping: remaining,
		FreeShippingProgress: progress,
	}
}
