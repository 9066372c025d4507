package domain

import (
	"github.com/shopspring/decimal"
)

// MaxLineQuantity is the per-line quantity ceiling inside the cart.
// Product pages may offer a larger selector, but the stricter bound
// applies once the selection is merged into the cart.
const MaxLineQuantity = 50

// Variant is the flavor/strength combination that distinguishes otherwise
// identical products for cart merging purposes.
type Variant struct {
	// Flavor is the pouch flavor, e.g. "mint".
	Flavor string `json:"flavor"`
	// Strength is the nicotine strength label, e.g. "6mg".
	Strength string `json:"strength"`
}

// Line is one distinct product+variant selection and its quantity.
type Line struct {
	// ProductID is the identifier of the product.
	ProductID string `json:"product_id"`
	// ProductName is the display name, snapshotted for order items later.
	ProductName string `json:"product_name"`
	// ProductSKU is the Stock Keeping Unit identifier for the product.
	ProductSKU string `json:"product_sku"`
	// Variant is the chosen flavor/strength combination.
	Variant Variant `json:"variant"`
	// UnitPrice is the price per unit as an exact decimal.
	UnitPrice decimal.Decimal `json:"unit_price"`
	// Quantity is the number of units, always within [1, MaxLineQuantity].
	Quantity int `json:"quantity"`
}

// Total returns unit price multiplied by quantity.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart holds the session's line items. At most one line exists per distinct
// (ProductID, Variant) pair; adding a duplicate increments the quantity.
// All operations are total functions over the in-memory line list: bounds are
// enforced by clamping, never by rejection.
type Cart struct {
	// Lines are the current line items.
	Lines []Line `json:"lines"`
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{Lines: []Line{}}
}

// clampQuantity bounds a requested quantity to [1, MaxLineQuantity].
func clampQuantity(q int) int {
	if q < 1 {
		return 1
	}
	if q > MaxLineQuantity {
		return MaxLineQuantity
	}
	return q
}

// AddLine merges the given line into the cart. If a line with the same
// (ProductID, Variant) exists its quantity is incremented by line.Quantity,
// clamped to the per-line maximum; otherwise the line is appended.
func (c *Cart) AddLine(line Line) {
	if line.Quantity < 1 {
		line.Quantity = 1
	}

	for i := range c.Lines {
		if c.Lines[i].ProductID == line.ProductID && c.Lines[i].Variant == line.Variant {
			c.Lines[i].Quantity = clampQuantity(c.Lines[i].Quantity + line.Quantity)
			return
		}
	}

	line.Quantity = clampQuantity(line.Quantity)
	c.Lines = append(c.Lines, line)
}

// Remove deletes the line matching (productID, variant). No-op if absent.
func (c *Cart) Remove(productID string, variant Variant) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID && c.Lines[i].Variant == variant {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

// SetQuantity sets the quantity of the matching line, clamped to
// [1, MaxLineQuantity]. A quantity of zero or less removes the line.
// No-op if the line is absent.
func (c *Cart) SetQuantity(productID string, variant Variant, quantity int) {
	if quantity <= 0 {
		c.Remove(productID, variant)
		return
	}

	for i := range c.Lines {
		if c.Lines[i].ProductID == productID && c.Lines[i].Variant == variant {
			c.Lines[i].Quantity = clampQuantity(quantity)
			return
		}
	}
}

// Clear empties all lines. Called after order confirmation.
func (c *Cart) Clear() {
	c.Lines = []Line{}
}

// TotalItems returns the sum of quantities across lines.
func (c *Cart) TotalItems() int {
	total := 0
	for _, l := range c.Lines {
		total += l.Quantity
	}
	return total
}

// Subtotal returns the exact decimal sum of line totals.
func (c *Cart) Subtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for _, l := range c.Lines {
		subtotal = subtotal.Add(l.Total())
	}
	return subtotal
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}
