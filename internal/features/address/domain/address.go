package domain

import "time"

// Address is a saved customer address. A customer may hold any number of
// addresses, but at most one carries the default-shipping flag and at most
// one the default-billing flag.
type Address struct {
	// ID uniquely identifies the address.
	ID string `json:"id"`
	// OwnerID is the customer the address belongs to.
	OwnerID string `json:"owner_id"`
	// Name is the customer's label for the address, e.g. "Home".
	Name string `json:"name"`
	// RecipientName is the person receiving deliveries at this address.
	RecipientName string `json:"recipient_name"`
	// AddressLine1 is the first address line.
	AddressLine1 string `json:"address_line1"`
	// AddressLine2 is the optional second address line.
	AddressLine2 string `json:"address_line2,omitempty"`
	// City is the town or city.
	City string `json:"city"`
	// County is the optional Irish county.
	County string `json:"county,omitempty"`
	// Eircode is the optional Irish postal code.
	Eircode string `json:"eircode,omitempty"`
	// Country is the ISO country code.
	Country string `json:"country"`
	// Phone is the contact phone number.
	Phone string `json:"phone,omitempty"`
	// IsDefaultShipping marks this as the customer's default shipping address.
	IsDefaultShipping bool `json:"is_default_shipping"`
	// IsDefaultBilling marks this as the customer's default billing address.
	IsDefaultBilling bool `json:"is_default_billing"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ApplyDefaults enforces the at-most-one invariant across a customer's
// address set: when the given address claims a default flag, the same flag is
// cleared on every other address. The returned slice contains every address
// whose flags changed, ready to be written back in one batch alongside the
// claiming address.
func ApplyDefaults(claiming *Address, others []*Address, now time.Time) []*Address {
	var demoted []*Address
	for _, other := range others {
		if other.ID == claiming.ID {
			continue
		}
		changed := false
		if claiming.IsDefaultShipping && other.IsDefaultShipping {
			other.IsDefaultShipping = false
			changed = true
		}
		if claiming.IsDefaultBilling && other.IsDefaultBilling {
			other.IsDefaultBilling = false
			changed = true
		}
		if changed {
			other.UpdatedAt = now
			demoted = append(demoted, other)
		}
	}
	return demoted
}
