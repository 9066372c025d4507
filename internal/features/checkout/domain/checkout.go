package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Step identifies one of the six checkout steps, in strict order.
type Step int

const (
	// StepCartReview is the cart review step.
	StepCartReview Step = 1
	// StepCustomerInfo collects email and age verification.
	StepCustomerInfo Step = 2
	// StepShippingAddress collects the delivery address.
	StepShippingAddress Step = 3
	// StepShippingMethod selects the delivery method.
	StepShippingMethod Step = 4
	// StepPayment is where payment is attempted.
	StepPayment Step = 5
	// StepConfirmation shows the placed order. The machine does not gate on
	// payment outcome; the gateway result is enforced before this step is
	// ever requested.
	StepConfirmation Step = 6
)

var (
	// ErrUnknownStep is returned for steps outside [1, 6].
	ErrUnknownStep = errors.New("checkout: unknown step")
	// ErrStepLocked is returned when a forward transition is attempted before
	// the prerequisite step data has been supplied. The machine state is left
	// untouched.
	ErrStepLocked = errors.New("checkout: step prerequisites not met")
)

// CustomerInfo is the step 2 payload.
type CustomerInfo struct {
	// Email is the customer contact email.
	Email string `json:"email"`
	// AgeVerified confirms the customer attested to being of legal age.
	AgeVerified bool `json:"age_verified"`
	// CreateAccount requests account creation at order completion.
	CreateAccount bool `json:"create_account"`
	// Password is only set when CreateAccount is true.
	Password string `json:"password,omitempty"`
}

// ShippingAddress is the step 3 payload.
type ShippingAddress struct {
	// FullName is the recipient name.
	FullName string `json:"full_name"`
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
	// Phone is the contact phone number.
	Phone string `json:"phone"`
}

// ShippingMethod is the step 4 payload.
type ShippingMethod struct {
	// ID identifies the method.
	ID string `json:"id"`
	// Name is the display name, e.g. "Standard Delivery".
	Name string `json:"name"`
	// Price is the method cost as an exact decimal.
	Price decimal.Decimal `json:"price"`
	// EstimatedDays is the delivery estimate.
	EstimatedDays int `json:"estimated_days"`
}

// Coupon is an applied discount code.
type Coupon struct {
	// Code is the coupon code as entered.
	Code string `json:"code"`
	// Discount is the absolute discount amount.
	Discount decimal.Decimal `json:"discount"`
}

// Data accumulates checkout form results step by step. Fields are populated
// only after their step's validation succeeds and are never cleared by moving
// forward, only by explicit reset.
type Data struct {
	CustomerInfo    *CustomerInfo    `json:"customer_info,omitempty"`
	ShippingAddress *ShippingAddress `json:"shipping_address,omitempty"`
	ShippingMethod  *ShippingMethod  `json:"shipping_method,omitempty"`
	Coupon          *Coupon          `json:"coupon,omitempty"`
}

// Checkout is the step machine: the current step plus the accumulated data.
// It is a single-session, in-process state holder; persistence is layered on
// top by the service.
type Checkout struct {
	CurrentStep Step `json:"current_step"`
	Data        Data `json:"data"`
}

// New returns a checkout at the cart review step with empty data.
func New() *Checkout {
	return &Checkout{CurrentStep: StepCartReview}
}

// CanProceedTo reports whether the given step's prerequisites are met. Each
// step requires all previous steps' data, so the precondition strengthens
// monotonically.
func (c *Checkout) CanProceedTo(step Step) bool {
	switch step {
	case StepCartReview, StepCustomerInfo:
		return true
	case StepShippingAddress:
		return c.Data.CustomerInfo != nil
	case StepShippingMethod:
		return c.Data.CustomerInfo != nil && c.Data.ShippingAddress != nil
	case StepPayment, StepConfirmation:
		return c.Data.CustomerInfo != nil && c.Data.ShippingAddress != nil && c.Data.ShippingMethod != nil
	default:
		return false
	}
}

// missingFor names the first unmet prerequisite for a step.
func (c *Checkout) missingFor(step Step) string {
	if step >= StepShippingAddress && c.Data.CustomerInfo == nil {
		return "customer info"
	}
	if step >= StepShippingMethod && c.Data.ShippingAddress == nil {
		return "shipping address"
	}
	if step >= StepPayment && c.Data.ShippingMethod == nil {
		return "shipping method"
	}
	return ""
}

// GoToStep moves the machine to the target step. Backward or idempotent moves
// always succeed. Forward moves succeed only when CanProceedTo holds;
// otherwise ErrStepLocked is returned and the state is unchanged.
func (c *Checkout) GoToStep(target Step) error {
	if target < StepCartReview || target > StepConfirmation {
		return fmt.Errorf("%w: %d", ErrUnknownStep, target)
	}

	if target <= c.CurrentStep {
		c.CurrentStep = target
		return nil
	}

	if !c.CanProceedTo(target) {
		return fmt.Errorf("%w: step %d requires %s", ErrStepLocked, target, c.missingFor(target))
	}

	c.CurrentStep = target
	return nil
}

// SetCustomerInfo merges the customer info without changing the current step.
func (c *Checkout) SetCustomerInfo(info CustomerInfo) {
	c.Data.CustomerInfo = &info
}

// SetShippingAddress merges the shipping address without changing the current step.
func (c *Checkout) SetShippingAddress(addr ShippingAddress) {
	c.Data.ShippingAddress = &addr
}

// SetShippingMethod merges the shipping method without changing the current step.
func (c *Checkout) SetShippingMethod(method ShippingMethod) {
	c.Data.ShippingMethod = &method
}

// SetCoupon merges the applied coupon without changing the current step.
func (c *Checkout) SetCoupon(coupon Coupon) {
	c.Data.Coupon = &coupon
}

// Reset restores the cart review step and clears all accumulated data.
// Used after a successful order or on abandoning checkout.
func (c *Checkout) Reset() {
	c.CurrentStep = StepCartReview
	c.Data = Data{}
}
