package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func customerInfo() CustomerInfo {
	return CustomerInfo{Email: "sean@example.ie", AgeVerified: true}
}

func shippingAddress() ShippingAddress {
	return ShippingAddress{
		FullName:     "Sean Murphy",
		AddressLine1: "14 O'Connell Street",
		City:         "Dublin",
		County:       "Dublin",
		Eircode:      "D01 F5P2",
		Phone:        "0871234567",
	}
}

func shippingMethod() ShippingMethod {
	return ShippingMethod{
		ID:            "standard",
		Name:          "Standard Delivery",
		Price:         decimal.RequireFromString("5.99"),
		EstimatedDays: 3,
	}
}

// TestCheckout_ForwardJumpRejected verifies that jumping ahead of
// prerequisites is rejected and leaves the state untouched.
func TestCheckout_ForwardJumpRejected(t *testing.T) {
	c := New()

	err := c.GoToStep(StepShippingAddress)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStepLocked)
	assert.Equal(t, StepCartReview, c.CurrentStep)
}

// TestCheckout_ForwardAllowedAfterData verifies the same jump succeeds once
// the customer info setter has run.
func TestCheckout_ForwardAllowedAfterData(t *testing.T) {
	c := New()
	c.SetCustomerInfo(customerInfo())

	require.NoError(t, c.GoToStep(StepShippingAddress))
	assert.Equal(t, StepShippingAddress, c.CurrentStep)
}

// TestCheckout_BackwardAlwaysAllowed verifies backward movement regardless of data.
func TestCheckout_BackwardAlwaysAllowed(t *testing.T) {
	c := New()
	c.SetCustomerInfo(customerInfo())
	require.NoError(t, c.GoToStep(StepShippingAddress))

	require.NoError(t, c.GoToStep(StepCustomerInfo))
	assert.Equal(t, StepCustomerInfo, c.CurrentStep)

	// Idempotent move onto the current step.
	require.NoError(t, c.GoToStep(StepCustomerInfo))
	assert.Equal(t, StepCustomerInfo, c.CurrentStep)
}

// TestCheckout_Gating walks the monotonically strengthening preconditions.
func TestCheckout_Gating(t *testing.T) {
	c := New()

	assert.True(t, c.CanProceedTo(StepCartReview))
	assert.True(t, c.CanProceedTo(StepCustomerInfo))
	assert.False(t, c.CanProceedTo(StepShippingAddress))
	assert.False(t, c.CanProceedTo(StepShippingMethod))
	assert.False(t, c.CanProceedTo(StepPayment))
	assert.False(t, c.CanProceedTo(StepConfirmation))

	c.SetCustomerInfo(customerInfo())
	assert.True(t, c.CanProceedTo(StepShippingAddress))
	assert.False(t, c.CanProceedTo(StepShippingMethod))

	c.SetShippingAddress(shippingAddress())
	assert.True(t, c.CanProceedTo(StepShippingMethod))
	assert.False(t, c.CanProceedTo(StepPayment))

	c.SetShippingMethod(shippingMethod())
	assert.True(t, c.CanProceedTo(StepPayment))
	assert.True(t, c.CanProceedTo(StepConfirmation))
}

// TestCheckout_UnknownStep verifies out-of-range steps are rejected.
func TestCheckout_UnknownStep(t *testing.T) {
	c := New()

	assert.ErrorIs(t, c.GoToStep(0), ErrUnknownStep)
	assert.ErrorIs(t, c.GoToStep(7), ErrUnknownStep)
	assert.Equal(t, StepCartReview, c.CurrentStep)
}

// TestCheckout_SettersDoNotMoveStep verifies data setters never advance the machine.
func TestCheckout_SettersDoNotMoveStep(t *testing.T) {
	c := New()

	c.SetCustomerInfo(customerInfo())
	c.SetShippingAddress(shippingAddress())
	c.SetShippingMethod(shippingMethod())
	c.SetCoupon(Coupon{Code: "WELCOME10", Discount: decimal.RequireFromString("10.00")})

	assert.Equal(t, StepCartReview, c.CurrentStep)
}

// TestCheckout_ForwardNeverClearsData verifies moving forward preserves
// previously entered step data.
func TestCheckout_ForwardNeverClearsData(t *testing.T) {
	c := New()
	c.SetCustomerInfo(customerInfo())
	c.SetShippingAddress(shippingAddress())
	c.SetShippingMethod(shippingMethod())

	require.NoError(t, c.GoToStep(StepPayment))

	assert.NotNil(t, c.Data.CustomerInfo)
	assert.NotNil(t, c.Data.ShippingAddress)
	assert.NotNil(t, c.Data.ShippingMethod)
}

// TestCheckout_Reset verifies reset restores step 1 and the empty initial data.
func TestCheckout_Reset(t *testing.T) {
	c := New()
	c.SetCustomerInfo(customerInfo())
	c.SetShippingAddress(shippingAddress())
	c.SetShippingMethod(shippingMethod())
	c.SetCoupon(Coupon{Code: "WELCOME10", Discount: decimal.RequireFromString("10.00")})
	require.NoError(t, c.GoToStep(StepPayment))

	c.Reset()

	assert.Equal(t, StepCartReview, c.CurrentStep)
	assert.Equal(t, Data{}, c.Data)
	assert.Equal(t, New(), c)
}

// TestValidEmail exercises the email format check.
func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("sean@example.ie"))
	assert.False(t, ValidEmail("sean@"))
	assert.False(t, ValidEmail("not an email"))
	assert.False(t, ValidEmail(""))
}

// TestValidPhone exercises the Irish phone number pattern.
func TestValidPhone(t *testing.T) {
	assert.True(t, ValidPhone("0871234567"))
	assert.True(t, ValidPhone("+353871234567"))
	assert.True(t, ValidPhone("871234567"))
	assert.False(t, ValidPhone("0071234567"))
	assert.False(t, ValidPhone("12345"))
	assert.False(t, ValidPhone(""))
}

// TestValidEircode exercises the Eircode pattern, including the optional case.
func TestValidEircode(t *testing.T) {
	assert.True(t, ValidEircode("D01F5P2"))
	assert.True(t, ValidEircode("D01 F5P2"))
	assert.True(t, ValidEircode("d01 f5p2"))
	assert.True(t, ValidEircode(""))
	assert.False(t, ValidEircode("D01"))
	assert.False(t, ValidEircode("D01-F5P2"))
}
