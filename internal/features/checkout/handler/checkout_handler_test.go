package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"pouchstore/internal/core/cache"
	cartadapters "pouchstore/internal/features/cart/adapters"
	cartdomain "pouchstore/internal/features/cart/domain"
	checkoutadapters "pouchstore/internal/features/checkout/adapters"
	"pouchstore/internal/features/checkout/domain"
	"pouchstore/internal/features/checkout/ports"
	"pouchstore/internal/features/checkout/service"
	orderdomain "pouchstore/internal/features/orders/domain"
	"pouchstore/internal/features/pricing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubGateway approves every token except "tok-declined".
type stubGateway struct {
	captured decimal.Decimal
}

func (g *stubGateway) AuthorizeAndCapture(_ context.Context, amount decimal.Decimal, _, token string) (ports.PaymentResult, error) {
	g.captured = amount
	if token == "tok-declined" {
		return ports.PaymentResult{Succeeded: false, DeclineReason: "insufficient funds"}, nil
	}
	return ports.PaymentResult{Succeeded: true, Reference: "pay-123"}, nil
}

// stubPlacer records the placement call and returns a canned order.
type stubPlacer struct {
	placedRef string
}

func (p *stubPlacer) PlaceFromCheckout(_ context.Context, _ *cartdomain.Cart, _ domain.Data, paymentRef string) (*orderdomain.Order, error) {
	p.placedRef = paymentRef
	return &orderdomain.Order{
		ID:          "ord-1",
		OrderNumber: "PS-20260301-ABCD1234",
		Status:      orderdomain.OrderStatusPending,
	}, nil
}

type testEnv struct {
	app       *fiber.App
	cartStore *cartadapters.RedisCartStore
	gateway   *stubGateway
	placer    *stubPlacer
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	adapter, err := cache.NewRedisAdapter("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { adapter.Close() })

	cfg := pricing.Config{
		FlatShippingCost:      decimal.RequireFromString("5.99"),
		FreeShippingThreshold: decimal.RequireFromString("150.00"),
		MinimumOrderItems:     5,
	}

	cartStore := cartadapters.NewRedisCartStore(adapter)
	checkoutStore := checkoutadapters.NewRedisCheckoutStore(adapter)
	gateway := &stubGateway{}
	placer := &stubPlacer{}

	svc := service.NewCheckoutService(checkoutStore, cartStore, gateway, placer, cfg, decimal.RequireFromString("0.23"), "EUR")
	h := NewCheckoutHandler(svc)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("requestid", "test-ray-id")
		return c.Next()
	})
	app.Get("/checkout", h.GetCheckout)
	app.Post("/checkout/step", h.GoToStep)
	app.Post("/checkout/customer", h.SubmitCustomerInfo)
	app.Post("/checkout/address", h.SubmitShippingAddress)
	app.Post("/checkout/shipping-method", h.SubmitShippingMethod)
	app.Post("/checkout/coupon", h.ApplyCoupon)
	app.Post("/checkout/pay", h.Pay)
	app.Post("/checkout/reset", h.Reset)

	return &testEnv{app: app, cartStore: cartStore, gateway: gateway, placer: placer}
}

func (e *testEnv) seedCart(t *testing.T, sid string, quantity int, unitPrice string) {
	t.Helper()
	cart := cartdomain.New()
	cart.AddLine(cartdomain.Line{
		ProductID:   "prod-1",
		ProductName: "Arctic Mint",
		ProductSKU:  "AM-6",
		Variant:     cartdomain.Variant{Flavor: "mint", Strength: "6mg"},
		UnitPrice:   decimal.RequireFromString(unitPrice),
		Quantity:    quantity,
	})
	require.NoError(t, e.cartStore.Save(context.Background(), sid, cart))
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("X-Session-ID", "sess-1")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeCheckout(t *testing.T, resp *http.Response) domain.Checkout {
	t.Helper()
	var checkout domain.Checkout
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&checkout))
	return checkout
}

func TestGetCheckout_FreshSession(t *testing.T) {
	env := setupEnv(t)

	resp := env.do(t, http.MethodGet, "/checkout", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	checkout := decodeCheckout(t, resp)
	assert.Equal(t, domain.StepCartReview, checkout.CurrentStep)
}

func TestGetCheckout_RequiresSession(t *testing.T) {
	env := setupEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/checkout", nil)
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGoToStep_MinimumOrderRejected(t *testing.T) {
	env := setupEnv(t)
	env.seedCart(t, "sess-1", 4, "10.00")

	resp := env.do(t, http.MethodPost, "/checkout/step", GoToStepRequest{Step: 2})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body.Message, "minimum order")
	assert.Equal(t, "test-ray-id", body.RayID)
}

func TestGoToStep_ForwardJumpRejectedWithReason(t *testing.T) {
	env := setupEnv(t)
	env.seedCart(t, "sess-1", 5, "10.00")

	resp := env.do(t, http.MethodPost, "/checkout/step", GoToStepRequest{Step: 4})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body.Message, "customer info")
}

func TestGoToStep_UnknownStep(t *testing.T) {
	env := setupEnv(t)
	env.seedCart(t, "sess-1", 5, "10.00")

	resp := env.do(t, http.MethodPost, "/checkout/step", GoToStepRequest{Step: 9})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSubmitCustomerInfo_Validation(t *testing.T) {
	env := setupEnv(t)

	tests := []struct {
		name string
		req  CustomerInfoRequest
	}{
		{"bad email", CustomerInfoRequest{Email: "not-an-email", AgeVerified: true}},
		{"age not verified", CustomerInfoRequest{Email: "anna@example.ie", AgeVerified: false}},
		{"short password", CustomerInfoRequest{Email: "anna@example.ie", AgeVerified: true, CreateAccount: true, Password: "short"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, http.MethodPost, "/checkout/customer", tt.req)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestSubmitCustomerInfo_Success(t *testing.T) {
	env := setupEnv(t)

	resp := env.do(t, http.MethodPost, "/checkout/customer", CustomerInfoRequest{
		Email:       "anna@example.ie",
		AgeVerified: true,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	checkout := decodeCheckout(t, resp)
	require.NotNil(t, checkout.Data.CustomerInfo)
	assert.Equal(t, "anna@example.ie", checkout.Data.CustomerInfo.Email)
}

func TestSubmitShippingAddress_Validation(t *testing.T) {
	env := setupEnv(t)

	valid := ShippingAddressRequest{
		FullName:     "Anna Byrne",
		AddressLine1: "14 Abbey Street",
		City:         "Dublin",
		Eircode:      "D01F5P2",
		Phone:        "0871234567",
	}

	badPhone := valid
	badPhone.Phone = "12"
	resp := env.do(t, http.MethodPost, "/checkout/address", badPhone)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	badEircode := valid
	badEircode.Eircode = "D01-F5P2"
	resp = env.do(t, http.MethodPost, "/checkout/address", badEircode)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/checkout/address", valid)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestFullCheckoutFlow(t *testing.T) {
	env := setupEnv(t)
	env.seedCart(t, "sess-1", 5, "10.00")

	resp := env.do(t, http.MethodPost, "/checkout/customer", CustomerInfoRequest{
		Email:       "anna@example.ie",
		AgeVerified: true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/checkout/address", ShippingAddressRequest{
		FullName:     "Anna Byrne",
		AddressLine1: "14 Abbey Street",
		City:         "Dublin",
		Eircode:      "D01F5P2",
		Phone:        "0871234567",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/checkout/shipping-method", ShippingMethodRequest{
		ID:            "standard",
		Name:          "Standard Delivery",
		Price:         "5.99",
		EstimatedDays: 3,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/checkout/step", GoToStepRequest{Step: 5})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	checkout := decodeCheckout(t, resp)
	assert.Equal(t, domain.StepPayment, checkout.CurrentStep)

	resp = env.do(t, http.MethodPost, "/checkout/pay", PayRequest{PaymentToken: "tok-visa"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var order orderdomain.Order
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&order))
	assert.Equal(t, "PS-20260301-ABCD1234", order.OrderNumber)
	assert.Equal(t, "pay-123", env.placer.placedRef)

	// 50.00 subtotal + 5.99 shipping + 11.50 tax
	assert.True(t, env.gateway.captured.Equal(decimal.RequireFromString("67.49")))

	// Cart and checkout were cleared.
	cart, err := env.cartStore.Load(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())

	resp = env.do(t, http.MethodGet, "/checkout", nil)
	checkout = decodeCheckout(t, resp)
	assert.Equal(t, domain.StepCartReview, checkout.CurrentStep)
	assert.Nil(t, checkout.Data.CustomerInfo)
}

func TestPay_DeclinedReturns402(t *testing.T) {
	env := setupEnv(t)
	env.seedCart(t, "sess-1", 5, "10.00")

	resp := env.do(t, http.MethodPost, "/checkout/customer", CustomerInfoRequest{Email: "anna@example.ie", AgeVerified: true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = env.do(t, http.MethodPost, "/checkout/address", ShippingAddressRequest{
		FullName: "Anna Byrne", AddressLine1: "14 Abbey Street", City: "Dublin", Phone: "0871234567",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = env.do(t, http.MethodPost, "/checkout/shipping-method", ShippingMethodRequest{
		ID: "standard", Name: "Standard Delivery", Price: "5.99",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/checkout/pay", PayRequest{PaymentToken: "tok-declined"})
	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)

	// The session survives a decline.
	cart, err := env.cartStore.Load(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.False(t, cart.IsEmpty())
}

func TestPay_IncompleteCheckoutReturns409(t *testing.T) {
	env := setupEnv(t)
	env.seedCart(t, "sess-1", 5, "10.00")

	resp := env.do(t, http.MethodPost, "/checkout/pay", PayRequest{PaymentToken: "tok-visa"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestApplyCoupon_InvalidDiscount(t *testing.T) {
	env := setupEnv(t)

	resp := env.do(t, http.MethodPost, "/checkout/coupon", CouponRequest{Code: "SAVE10", Discount: "-5.00"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReset_ClearsState(t *testing.T) {
	env := setupEnv(t)

	resp := env.do(t, http.MethodPost, "/checkout/customer", CustomerInfoRequest{Email: "anna@example.ie", AgeVerified: true})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/checkout/reset", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/checkout", nil)
	checkout := decodeCheckout(t, resp)
	assert.Nil(t, checkout.Data.CustomerInfo)
}
