package handler

import (
	"errors"
	"net/http"

	"pouchstore/internal/core/logger"
	"pouchstore/internal/features/checkout/domain"
	"pouchstore/internal/features/checkout/service"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CheckoutHandler handles HTTP requests for the checkout flow.
type CheckoutHandler struct {
	service *service.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(s *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		service: s,
	}
}

// ErrorResponse represents the structure of an error response.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for debugging.
	RayID string `json:"ray_id"`
}

func rayID(c *fiber.Ctx) string {
	id, ok := c.Locals("requestid").(string)
	if !ok {
		return "unknown"
	}
	return id
}

func sessionID(c *fiber.Ctx) string {
	return c.Get("X-Session-ID")
}

func (h *CheckoutHandler) requireSession(c *fiber.Ctx) (string, error) {
	sid := sessionID(c)
	if sid == "" {
		return "", c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "Session ID is required",
			RayID:   rayID(c),
		})
	}
	return sid, nil
}

func (h *CheckoutHandler) badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
		Message: msg,
		RayID:   rayID(c),
	})
}

// checkoutError maps service errors to HTTP responses.
func (h *CheckoutHandler) checkoutError(c *fiber.Ctx, sid string, err error) error {
	status := http.StatusInternalServerError
	msg := "Internal Server Error"

	switch {
	case errors.Is(err, domain.ErrUnknownStep):
		status = http.StatusBadRequest
		msg = "Unknown checkout step"
	case errors.Is(err, domain.ErrStepLocked):
		status = http.StatusConflict
		msg = err.Error()
	case errors.Is(err, service.ErrMinimumOrderNotMet):
		status = http.StatusConflict
		msg = err.Error()
	case errors.Is(err, service.ErrPaymentDeclined):
		status = http.StatusPaymentRequired
		msg = err.Error()
	default:
		logger.Get().Error("Checkout request failed",
			zap.String("session_id", sid),
			zap.String("ray_id", rayID(c)),
			zap.Error(err),
		)
	}

	return c.Status(status).JSON(ErrorResponse{
		Message: msg,
		RayID:   rayID(c),
	})
}

// GetCheckout handles GET /checkout.
// @Summary Get the session checkout state
// @Description Returns the current step and accumulated step data.
// @Tags Checkout
// @Produce json
// @Param X-Session-ID header string true "Session ID"
// @Success 200 {object} domain.Checkout
// @Failure 400 {object} ErrorResponse
// @Router /checkout [get]
func (h *CheckoutHandler) GetCheckout(c *fiber.Ctx) error {
	sid, err := h.requireSession(c)
	if err != nil {
		return err
	}

	checkout, err := h.service.Get(c.Context(), sid)
	if err != nil {
		return h.checkoutError(c, sid, err)
	}

	return c.Status(http.StatusOK).JSON(checkout)
}

// GoToStepRequest represents a step navigation request.
type GoToStepRequest struct {
	// Step is the target step number, 1 through 6.
	Step int `json:"step"`
}

// GoToStep handles POST /checkout/step.
// @Summary Navigate the checkout
// @Description Moves to the target step. Forward moves are rejected with 409 until prerequisites are met.
// @Tags Checkout
// @Accept json
// @Produce json
// @Param X-Session-ID header string true "Session ID"
// @Param body body GoToStepRequest true "Target step"
// @Success 200 {object} domain.Checkout
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /checkout/step [post]
func (h *CheckoutHandler) GoToStep(c *fiber.Ctx) error {
	sid, err := h.requireSession(c)
	if err != nil {
		return err
	}

	var req GoToStepRequest
	if err := c.BodyParser(&req); err != nil {
		return h.badRequest(c, "Invalid request body")
	}

	checkout, err := h.service.GoToStep(c.Context(), sid, domain.Step(req.Step))
	if err != nil {
		return h.checkoutError(c, sid, err)
	}

	return c.Status(http.StatusOK).JSON(checkout)
}

// CustomerInfoRequest represents the customer info submission.
type CustomerInfoRequest struct {
	Email         string `json:"email"`
	AgeVerified   bool   `json:"age_verified"`
	CreateAccount bool   `json:"create_account"`
	Password      string `json:"password,omitempty"`
}

// SubmitCustomerInfo handles POST /checkout/customer.
// @Summary Submit customer info
// @Description Validates and records the email and age attestation.
// @Tags Checkout
// @Accept json
// @Produce json
// @Param X-Session-ID header string true "Session ID"
// @Param body body CustomerInfoRequest true "Customer info"
// @Success 200 {object} domain.Checkout
// @Failure 400 {object} ErrorResponse
// @Router /checkout/customer [post]
func (h *CheckoutHandler) SubmitCustomerInfo(c *fiber.Ctx) error {
	sid, err := h.requireSession(c)
	if err != nil {
		return err
	}

	var req CustomerInfoRequest
	if err := c.BodyParser(&req); err != nil {
		return h.badRequest(c, "Invalid request body")
	}

	if !domain.ValidEmail(req.Email) {
		return h.badRequest(c, "A valid email is required")
	}
	if !req.AgeVerified {
		return h.badRequest(c, "Age verification is required")
	}
	if req.CreateAccount && len(req.Password) < 8 {
		return h.badRequest(c, "Password must be at least 8 characters")
	}

	checkout, err := h.service.SubmitCustomerInfo(c.Context(), sid, domain.CustomerInfo{
		Email:         req.Email,
		AgeVerified:   req.AgeVerified,
		CreateAccount: req.CreateAccount,
		Password:      req.Password,
	})
	if err != nil {
		return h.checkoutError(c, sid, err)
	}

	return c.Status(http.StatusOK).JSON(checkout)
}

// ShippingAddressRequest represents the shipping address submission.
type ShippingAddressRequest struct {
	FullName     string `json:"full_name"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city"`
	County       string `json:"county,omitempty"`
	Eircode      string `json:"eircode,omitempty"`
	Phone        string `json:"phone"`
}

// SubmitShippingAddress handles POST /checkout/address.
// @Summary Submit the shipping address
// @Description Validates and records the Irish delivery address.
// @Tags Checkout
// @Accept json
// @Produce json
// @Param X-Session-ID header string true "Session ID"
// @Param body body ShippingAddressRequest true "Shipping address"
// @Success 200 {object} domain.Checkout
// @Failure 400 {object} ErrorResponse
// @Router /checkout/address [post]
func (h *CheckoutHandler) SubmitShippingAddress(c *fiber.Ctx) error {
	sid, err := h.requireSession(c)
	if err != nil {
		return err
	}

	var req ShippingAddressRequest
	if err := c.BodyParser(&req); err != nil {
		return h.badRequest(c, "Invalid request body")
	}

	if req.FullName == "" || req.AddressLine1 == "" || req.City == "" {
		return h.badRequest(c, "Full name, address line 1 and city are required")
	}
	if !domain.ValidPhone(req.Phone) {
		return h.badRequest(c, "A valid Irish phone number is required")
	}
	if !domain.ValidEircode(req.Eircode) {
		return h.badRequest(c, "Eircode format is invalid")
	}

	checkout, err := h.service.SubmitShippingAddress(c.Context(), sid, domain.ShippingAddress{
		FullName:     req.FullName,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		County:       req.County,
		Eircode:      req.Eircode,
		Phone:        req.Phone,
	})
	if err != nil {
		return h.checkoutError(c, sid, err)
	}

	return c.Status(http.StatusOK).JSON(checkout)
}

// ShippingMethodRequest represents the shipping method selection.
type ShippingMethodRequest struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Price         string `json:"price"`
	EstimatedDays int    `json:"estimated_days"`
}

// SubmitShippingMethod handles POST /checkout/shipping-method.
// @Summary Select the shipping method
// @Tags Checkout
// @Accept json
// @Produce json
// @Param X-Session-ID header string true "Session ID"
// @Param body body ShippingMethodRequest true "Shipping method"
// @Success 200 {object} domain.Checkout
// @Failure 400 {object} ErrorResponse
// @Router /checkout/shipping-method [post]
func (h *CheckoutHandler) SubmitShippingMethod(c *fiber.Ctx) error {
	sid, err := h.requireSession(c)
	if err != nil {
		return err
	}

	var req ShippingMethodRequest
	if err := c.BodyParser(&req); err != nil {
		return h.badRequest(c, "Invalid request body")
	}

	if req.ID == "" || req.Name == "" {
		return h.badRequest(c, "Shipping method ID and name are required")
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		return h.badRequest(c, "Price must be a non-negative decimal")
	}

	checkout, err := h.service.SubmitShippingMethod(c.Context(), sid, domain.ShippingMethod{
		ID:            req.ID,
		Name:          req.Name,
		Price:         price,
		EstimatedDays: req.EstimatedDays,
	})
	if err != nil {
		return h.checkoutError(c, sid, err)
	}

	return c.Status(http.StatusOK).JSON(checkout)
}

// CouponRequest represents a coupon application.
type CouponRequest struct {
	Code     string `json:"code"`
	Discount string `json:"discount"`
}

// ApplyCoupon handles POST /checkout/coupon.
// @Summary Apply a coupon
// @Tags Checkout
// @Accept json
// @Produce json
// @Param X-Session-ID header string true "Session ID"
// @Param body body CouponRequest true "Coupon"
// @Success 200 {object} domain.Checkout
// @Failure 400 {object} ErrorResponse
// @Router /checkout/coupon [post]
func (h *CheckoutHandler) ApplyCoupon(c *fiber.Ctx) error {
	sid, err := h.requireSession(c)
	if err != nil {
		return err
	}

	var req CouponRequest
	if err := c.BodyParser(&req); err != nil {
		return h.badRequest(c, "Invalid request body")
	}

	if req.Code == "" {
		return h.badRequest(c, "Coupon code is required")
	}
	discount, err := decimal.NewFromString(req.Discount)
	if err != nil || discount.IsNegative() {
		return h.badRequest(c, "Discount must be a non-negative decimal")
	}

	checkout, err := h.service.ApplyCoupon(c.Context(), sid, domain.Coupon{
		Code:     req.Code,
		Discount: discount,
	})
	if err != nil {
		return h.checkoutError(c, sid, err)
	}

	return c.Status(http.StatusOK).JSON(checkout)
}

// PayRequest carries the tokenized payment instrument.
type PayRequest struct {
	// PaymentToken is the gateway token; raw card data never reaches this API.
	PaymentToken string `json:"payment_token"`
}

// Pay handles POST /checkout/pay.
// @Summary Pay and place the order
// @Description Captures payment and, on success, creates the order and clears the session.
// @Tags Checkout
// @Accept json
// @Produce json
// @Param X-Session-ID header string true "Session ID"
// @Param body body PayRequest true "Payment token"
// @Success 201 {object} orderdomain.Order
// @Failure 400 {object} ErrorResponse
// @Failure 402 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /checkout/pay [post]
func (h *CheckoutHandler) Pay(c *fiber.Ctx) error {
	sid, err := h.requireSession(c)
	if err != nil {
		return err
	}

	var req PayRequest
	if err := c.BodyParser(&req); err != nil {
		return h.badRequest(c, "Invalid request body")
	}
	if req.PaymentToken == "" {
		return h.badRequest(c, "Payment token is required")
	}

	order, err := h.service.Pay(c.Context(), sid, req.PaymentToken)
	if err != nil {
		return h.checkoutError(c, sid, err)
	}

	return c.Status(http.StatusCreated).JSON(order)
}

// Reset handles POST /checkout/reset.
// @Summary Reset the checkout
// @Description Discards the session's checkout state. The cart is untouched.
// @Tags Checkout
// @Produce json
// @Param X-Session-ID header string true "Session ID"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Router /checkout/reset [post]
func (h *CheckoutHandler) Reset(c *fiber.Ctx) error {
	sid, err := h.requireSession(c)
	if err != nil {
		return err
	}

	if err := h.service.Reset(c.Context(), sid); err != nil {
		return h.checkoutError(c, sid, err)
	}

	return c.SendStatus(http.StatusNoContent)
}
