package handler

import (
	"errors"
	"net/http"

	"pouchstore/internal/core/logger"
	"pouchstore/internal/features/address/domain"
	"pouchstore/internal/features/address/service"
	checkoutdomain "pouchstore/internal/features/checkout/domain"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AddressHandler handles HTTP requests for the customer address book.
type AddressHandler struct {
	service *service.AddressService
}

// NewAddressHandler creates a new AddressHandler.
func NewAddressHandler(s *service.AddressService) *AddressHandler {
	return &AddressHandler{
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

func customerID(c *fiber.Ctx) string {
	return c.Get("X-Customer-ID")
}

func (h *AddressHandler) requireCustomer(c *fiber.Ctx) (string, error) {
	cid := customerID(c)
	if cid == "" {
		return "", c.Status(http.StatusUnauthorized).JSON(ErrorResponse{
			Message: "Customer ID is required",
			RayID:   rayID(c),
		})
	}
	return cid, nil
}

func (h *AddressHandler) badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
		Message: msg,
		RayID:   rayID(c),
	})
}

func (h *AddressHandler) addressError(c *fiber.Ctx, cid string, err error) error {
	if errors.Is(err, service.ErrAddressNotFound) {
		return c.Status(http.StatusNotFound).JSON(ErrorResponse{
			Message: "Address not found",
			RayID:   rayID(c),
		})
	}

	logger.Get().Error("Address request failed",
		zap.String("customer_id", cid),
		zap.String("ray_id", rayID(c)),
		zap.Error(err),
	)
	return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
		Message: "Internal Server Error",
		RayID:   rayID(c),
	})
}

// AddressRequest represents the create/update payload.
type AddressRequest struct {
	Name              string `json:"name"`
	RecipientName     string `json:"recipient_name"`
	AddressLine1      string `json:"address_line1"`
	AddressLine2      string `json:"address_line2,omitempty"`
	City              string `json:"city"`
	County            string `json:"county,omitempty"`
	Eircode           string `json:"eircode,omitempty"`
	Country           string `json:"country,omitempty"`
	Phone             string `json:"phone,omitempty"`
	IsDefaultShipping bool   `json:"is_default_shipping"`
	IsDefaultBilling  bool   `json:"is_default_billing"`
}

func (h *AddressHandler) validate(c *fiber.Ctx, req AddressRequest) error {
	if req.RecipientName == "" || req.AddressLine1 == "" || req.City == "" {
		return h.badRequest(c, "Recipient name, address line 1 and city are required")
	}
	if req.Phone != "" && !checkoutdomain.ValidPhone(req.Phone) {
		return h.badRequest(c, "A valid Irish phone number is required")
	}
	if !checkoutdomain.ValidEircode(req.Eircode) {
		return h.badRequest(c, "Eircode format is invalid")
	}
	return nil
}

func (h *AddressHandler) toDomain(cid string, req AddressRequest) *domain.Address {
	return &domain.Address{
		OwnerID:           cid,
		Name:              req.Name,
		RecipientName:     req.RecipientName,
		AddressLine1:      req.AddressLine1,
		AddressLine2:      req.AddressLine2,
		City:              req.City,
		County:            req.County,
		Eircode:           req.Eircode,
		Country:           req.Country,
		Phone:             req.Phone,
		IsDefaultShipping: req.IsDefaultShipping,
		IsDefaultBilling:  req.IsDefaultBilling,
	}
}

// ListAddresses handles GET /addresses.
// @Summary List the customer's addresses
// @Description Returns the address book, defaults first.
// @Tags Addresses
// @Produce json
// @Param X-Customer-ID header string true "Customer ID"
// @Success 200 {array} domain.Address
// @Failure 401 {object} ErrorResponse
// @Router /addresses [get]
func (h *AddressHandler) ListAddresses(c *fiber.Ctx) error {
	cid, err := h.requireCustomer(c)
	if err != nil {
		return err
	}

	addresses, err := h.service.List(c.Context(), cid)
	if err != nil {
		return h.addressError(c, cid, err)
	}

	return c.Status(http.StatusOK).JSON(addresses)
}

// GetAddress handles GET /addresses/:id.
// @Summary Get one address
// @Tags Addresses
// @Produce json
// @Param X-Customer-ID header string true "Customer ID"
// @Param id path string true "Address ID"
// @Success 200 {object} domain.Address
// @Failure 404 {object} ErrorResponse
// @Router /addresses/{id} [get]
func (h *AddressHandler) GetAddress(c *fiber.Ctx) error {
	cid, err := h.requireCustomer(c)
	if err != nil {
		return err
	}

	address, err := h.service.Get(c.Context(), cid, c.Params("id"))
	if err != nil {
		return h.addressError(c, cid, err)
	}

	return c.Status(http.StatusOK).JSON(address)
}

// CreateAddress handles POST /addresses.
// @Summary Create an address
// @Description Saves a new address. A default-flag claim demotes the previous holder atomically.
// @Tags Addresses
// @Accept json
// @Produce json
// @Param X-Customer-ID header string true "Customer ID"
// @Param body body AddressRequest true "Address"
// @Success 201 {object} domain.Address
// @Failure 400 {object} ErrorResponse
// @Router /addresses [post]
func (h *AddressHandler) CreateAddress(c *fiber.Ctx) error {
	cid, err := h.requireCustomer(c)
	if err != nil {
		return err
	}

	var req AddressRequest
	if err := c.BodyParser(&req); err != nil {
		return h.badRequest(c, "Invalid request body")
	}
	if err := h.validate(c, req); err != nil {
		return err
	}

	created, err := h.service.Create(c.Context(), h.toDomain(cid, req))
	if err != nil {
		return h.addressError(c, cid, err)
	}

	return c.Status(http.StatusCreated).JSON(created)
}

// UpdateAddress handles PUT /addresses/:id.
// @Summary Update an address
// @Tags Addresses
// @Accept json
// @Produce json
// @Param X-Customer-ID header string true "Customer ID"
// @Param id path string true "Address ID"
// @Param body body AddressRequest true "Address"
// @Success 200 {object} domain.Address
// @Failure 404 {object} ErrorResponse
// @Router /addresses/{id} [put]
func (h *AddressHandler) UpdateAddress(c *fiber.Ctx) error {
	cid, err := h.requireCustomer(c)
	if err != nil {
		return err
	}

	var req AddressRequest
	if err := c.BodyParser(&req); err != nil {
		return h.badRequest(c, "Invalid request body")
	}
	if err := h.validate(c, req); err != nil {
		return err
	}

	address := h.toDomain(cid, req)
	address.ID = c.Params("id")

	updated, err := h.service.Update(c.Context(), address)
	if err != nil {
		return h.addressError(c, cid, err)
	}

	return c.Status(http.StatusOK).JSON(updated)
}

// SetDefaultRequest selects which default roles the address takes.
type SetDefaultRequest struct {
	Shipping bool `json:"shipping"`
	Billing  bool `json:"billing"`
}

// SetDefault handles POST /addresses/:id/default.
// @Summary Set an address as default
// @Description Marks the address as default for the chosen roles; previous holders are demoted in the same write.
// @Tags Addresses
// @Accept json
// @Produce json
// @Param X-Customer-ID header string true "Customer ID"
// @Param id path string true "Address ID"
// @Param body body SetDefaultRequest true "Roles"
// @Success 200 {object} domain.Address
// @Failure 404 {object} ErrorResponse
// @Router /addresses/{id}/default [post]
func (h *AddressHandler) SetDefault(c *fiber.Ctx) error {
	cid, err := h.requireCustomer(c)
	if err != nil {
		return err
	}

	var req SetDefaultRequest
	if err := c.BodyParser(&req); err != nil {
		return h.badRequest(c, "Invalid request body")
	}
	if !req.Shipping && !req.Billing {
		return h.badRequest(c, "At least one role is required")
	}

	updated, err := h.service.SetDefault(c.Context(), cid, c.Params("id"), req.Shipping, req.Billing)
	if err != nil {
		return h.addressError(c, cid, err)
	}

	return c.Status(http.StatusOK).JSON(updated)
}

// DeleteAddress handles DELETE /addresses/:id.
// @Summary Delete an address
// @Description Removes the address. Default roles are left vacant, not reassigned.
// @Tags Addresses
// @Produce json
// @Param X-Customer-ID header string true "Customer ID"
// @Param id path string true "Address ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /addresses/{id} [delete]
func (h *AddressHandler) DeleteAddress(c *fiber.Ctx) error {
	cid, err := h.requireCustomer(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Context(), cid, c.Params("id")); err != nil {
		return h.addressError(c, cid, err)
	}

	return c.SendStatus(http.StatusNoContent)
}
