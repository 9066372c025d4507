package handler

import (
	"net/http"

	"pouchstore/internal/core/logger"
	"pouchstore/internal/features/cart/domain"
	"pouchstore/internal/features/cart/service"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// maxRequestQuantity is the product-page selector ceiling. Requests above it
// are rejected before the cart's own clamp applies.
const maxRequestQuantity = 100

// CartHandler handles HTTP requests for the cart.
type CartHandler struct {
	service *service.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(s *service.CartService) *CartHandler {
	return &CartHandler{
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

// AddItemRequest represents the request body for adding a cart line.
type AddItemRequest struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	ProductSKU  string `json:"product_sku"`
	Flavor      string `json:"flavor"`
	Strength    string `json:"strength"`
	UnitPrice   string `json:"unit_price"`
	Quantity    int    `json:"quantity"`
}

// UpdateQuantityRequest represents the request body for a quantity change.
type UpdateQuantityRequest struct {
	ProductID string `json:"product_id"`
	Flavor    string `json:"flavor"`
	Strength  string `json:"strength"`
	Quantity  int    `json:"quantity"`
}

// GetCart handles GET /cart.
// @Summary Get the session cart
// @Description Returns the cart lines with the current pricing quote.
// @Tags Cart
// @Produce json
// @Param X-Session-ID header string true "Session ID"
// @Success 200 {object} service.CartView
// @Failure 400 {object} ErrorResponse
// @Router /cart [get]
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	sid := sessionID(c)
	if sid == "" {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "Session ID is required",
			RayID:   rayID(c),
		})
	}

	view, err := h.service.GetCart(c.Context(), sid)
	if err != nil {
		logger.Get().Error("Failed to get cart",
			zap.String("session_id", sid),
			zap.String("ray_id", rayID(c)),
			zap.Error(err),
		)
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Message: "Internal Server Error",
			RayID:   rayID(c),
		})
	}

	return c.Status(http.StatusOK).JSON(view)
}

// AddItem handles POST /cart/items.
// @Summary Add an item to the cart
// @Description Merges a product/variant selection into the cart; duplicate selections increment quantity.
// @Tags Cart
// @Accept json
// @Produce json
// @Param X-Session-ID header string true "Session ID"
// @Param item body AddItemRequest true "Item to add"
// @Success 200 {object} service.CartView
// @Failure 400 {object} ErrorResponse
// @Router /cart/items [post]
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	sid := sessionID(c)
	if sid == "" {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "Session ID is required",
			RayID:   rayID(c),
		})
	}

	var req AddItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "Invalid request body",
			RayID:   rayID(c),
		})
	}

	if req.ProductID == "" {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "Product ID is required",
			RayID:   rayID(c),
		})
	}

	if req.Quantity > maxRequestQuantity {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "Quantity exceeds the maximum of 100",
			RayID:   rayID(c),
		})
	}

	price, err := decimal.NewFromString(req.UnitPrice)
	if err != nil || price.IsNegative() {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "Unit price must be a non-negative decimal string",
			RayID:   rayID(c),
		})
	}

	view, err := h.service.AddItem(c.Context(), sid, domain.Line{
		ProductID:   req.ProductID,
		ProductName: req.ProductName,
		ProductSKU:  req.ProductSKU,
		Variant:     domain.Variant{Flavor: req.Flavor, Strength: req.Strength},
		UnitPrice:   price,
		Quantity:    req.Quantity,
	})
	if err != nil {
		logger.Get().Error("Failed to add cart item",
			zap.String("session_id", sid),
			zap.String("product_id", req.ProductID),
			zap.String("ray_id", rayID(c)),
			zap.Error(err),
		)
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Message: "Internal Server Error",
			RayID:   rayID(c),
		})
	}

	return c.Status(http.StatusOK).JSON(view)
}

// UpdateQuantity handles PUT /cart/items.
// @Summary Update a line quantity
// @Description Sets the quantity of a cart line; zero removes the line. Quantities are clamped to [1, 50].
// @Tags Cart
// @Accept json
// @Produce json
// @Param X-Session-ID header string true "Session ID"
// @Param item body UpdateQuantityRequest true "Quantity change"
// @Success 200 {object} service.CartView
// @Failure 400 {object} ErrorResponse
// @Router /cart/items [put]
func (h *CartHandler) UpdateQuantity(c *fiber.Ctx) error {
	sid := sessionID(c)
	if sid == "" {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "Session ID is required",
			RayID:   rayID(c),
		})
	}

	var req UpdateQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "Invalid request body",
			RayID:   rayID(c),
		})
	}

	if req.Quantity > maxRequestQuantity {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "Quantity exceeds the maximum of 100",
			RayID:   rayID(c),
		})
	}

	view, err := h.service.UpdateQuantity(c.Context(), sid, req.ProductID,
		domain.Variant{Flavor: req.Flavor, Strength: req.Strength}, req.Quantity)
	if err != nil {
		logger.Get().Error("Failed to update cart quantity",
			zap.String("session_id", sid),
			zap.String("product_id", req.ProductID),
			zap.String("ray_id", rayID(c)),
			zap.Error(err),
		)
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Message: "Internal Server Error",
			RayID:   rayID(c),
		})
	}

	return c.Status(http.StatusOK).JSON(view)
}

// RemoveItem handles DELETE /cart/items.
// @Summary Remove a cart line
// @Description Deletes the line matching the product and variant. No-op if absent.
// @Tags Cart
// @Produce json
// @Param X-Session-ID header string true "Session ID"
// @Param product_id query string true "Product ID"
// @Param flavor query string false "Variant flavor"
// @Param strength query string false "Variant strength"
// @Success 200 {object} service.CartView
// @Failure 400 {object} ErrorResponse
// @Router /cart/items [delete]
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	sid := sessionID(c)
	if sid == "" {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "Session ID is required",
			RayID:   rayID(c),
		})
	}

	productID := c.Query("product_id")
	if productID == "" {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "Product ID is required",
			RayID:   rayID(c),
		})
	}

	variant := domain.Variant{Flavor: c.Query("flavor"), Strength: c.Query("strength")}

	view, err := h.service.RemoveItem(c.Context(), sid, productID, variant)
	if err != nil {
		logger.Get().Error("Failed to remove cart item",
			zap.String("session_id", sid),
			zap.String("product_id", productID),
			zap.String("ray_id", rayID(c)),
			zap.Error(err),
		)
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Message: "Internal Server Error",
			RayID:   rayID(c),
		})
	}

	return c.Status(http.StatusOK).JSON(view)
}

// ClearCart handles DELETE /cart.
// @Summary Clear the cart
// @Description Empties the session cart. Called after order confirmation.
// @Tags Cart
// @Produce json
// @Param X-Session-ID header string true "Session ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} ErrorResponse
// @Router /cart [delete]
func (h *CartHandler) ClearCart(c *fiber.Ctx) error {
	sid := sessionID(c)
	if sid == "" {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "Session ID is required",
			RayID:   rayID(c),
		})
	}

	if err := h.service.ClearCart(c.Context(), sid); err != nil {
		logger.Get().Error("Failed to clear cart",
			zap.String("session_id", sid),
			zap.String("ray_id", rayID(c)),
			zap.Error(err),
		)
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Message: "Internal Server Error",
			RayID:   rayID(c),
		})
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Cart cleared",
	})
}
