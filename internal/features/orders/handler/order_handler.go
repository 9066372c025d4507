package handler

import (
	"errors"
	"net/http"
	"time"

	"pouchstore/internal/core/logger"
	"pouchstore/internal/features/orders/domain"
	"pouchstore/internal/features/orders/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// OrderHandler handles HTTP requests related to orders.
type OrderHandler struct {
	service *service.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(s *service.OrderService) *OrderHandler {
	return &OrderHandler{
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

// UpdateStatusRequest represents the admin status mutation body.
type UpdateStatusRequest struct {
	// Status is the target lifecycle state.
	Status string `json:"status"`
	// ExpectedUpdatedAt is the UpdatedAt read before editing, RFC3339.
	// When present, a mismatch rejects the mutation as stale.
	ExpectedUpdatedAt string `json:"expected_updated_at,omitempty"`
}

// GetOrder handles GET /orders/:id.
// @Summary Get Order by ID
// @Description Fetch order details using Order ID and Email.
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID"
// @Param email query string true "Customer Email"
// @Success 200 {object} domain.Order
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	orderID := c.Params("id")
	email := c.Query("email")

	if orderID == "" {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "Order ID is required",
			RayID:   rayID(c),
		})
	}

	if email == "" {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "Email is required",
			RayID:   rayID(c),
		})
	}

	order, err := h.service.Get(c.Context(), orderID, email)
	if err != nil {
		return h.orderError(c, orderID, err)
	}

	return c.Status(http.StatusOK).JSON(order)
}

// GetTimeline handles GET /orders/:id/timeline.
// @Summary Get the order timeline
// @Description Derives the lifecycle timeline from the order's status and timestamps.
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID"
// @Param email query string true "Customer Email"
// @Success 200 {array} domain.TimelineEvent
// @Failure 404 {object} ErrorResponse
// @Router /orders/{id}/timeline [get]
func (h *OrderHandler) GetTimeline(c *fiber.Ctx) error {
	orderID := c.Params("id")
	email := c.Query("email")

	if email == "" {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "Email is required",
			RayID:   rayID(c),
		})
	}

	events, err := h.service.GetTimeline(c.Context(), orderID, email)
	if err != nil {
		return h.orderError(c, orderID, err)
	}

	return c.Status(http.StatusOK).JSON(events)
}

// UpdateStatus handles PATCH /admin/orders/:id/status.
// @Summary Update order status
// @Description Applies a lifecycle transition. Rejects illegal transitions and stale writes.
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param body body UpdateStatusRequest true "Target status"
// @Success 200 {object} domain.Order
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 412 {object} ErrorResponse
// @Router /admin/orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	orderID := c.Params("id")

	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "Invalid request body",
			RayID:   rayID(c),
		})
	}

	var expected time.Time
	if req.ExpectedUpdatedAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.ExpectedUpdatedAt)
		if err != nil {
			return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
				Message: "expected_updated_at must be RFC3339",
				RayID:   rayID(c),
			})
		}
		expected = parsed
	}

	order, err := h.service.UpdateStatus(c.Context(), orderID, domain.OrderStatus(req.Status), expected)
	if err != nil {
		return h.orderError(c, orderID, err)
	}

	return c.Status(http.StatusOK).JSON(order)
}

// ListOrders handles GET /orders.
// @Summary List orders for a customer
// @Description Returns the order history for the given email, newest first.
// @Tags Orders
// @Produce json
// @Param email query string true "Customer Email"
// @Success 200 {array} domain.Order
// @Failure 400 {object} ErrorResponse
// @Router /orders [get]
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	email := c.Query("email")
	if email == "" {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "Email is required",
			RayID:   rayID(c),
		})
	}

	orders, err := h.service.ListByEmail(c.Context(), email)
	if err != nil {
		return h.orderError(c, "", err)
	}

	return c.Status(http.StatusOK).JSON(orders)
}

// orderError maps service errors to HTTP responses.
func (h *OrderHandler) orderError(c *fiber.Ctx, orderID string, err error) error {
	status := http.StatusInternalServerError
	msg := "Internal Server Error"

	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		status = http.StatusNotFound
		msg = "Order not found"
	case errors.Is(err, service.ErrEmailMismatch):
		status = http.StatusUnauthorized
		msg = "Email mismatch"
	case errors.Is(err, service.ErrInvalidTransition):
		status = http.StatusConflict
		msg = err.Error()
	case errors.Is(err, service.ErrStaleOrder):
		status = http.StatusPreconditionFailed
		msg = "Order was modified since it was read"
	default:
		logger.Get().Error("Order request failed",
			zap.String("order_id", orderID),
			zap.String("ray_id", rayID(c)),
			zap.Error(err),
		)
	}

	return c.Status(status).JSON(ErrorResponse{
		Message: msg,
		RayID:   rayID(c),
	})
}
