package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	tradeapp "github.com/marketplace/backend/internal/application/trade"
	"github.com/marketplace/backend/internal/domain/identity"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/marketplace/backend/internal/domain/trade"
)

// OrderUseCases is what the order endpoints need from the order service
type OrderUseCases interface {
	Create(ctx context.Context, actor identity.Actor, req tradeapp.CreateOrderRequest) (*tradeapp.OrderResponse, error)
	Get(ctx context.Context, actor identity.Actor, orderID string) (*tradeapp.OrderResponse, error)
	ListMine(ctx context.Context, actor identity.Actor, query tradeapp.ListOrdersQuery) (*shared.Paginated[tradeapp.OrderResponse], error)
	Update(ctx context.Context, actor identity.Actor, orderID string, req tradeapp.UpdateOrderRequest) (*tradeapp.OrderResponse, error)
	Delete(ctx context.Context, actor identity.Actor, orderID string) error
	Claim(ctx context.Context, actor identity.Actor, orderID string) (*tradeapp.StatusResponse, error)
	Depart(ctx context.Context, actor identity.Actor, orderID string, req tradeapp.DepartRequest) (*tradeapp.StatusResponse, error)
	Confirm(ctx context.Context, actor identity.Actor, orderID string) (*tradeapp.StatusResponse, error)
	OrderDetails(ctx context.Context, query tradeapp.OrderDetailsQuery) ([]trade.OrderDetail, error)
	TopSellingProducts(ctx context.Context, actor identity.Actor, query tradeapp.TopSellingQuery) ([]trade.TopSellingProduct, error)
}

// OrderHandler handles order lifecycle and order report endpoints
type OrderHandler struct {
	BaseHandler
	orders OrderUseCases
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders OrderUseCases) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// Create godoc
// @Summary      Place an order
// @Description  Create an order with its items in one transaction. Status may be Pending (default) or Processing.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body tradeapp.CreateOrderRequest true "Order"
// @Success      201 {object} APIResponse[tradeapp.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	var req tradeapp.CreateOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orders.Create(c.Request.Context(), actor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// List godoc
// @Summary      List my orders
// @Description  The caller's orders, newest first
// @Tags         orders
// @Produce      json
// @Param        status    query string false "Order status"
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Success      200 {object} APIResponse[[]tradeapp.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	var query tradeapp.ListOrdersQuery
	if !h.bindQuery(c, &query) {
		return
	}

	page, err := h.orders.ListMine(c.Request.Context(), actor(c), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, orEmpty(page.Items), page.Total, page.Page, page.PageSize)
}

// Get godoc
// @Summary      Get an order
// @Description  Order with items and deliveries. Buyers only see their own orders.
// @Tags         orders
// @Produce      json
// @Param        orderId path string true "Order ID"
// @Success      200 {object} APIResponse[tradeapp.OrderResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{orderId} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.orders.Get(c.Request.Context(), actor(c), c.Param("orderId"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Update godoc
// @Summary      Update an order
// @Description  Move the order forward one status and/or change the address while it is still cancellable
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        orderId path string true "Order ID"
// @Param        request body tradeapp.UpdateOrderRequest true "Patch"
// @Success      200 {object} APIResponse[tradeapp.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{orderId} [put]
func (h *OrderHandler) Update(c *gin.Context) {
	var req tradeapp.UpdateOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orders.Update(c.Request.Context(), actor(c), c.Param("orderId"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Delete godoc
// @Summary      Cancel an order
// @Description  Delete an order and its items. Only Pending and Processing orders can be cancelled.
// @Tags         orders
// @Param        orderId path string true "Order ID"
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{orderId} [delete]
func (h *OrderHandler) Delete(c *gin.Context) {
	if err := h.orders.Delete(c.Request.Context(), actor(c), c.Param("orderId")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Claim godoc
// @Summary      Claim an order for delivery
// @Description  A shipper takes a Processing order; it becomes Dispatched
// @Tags         orders
// @Produce      json
// @Param        orderId path string true "Order ID"
// @Success      200 {object} APIResponse[tradeapp.StatusResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/claim/{orderId} [post]
func (h *OrderHandler) Claim(c *gin.Context) {
	status, err := h.orders.Claim(c.Request.Context(), actor(c), c.Param("orderId"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, status)
}

// Depart godoc
// @Summary      Start delivering an order
// @Description  The claiming shipper leaves with a Dispatched order; it becomes Delivering
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        orderId path string true "Order ID"
// @Param        request body tradeapp.DepartRequest false "Shipping fee"
// @Success      200 {object} APIResponse[tradeapp.StatusResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/depart/{orderId} [post]
func (h *OrderHandler) Depart(c *gin.Context) {
	var req tradeapp.DepartRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}

	status, err := h.orders.Depart(c.Request.Context(), actor(c), c.Param("orderId"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, status)
}

// Confirm godoc
// @Summary      Confirm delivery
// @Description  The shipper confirms a Delivering order; it becomes Delivered
// @Tags         orders
// @Produce      json
// @Param        orderId path string true "Order ID"
// @Success      200 {object} APIResponse[tradeapp.StatusResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/confirm/{orderId} [post]
func (h *OrderHandler) Confirm(c *gin.Context) {
	status, err := h.orders.Confirm(c.Request.Context(), actor(c), c.Param("orderId"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, status)
}

// Details godoc
// @Summary      Order details report
// @Description  Orders with buyer name and item count, optionally filtered by status and a minimum item count
// @Tags         reports
// @Produce      json
// @Param        status   query string false "Order status"
// @Param        minItems query int    false "Minimum number of items" default(0)
// @Success      200 {object} APIResponse[[]trade.OrderDetail]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/details [get]
func (h *OrderHandler) Details(c *gin.Context) {
	var query tradeapp.OrderDetailsQuery
	if !h.bindQuery(c, &query) {
		return
	}

	rows, err := h.orders.OrderDetails(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orEmpty(rows))
}

// TopSelling godoc
// @Summary      Top selling products
// @Description  Quantities sold in delivered orders per product. Sellers see their own products; admins may pass sellerId.
// @Tags         reports
// @Produce      json
// @Param        minQuantity query int    false "Minimum quantity sold" default(0)
// @Param        sellerId    query string false "Seller ID (admin only)"
// @Success      200 {object} APIResponse[[]trade.TopSellingProduct]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/reports/top-selling [get]
func (h *OrderHandler) TopSelling(c *gin.Context) {
	var query tradeapp.TopSellingQuery
	if !h.bindQuery(c, &query) {
		return
	}

	rows, err := h.orders.TopSellingProducts(c.Request.Context(), actor(c), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orEmpty(rows))
}
