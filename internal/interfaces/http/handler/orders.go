package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/knawat/mp-backend/internal/application/orders"
	"github.com/knawat/mp-backend/internal/interfaces/http/dto"
	"github.com/knawat/mp-backend/internal/interfaces/http/middleware"
)

// OrdersHandler serves the storefront order surface.
type OrdersHandler struct {
	BaseHandler
	pipeline *orders.Pipeline
}

// NewOrdersHandler creates an orders handler.
func NewOrdersHandler(pipeline *orders.Pipeline) *OrdersHandler {
	return &OrdersHandler{pipeline: pipeline}
}

// RegisterRoutes registers the order routes.
func (h *OrdersHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/orders")
	group.POST("", h.Create)
	group.GET("", h.List)
	group.GET("/:id", h.Get)
	group.PUT("/:id", h.Update)
	group.DELETE("/:id", h.Cancel)
}

// Create places a new order.
func (h *OrdersHandler) Create(c *gin.Context) {
	st := middleware.GetStore(c)
	if st == nil {
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Store not authenticated")
		return
	}

	var req orders.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	ord, err := h.pipeline.Create(c.Request.Context(), st, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithWarnings(c, orders.ToOrderResponse(ord), ord.Warnings)
}

// Update mutates a draft or open order.
func (h *OrdersHandler) Update(c *gin.Context) {
	st := middleware.GetStore(c)
	if st == nil {
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Store not authenticated")
		return
	}

	var req orders.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	ord, err := h.pipeline.Update(c.Request.Context(), st, c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithWarnings(c, orders.ToOrderResponse(ord), ord.Warnings)
}

// Cancel voids an order.
func (h *OrdersHandler) Cancel(c *gin.Context) {
	st := middleware.GetStore(c)
	if st == nil {
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Store not authenticated")
		return
	}

	ord, err := h.pipeline.Cancel(c.Request.Context(), st, c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, orders.ToOrderResponse(ord))
}

// Get fetches one order.
func (h *OrdersHandler) Get(c *gin.Context) {
	st := middleware.GetStore(c)
	if st == nil {
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Store not authenticated")
		return
	}

	ord, err := h.pipeline.Get(c.Request.Context(), st, c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithWarnings(c, orders.ToOrderResponse(ord), ord.Warnings)
}

// List fetches the store's orders.
func (h *OrdersHandler) List(c *gin.Context) {
	st := middleware.GetStore(c)
	if st == nil {
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Store not authenticated")
		return
	}

	var req orders.ListOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	list, err := h.pipeline.List(c.Request.Context(), st, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, orders.ToOrderResponses(list))
}
