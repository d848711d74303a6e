package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"starides-api/middleware"
	"starides-api/services"
)

type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// PlaceOrder godoc
// @Summary Place an order
// @Description Prices the cart from current menu prices. Fails with BELOW_MINIMUM or ITEM_UNAVAILABLE without writing anything.
// @Tags Customer
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body services.CreateOrderInput true "Order"
// @Success 201 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /customer/orders [post]
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req services.CreateOrderInput
	if !h.bindJSON(c, &req) {
		return
	}
	ident := middleware.GetIdentity(c)
	order, err := h.orders.CreateOrder(c.Request.Context(), ident.UserID, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Order placed successfully", order)
}

// GetMyOrders godoc
// @Summary List my orders
// @Tags Customer
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Router /customer/orders [get]
func (h *Handler) GetMyOrders(c *gin.Context) {
	ident := middleware.GetIdentity(c)
	orders, err := h.orders.CustomerOrders(c.Request.Context(), ident.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Orders retrieved", list(orders))
}

// GetOrderDetail godoc
// @Summary Order detail with status history
// @Tags Customer
// @Security BearerAuth
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} models.Response
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /customer/orders/{id} [get]
func (h *Handler) GetOrderDetail(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.GetOrderFor(c.Request.Context(), middleware.GetIdentity(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Order retrieved", gin.H{
		"order":           order,
		"minutes_elapsed": int(time.Since(order.CreatedAt).Minutes()),
	})
}

// CancelOrder godoc
// @Summary Cancel an order
// @Description Customers may cancel while the order is PENDING or CONFIRMED. Paid orders are refunded.
// @Tags Customer
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param request body CancelOrderRequest false "Reason"
// @Success 200 {object} models.Response
// @Failure 422 {object} models.ErrorResponse
// @Router /customer/orders/{id}/cancel [put]
func (h *Handler) CancelOrder(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	var req CancelOrderRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	order, err := h.orders.Cancel(c.Request.Context(), middleware.GetIdentity(c), id, req.Reason)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Order cancelled successfully", order)
}

// CreateReview godoc
// @Summary Review a delivered order
// @Tags Customer
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body services.CreateReviewInput true "Review"
// @Success 201 {object} models.Response
// @Failure 409 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /customer/reviews [post]
func (h *Handler) CreateReview(c *gin.Context) {
	var req services.CreateReviewInput
	if !h.bindJSON(c, &req) {
		return
	}
	ident := middleware.GetIdentity(c)
	review, err := h.reviews.CreateReview(c.Request.Context(), ident.UserID, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Review submitted", review)
}

// GetAddresses godoc
// @Summary List my delivery addresses
// @Tags Customer
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Router /customer/addresses [get]
func (h *Handler) GetAddresses(c *gin.Context) {
	ident := middleware.GetIdentity(c)
	addrs, err := h.users.Addresses(c.Request.Context(), ident.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Addresses retrieved", list(addrs))
}

// AddAddress godoc
// @Summary Save a delivery address
// @Tags Customer
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body services.AddressInput true "Address"
// @Success 201 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Router /customer/addresses [post]
func (h *Handler) AddAddress(c *gin.Context) {
	var req services.AddressInput
	if !h.bindJSON(c, &req) {
		return
	}
	ident := middleware.GetIdentity(c)
	addr, err := h.users.AddAddress(c.Request.Context(), ident.UserID, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Address saved", addr)
}
