package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"starides-api/middleware"
)

type AvailabilityRequest struct {
	IsAvailable *bool `json:"is_available" binding:"required"`
}

// GetAvailableOrders godoc
// @Summary Orders waiting for a rider
// @Description READY_FOR_PICKUP orders with no rider, oldest first
// @Tags Rider
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Router /rider/orders/available [get]
func (h *Handler) GetAvailableOrders(c *gin.Context) {
	orders, err := h.orders.AvailableDeliveries(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Available deliveries retrieved", list(orders))
}

// GetMyDeliveries godoc
// @Summary Orders assigned to me
// @Tags Rider
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Router /rider/orders/my-deliveries [get]
func (h *Handler) GetMyDeliveries(c *gin.Context) {
	orders, err := h.orders.RiderDeliveries(c.Request.Context(), middleware.GetIdentity(c).UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Deliveries retrieved", list(orders))
}

// AcceptDelivery godoc
// @Summary Claim a delivery
// @Description Assigns the caller and moves the order to OUT_FOR_DELIVERY. Of two riders racing for one order exactly one wins; the other gets ALREADY_ASSIGNED.
// @Tags Rider
// @Security BearerAuth
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} models.Response
// @Failure 409 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /rider/orders/{id}/accept [put]
func (h *Handler) AcceptDelivery(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.AcceptDelivery(c.Request.Context(), middleware.GetIdentity(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Delivery accepted", order)
}

// UpdateAvailability godoc
// @Summary Go online or offline
// @Tags Rider
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body AvailabilityRequest true "Availability"
// @Success 200 {object} models.Response
// @Router /rider/availability [put]
func (h *Handler) UpdateAvailability(c *gin.Context) {
	var req AvailabilityRequest
	if !h.bindJSON(c, &req) {
		return
	}
	user, err := h.users.SetRiderAvailability(c.Request.Context(), middleware.GetIdentity(c), *req.IsAvailable)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Availability updated", user)
}
