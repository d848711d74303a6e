package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"starides-api/middleware"
	"starides-api/models"
	"starides-api/services"
)

type UpdateStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
	Note   string             `json:"note" binding:"max=500"`
}

type RespondToReviewRequest struct {
	Response string `json:"response" binding:"required,max=2000"`
}

// myRestaurant loads the caller's restaurant or writes the error.
func (h *Handler) myRestaurant(c *gin.Context) (*models.Restaurant, bool) {
	r, err := h.restaurants.ForOwner(c.Request.Context(), middleware.GetIdentity(c).UserID)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return r, true
}

// CreateRestaurant godoc
// @Summary Register my restaurant
// @Description A vendor owns at most one restaurant. It starts PENDING until an admin approves it.
// @Tags Vendor
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body services.RestaurantInput true "Restaurant"
// @Success 201 {object} models.Response
// @Failure 409 {object} models.ErrorResponse
// @Router /vendor/restaurant [post]
func (h *Handler) CreateRestaurant(c *gin.Context) {
	var req services.RestaurantInput
	if !h.bindJSON(c, &req) {
		return
	}
	r, err := h.restaurants.Create(c.Request.Context(), middleware.GetIdentity(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Restaurant created, awaiting approval", r)
}

// GetMyRestaurant godoc
// @Summary Get my restaurant
// @Tags Vendor
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /vendor/restaurant [get]
func (h *Handler) GetMyRestaurant(c *gin.Context) {
	r, ok := h.myRestaurant(c)
	if !ok {
		return
	}
	respond(c, http.StatusOK, "Restaurant retrieved", r)
}

// UpdateRestaurant godoc
// @Summary Update my restaurant
// @Tags Vendor
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body services.RestaurantInput true "Restaurant"
// @Success 200 {object} models.Response
// @Router /vendor/restaurant [put]
func (h *Handler) UpdateRestaurant(c *gin.Context) {
	var req services.RestaurantInput
	if !h.bindJSON(c, &req) {
		return
	}
	mine, ok := h.myRestaurant(c)
	if !ok {
		return
	}
	r, err := h.restaurants.Update(c.Request.Context(), middleware.GetIdentity(c), mine.ID, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Restaurant updated", r)
}

// ToggleRestaurantOpen godoc
// @Summary Open or close my restaurant
// @Tags Vendor
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Router /vendor/restaurant/toggle-open [put]
func (h *Handler) ToggleRestaurantOpen(c *gin.Context) {
	mine, ok := h.myRestaurant(c)
	if !ok {
		return
	}
	r, err := h.restaurants.ToggleOpen(c.Request.Context(), middleware.GetIdentity(c), mine.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Restaurant updated", r)
}

// AddMenuItem godoc
// @Summary Add a menu item
// @Tags Vendor
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body services.MenuItemInput true "Menu item"
// @Success 201 {object} models.Response
// @Router /vendor/menu-items [post]
func (h *Handler) AddMenuItem(c *gin.Context) {
	var req services.MenuItemInput
	if !h.bindJSON(c, &req) {
		return
	}
	mine, ok := h.myRestaurant(c)
	if !ok {
		return
	}
	item, err := h.menu.Create(c.Request.Context(), middleware.GetIdentity(c), mine.ID, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "Menu item added", item)
}

// UpdateMenuItem godoc
// @Summary Update a menu item
// @Tags Vendor
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Menu item ID"
// @Param request body services.MenuItemInput true "Menu item"
// @Success 200 {object} models.Response
// @Router /vendor/menu-items/{id} [put]
func (h *Handler) UpdateMenuItem(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	var req services.MenuItemInput
	if !h.bindJSON(c, &req) {
		return
	}
	item, err := h.menu.Update(c.Request.Context(), middleware.GetIdentity(c), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Menu item updated", item)
}

// DeleteMenuItem godoc
// @Summary Delete a menu item
// @Description Past orders keep their line snapshot.
// @Tags Vendor
// @Security BearerAuth
// @Produce json
// @Param id path int true "Menu item ID"
// @Success 200 {object} models.Response
// @Router /vendor/menu-items/{id} [delete]
func (h *Handler) DeleteMenuItem(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	if err := h.menu.Delete(c.Request.Context(), middleware.GetIdentity(c), id); err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Menu item deleted", nil)
}

// ToggleMenuItemAvailability godoc
// @Summary Mark a menu item available or sold out
// @Tags Vendor
// @Security BearerAuth
// @Produce json
// @Param id path int true "Menu item ID"
// @Success 200 {object} models.Response
// @Router /vendor/menu-items/{id}/toggle-availability [put]
func (h *Handler) ToggleMenuItemAvailability(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	item, err := h.menu.ToggleAvailability(c.Request.Context(), middleware.GetIdentity(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Menu item updated", item)
}

// GetRestaurantOrders godoc
// @Summary Orders for my restaurant
// @Tags Vendor
// @Security BearerAuth
// @Produce json
// @Param status query string false "Order status"
// @Success 200 {object} models.Response
// @Router /vendor/orders [get]
func (h *Handler) GetRestaurantOrders(c *gin.Context) {
	status, err := orderStatusQuery(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	mine, ok := h.myRestaurant(c)
	if !ok {
		return
	}
	orders, err := h.orders.RestaurantOrders(c.Request.Context(), middleware.GetIdentity(c), mine.ID, status)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Orders retrieved", list(orders))
}

// UpdateOrderStatus godoc
// @Summary Move an order to its next status
// @Description The transition table is checked first (INVALID_STATE), then the caller's role and ownership (FORBIDDEN).
// @Tags Orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param request body UpdateStatusRequest true "Target status"
// @Success 200 {object} models.Response
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /vendor/orders/{id}/status [put]
// @Router /rider/orders/{id}/status [put]
// @Router /admin/orders/{id}/status [put]
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.orders.UpdateStatus(c.Request.Context(), middleware.GetIdentity(c), id, req.Status, req.Note)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Order status updated", order)
}

// RespondToReview godoc
// @Summary Reply to a review of my restaurant
// @Tags Vendor
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Review ID"
// @Param request body RespondToReviewRequest true "Reply"
// @Success 200 {object} models.Response
// @Router /vendor/reviews/{id}/response [put]
func (h *Handler) RespondToReview(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	var req RespondToReviewRequest
	if !h.bindJSON(c, &req) {
		return
	}
	review, err := h.reviews.RespondToReview(c.Request.Context(), middleware.GetIdentity(c), id, req.Response)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Response saved", review)
}

// GetRestaurantStats godoc
// @Summary Sales figures for my restaurant
// @Tags Vendor
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Router /vendor/stats [get]
func (h *Handler) GetRestaurantStats(c *gin.Context) {
	mine, ok := h.myRestaurant(c)
	if !ok {
		return
	}
	st, err := h.stats.RestaurantStats(c.Request.Context(), middleware.GetIdentity(c), mine.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Stats retrieved", st)
}
