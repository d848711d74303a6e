package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"starides-api/apperr"
	"starides-api/middleware"
	"starides-api/models"
	"starides-api/services"
)

type AssignRiderRequest struct {
	RiderID uint `json:"rider_id" binding:"required"`
}

type RestaurantStatusRequest struct {
	Status models.RestaurantStatus `json:"status" binding:"required,oneof=PENDING APPROVED SUSPENDED REJECTED"`
}

// AdminGetAllOrders godoc
// @Summary All orders with a per-status summary
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param status query string false "Order status"
// @Success 200 {object} models.Response
// @Router /admin/orders [get]
func (h *Handler) AdminGetAllOrders(c *gin.Context) {
	status, err := orderStatusQuery(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	orders, err := h.orders.ListOrders(c.Request.Context(), status)
	if err != nil {
		h.fail(c, err)
		return
	}

	summary := map[models.OrderStatus]int{}
	for _, o := range orders {
		summary[o.Status]++
	}
	data := list(orders)
	data["order_summary"] = summary
	respond(c, http.StatusOK, "Orders retrieved", data)
}

// AdminAssignRider godoc
// @Summary Assign or reassign a rider
// @Description Allowed while the order is READY_FOR_PICKUP or OUT_FOR_DELIVERY
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param request body AssignRiderRequest true "Rider"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /admin/orders/{id}/rider [put]
func (h *Handler) AdminAssignRider(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	var req AssignRiderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.orders.AssignRider(c.Request.Context(), middleware.GetIdentity(c), id, req.RiderID)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Rider assigned", order)
}

// AdminGetAllUsers godoc
// @Summary All users
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param role query string false "CUSTOMER, VENDOR, RIDER or ADMIN"
// @Success 200 {object} models.Response
// @Router /admin/users [get]
func (h *Handler) AdminGetAllUsers(c *gin.Context) {
	var role *models.UserRole
	if raw := c.Query("role"); raw != "" {
		r := models.UserRole(raw)
		if !r.Valid() {
			h.fail(c, apperr.InvalidInput("unknown role "+strconv.Quote(raw)))
			return
		}
		role = &r
	}
	users, err := h.users.List(c.Request.Context(), role)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Users retrieved", list(users))
}

// AdminGetAllRestaurants godoc
// @Summary All restaurants, any status
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param status query string false "PENDING, APPROVED, SUSPENDED or REJECTED"
// @Success 200 {object} models.Response
// @Router /admin/restaurants [get]
func (h *Handler) AdminGetAllRestaurants(c *gin.Context) {
	var f services.RestaurantFilter
	if raw := c.Query("status"); raw != "" {
		st := models.RestaurantStatus(raw)
		if !st.Valid() {
			h.fail(c, apperr.InvalidInput("unknown restaurant status "+strconv.Quote(raw)))
			return
		}
		f.Status = &st
	}
	restaurants, err := h.restaurants.List(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Restaurants retrieved", list(restaurants))
}

// AdminUpdateRestaurantStatus godoc
// @Summary Approve, suspend or reject a restaurant
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Restaurant ID"
// @Param request body RestaurantStatusRequest true "Status"
// @Success 200 {object} models.Response
// @Router /admin/restaurants/{id}/status [put]
func (h *Handler) AdminUpdateRestaurantStatus(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	var req RestaurantStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	r, err := h.restaurants.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Restaurant status updated", r)
}

// AdminStats godoc
// @Summary Platform sales figures
// @Description Delivered orders only
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Router /admin/stats [get]
func (h *Handler) AdminStats(c *gin.Context) {
	st, err := h.stats.AdminStats(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Stats retrieved", st)
}
