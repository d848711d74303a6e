package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"starides-api/models"
	"starides-api/services"
	"starides-api/statemachine"
)

// ListRestaurants godoc
// @Summary List approved restaurants
// @Tags Restaurants
// @Produce json
// @Param cuisine query string false "Cuisine tag"
// @Param search query string false "Name or description contains"
// @Param open query bool false "Only restaurants currently open"
// @Success 200 {object} models.Response
// @Router /restaurants [get]
func (h *Handler) ListRestaurants(c *gin.Context) {
	approved := models.RestaurantApproved
	restaurants, err := h.restaurants.List(c.Request.Context(), services.RestaurantFilter{
		Status:   &approved,
		Cuisine:  c.Query("cuisine"),
		Search:   c.Query("search"),
		OpenOnly: c.Query("open") == "true",
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Restaurants retrieved", list(restaurants))
}

// GetRestaurant godoc
// @Summary Get restaurant
// @Tags Restaurants
// @Produce json
// @Param id path int true "Restaurant ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /restaurants/{id} [get]
func (h *Handler) GetRestaurant(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	restaurant, err := h.restaurants.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "Restaurant retrieved", restaurant)
}

// GetMenu godoc
// @Summary Restaurant menu
// @Tags Restaurants
// @Produce json
// @Param id path int true "Restaurant ID"
// @Param category query string false "Menu category"
// @Param vegetarian query bool false "Only vegetarian items"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /restaurants/{id}/menu [get]
func (h *Handler) GetMenu(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	restaurant, err := h.restaurants.Get(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	items, err := h.menu.ForRestaurant(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}

	category := models.MenuItemCategory(c.Query("category"))
	vegetarian := c.Query("vegetarian") == "true"
	menu := make([]models.MenuItem, 0, len(items))
	for _, item := range items {
		if category != "" && item.Category != category {
			continue
		}
		if vegetarian && !item.IsVegetarian {
			continue
		}
		menu = append(menu, item)
	}

	respond(c, http.StatusOK, "Menu retrieved", gin.H{
		"restaurant": restaurant.Name,
		"count":      len(menu),
		"items":      menu,
	})
}

// GetStateMachine godoc
// @Summary Order lifecycle
// @Description Every allowed status transition and the roles that may perform it
// @Tags Orders
// @Produce json
// @Success 200 {object} models.Response
// @Router /state-machine [get]
func (h *Handler) GetStateMachine(c *gin.Context) {
	respond(c, http.StatusOK, "Order lifecycle state machine", gin.H{
		"transitions":     statemachine.GetAllTransitions(),
		"terminal_states": []models.OrderStatus{models.StatusDelivered, models.StatusCancelled},
	})
}
