// Package handlers is the REST surface over the domain services.
package handlers

import (
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"starides-api/apperr"
	"starides-api/media"
	"starides-api/models"
	"starides-api/services"
)

type Deps struct {
	DB          *gorm.DB
	Redis       *redis.Client
	Media       *media.CloudinaryService
	Users       *services.UserService
	Resets      *services.PasswordResetService
	Restaurants *services.RestaurantService
	Menu        *services.MenuService
	Orders      *services.OrderService
	Reviews     *services.ReviewService
	Stats       *services.StatsService
	Log         *slog.Logger
}

// Handler carries the services every endpoint needs. Media and Redis may be
// nil when those integrations are not configured.
type Handler struct {
	db          *gorm.DB
	redis       *redis.Client
	media       *media.CloudinaryService
	users       *services.UserService
	resets      *services.PasswordResetService
	restaurants *services.RestaurantService
	menu        *services.MenuService
	orders      *services.OrderService
	reviews     *services.ReviewService
	stats       *services.StatsService
	log         *slog.Logger
}

func New(d Deps) *Handler {
	return &Handler{
		db:          d.DB,
		redis:       d.Redis,
		media:       d.Media,
		users:       d.Users,
		resets:      d.Resets,
		restaurants: d.Restaurants,
		menu:        d.Menu,
		orders:      d.Orders,
		reviews:     d.Reviews,
		stats:       d.Stats,
		log:         d.Log,
	}
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, models.Response{Success: true, Message: message, Data: data})
}

// fail writes err as an ErrorResponse. Internal causes are logged, never sent.
func (h *Handler) fail(c *gin.Context, err error) {
	e := apperr.From(err)
	if e.Kind == apperr.KindInternal {
		h.log.ErrorContext(c.Request.Context(), "request failed",
			"action", "http_request",
			"request_id", c.GetString("request_id"),
			"path", c.FullPath(),
			"error", err,
		)
	}
	c.JSON(apperr.HTTPStatus(e.Kind), models.ErrorResponse{
		Success: false,
		Code:    string(e.Kind),
		Message: e.Message,
		Details: e.Details,
	})
}

func (h *Handler) bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.fail(c, apperr.InvalidInput(err.Error()))
		return false
	}
	return true
}

func (h *Handler) idParam(c *gin.Context, name string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		h.fail(c, apperr.InvalidInput("invalid "+name))
		return 0, false
	}
	return uint(n), true
}

func orderStatusQuery(c *gin.Context) (*models.OrderStatus, error) {
	raw := c.Query("status")
	if raw == "" {
		return nil, nil
	}
	st := models.OrderStatus(raw)
	if !st.Valid() {
		return nil, apperr.InvalidInput("unknown order status " + strconv.Quote(raw))
	}
	return &st, nil
}

// list wraps a collection with its count, the shape the list endpoints share.
func list[T any](items []T) gin.H {
	if items == nil {
		items = []T{}
	}
	return gin.H{"count": len(items), "items": items}
}
