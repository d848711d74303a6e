package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "starides-api/docs"
	"starides-api/handlers"
	"starides-api/middleware"
	"starides-api/models"
)

// Endpoints are the handlers mounted by SetupRoutes.
type Endpoints struct {
	REST          *handlers.Handler
	GraphQL       http.Handler
	Subscriptions http.Handler
}

func SetupRoutes(r *gin.Engine, e Endpoints) {
	h := e.REST

	r.GET("/health", h.Health)
	r.GET("/health/live", h.Live)
	r.GET("/health/ready", h.Ready)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// ── GraphQL ────────────────────────────────────────────────────
	r.POST("/graphql", gin.WrapH(e.GraphQL))
	r.GET("/graphql", gin.WrapH(e.GraphQL))
	r.GET("/graphql/ws", gin.WrapH(e.Subscriptions))

	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		public.POST("/auth/register", h.Register)
		public.POST("/auth/login", h.Login)
		public.POST("/auth/forgot-password", h.ForgotPassword)
		public.POST("/auth/reset-password", h.ResetPassword)

		public.GET("/restaurants", h.ListRestaurants)
		public.GET("/restaurants/:id", h.GetRestaurant)
		public.GET("/restaurants/:id/menu", h.GetMenu)

		public.GET("/state-machine", h.GetStateMachine)
	}

	// ── Authenticated routes ───────────────────────────────────────
	auth := r.Group("/api")
	auth.Use(middleware.AuthRequired())
	{
		auth.GET("/profile", h.GetProfile)
		auth.PATCH("/profile", h.UpdateProfile)
	}

	// ── Customer routes ────────────────────────────────────────────
	customer := r.Group("/api/customer")
	customer.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleCustomer))
	{
		customer.POST("/orders", h.PlaceOrder)
		customer.GET("/orders", h.GetMyOrders)
		customer.GET("/orders/:id", h.GetOrderDetail)
		customer.PUT("/orders/:id/cancel", h.CancelOrder)
		customer.POST("/reviews", h.CreateReview)
		customer.GET("/addresses", h.GetAddresses)
		customer.POST("/addresses", h.AddAddress)
	}

	// ── Vendor routes ──────────────────────────────────────────────
	vendor := r.Group("/api/vendor")
	vendor.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleVendor))
	{
		vendor.POST("/restaurant", h.CreateRestaurant)
		vendor.GET("/restaurant", h.GetMyRestaurant)
		vendor.PUT("/restaurant", h.UpdateRestaurant)
		vendor.PUT("/restaurant/toggle-open", h.ToggleRestaurantOpen)
		vendor.POST("/restaurants/:id/logo", h.UploadRestaurantLogo)

		vendor.POST("/menu-items", h.AddMenuItem)
		vendor.PUT("/menu-items/:id", h.UpdateMenuItem)
		vendor.DELETE("/menu-items/:id", h.DeleteMenuItem)
		vendor.PUT("/menu-items/:id/toggle-availability", h.ToggleMenuItemAvailability)
		vendor.POST("/menu-items/:id/image", h.UploadMenuItemImage)

		vendor.GET("/orders", h.GetRestaurantOrders)
		vendor.PUT("/orders/:id/status", h.UpdateOrderStatus)
		vendor.PUT("/reviews/:id/response", h.RespondToReview)
		vendor.GET("/stats", h.GetRestaurantStats)
	}

	// ── Rider routes ───────────────────────────────────────────────
	rider := r.Group("/api/rider")
	rider.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleRider))
	{
		rider.GET("/orders/available", h.GetAvailableOrders)
		rider.GET("/orders/my-deliveries", h.GetMyDeliveries)
		rider.PUT("/orders/:id/accept", h.AcceptDelivery)
		rider.PUT("/orders/:id/status", h.UpdateOrderStatus)
		rider.PUT("/availability", h.UpdateAvailability)
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/orders", h.AdminGetAllOrders)
		admin.PUT("/orders/:id/status", h.UpdateOrderStatus)
		admin.PUT("/orders/:id/rider", h.AdminAssignRider)
		admin.GET("/users", h.AdminGetAllUsers)
		admin.GET("/restaurants", h.AdminGetAllRestaurants)
		admin.PUT("/restaurants/:id/status", h.AdminUpdateRestaurantStatus)
		admin.GET("/stats", h.AdminStats)
	}
}
