package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"starides-api/cache"
	"starides-api/config"
	"starides-api/events"
	"starides-api/graph"
	"starides-api/handlers"
	"starides-api/logger"
	"starides-api/mailer"
	"starides-api/media"
	"starides-api/middleware"
	"starides-api/routes"
	"starides-api/services"
)

// @title Starides API
// @version 1.0
// @description Food delivery marketplace: customers order from restaurants, vendors run their kitchens, riders deliver.
// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
func main() {
	cfg := config.Load()
	log := logger.New("starides-api", !cfg.IsProduction())

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.OpenDatabase(cfg)
	if err != nil {
		log.Error("failed to open database", "action", "startup", "error", err)
		os.Exit(1)
	}
	if err := config.Migrate(db); err != nil {
		log.Error("failed to migrate database", "action", "startup", "error", err)
		os.Exit(1)
	}
	if err := config.SeedAdmin(context.Background(), db, cfg, log); err != nil {
		log.Error("failed to seed admin", "action", "startup", "error", err)
		os.Exit(1)
	}

	rdb := config.OpenRedis(context.Background(), cfg, log)
	restaurantCache := cache.NewRestaurantCache(rdb, cfg.CacheTTL, log)

	mail := mailer.New(mailer.Options{
		Host:        cfg.SMTPHost,
		Port:        cfg.SMTPPort,
		User:        cfg.SMTPUser,
		Pass:        cfg.SMTPPass,
		From:        cfg.SMTPFrom,
		FrontendURL: cfg.FrontendURL,
	}, log)
	if !mail.Enabled() {
		log.Info("smtp not configured, emails will be skipped", "action", "startup")
	}

	cld, err := media.NewCloudinaryService(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		log.Info("cloudinary unavailable, uploads disabled", "action", "startup", "error", err)
		cld = nil
	}

	hub := events.NewHub(32)
	publishers := events.Multi{hub}
	var broker *events.RabbitPublisher
	if cfg.AMQPURL != "" {
		broker, err = events.NewRabbitPublisher(cfg.AMQPURL)
		if err != nil {
			log.Warn("rabbitmq unavailable, events stay in-process", "action", "startup", "error", err)
		} else {
			publishers = append(publishers, broker)
		}
	}

	auth := middleware.NewAuthenticator(cfg.JWTSecret, cfg.JWTExpiry)
	svc := graph.Services{
		Users:       services.NewUserService(db, auth, log),
		Resets:      services.NewPasswordResetService(db, mail, log),
		Restaurants: services.NewRestaurantService(db, restaurantCache, log),
		Menu:        services.NewMenuService(db, restaurantCache, log),
		Orders:      services.NewOrderService(db, publishers, mail, log),
		Reviews:     services.NewReviewService(db, restaurantCache, log),
		Stats:       services.NewStatsService(db),
		Chat:        services.NewChatService(),
	}

	schema, err := graph.NewSchema(graph.NewResolver(svc, hub, log))
	if err != nil {
		log.Error("failed to parse graphql schema", "action", "startup", "error", err)
		os.Exit(1)
	}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(log),
		middleware.CORSMiddleware(cfg.CORSOrigins),
		auth.Authenticate(),
	)
	routes.SetupRoutes(r, routes.Endpoints{
		REST: handlers.New(handlers.Deps{
			DB:          db,
			Redis:       rdb,
			Media:       cld,
			Users:       svc.Users,
			Resets:      svc.Resets,
			Restaurants: svc.Restaurants,
			Menu:        svc.Menu,
			Orders:      svc.Orders,
			Reviews:     svc.Reviews,
			Stats:       svc.Stats,
			Log:         log,
		}),
		GraphQL:       graph.NewHTTPHandler(schema),
		Subscriptions: graph.NewSubscriptionHandler(schema, cfg.CORSOrigins, log),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server starting", "action", "startup", "port", cfg.Port, "env", cfg.AppEnv,
			"swagger", "http://localhost:"+cfg.Port+"/swagger/index.html")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "action", "startup", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down", "action", "shutdown")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "action", "shutdown", "error", err)
	}

	if broker != nil {
		if err := broker.Close(); err != nil {
			log.Warn("failed to close rabbitmq", "action", "shutdown", "error", err)
		}
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Warn("failed to close redis", "action", "shutdown", "error", err)
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Warn("failed to close database", "action", "shutdown", "error", err)
		}
	}
	log.Info("server stopped", "action", "shutdown")
}
