package main

import (
	"context"
	"os"
	"time"

	"github.com/eventsoc/soc-backend/cache"
	"github.com/eventsoc/soc-backend/config"
	"github.com/eventsoc/soc-backend/controller"
	"github.com/eventsoc/soc-backend/middleware"
	"github.com/eventsoc/soc-backend/repository"
	"github.com/eventsoc/soc-backend/service"

	"github.com/flowchartsman/retry"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setupLogger(cfg)

	mongoClient, err := mongo.Connect(options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create mongo client")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(ctx)
	}()

	retrier := retry.NewRetrier(5, 100*time.Millisecond, 5*time.Second)
	err = retrier.Run(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return mongoClient.Ping(ctx, readpref.Primary())
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to ping mongo")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ledger, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer ledger.Close()

	userRepository := repository.NewUserRepository(mongoClient, cfg.MongoDatabaseName)
	eventRepository := repository.NewEventRepository(mongoClient, cfg.MongoDatabaseName)
	applicationRepository := repository.NewApplicationRepository(mongoClient, cfg.MongoDatabaseName)

	if err := userRepository.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create user indexes")
	}
	if err := applicationRepository.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create application indexes")
	}

	tokenService := service.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenLifetime)
	authService := service.NewAuthService(tokenService, ledger, userRepository)
	userService := service.NewUserService(userRepository, eventRepository, applicationRepository)
	eventService := service.NewEventService(eventRepository)
	membershipService := service.NewMembershipService(eventRepository, userRepository)
	pinService := service.NewPinService(eventRepository)
	applicationService := service.NewApplicationService(applicationRepository, eventRepository)

	authController := &controller.AuthController{AuthService: authService}
	userController := &controller.UserController{UserService: userService, AuthService: authService}
	eventController := &controller.EventController{
		EventService:      eventService,
		MembershipService: membershipService,
		PinService:        pinService,
		UserService:       userService,
	}
	applicationController := &controller.ApplicationController{ApplicationService: applicationService}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	controller.RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AddAllowHeaders("Authorization")
	r.Use(cors.New(corsConfig))

	authed := middleware.RequireAuth(authService, false)
	admin := middleware.RequireAuth(authService, true)

	api := r.Group("/api/v1")
	{
		api.POST("/user", userController.SignUp)
		api.POST("/login", authController.Login)
		api.POST("/logout", authed, authController.Logout)
		api.GET("/profile", authed, userController.Profile)

		api.GET("/users", admin, userController.ReadUsers)
		api.GET("/user/:id", authed, userController.ReadUser)
		api.PUT("/user/:id", authed, userController.UpdateUser)
		api.PUT("/user/:id/admin", admin, userController.UpdateAdmin)
		api.DELETE("/user/:id", admin, userController.DropUser)
		api.DELETE("/users", admin, userController.DropAllUsers)

		api.POST("/event", admin, eventController.CreateEvent)
		api.GET("/event/:id", eventController.ReadEvent)
		api.GET("/events", eventController.ReadEvents)
		api.GET("/events/upcoming", eventController.ReadUpcomingEvents)
		api.POST("/events/batch", eventController.ReadMultipleEvents)
		api.PUT("/event/:id", admin, eventController.UpdateEvent)
		api.DELETE("/event/:id", admin, eventController.DropEvent)
		api.DELETE("/events", admin, eventController.DropAllEvents)

		api.POST("/event/:id/join", authed, eventController.JoinEvent)
		api.POST("/event/:id/leave", authed, eventController.LeaveEvent)
		api.PUT("/event/:id/pinned", admin, eventController.UpdatePinned)

		api.POST("/apply", authed, applicationController.Apply)
		api.GET("/applicants", admin, applicationController.ReadApplicants)
		api.PUT("/application/:id", admin, applicationController.UpdateApplication)
	}

	log.Info().Str("port", cfg.Port).Msg("starting server")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}
