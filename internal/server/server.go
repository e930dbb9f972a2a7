// Package server contains the HTTP and WebSocket handlers for the chattym API.
package server

import (
	"context"
	"errors"
	"time"

	_ "chattym/docs" // swagger docs
	"chattym/internal/config"
	"chattym/internal/featureflags"
	"chattym/internal/middleware"
	"chattym/internal/models"
	"chattym/internal/notifications"
	"chattym/internal/repository"
	"chattym/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const bodyLimit = 1 * 1024 * 1024

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	tokens         *middleware.TokenManager
	featureFlags   *featureflags.Manager

	userRepo repository.UserRepository
	notifier *notifications.Notifier
	hub      *notifications.Hub

	userService         *service.UserService
	postService         *service.PostService
	likeService         *service.LikeService
	commentService      *service.CommentService
	subscriptionService *service.SubscriptionService
	messagingService    *service.MessagingService
	notificationService *service.NotificationService
}

// NewServer wires repositories and services over already-initialized
// dependencies. redisClient may be nil; realtime push and token revocation
// are then disabled.
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("server requires config and database")
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	msgRepo := repository.NewMessagingRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("chattym-api"),
		tokens:         middleware.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, 0),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		userRepo:       userRepo,
		notifier:       notifications.NewNotifier(redisClient),
		hub:            notifications.NewHub(redisClient),
	}

	for _, entry := range s.featureFlags.Invalid() {
		middleware.Logger.Warn("ignoring malformed feature flag", "entry", entry)
	}

	s.userService = service.NewUserService(userRepo, postRepo, subRepo)
	s.notificationService = service.NewNotificationService(notifRepo, userRepo, s.notifier, s.featureFlags)
	s.postService = service.NewPostService(postRepo, likeRepo, commentRepo, s.userService.IsStaff)
	s.likeService = service.NewLikeService(likeRepo, postRepo, s.notificationService)
	s.commentService = service.NewCommentService(commentRepo, postRepo, s.notificationService, s.userService.IsStaff)
	s.subscriptionService = service.NewSubscriptionService(subRepo, userRepo, s.notificationService)
	s.messagingService = service.NewMessagingService(msgRepo, userRepo, s.notificationService)

	s.hub.SetPresenceCallbacks(
		func(userID uint) { middleware.Logger.Debug("user online", "user_id", userID) },
		func(userID uint) { middleware.Logger.Debug("user offline", "user_id", userID) },
	)

	return s, nil
}

// App returns the configured fiber application, building it on first use.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:      "chattym API",
		BodyLimit:    bodyLimit,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return models.RespondWithError(c, fe.Code, err)
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return models.RespondWithAppError(c, err)
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err)
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())

	// Request and trace IDs reach the logger through the user context.
	app.Use(middleware.RequestContext())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.AccessLog())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"status": "error",
				"error":  "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/ws", websocketUpgrade, s.AuthRequired(), s.WebsocketHandler())

	authed := s.AuthRequired()
	optional := s.OptionalAuth()
	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(s.redis, 5, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", authed, s.Logout)

	// Specific /users/:id/:resource routes are registered before /users/:id.
	users := api.Group("/users")
	users.Get("/me", authed, s.GetMyProfile)
	users.Put("/me", authed, s.UpdateMyProfile)
	users.Get("/:id/posts", optional, s.GetUserPosts)
	users.Get("/:id/followers", s.GetFollowers)
	users.Get("/:id/following", s.GetFollowing)
	users.Post("/:id/subscribe", authed, s.ToggleSubscription)
	users.Post("/:id/dm", authed, s.StartDirectMessage)
	users.Get("/:id", optional, s.GetUserProfile)

	posts := api.Group("/posts")
	posts.Get("/", optional, s.ListPosts)
	posts.Get("/feed", optional, s.GetFeed)
	posts.Get("/mine", authed, s.GetMyPosts)
	posts.Post("/", authed, middleware.RateLimit(s.redis, 10, 5*time.Minute, "create_post"), s.CreatePost)
	posts.Post("/:id/like", authed, s.ToggleLike)
	posts.Get("/:id/comments", s.GetComments)
	posts.Post("/:id/comments", authed, middleware.RateLimit(s.redis, 10, time.Minute, "create_comment"), s.CreateComment)
	posts.Get("/:id", optional, s.GetPost)
	posts.Put("/:id", authed, s.UpdatePost)
	posts.Patch("/:id", authed, s.UpdatePost)
	posts.Delete("/:id", authed, s.DeletePost)

	comments := api.Group("/comments", authed)
	comments.Put("/:id", s.UpdateComment)
	comments.Delete("/:id", s.DeleteComment)

	conversations := api.Group("/conversations", authed)
	conversations.Get("/", s.GetInbox)
	conversations.Post("/", s.CreateGroupConversation)
	conversations.Get("/nav", s.GetMessagingNav)
	conversations.Post("/:id/messages", middleware.RateLimit(s.redis, 30, time.Minute, "send_message"), s.SendMessage)
	conversations.Delete("/:id/messages/:messageId", s.DeleteMessage)
	conversations.Post("/:id/read", s.MarkConversationRead)
	conversations.Post("/:id/leave", s.LeaveConversation)
	conversations.Get("/:id", s.GetConversation)

	notifs := api.Group("/notifications", authed)
	notifs.Get("/recent", s.GetRecentNotifications)
	notifs.Get("/", s.ListNotifications)
	notifs.Post("/read-all", s.MarkAllNotificationsRead)
	notifs.Post("/:id/read", s.MarkNotificationRead)

	admin := api.Group("/admin", authed, s.StaffRequired())
	admin.Post("/recount-likes", s.RecountLikes)
	admin.Get("/feature-flags", s.GetFeatureFlags)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start wires the websocket hub to Redis and starts listening.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := s.App()

	if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
		middleware.Logger.Error("failed to start notification wiring", "error", err)
	}

	middleware.Logger.Info("server starting", "port", s.config.Port, "env", s.config.Env)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		middleware.Logger.Error("error shutting down notification hub", "error", err)
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr)
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
