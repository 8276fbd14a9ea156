package router

import (
	"log"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/lumora-app/backend/internal/engagement"
	"github.com/lumora-app/backend/internal/handlers"
	"github.com/lumora-app/backend/internal/media"
	"github.com/lumora-app/backend/internal/metrics"
	"github.com/lumora-app/backend/internal/middleware"
	"github.com/lumora-app/backend/internal/models"
	"github.com/lumora-app/backend/internal/notifications"
	"github.com/lumora-app/backend/internal/repositories"
	"github.com/lumora-app/backend/internal/stories"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.Use(metrics.Middleware())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies.
// It returns the story lifecycle so the caller can run the purge sweeper.
func SetupRoutes(e *echo.Echo, pgdb *gorm.DB, mgClient *mongo.Client, firebaseAuthClient *auth.Client, uploader media.Uploader, jwtSecret string) *stories.Lifecycle {
	// AutoMigrate PostgreSQL models
	err := pgdb.AutoMigrate(
		&models.User{},
		&models.Follow{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	mongoDB := mgClient.Database("lumora")

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	followRepo := repositories.NewPostgresFollowRepository(pgdb)
	postRepo := repositories.NewMongoContentRepository(mongoDB, "posts", models.KindPost)
	reelRepo := repositories.NewMongoContentRepository(mongoDB, "reels", models.KindReel)
	storyRepo := repositories.NewMongoStoryRepository(mongoDB)
	notificationRepo := repositories.NewMongoNotificationRepository(mongoDB)
	conversationRepo := repositories.NewMongoConversationRepository(mongoDB)
	messageRepo := repositories.NewMongoMessageRepository(mongoDB)

	// --- Core services ---
	deduper := notifications.NewDeduper(notificationRepo)
	ledger := engagement.NewLedger(postRepo, reelRepo, storyRepo, deduper)
	lifecycle := stories.NewLifecycle(storyRepo, uploader)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, firebaseAuthClient, jwtSecret)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(jwtSecret))
	log.Println("JWT authentication middleware applied to /api/v1 group.")

	// User profile routes
	userHandler := handlers.NewUserHandler(userRepo)
	userHandler.RegisterProfileRoutes(api)
	api.GET("/users/search", userHandler.SearchUsers)
	log.Println("User profile routes configured.")

	// Post routes
	postHandler := handlers.NewPostHandler(postRepo, uploader)
	postHandler.RegisterPostRoutes(api)
	log.Println("Post routes configured.")

	// Reel routes
	reelHandler := handlers.NewReelHandler(reelRepo, uploader)
	reelHandler.RegisterReelRoutes(api)
	log.Println("Reel routes configured.")

	// Story routes
	storyHandler := handlers.NewStoryHandler(lifecycle, uploader, userRepo)
	storyHandler.RegisterStoryRoutes(api)
	log.Println("Story routes configured.")

	// Engagement routes (likes, comments, views across all content kinds)
	engagementHandler := handlers.NewEngagementHandler(ledger, postRepo, reelRepo, storyRepo)
	engagementHandler.RegisterEngagementRoutes(api)
	log.Println("Engagement routes configured.")

	// Feed routes
	feedHandler := handlers.NewFeedHandler(postRepo, userRepo, followRepo)
	feedHandler.RegisterFeedRoutes(api)
	log.Println("Feed routes configured.")

	// Follow routes
	followHandler := handlers.NewFollowHandler(followRepo, userRepo, deduper)
	followHandler.RegisterFollowRoutes(api)
	log.Println("Follow routes configured.")

	// Notification routes
	notificationHandler := handlers.NewNotificationHandler(notificationRepo, userRepo)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Println("Notification routes configured.")

	// Messaging routes
	messageHandler := handlers.NewMessageHandler(conversationRepo, messageRepo, userRepo)
	messageHandler.RegisterMessageRoutes(api)
	log.Println("Message routes configured.")

	log.Println("All routes configured.")
	return lifecycle
}
