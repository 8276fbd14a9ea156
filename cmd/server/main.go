package main

import (
	"context"
	"log"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"github.com/lumora-app/backend/internal/media"
	"github.com/lumora-app/backend/internal/metrics"
	"github.com/lumora-app/backend/internal/router"
	"github.com/lumora-app/backend/pkg/config"
	"github.com/lumora-app/backend/pkg/firebase"
)

func main() {
	// Load configuration
	config.LoadDotEnv()
	cfg := config.Load()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize Firebase when credentials are configured. Without them the
	// server still runs: local JWT auth works and media uploads resolve to
	// placeholder URLs.
	var authClient *fbauth.Client
	var uploader media.Uploader = media.NewPlaceholderUploader()
	if cfg.FirebaseCredentialsPath != "" {
		firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}
		authClient = firebaseApp.AuthClient

		if cfg.StorageBucket != "" {
			fbUploader, err := media.NewFirebaseUploader(ctx, firebaseApp.FirebaseApp, cfg.StorageBucket)
			if err != nil {
				log.Fatalf("Failed to initialize Firebase storage uploader: %v", err)
			}
			uploader = fbUploader
		}
	} else {
		log.Println("Firebase credentials not configured, running with local auth and placeholder media storage.")
	}

	log.Printf("media uploads configured: %v", uploader.Configured())

	// Metrics
	metrics.MustRegister()
	go metrics.Serve(cfg.MetricsPort)

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	lifecycle := router.SetupRoutes(e, db.Postgres, db.Mongo, authClient, uploader, cfg.JWTSecret)

	// Background purge of expired stories
	go lifecycle.RunSweeper(ctx, cfg.PurgeInterval)

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
