package main

import (
	"log"
	"os"

	"cinelink/internal/db"
	"cinelink/internal/handlers"
	"cinelink/internal/identity"
	"cinelink/internal/router"
	"cinelink/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading env vars from system")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Database
	database, err := db.Init(logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}

	// Identity boundary (avatars live there, not here)
	identityURL := os.Getenv("IDENTITY_SERVICE_URL")
	if identityURL == "" {
		identityURL = "http://localhost:8081"
	}
	identityClient, err := identity.NewClient(identityURL)
	if err != nil {
		logger.Fatal("Failed to create identity client", zap.Error(err))
	}

	// Services
	commentService := services.NewCommentService(database, logger)
	enricher := services.NewAvatarEnricher(identityClient, logger)

	// Handlers
	commentHandler := handlers.NewCommentHandler(commentService, enricher, logger)

	r := gin.Default()
	router.RegisterRoutes(r, commentHandler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	logger.Info("Starting server", zap.String("port", port))
	if err := r.Run(":" + port); err != nil {
		logger.Fatal("Server exited", zap.Error(err))
	}
}
