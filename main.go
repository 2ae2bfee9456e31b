package main

import (
	"log"

	"bolao/config"
	"bolao/handlers"
	"bolao/middleware"
	"bolao/models"
	"bolao/routes"
	"bolao/services"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database models
	err = db.AutoMigrate(
		&models.User{},
		&models.Pool{},
		&models.Participant{},
		&models.Game{},
		&models.Guess{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize Redis
	redisClient := config.InitRedis(cfg)

	// Initialize services
	authService := services.NewAuthService(db, cfg.JWTSecret)
	poolService := services.NewPoolService(db)
	guessService := services.NewGuessService(db)
	rankingService := services.NewRankingService(db, redisClient, services.NewTablePolicy(cfg.Scoring))
	gameService := services.NewGameService(db, rankingService)

	// Initialize WebSocket hub
	hub := services.NewHub()
	go hub.Run()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	poolHandler := handlers.NewPoolHandler(poolService, rankingService, hub)
	guessHandler := handlers.NewGuessHandler(guessService, hub)
	gameHandler := handlers.NewGameHandler(gameService, hub)

	// Setup Gin router
	router := gin.Default()

	// Add CORS middleware
	router.Use(middleware.CORS())

	// Setup routes
	routes.SetupRoutes(router, authHandler, poolHandler, guessHandler, gameHandler, hub, cfg.JWTSecret)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
