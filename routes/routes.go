package routes

import (
	"log"
	"net/http"
	"strconv"

	"bolao/handlers"
	"bolao/middleware"
	"bolao/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

func SetupRoutes(
	router *gin.Engine,
	authHandler *handlers.AuthHandler,
	poolHandler *handlers.PoolHandler,
	guessHandler *handlers.GuessHandler,
	gameHandler *handlers.GameHandler,
	hub *services.Hub,
	jwtSecret string,
) {
	// API routes
	api := router.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// Public counters
		api.GET("/pools/count", poolHandler.CountPools)
		api.GET("/guesses/count", guessHandler.CountGuesses)
		api.GET("/users/count", poolHandler.CountUsers)

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware(jwtSecret))
		{
			// User profile
			protected.GET("/auth/profile", authHandler.GetProfile)

			// Pool routes
			pools := protected.Group("/pools")
			{
				pools.GET("", poolHandler.ListUserPools)
				pools.POST("", poolHandler.CreatePool)
				pools.POST("/join", poolHandler.JoinPool)
				pools.GET("/:id", poolHandler.GetPool)
				pools.GET("/:id/ranking", poolHandler.GetRanking)
				pools.GET("/:id/games", gameHandler.ListPoolGames)
				pools.POST("/:id/games/:gameId/guesses", guessHandler.SubmitGuess)
				pools.GET("/:id/games/:gameId/guesses/mine", guessHandler.GetOwnGuess)
			}

			// Game seeding routes
			games := protected.Group("/games")
			{
				games.POST("", gameHandler.CreateGame)
				games.POST("/:id/result", gameHandler.SetResult)
			}
		}
	}

	// WebSocket endpoint for pool event streaming
	router.GET("/ws/pools/:poolId", func(c *gin.Context) {
		poolID, err := strconv.ParseUint(c.Param("poolId"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pool ID"})
			return
		}

		// Browsers cannot set headers on websocket requests, so the token
		// arrives as a query parameter.
		userID, err := middleware.ParseToken(c.Query("token"), jwtSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed for pool %d, user %d: %v", poolID, userID, err)
			return
		}

		hub.RegisterClient(conn, uint(poolID), userID)
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
