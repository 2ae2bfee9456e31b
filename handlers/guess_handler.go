package handlers

import (
	"net/http"

	"bolao/services"

	"github.com/gin-gonic/gin"
)

type GuessHandler struct {
	guessService *services.GuessService
	hub          *services.Hub
}

func NewGuessHandler(guessService *services.GuessService, hub *services.Hub) *GuessHandler {
	return &GuessHandler{
		guessService: guessService,
		hub:          hub,
	}
}

func (h *GuessHandler) SubmitGuess(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	poolID, err := parseID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pool ID"})
		return
	}

	gameID, err := parseID(c, "gameId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid game ID"})
		return
	}

	var req services.SubmitGuessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	guess, err := h.guessService.SubmitGuess(poolID, gameID, userID.(uint), *req.FirstTeamPoints, *req.SecondTeamPoints)
	if err != nil {
		respondError(c, err)
		return
	}

	// Announce the fact of the guess only; points stay hidden until kickoff.
	if h.hub != nil {
		h.hub.BroadcastToPool(poolID, "guess_submitted", gin.H{
			"participant_id": guess.ParticipantID,
			"game_id":        guess.GameID,
		})
	}

	c.JSON(http.StatusCreated, guess)
}

func (h *GuessHandler) GetOwnGuess(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	poolID, err := parseID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pool ID"})
		return
	}

	gameID, err := parseID(c, "gameId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid game ID"})
		return
	}

	guess, err := h.guessService.GetGuess(poolID, gameID, userID.(uint))
	if err != nil {
		respondError(c, err)
		return
	}

	// No guess yet is a normal answer, not a failure.
	c.JSON(http.StatusOK, gin.H{"guess": guess})
}

func (h *GuessHandler) CountGuesses(c *gin.Context) {
	count, err := h.guessService.CountGuesses()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}
