package handlers

import (
	"net/http"
	"strconv"

	"bolao/services"

	"github.com/gin-gonic/gin"
)

type PoolHandler struct {
	poolService    *services.PoolService
	rankingService *services.RankingService
	hub            *services.Hub
}

func NewPoolHandler(poolService *services.PoolService, rankingService *services.RankingService, hub *services.Hub) *PoolHandler {
	return &PoolHandler{
		poolService:    poolService,
		rankingService: rankingService,
		hub:            hub,
	}
}

func (h *PoolHandler) CreatePool(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req services.CreatePoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pool, err := h.poolService.CreatePool(userID.(uint), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, pool)
}

func (h *PoolHandler) JoinPool(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req services.JoinPoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	participant, err := h.poolService.JoinPool(userID.(uint), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	if h.hub != nil {
		h.hub.BroadcastToPool(participant.PoolID, "participant_joined", gin.H{
			"participant_id": participant.ID,
			"user_id":        participant.UserID,
		})
	}

	c.JSON(http.StatusCreated, participant)
}

func (h *PoolHandler) ListUserPools(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	pools, err := h.poolService.ListUserPools(userID.(uint))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pools)
}

func (h *PoolHandler) GetPool(c *gin.Context) {
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

	pool, err := h.poolService.GetPool(poolID, userID.(uint))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pool)
}

func (h *PoolHandler) GetRanking(c *gin.Context) {
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

	// Standings are only visible to members.
	if _, err := h.poolService.GetPool(poolID, userID.(uint)); err != nil {
		respondError(c, err)
		return
	}

	standings, err := h.rankingService.RankParticipants(c.Request.Context(), poolID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"standings": standings})
}

func (h *PoolHandler) CountPools(c *gin.Context) {
	count, err := h.poolService.CountPools()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *PoolHandler) CountUsers(c *gin.Context) {
	count, err := h.poolService.CountUsers()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

func parseID(c *gin.Context, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
