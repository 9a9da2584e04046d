package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/leaguehq/auction-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlayerHandler handles player pool HTTP requests
type PlayerHandler struct {
	playerService services.PlayerService
}

// NewPlayerHandler creates a new PlayerHandler
func NewPlayerHandler(playerService services.PlayerService) *PlayerHandler {
	return &PlayerHandler{playerService: playerService}
}

// CreatePlayerRequest is the body for adding a player to the pool
type CreatePlayerRequest struct {
	Name       string `json:"name" binding:"required"`
	Category   string `json:"category" binding:"required"`
	FloorPrice int64  `json:"floorPrice"`
}

// CreatePlayer handles POST /players (admin)
func (h *PlayerHandler) CreatePlayer(c *gin.Context) {
	var req CreatePlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	player, err := h.playerService.CreatePlayer(c.Request.Context(), req.Name, req.Category, req.FloorPrice)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, player)
}

// ListPlayers handles GET /players?category=...
func (h *PlayerHandler) ListPlayers(c *gin.Context) {
	players, err := h.playerService.ListPlayers(c.Request.Context(), c.Query("category"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, players)
}

// GetPlayer handles GET /players/:id
func (h *PlayerHandler) GetPlayer(c *gin.Context) {
	playerID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid player ID"})
		return
	}

	player, err := h.playerService.GetPlayer(c.Request.Context(), playerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, player)
}
