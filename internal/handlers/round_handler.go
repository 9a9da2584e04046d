package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/leaguehq/auction-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoundHandler handles round lifecycle HTTP requests (admin surface)
type RoundHandler struct {
	roundService services.RoundService
}

// NewRoundHandler creates a new RoundHandler
func NewRoundHandler(roundService services.RoundService) *RoundHandler {
	return &RoundHandler{roundService: roundService}
}

// OpenRoundRequest is the body for opening a bidding round
type OpenRoundRequest struct {
	Category       string    `json:"category" binding:"required"`
	ClosesAt       time.Time `json:"closesAt"`
	MaxBidsPerTeam int       `json:"maxBidsPerTeam" binding:"required"`
}

// ExtendRoundRequest is the body for pushing a round's deadline out
type ExtendRoundRequest struct {
	ClosesAt time.Time `json:"closesAt" binding:"required"`
}

// OpenRound handles POST /rounds
func (h *RoundHandler) OpenRound(c *gin.Context) {
	var req OpenRoundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	round, err := h.roundService.OpenRound(c.Request.Context(), req.Category, req.ClosesAt, req.MaxBidsPerTeam)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, round)
}

// ExtendRound handles POST /rounds/:id/extend
func (h *RoundHandler) ExtendRound(c *gin.Context) {
	roundID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid round ID"})
		return
	}
	var req ExtendRoundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	round, err := h.roundService.ExtendRound(c.Request.Context(), roundID, req.ClosesAt)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, round)
}

// CloseRound handles POST /rounds/:id/close
func (h *RoundHandler) CloseRound(c *gin.Context) {
	roundID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid round ID"})
		return
	}

	if err := h.roundService.CloseRound(c.Request.Context(), roundID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Round closed"})
}

// CancelRound handles POST /rounds/:id/cancel
func (h *RoundHandler) CancelRound(c *gin.Context) {
	roundID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid round ID"})
		return
	}

	if err := h.roundService.CancelRound(c.Request.Context(), roundID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Round cancelled"})
}

// ListRounds handles GET /rounds?category=...
func (h *RoundHandler) ListRounds(c *gin.Context) {
	rounds, err := h.roundService.ListRounds(c.Request.Context(), c.Query("category"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rounds)
}

// GetRound handles GET /rounds/:id
func (h *RoundHandler) GetRound(c *gin.Context) {
	roundID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid round ID"})
		return
	}

	round, err := h.roundService.GetRound(c.Request.Context(), roundID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, round)
}

// RoundAllocations handles GET /rounds/:id/allocations
func (h *RoundHandler) RoundAllocations(c *gin.Context) {
	roundID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid round ID"})
		return
	}

	allocs, err := h.roundService.RoundAllocations(c.Request.Context(), roundID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, allocs)
}
