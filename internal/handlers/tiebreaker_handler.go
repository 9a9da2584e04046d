package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/leaguehq/auction-backend/internal/middleware"
	"github.com/leaguehq/auction-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TiebreakerHandler handles tiebreaker sub-auction HTTP requests
type TiebreakerHandler struct {
	tbService services.TiebreakerService
}

// NewTiebreakerHandler creates a new TiebreakerHandler
func NewTiebreakerHandler(tbService services.TiebreakerService) *TiebreakerHandler {
	return &TiebreakerHandler{tbService: tbService}
}

// RaiseRequest is the body for a participant's one-shot raise
type RaiseRequest struct {
	Amount int64 `json:"amount" binding:"required"`
}

// SubmitRaise handles POST /tiebreakers/:id/raise
func (h *TiebreakerHandler) SubmitRaise(c *gin.Context) {
	tbID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tiebreaker ID"})
		return
	}
	var req RaiseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tb, err := h.tbService.SubmitRaise(c.Request.Context(), tbID, middleware.TeamID(c), req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tb)
}

// Concede handles POST /tiebreakers/:id/concede
func (h *TiebreakerHandler) Concede(c *gin.Context) {
	tbID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tiebreaker ID"})
		return
	}

	tb, err := h.tbService.Concede(c.Request.Context(), tbID, middleware.TeamID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tb)
}

// MyTiebreakers handles GET /tiebreakers/mine
func (h *TiebreakerHandler) MyTiebreakers(c *gin.Context) {
	tbs, err := h.tbService.TeamActiveTiebreakers(c.Request.Context(), middleware.TeamID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tbs)
}
