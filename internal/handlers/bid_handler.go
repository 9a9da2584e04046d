package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/leaguehq/auction-backend/internal/middleware"
	"github.com/leaguehq/auction-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BidHandler handles bid related HTTP requests
type BidHandler struct {
	bidService services.BidService
}

// NewBidHandler creates a new BidHandler
func NewBidHandler(bidService services.BidService) *BidHandler {
	return &BidHandler{bidService: bidService}
}

// PlaceBidRequest is the body for placing or updating a sealed bid
type PlaceBidRequest struct {
	PlayerID string `json:"playerId" binding:"required"`
	RoundID  string `json:"roundId" binding:"required"`
	Amount   int64  `json:"amount" binding:"required"`
}

// PlaceBid handles POST /bids
func (h *BidHandler) PlaceBid(c *gin.Context) {
	var req PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	playerID, err := primitive.ObjectIDFromHex(req.PlayerID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid player ID"})
		return
	}
	roundID, err := primitive.ObjectIDFromHex(req.RoundID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid round ID"})
		return
	}

	bid, err := h.bidService.PlaceBid(c.Request.Context(), playerID, roundID, middleware.TeamID(c), req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bid)
}

// WithdrawBid handles DELETE /bids/:playerId?roundId=...
func (h *BidHandler) WithdrawBid(c *gin.Context) {
	playerID, err := primitive.ObjectIDFromHex(c.Param("playerId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid player ID"})
		return
	}
	roundID, err := primitive.ObjectIDFromHex(c.Query("roundId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid round ID"})
		return
	}

	if err := h.bidService.WithdrawBid(c.Request.Context(), playerID, roundID, middleware.TeamID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Bid withdrawn"})
}

// MyBids handles GET /bids/mine?roundId=...
func (h *BidHandler) MyBids(c *gin.Context) {
	roundID, err := primitive.ObjectIDFromHex(c.Query("roundId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid round ID"})
		return
	}

	bids, err := h.bidService.TeamActiveBids(c.Request.Context(), middleware.TeamID(c), roundID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bids)
}

// CurrentHighest handles GET /players/:id/highest?roundId=...
func (h *BidHandler) CurrentHighest(c *gin.Context) {
	playerID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid player ID"})
		return
	}
	roundID, err := primitive.ObjectIDFromHex(c.Query("roundId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid round ID"})
		return
	}

	bid, err := h.bidService.CurrentHighest(c.Request.Context(), playerID, roundID)
	if err != nil {
		respondError(c, err)
		return
	}
	if bid == nil {
		c.JSON(http.StatusOK, gin.H{"highest": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"highest": bid})
}
