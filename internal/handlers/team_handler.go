package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/leaguehq/auction-backend/internal/middleware"
	"github.com/leaguehq/auction-backend/internal/services"
)

// TeamHandler handles team self-service HTTP requests
type TeamHandler struct {
	budgetService services.BudgetService
}

// NewTeamHandler creates a new TeamHandler
func NewTeamHandler(budgetService services.BudgetService) *TeamHandler {
	return &TeamHandler{budgetService: budgetService}
}

// MyBudget handles GET /teams/me/budget
func (h *TeamHandler) MyBudget(c *gin.Context) {
	team, err := h.budgetService.GetTeam(c.Request.Context(), middleware.TeamID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"budgetInitial":   team.BudgetInitial,
		"budgetRemaining": team.BudgetRemaining,
	})
}
