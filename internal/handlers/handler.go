package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/leaguehq/auction-backend/internal/repositories"
	"github.com/leaguehq/auction-backend/internal/services"
	"golang.org/x/exp/slog"
)

// respondError maps service errors onto the HTTP contract: validation
// failures are 400, state conflicts are 409, missing documents are 404,
// anything else is a 500 with the detail kept out of the response body.
func respondError(c *gin.Context, err error) {
	switch {
	case services.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case services.IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, repositories.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	default:
		slog.Error("Unhandled request error", "error", err, "path", c.Request.URL.Path)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
