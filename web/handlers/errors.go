package handlers

import (
	"net/http"

	apperrors "agent-console/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps the error taxonomy onto HTTP statuses. Validation blocks
// the action outright; transport and rejection failures surface as gateway
// problems the user can retry manually.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case apperrors.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case apperrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case apperrors.IsServerRejection(err):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case apperrors.IsTransport(err):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		logger.Error("Unclassified handler error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
