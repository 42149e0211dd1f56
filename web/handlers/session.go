package handlers

import (
	"net/http"

	"agent-console/web/middleware"
	"agent-console/web/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SessionHandler struct {
	registry *services.Registry
	logger   *zap.Logger
}

func NewSessionHandler(registry *services.Registry, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		registry: registry,
		logger:   logger,
	}
}

// Info returns the resolved session token so a fresh tab can store it.
func (h *SessionHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"session_id": middleware.SessionID(c)})
}

// Reset mints a new session token and forgets the old state, so the backend
// sees a provably fresh session from the next request on.
func (h *SessionHandler) Reset(c *gin.Context) {
	oldID := middleware.SessionID(c)
	h.registry.Drop(oldID)

	newID := middleware.NewSessionID()
	h.logger.Info("Session reset",
		zap.String("old_session_id", oldID),
		zap.String("new_session_id", newID))

	c.Header(middleware.SessionHeader, newID)
	c.JSON(http.StatusOK, gin.H{"session_id": newID})
}
