package handlers

import (
	"net/http"

	"agent-console/web/middleware"
	"agent-console/web/services"
	"agent-console/web/types"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ConnectionsHandler struct {
	registry *services.Registry
	logger   *zap.Logger
}

type EnabledRequest struct {
	Enabled bool `json:"enabled"`
}

type ActiveSetRequest struct {
	ConnectionIDs []string `json:"connection_ids"`
}

func NewConnectionsHandler(registry *services.Registry, logger *zap.Logger) *ConnectionsHandler {
	return &ConnectionsHandler{
		registry: registry,
		logger:   logger,
	}
}

func (h *ConnectionsHandler) state(c *gin.Context) *services.ConsoleState {
	return h.registry.GetOrCreate(middleware.SessionID(c))
}

// List refreshes the directory from the backend and returns the result along
// with the activation view derived from it.
func (h *ConnectionsHandler) List(c *gin.Context) {
	state := h.state(c)
	connections, err := state.Connections.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"connections":           connections,
		"active_connection_ids": state.Activation.ActiveIDs(),
		"search_enabled":        state.Activation.Enabled(),
	})
}

// Create adds a knowledge connection. Credentials are forwarded once and
// never cached here.
func (h *ConnectionsHandler) Create(c *gin.Context) {
	var creds types.ConnectionCredentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if creds.Name == "" || creds.Username == "" || creds.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, username and password are required"})
		return
	}

	state := h.state(c)
	conn, err := state.Connections.Create(c.Request.Context(), creds)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, conn)
}

// Sync re-pulls a connection's collection/corpus metadata.
func (h *ConnectionsHandler) Sync(c *gin.Context) {
	state := h.state(c)
	conn, err := state.Connections.Sync(c.Request.Context(), c.Param("connectionID"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, conn)
}

// UpdateSelections replaces a connection's selection sets.
func (h *ConnectionsHandler) UpdateSelections(c *gin.Context) {
	var sel types.SelectionUpdate
	if err := c.ShouldBindJSON(&sel); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	state := h.state(c)
	conn, err := state.Connections.UpdateSelections(c.Request.Context(), c.Param("connectionID"), sel)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, conn)
}

// Delete removes a connection; the activation set is pruned through the
// directory's change notification.
func (h *ConnectionsHandler) Delete(c *gin.Context) {
	state := h.state(c)
	if err := state.Connections.Delete(c.Request.Context(), c.Param("connectionID")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// Test probes a connection without mutating anything.
func (h *ConnectionsHandler) Test(c *gin.Context) {
	state := h.state(c)
	result, err := state.Connections.Test(c.Request.Context(), c.Param("connectionID"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Status returns the backend's configuration summary for this session.
func (h *ConnectionsHandler) Status(c *gin.Context) {
	state := h.state(c)
	status, err := state.Connections.Status(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// SearchState reports the activation view the composer reads before a send.
func (h *ConnectionsHandler) SearchState(c *gin.Context) {
	state := h.state(c)
	c.JSON(http.StatusOK, gin.H{
		"enabled":               state.Activation.Enabled(),
		"active_connection_ids": state.Activation.ActiveIDs(),
		"has_usable_selection":  state.Activation.HasUsableSelection(),
	})
}

// SetEnabled persists the augmentation toggle.
func (h *ConnectionsHandler) SetEnabled(c *gin.Context) {
	var req EnabledRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	state := h.state(c)
	if err := state.Activation.SetEnabled(req.Enabled); err != nil {
		h.logger.Warn("Failed to persist search toggle", zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"enabled": req.Enabled})
}

// ToggleActive flips one connection's membership in the active set.
func (h *ConnectionsHandler) ToggleActive(c *gin.Context) {
	state := h.state(c)
	active := state.Activation.ToggleActive(c.Param("connectionID"))
	c.JSON(http.StatusOK, gin.H{
		"connection_id": c.Param("connectionID"),
		"active":        active,
	})
}

// SetActive replaces the active set wholesale.
func (h *ConnectionsHandler) SetActive(c *gin.Context) {
	var req ActiveSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	state := h.state(c)
	state.Activation.SetActive(req.ConnectionIDs)
	c.JSON(http.StatusOK, gin.H{"active_connection_ids": state.Activation.ActiveIDs()})
}
