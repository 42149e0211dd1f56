package handlers

import (
	"net/http"

	"agent-console/web/middleware"
	"agent-console/web/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type FilesHandler struct {
	registry *services.Registry
	logger   *zap.Logger
}

func NewFilesHandler(registry *services.Registry, logger *zap.Logger) *FilesHandler {
	return &FilesHandler{
		registry: registry,
		logger:   logger,
	}
}

func (h *FilesHandler) state(c *gin.Context) *services.ConsoleState {
	return h.registry.GetOrCreate(middleware.SessionID(c))
}

// Upload streams one file to the backend under the current conversation id.
// The conversation id is minted on demand so uploads can precede the first
// message.
func (h *FilesHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not open uploaded file"})
		return
	}
	defer src.Close()

	state := h.state(c)
	conversationID := state.Conversation.ConversationID()

	record, err := state.Transfers.Upload(c.Request.Context(), conversationID, file.Filename, src, file.Size)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"file":            record,
		"conversation_id": conversationID,
	})
}

// Progress returns the in-flight transfer rows and the completed attachments
// pending for the next send.
func (h *FilesHandler) Progress(c *gin.Context) {
	state := h.state(c)
	c.JSON(http.StatusOK, gin.H{
		"transfers":   state.Transfers.Snapshot(),
		"attachments": state.Transfers.CompletedAttachments(),
	})
}

// Remove drops a pending attachment and best-effort deletes the backend copy.
func (h *FilesHandler) Remove(c *gin.Context) {
	state := h.state(c)
	state.Transfers.RemoveAttachment(c.Request.Context(), state.Conversation.ConversationID(), c.Param("fileID"))
	c.JSON(http.StatusOK, gin.H{"removed": true})
}
