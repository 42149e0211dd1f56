package handlers

import (
	"net/http"

	"agent-console/web/format"
	"agent-console/web/middleware"
	"agent-console/web/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ChatHandler struct {
	registry *services.Registry
	logger   *zap.Logger
}

type SendMessageRequest struct {
	Message string `json:"message" form:"message"`
}

type WebSearchRequest struct {
	Enabled bool `json:"enabled"`
}

func NewChatHandler(registry *services.Registry, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		registry: registry,
		logger:   logger,
	}
}

func (h *ChatHandler) state(c *gin.Context) *services.ConsoleState {
	return h.registry.GetOrCreate(middleware.SessionID(c))
}

// ListAgents returns the selectable agents from the backend.
func (h *ChatHandler) ListAgents(c *gin.Context) {
	state := h.state(c)
	agents, err := state.Conversation.ListAgents(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"agents": agents})
}

// SelectAgent makes an agent current, rotating to a fresh conversation when
// the selection changes.
func (h *ChatHandler) SelectAgent(c *gin.Context) {
	agentID := c.Param("agentID")
	if agentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "agent id is required"})
		return
	}

	state := h.state(c)
	conversationID := state.Conversation.SelectAgent(agentID)
	c.JSON(http.StatusOK, gin.H{
		"agent_id":        agentID,
		"conversation_id": conversationID,
	})
}

// SendMessage performs one exchange with the current agent. Pending completed
// uploads are bundled as attachments and consumed once the turn is recorded.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Error("Failed to bind chat request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	state := h.state(c)
	attachments := state.Transfers.CompletedAttachments()

	reply, err := state.Conversation.SendMessage(c.Request.Context(), req.Message, attachments)
	if err != nil {
		// Validation rejections block the send entirely; the attachments stay
		// pending for the next attempt.
		respondError(c, h.logger, err)
		return
	}
	state.Transfers.ConsumeAttachments()

	if reply == nil {
		// Conversation rotated mid-flight; nothing was recorded.
		c.JSON(http.StatusOK, gin.H{
			"conversation_id": state.Conversation.ConversationID(),
			"discarded":       true,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         reply,
		"rendered_html":   format.RenderMarkdown(reply.Content),
		"conversation_id": state.Conversation.ConversationID(),
	})
}

// Transcript returns the current conversation's messages.
func (h *ChatHandler) Transcript(c *gin.Context) {
	state := h.state(c)
	c.JSON(http.StatusOK, gin.H{
		"agent_id":        state.Conversation.AgentID(),
		"conversation_id": state.Conversation.ConversationID(),
		"messages":        state.Conversation.Messages(),
	})
}

// ClearHistory discards the conversation and starts a fresh one.
func (h *ChatHandler) ClearHistory(c *gin.Context) {
	state := h.state(c)
	conversationID := state.Conversation.ClearHistory(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"conversation_id": conversationID})
}

// SetWebSearch flips the web-search flag for subsequent sends.
func (h *ChatHandler) SetWebSearch(c *gin.Context) {
	var req WebSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	state := h.state(c)
	state.Conversation.SetWebSearch(req.Enabled)
	c.JSON(http.StatusOK, gin.H{"web_search_enabled": req.Enabled})
}
