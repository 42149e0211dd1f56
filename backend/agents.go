package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"agent-console/web/types"

	"go.uber.org/zap"
)

// ChatRequest is the body sent to POST /agents/{id}/chat. KMConnectionIDs is
// omitted entirely when augmentation is off so the backend sees no half-state.
type ChatRequest struct {
	Message         string               `json:"message"`
	ConversationID  string               `json:"conversation_id,omitempty"`
	EnableWebSearch bool                 `json:"enable_web_search"`
	EnableKMSearch  bool                 `json:"enable_km_search"`
	KMConnectionIDs []string             `json:"km_connection_ids,omitempty"`
	UploadedFiles   []types.UploadedFile `json:"uploaded_files,omitempty"`
}

// ChatResult is the backend's reply for a chat exchange.
type ChatResult struct {
	Response         string             `json:"response"`
	ConversationID   string             `json:"conversation_id"`
	AgentID          string             `json:"agent_id"`
	Metadata         map[string]any     `json:"metadata"`
	ToolsUsed        []types.ToolResult `json:"tools_used"`
	WebSearchEnabled bool               `json:"web_search_enabled"`
	KMSearchEnabled  bool               `json:"km_search_enabled"`
}

// ListAgents fetches the selectable agents.
func (c *Client) ListAgents(ctx context.Context, sessionID string) ([]types.AgentInfo, error) {
	var agents []types.AgentInfo
	if err := c.doJSON(ctx, sessionID, http.MethodGet, "/agents", nil, &agents); err != nil {
		return nil, err
	}
	return agents, nil
}

// Chat sends one message to an agent and returns its reply.
func (c *Client) Chat(ctx context.Context, sessionID, agentID string, req ChatRequest) (*ChatResult, error) {
	path := fmt.Sprintf("/agents/%s/chat", url.PathEscape(agentID))
	var result ChatResult
	if err := c.doJSON(ctx, sessionID, http.MethodPost, path, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteConversation asks the backend to discard server-side conversation
// context. Callers treat failure as non-fatal.
func (c *Client) DeleteConversation(ctx context.Context, sessionID, agentID, conversationID string) error {
	path := fmt.Sprintf("/agents/%s/conversations/%s", url.PathEscape(agentID), url.PathEscape(conversationID))
	if err := c.doJSON(ctx, sessionID, http.MethodDelete, path, nil, nil); err != nil {
		c.logger.Debug("Conversation delete did not complete",
			zap.String("agent_id", agentID),
			zap.String("conversation_id", conversationID),
			zap.Error(err))
		return err
	}
	return nil
}
