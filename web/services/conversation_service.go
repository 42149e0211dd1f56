package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"agent-console/backend"
	apperrors "agent-console/errors"
	"agent-console/web/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ConversationService owns the current conversation for a session: its
// identifier, its transcript and the active agent. The transcript is
// append-only; rotation (agent switch, clear) replaces the whole thing.
//
// Callers are expected to keep at most one send in flight per conversation
// (the UI disables the send control while a request is outstanding). The
// service serializes appends and discards responses that arrive after the
// conversation they were issued for has been rotated away, but it does not
// prevent two concurrent sends from interleaving their replies.
type ConversationService struct {
	sessionID  string
	client     *backend.Client
	activation *ActivationService
	logger     *zap.Logger

	mu              sync.Mutex
	agentID         string
	conversationID  string
	serverConfirmed bool
	messages        []types.Message
	webSearch       bool
}

func NewConversationService(sessionID string, client *backend.Client, activation *ActivationService, webSearchDefault bool, logger *zap.Logger) *ConversationService {
	return &ConversationService{
		sessionID:  sessionID,
		client:     client,
		activation: activation,
		logger:     logger,
		webSearch:  webSearchDefault,
	}
}

// ListAgents fetches the selectable agents from the backend.
func (s *ConversationService) ListAgents(ctx context.Context) ([]types.AgentInfo, error) {
	return s.client.ListAgents(ctx, s.sessionID)
}

// SelectAgent makes agentID current. Changing agents always rotates to a
// fresh conversation with a newly minted id; ids are never reused, even when
// an earlier agent is re-selected. Selecting the current agent is a no-op.
func (s *ConversationService) SelectAgent(agentID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if agentID == s.agentID && s.conversationID != "" {
		return s.conversationID
	}

	s.agentID = agentID
	s.conversationID = newConversationID()
	s.serverConfirmed = false
	s.messages = nil

	s.logger.Info("Agent selected",
		zap.String("session_id", s.sessionID),
		zap.String("agent_id", agentID),
		zap.String("conversation_id", s.conversationID))

	return s.conversationID
}

// AgentID returns the currently selected agent, or "".
func (s *ConversationService) AgentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agentID
}

// ConversationID returns the current conversation identifier, minting one if
// the conversation is still fresh so dependent operations (uploads) can
// reference it before the first message is sent.
func (s *ConversationService) ConversationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conversationID == "" {
		s.conversationID = newConversationID()
	}
	return s.conversationID
}

// SetWebSearch flips the per-session web search flag for subsequent sends.
func (s *ConversationService) SetWebSearch(enabled bool) {
	s.mu.Lock()
	s.webSearch = enabled
	s.mu.Unlock()
}

// WebSearch returns the per-session web search flag.
func (s *ConversationService) WebSearch() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.webSearch
}

// Messages returns a copy of the transcript.
func (s *ConversationService) Messages() []types.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([]types.Message, len(s.messages))
	copy(copied, s.messages)
	return copied
}

// SendMessage appends the user's turn optimistically, performs the exchange
// and appends exactly one assistant turn: the agent's reply on success, a
// synthesized failure message otherwise. The user's turn is never dropped.
// Blank text is rejected before anything is appended.
func (s *ConversationService) SendMessage(ctx context.Context, text string, attachments []types.UploadedFile) (*types.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.Validationf("message cannot be empty")
	}

	s.mu.Lock()
	if s.agentID == "" {
		s.mu.Unlock()
		return nil, apperrors.Validationf("no agent selected")
	}
	if s.conversationID == "" {
		s.conversationID = newConversationID()
	}
	agentID := s.agentID
	conversationID := s.conversationID
	serverConfirmed := s.serverConfirmed

	userMessage := types.Message{
		ID:            newMessageID(),
		Role:          types.RoleUser,
		Content:       text,
		Timestamp:     time.Now(),
		AttachedFiles: attachments,
	}
	s.messages = append(s.messages, userMessage)

	req := backend.ChatRequest{
		Message:         text,
		ConversationID:  conversationID,
		EnableWebSearch: s.webSearch,
		UploadedFiles:   attachments,
	}
	if ids := s.activation.ResolveForSend(); ids != nil {
		req.EnableKMSearch = true
		req.KMConnectionIDs = ids
	}
	s.mu.Unlock()

	result, err := s.client.Chat(ctx, s.sessionID, agentID, req)

	s.mu.Lock()
	defer s.mu.Unlock()

	// The conversation may have been rotated (agent switch, clear) while the
	// request was in flight. A stale response must not touch the new
	// transcript.
	if s.conversationID != conversationID {
		s.logger.Warn("Discarding response for rotated conversation",
			zap.String("session_id", s.sessionID),
			zap.String("stale_conversation_id", conversationID),
			zap.String("current_conversation_id", s.conversationID))
		return nil, nil
	}

	var assistantMessage types.Message
	if err != nil {
		s.logger.Error("Chat send failed",
			zap.String("session_id", s.sessionID),
			zap.String("agent_id", agentID),
			zap.String("conversation_id", conversationID),
			zap.Error(err))
		assistantMessage = types.Message{
			ID:        newMessageID(),
			Role:      types.RoleAssistant,
			Content:   fmt.Sprintf("Sorry, I couldn't process that message: %v", err),
			Timestamp: time.Now(),
			Metadata:  map[string]any{"error": true},
		}
	} else {
		if !serverConfirmed {
			// First confirmed exchange. The backend normally reuses the id we
			// minted, but if it assigned its own we adopt it from here on.
			if result.ConversationID != "" && result.ConversationID != conversationID {
				s.logger.Info("Adopting server-assigned conversation id",
					zap.String("session_id", s.sessionID),
					zap.String("client_conversation_id", conversationID),
					zap.String("server_conversation_id", result.ConversationID))
				s.conversationID = result.ConversationID
			}
			s.serverConfirmed = true
		}
		assistantMessage = types.Message{
			ID:          newMessageID(),
			Role:        types.RoleAssistant,
			Content:     result.Response,
			Timestamp:   time.Now(),
			Metadata:    result.Metadata,
			ToolResults: result.ToolsUsed,
		}
	}

	s.messages = append(s.messages, assistantMessage)
	return &assistantMessage, nil
}

// ClearHistory informs the backend the conversation can be discarded, then
// resets to a fresh conversation regardless of whether that call succeeded.
// Losing server-side cleanup is non-fatal and only logged.
func (s *ConversationService) ClearHistory(ctx context.Context) string {
	s.mu.Lock()
	agentID := s.agentID
	conversationID := s.conversationID
	s.mu.Unlock()

	if agentID != "" && conversationID != "" {
		if err := s.client.DeleteConversation(ctx, s.sessionID, agentID, conversationID); err != nil {
			s.logger.Warn("Best-effort conversation cleanup failed",
				zap.String("agent_id", agentID),
				zap.String("conversation_id", conversationID),
				zap.Error(err))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conversationID != conversationID {
		// Someone rotated underneath the cleanup call; their rotation wins.
		return s.conversationID
	}
	s.conversationID = newConversationID()
	s.serverConfirmed = false
	s.messages = nil
	return s.conversationID
}

func newConversationID() string {
	return "conv_" + uuid.NewString()
}

func newMessageID() string {
	return "msg_" + uuid.NewString()
}
