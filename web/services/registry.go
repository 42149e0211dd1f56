package services

import (
	"sync"

	"agent-console/backend"
	"agent-console/config"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
)

// ConsoleState bundles everything the console keeps for one session token:
// the connection directory, the activation state derived from it, the
// conversation and the transfer tracker. It exists only in memory; eviction
// or reset is session death, matching the backend's revocable session model.
type ConsoleState struct {
	SessionID    string
	Connections  *ConnectionService
	Activation   *ActivationService
	Conversation *ConversationService
	Transfers    *TransferService
}

// Registry maps session tokens to console state, bounded so abandoned tabs
// age out instead of accumulating forever.
type Registry struct {
	cfg    *config.Config
	client *backend.Client
	prefs  *Preferences
	logger *zap.Logger

	mu    sync.Mutex
	cache *lru.Cache
}

func NewRegistry(cfg *config.Config, client *backend.Client, prefs *Preferences, logger *zap.Logger) (*Registry, error) {
	cache, err := lru.New(cfg.SessionCacheSize)
	if err != nil {
		return nil, err
	}
	return &Registry{
		cfg:    cfg,
		client: client,
		prefs:  prefs,
		logger: logger,
		cache:  cache,
	}, nil
}

// GetOrCreate returns the console state for a session token, building a
// fresh one on first sight. A fresh state has an empty directory cache and
// an uninitialized activation set; the first connection listing populates
// both.
func (r *Registry) GetOrCreate(sessionID string) *ConsoleState {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.cache.Get(sessionID); ok {
		return cached.(*ConsoleState)
	}

	connections := NewConnectionService(sessionID, r.client, r.logger)
	activation := NewActivationService(r.prefs, connections, r.logger)
	state := &ConsoleState{
		SessionID:    sessionID,
		Connections:  connections,
		Activation:   activation,
		Conversation: NewConversationService(sessionID, r.client, activation, r.cfg.EnableWebSearchDefault, r.logger),
		Transfers:    NewTransferService(sessionID, r.client, r.cfg, r.logger),
	}
	r.cache.Add(sessionID, state)

	r.logger.Debug("Console state created", zap.String("session_id", sessionID))
	return state
}

// Drop forgets a session's state entirely. Used on explicit session reset.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Remove(sessionID)
}

// Len reports how many sessions currently hold state.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cache.Len()
}
