package services

import (
	"context"
	"sync"

	"agent-console/backend"
	"agent-console/web/types"

	"go.uber.org/zap"
)

// Directory event kinds.
const (
	DirectoryList       = "list"
	DirectoryCreate     = "create"
	DirectoryDelete     = "delete"
	DirectorySync       = "sync"
	DirectorySelections = "selections"
)

// DirectoryEvent describes one change to the connection cache. Connections is
// the full post-change membership so listeners can re-derive dependent state.
type DirectoryEvent struct {
	Kind         string
	ConnectionID string
	Connections  []types.KnowledgeConnection
}

// ConnectionService owns the session's knowledge-connection cache. It is the
// single source of truth for every surface that reads connections; the cache
// only changes from server responses, never speculatively from request
// payloads, so a failed call leaves the last-known-good state intact.
type ConnectionService struct {
	sessionID string
	client    *backend.Client
	logger    *zap.Logger

	mu          sync.RWMutex
	connections []types.KnowledgeConnection
	loaded      bool
	listeners   []func(DirectoryEvent)
}

func NewConnectionService(sessionID string, client *backend.Client, logger *zap.Logger) *ConnectionService {
	return &ConnectionService{
		sessionID: sessionID,
		client:    client,
		logger:    logger,
	}
}

// OnChange registers a listener for cache changes. Listeners are invoked
// synchronously after the cache is updated, outside the service lock.
func (cs *ConnectionService) OnChange(fn func(DirectoryEvent)) {
	cs.mu.Lock()
	cs.listeners = append(cs.listeners, fn)
	cs.mu.Unlock()
}

func (cs *ConnectionService) notify(kind, connectionID string) {
	cs.mu.RLock()
	event := DirectoryEvent{
		Kind:         kind,
		ConnectionID: connectionID,
		Connections:  copyConnections(cs.connections),
	}
	listeners := make([]func(DirectoryEvent), len(cs.listeners))
	copy(listeners, cs.listeners)
	cs.mu.RUnlock()

	for _, fn := range listeners {
		fn(event)
	}
}

// List replaces the cache with server truth and returns a snapshot.
func (cs *ConnectionService) List(ctx context.Context) ([]types.KnowledgeConnection, error) {
	connections, err := cs.client.ListConnections(ctx, cs.sessionID)
	if err != nil {
		cs.logger.Warn("Failed to list knowledge connections",
			zap.String("session_id", cs.sessionID),
			zap.Error(err))
		return nil, err
	}

	cs.mu.Lock()
	cs.connections = copyConnections(connections)
	cs.loaded = true
	cs.mu.Unlock()

	cs.notify(DirectoryList, "")
	return copyConnections(connections), nil
}

// Create submits credentials and appends the new record on success. This is
// one of the two fail-open paths: the new connection is immediately usable.
func (cs *ConnectionService) Create(ctx context.Context, creds types.ConnectionCredentials) (*types.KnowledgeConnection, error) {
	conn, err := cs.client.CreateConnection(ctx, cs.sessionID, creds)
	if err != nil {
		return nil, err
	}

	cs.mu.Lock()
	cs.connections = append(cs.connections, *conn)
	cs.mu.Unlock()

	cs.logger.Info("Knowledge connection created",
		zap.String("session_id", cs.sessionID),
		zap.String("connection_id", conn.ID),
		zap.String("name", conn.Name))

	cs.notify(DirectoryCreate, conn.ID)
	result := *conn
	return &result, nil
}

// Sync re-pulls collection/corpus metadata for one connection. Selections are
// preserved as the server returns them.
func (cs *ConnectionService) Sync(ctx context.Context, id string) (*types.KnowledgeConnection, error) {
	conn, err := cs.client.SyncConnection(ctx, cs.sessionID, id)
	if err != nil {
		return nil, err
	}
	cs.replace(*conn)
	cs.notify(DirectorySync, id)
	result := *conn
	return &result, nil
}

// UpdateSelections replaces the selection sets wholesale. The cache is
// updated from the response, not the request, so the server stays the source
// of truth for what was actually saved.
func (cs *ConnectionService) UpdateSelections(ctx context.Context, id string, sel types.SelectionUpdate) (*types.KnowledgeConnection, error) {
	conn, err := cs.client.UpdateSelections(ctx, cs.sessionID, id, sel)
	if err != nil {
		return nil, err
	}
	cs.replace(*conn)
	cs.notify(DirectorySelections, id)
	result := *conn
	return &result, nil
}

// Delete removes the connection from the backend and then from the cache.
func (cs *ConnectionService) Delete(ctx context.Context, id string) error {
	if err := cs.client.DeleteConnection(ctx, cs.sessionID, id); err != nil {
		return err
	}

	cs.mu.Lock()
	kept := cs.connections[:0]
	for _, conn := range cs.connections {
		if conn.ID != id {
			kept = append(kept, conn)
		}
	}
	cs.connections = kept
	cs.mu.Unlock()

	cs.logger.Info("Knowledge connection deleted",
		zap.String("session_id", cs.sessionID),
		zap.String("connection_id", id))

	cs.notify(DirectoryDelete, id)
	return nil
}

// Test probes connectivity; the cache is left untouched.
func (cs *ConnectionService) Test(ctx context.Context, id string) (*types.TestResult, error) {
	return cs.client.TestConnection(ctx, cs.sessionID, id)
}

// Status fetches the backend's summary of this session's configuration.
func (cs *ConnectionService) Status(ctx context.Context) (*types.ConnectionStatus, error) {
	return cs.client.ConnectionStatus(ctx, cs.sessionID)
}

// Snapshot returns a copy of the cached connections.
func (cs *ConnectionService) Snapshot() []types.KnowledgeConnection {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return copyConnections(cs.connections)
}

// Get returns the cached record for id, if present.
func (cs *ConnectionService) Get(id string) (types.KnowledgeConnection, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	for _, conn := range cs.connections {
		if conn.ID == id {
			return conn, true
		}
	}
	return types.KnowledgeConnection{}, false
}

// Loaded reports whether List has succeeded at least once this session.
func (cs *ConnectionService) Loaded() bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.loaded
}

// replace swaps one cached record for the server's version of it.
func (cs *ConnectionService) replace(conn types.KnowledgeConnection) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	for i := range cs.connections {
		if cs.connections[i].ID == conn.ID {
			cs.connections[i] = conn
			return
		}
	}
	// Record unknown to the cache (e.g. sync before first list); keep it.
	cs.connections = append(cs.connections, conn)
}

func copyConnections(connections []types.KnowledgeConnection) []types.KnowledgeConnection {
	copied := make([]types.KnowledgeConnection, len(connections))
	copy(copied, connections)
	return copied
}
