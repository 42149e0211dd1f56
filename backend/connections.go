package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"agent-console/web/types"
)

const connectionsBase = "/session/km/connections"

func connectionPath(id string, suffix string) string {
	return fmt.Sprintf("%s/%s%s", connectionsBase, url.PathEscape(id), suffix)
}

// ListConnections fetches all knowledge connections scoped to the session.
func (c *Client) ListConnections(ctx context.Context, sessionID string) ([]types.KnowledgeConnection, error) {
	var connections []types.KnowledgeConnection
	if err := c.doJSON(ctx, sessionID, http.MethodGet, connectionsBase, nil, &connections); err != nil {
		return nil, err
	}
	return connections, nil
}

// CreateConnection submits credentials once; the backend logs in, pulls the
// initial collection/corpus metadata and returns the new record.
func (c *Client) CreateConnection(ctx context.Context, sessionID string, creds types.ConnectionCredentials) (*types.KnowledgeConnection, error) {
	var conn types.KnowledgeConnection
	if err := c.doJSON(ctx, sessionID, http.MethodPost, connectionsBase, creds, &conn); err != nil {
		return nil, err
	}
	return &conn, nil
}

// GetConnection fetches a single connection record.
func (c *Client) GetConnection(ctx context.Context, sessionID, id string) (*types.KnowledgeConnection, error) {
	var conn types.KnowledgeConnection
	if err := c.doJSON(ctx, sessionID, http.MethodGet, connectionPath(id, ""), nil, &conn); err != nil {
		return nil, err
	}
	return &conn, nil
}

// SyncConnection re-pulls collection/corpus metadata. Selections are left
// untouched server-side.
func (c *Client) SyncConnection(ctx context.Context, sessionID, id string) (*types.KnowledgeConnection, error) {
	var conn types.KnowledgeConnection
	if err := c.doJSON(ctx, sessionID, http.MethodPost, connectionPath(id, "/sync"), nil, &conn); err != nil {
		return nil, err
	}
	return &conn, nil
}

// UpdateSelections replaces the selection sets wholesale and returns the
// record as the server saved it.
func (c *Client) UpdateSelections(ctx context.Context, sessionID, id string, sel types.SelectionUpdate) (*types.KnowledgeConnection, error) {
	var conn types.KnowledgeConnection
	if err := c.doJSON(ctx, sessionID, http.MethodPut, connectionPath(id, "/selections"), sel, &conn); err != nil {
		return nil, err
	}
	return &conn, nil
}

// DeleteConnection removes a connection from the session.
func (c *Client) DeleteConnection(ctx context.Context, sessionID, id string) error {
	return c.doJSON(ctx, sessionID, http.MethodDelete, connectionPath(id, ""), nil, nil)
}

// TestConnection probes connectivity without mutating anything client-side.
func (c *Client) TestConnection(ctx context.Context, sessionID, id string) (*types.TestResult, error) {
	var result types.TestResult
	if err := c.doJSON(ctx, sessionID, http.MethodPost, connectionPath(id, "/test"), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ConnectionStatus fetches the session's knowledge configuration summary.
func (c *Client) ConnectionStatus(ctx context.Context, sessionID string) (*types.ConnectionStatus, error) {
	var status types.ConnectionStatus
	if err := c.doJSON(ctx, sessionID, http.MethodGet, "/session/km/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
