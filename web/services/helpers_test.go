package services

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"agent-console/backend"
	"agent-console/config"
	"agent-console/web/types"

	"go.uber.org/zap"
)

// testEnv wires a console state against a fake backend handler.
type testEnv struct {
	server *httptest.Server
	cfg    *config.Config
	client *backend.Client
	prefs  *Preferences
	state  *ConsoleState
}

func newTestEnv(t *testing.T, handler http.Handler) *testEnv {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger, _ := zap.NewDevelopment()
	cfg := &config.Config{
		BackendBaseURL:           server.URL,
		RequestTimeout:           5 * time.Second,
		UploadTimeout:            5 * time.Second,
		MaxFileSizeMB:            256,
		SessionCacheSize:         8,
		TransferRetentionSeconds: 50 * time.Millisecond,
	}
	client := backend.New(cfg, logger)
	prefs := NewPreferences(filepath.Join(t.TempDir(), "preferences.json"), false, logger)

	connections := NewConnectionService("session_test", client, logger)
	activation := NewActivationService(prefs, connections, logger)
	state := &ConsoleState{
		SessionID:    "session_test",
		Connections:  connections,
		Activation:   activation,
		Conversation: NewConversationService("session_test", client, activation, false, logger),
		Transfers:    NewTransferService("session_test", client, cfg, logger),
	}

	return &testEnv{
		server: server,
		cfg:    cfg,
		client: client,
		prefs:  prefs,
		state:  state,
	}
}

func credsOf(name string) types.ConnectionCredentials {
	return types.ConnectionCredentials{
		Name:     name,
		Username: "tester",
		Password: "secret",
	}
}

func selectionOf(names []string, ids []int) types.SelectionUpdate {
	return types.SelectionUpdate{
		SelectedCollectionNames: names,
		SelectedCorpusIDs:       ids,
	}
}

// connectionJSON builds a minimal wire-shaped connection record.
func connectionJSON(id, name string, selectedNames []string, selectedIDs []int) map[string]any {
	names := selectedNames
	if names == nil {
		names = []string{}
	}
	ids := selectedIDs
	if ids == nil {
		ids = []int{}
	}
	return map[string]any{
		"id":                        id,
		"name":                      name,
		"username":                  "tester",
		"status":                    "active",
		"collections":               []any{},
		"corpuses":                  []any{},
		"selected_collection_names": names,
		"selected_corpus_ids":       ids,
		"created_at":                "2026-01-01T00:00:00Z",
		"last_sync_at":              nil,
		"last_error":                nil,
	}
}
