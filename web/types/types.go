package types

import (
	"time"
)

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Knowledge connection statuses
const (
	ConnectionActive   = "active"
	ConnectionInactive = "inactive"
	ConnectionError    = "error"
)

// Transfer states
const (
	TransferUploading = "uploading"
	TransferComplete  = "complete"
	TransferError     = "error"
)

// AgentInfo describes a selectable backend agent.
type AgentInfo struct {
	AgentID      string         `json:"agent_id"`
	Name         string         `json:"name"`
	Type         string         `json:"type"`
	Description  string         `json:"description"`
	Capabilities []string       `json:"capabilities"`
	Status       string         `json:"status"`
	Config       map[string]any `json:"config"`
}

// ToolResult captures one tool execution reported by the backend.
type ToolResult struct {
	Tool      string `json:"tool"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// UploadedFile is the durable record the backend returns for a stored file.
type UploadedFile struct {
	FileID     string `json:"file_id"`
	Filename   string `json:"filename"`
	FileType   string `json:"file_type"`
	FileSize   int64  `json:"file_size"`
	UploadedAt string `json:"uploaded_at"`
}

// Message is a single turn in a conversation. Messages are never mutated
// after creation; the transcript is append-only for a conversation's lifetime.
type Message struct {
	ID            string         `json:"id"`
	Role          string         `json:"role"`
	Content       string         `json:"content"`
	Timestamp     time.Time      `json:"timestamp"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	ToolResults   []ToolResult   `json:"tool_results,omitempty"`
	AttachedFiles []UploadedFile `json:"attached_files,omitempty"`
}

// Collection is an index available through a knowledge connection.
type Collection struct {
	Name      string   `json:"name"`
	Files     []string `json:"files"`
	NumChunks int      `json:"num_chunks"`
}

// Corpus is a curated corpus available through a knowledge connection.
type Corpus struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	ChunkCount  int    `json:"chunk_count"`
	FileCount   int    `json:"file_count"`
	IsPublic    bool   `json:"is_public"`
}

// KnowledgeConnection is the session-scoped link to an external knowledge
// source. Credentials are submitted once at creation and never echoed back;
// the wire keeps the backend's field names ("corpuses" included).
type KnowledgeConnection struct {
	ID                      string       `json:"id"`
	Name                    string       `json:"name"`
	Username                string       `json:"username"`
	Status                  string       `json:"status"`
	Collections             []Collection `json:"collections"`
	Corpora                 []Corpus     `json:"corpuses"`
	SelectedCollectionNames []string     `json:"selected_collection_names"`
	SelectedCorpusIDs       []int        `json:"selected_corpus_ids"`
	CreatedAt               string       `json:"created_at"`
	LastSyncAt              *string      `json:"last_sync_at"`
	LastError               *string      `json:"last_error"`
}

// HasSelections reports whether the connection has anything selected to search.
func (k *KnowledgeConnection) HasSelections() bool {
	return len(k.SelectedCollectionNames) > 0 || len(k.SelectedCorpusIDs) > 0
}

// ConnectionCredentials is the one-time payload for creating a connection.
type ConnectionCredentials struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// SelectionUpdate replaces a connection's selection sets wholesale.
type SelectionUpdate struct {
	SelectedCollectionNames []string `json:"selected_collection_names"`
	SelectedCorpusIDs       []int    `json:"selected_corpus_ids"`
}

// TestResult is the outcome of a side-effect-free connectivity probe.
type TestResult struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	CollectionsCount int    `json:"collections_count"`
	CorpusesCount    int    `json:"corpuses_count"`
}

// ConnectionStatus summarizes the session's knowledge configuration.
type ConnectionStatus struct {
	SessionID                string `json:"session_id"`
	KMServerURL              string `json:"km_server_url"`
	TotalConnections         int    `json:"total_connections"`
	ActiveConnections        int    `json:"active_connections"`
	ConnectionsWithSelection int    `json:"connections_with_selections"`
	IsConfigured             bool   `json:"is_configured"`
}

// TransferProgress tracks one in-flight upload. The temp id exists so the UI
// can show progress before the backend assigns a durable file id.
type TransferProgress struct {
	TempID   string `json:"temp_id"`
	Filename string `json:"filename"`
	Progress int    `json:"progress"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
}
