package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"agent-console/backend"
	"agent-console/config"
	apperrors "agent-console/errors"
	"agent-console/utils"
	"agent-console/web/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// allowedExtensions mirrors what the backend will accept, so invalid files
// are rejected before any bytes leave the machine.
var allowedExtensions = map[string]bool{
	".txt": true, ".md": true, ".pdf": true, ".doc": true, ".docx": true,
	".py": true, ".js": true, ".ts": true, ".tsx": true, ".jsx": true,
	".java": true, ".cpp": true, ".c": true, ".go": true, ".rs": true,
	".rb": true, ".php": true, ".swift": true, ".kt": true, ".cs": true,
	".html": true, ".css": true, ".scss": true, ".sql": true, ".sh": true,
	".csv": true, ".json": true, ".xml": true, ".yaml": true, ".yml": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true,
	".svg": true,
}

// TransferService tracks in-flight uploads for one session. Transfers are
// independent of each other and of message timing; only transfers that have
// reached the complete state contribute attachments to a send.
type TransferService struct {
	sessionID string
	client    *backend.Client
	cfg       *config.Config
	logger    *zap.Logger

	mu        sync.Mutex
	inflight  map[string]*types.TransferProgress
	completed []types.UploadedFile
}

func NewTransferService(sessionID string, client *backend.Client, cfg *config.Config, logger *zap.Logger) *TransferService {
	return &TransferService{
		sessionID: sessionID,
		client:    client,
		cfg:       cfg,
		logger:    logger,
		inflight:  make(map[string]*types.TransferProgress),
	}
}

// ValidateFile checks size and extension locally. Invalid files never enter
// the in-flight map and never reach the network.
func (ts *TransferService) ValidateFile(filename string, size int64) error {
	if strings.TrimSpace(filename) == "" {
		return apperrors.Validationf("filename is empty")
	}
	if size > ts.cfg.MaxFileSizeBytes() {
		return apperrors.Validationf("file size (%.1fMB) exceeds maximum (%dMB)",
			float64(size)/1024/1024, ts.cfg.MaxFileSizeMB)
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return apperrors.Validationf("file type %q is not supported", ext)
	}
	return nil
}

// Upload validates locally, then streams the file to the backend for the
// given conversation, reporting percentage as it goes. On success the
// transfer is replaced by the durable record the backend returned; terminal
// rows linger briefly so the UI can show the outcome, then fall away.
func (ts *TransferService) Upload(ctx context.Context, conversationID, filename string, r io.Reader, size int64) (*types.UploadedFile, error) {
	filename = utils.SanitizeFilename(filename)
	if err := ts.ValidateFile(filename, size); err != nil {
		return nil, err
	}

	tempID := "transfer_" + uuid.NewString()
	progress := &types.TransferProgress{
		TempID:   tempID,
		Filename: filename,
		Status:   types.TransferUploading,
	}

	ts.mu.Lock()
	ts.inflight[tempID] = progress
	ts.mu.Unlock()

	record, err := ts.client.UploadFile(ctx, ts.sessionID, conversationID, filename, r, size, func(pct int) {
		ts.mu.Lock()
		if p, ok := ts.inflight[tempID]; ok {
			p.Progress = pct
		}
		ts.mu.Unlock()
	})

	ts.mu.Lock()
	if err != nil {
		if p, ok := ts.inflight[tempID]; ok {
			p.Status = types.TransferError
			p.Error = fmt.Sprintf("upload failed: %v", err)
		}
	} else {
		if p, ok := ts.inflight[tempID]; ok {
			p.Status = types.TransferComplete
			p.Progress = 100
		}
		ts.completed = append(ts.completed, *record)
	}
	ts.mu.Unlock()

	ts.scheduleRemoval(tempID)

	if err != nil {
		ts.logger.Warn("Upload failed",
			zap.String("session_id", ts.sessionID),
			zap.String("filename", filename),
			zap.Error(err))
		return nil, err
	}
	return record, nil
}

// scheduleRemoval drops a terminal transfer row after the retention window.
// Purely a UX affordance so completion/failure stays visible for a moment.
func (ts *TransferService) scheduleRemoval(tempID string) {
	retention := ts.cfg.TransferRetentionSeconds
	if retention <= 0 {
		retention = time.Second
	}
	time.AfterFunc(retention, func() {
		ts.mu.Lock()
		delete(ts.inflight, tempID)
		ts.mu.Unlock()
	})
}

// Snapshot returns the current transfer rows, ordered by temp id for stable
// output.
func (ts *TransferService) Snapshot() []types.TransferProgress {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	rows := make([]types.TransferProgress, 0, len(ts.inflight))
	for _, p := range ts.inflight {
		rows = append(rows, *p)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].TempID < rows[j].TempID })
	return rows
}

// CompletedAttachments returns the durable records ready to attach to the
// next send, in upload order.
func (ts *TransferService) CompletedAttachments() []types.UploadedFile {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	copied := make([]types.UploadedFile, len(ts.completed))
	copy(copied, ts.completed)
	return copied
}

// ConsumeAttachments returns the completed records and clears them, for a
// send that bundles everything uploaded so far.
func (ts *TransferService) ConsumeAttachments() []types.UploadedFile {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	attachments := ts.completed
	ts.completed = nil
	return attachments
}

// RemoveAttachment drops a completed record and best-effort deletes the
// backend copy. Failure to delete remotely is logged, not surfaced.
func (ts *TransferService) RemoveAttachment(ctx context.Context, conversationID, fileID string) {
	ts.mu.Lock()
	kept := ts.completed[:0]
	for _, f := range ts.completed {
		if f.FileID != fileID {
			kept = append(kept, f)
		}
	}
	ts.completed = kept
	ts.mu.Unlock()

	if err := ts.client.DeleteFile(ctx, ts.sessionID, conversationID, fileID); err != nil {
		ts.logger.Warn("Best-effort file delete failed",
			zap.String("file_id", fileID),
			zap.Error(err))
	}
}
