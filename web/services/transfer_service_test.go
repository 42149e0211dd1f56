package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	apperrors "agent-console/errors"
	"agent-console/web/types"
)

// fileBackend fakes the upload/delete endpoints and counts how many requests
// ever reached it.
type fileBackend struct {
	mux  *http.ServeMux
	hits atomic.Int64
}

func newFileBackend() *fileBackend {
	b := &fileBackend{mux: http.NewServeMux()}
	b.mux.HandleFunc("POST /files/{conv}/upload", func(w http.ResponseWriter, r *http.Request) {
		b.hits.Add(1)
		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, `{"detail":"bad form"}`, http.StatusBadRequest)
			return
		}
		defer file.Close()
		size, _ := io.Copy(io.Discard, file)
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"message": "stored",
			"file": map[string]any{
				"file_id":     "file-" + header.Filename,
				"filename":    header.Filename,
				"file_type":   "text",
				"file_size":   size,
				"uploaded_at": "2026-01-01T00:00:00Z",
			},
		})
	})
	b.mux.HandleFunc("DELETE /files/{conv}/files/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.hits.Add(1)
		json.NewEncoder(w).Encode(map[string]any{"message": "deleted"})
	})
	return b
}

func TestOversizeRejectedBeforeNetwork(t *testing.T) {
	backend := newFileBackend()
	env := newTestEnv(t, backend.mux)
	transfers := env.state.Transfers

	tooBig := env.cfg.MaxFileSizeBytes() + 1
	_, err := transfers.Upload(context.Background(), "conv_1", "huge.txt", strings.NewReader("x"), tooBig)
	if !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if backend.hits.Load() != 0 {
		t.Fatal("oversize file must never reach the network")
	}
	if rows := transfers.Snapshot(); len(rows) != 0 {
		t.Fatalf("invalid file must not enter the transfer map, got %v", rows)
	}
}

func TestUnsupportedExtensionRejected(t *testing.T) {
	backend := newFileBackend()
	env := newTestEnv(t, backend.mux)
	transfers := env.state.Transfers

	_, err := transfers.Upload(context.Background(), "conv_1", "malware.exe", strings.NewReader("x"), 1)
	if !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if backend.hits.Load() != 0 {
		t.Fatal("unsupported file must never reach the network")
	}
}

func TestUploadCompletesAndRowExpires(t *testing.T) {
	backend := newFileBackend()
	env := newTestEnv(t, backend.mux)
	transfers := env.state.Transfers

	content := strings.Repeat("data ", 200)
	record, err := transfers.Upload(context.Background(), "conv_1", "notes.txt", strings.NewReader(content), int64(len(content)))
	if err != nil {
		t.Fatalf("Upload err: %v", err)
	}
	if record.FileID != "file-notes.txt" {
		t.Fatalf("unexpected record: %+v", record)
	}

	rows := transfers.Snapshot()
	if len(rows) != 1 {
		t.Fatalf("expected 1 transfer row, got %d", len(rows))
	}
	if rows[0].Status != types.TransferComplete || rows[0].Progress != 100 {
		t.Fatalf("expected complete row at 100%%, got %+v", rows[0])
	}

	attachments := transfers.CompletedAttachments()
	if len(attachments) != 1 || attachments[0].FileID != record.FileID {
		t.Fatalf("unexpected attachments: %+v", attachments)
	}

	// Terminal rows fall away after the retention window (50ms in tests).
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(transfers.Snapshot()) == 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if rows := transfers.Snapshot(); len(rows) != 0 {
		t.Fatalf("terminal row should expire, still have %v", rows)
	}

	// Expiry only affects the progress row, not the completed attachment.
	if got := transfers.CompletedAttachments(); len(got) != 1 {
		t.Fatalf("attachment lost with the progress row: %v", got)
	}
}

func TestFailedUploadMarksRowError(t *testing.T) {
	failing := http.NewServeMux()
	failing.HandleFunc("POST /files/{conv}/upload", func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		http.Error(w, `{"detail":"disk full"}`, http.StatusInsufficientStorage)
	})
	env := newTestEnv(t, failing)
	transfers := env.state.Transfers

	_, err := transfers.Upload(context.Background(), "conv_1", "notes.txt", strings.NewReader("hello"), 5)
	if !apperrors.IsServerRejection(err) {
		t.Fatalf("expected server rejection, got %v", err)
	}

	rows := transfers.Snapshot()
	if len(rows) != 1 || rows[0].Status != types.TransferError {
		t.Fatalf("expected error row, got %+v", rows)
	}
	if got := transfers.CompletedAttachments(); len(got) != 0 {
		t.Fatalf("failed upload must not produce an attachment: %v", got)
	}
}

func TestConcurrentUploadsIndependent(t *testing.T) {
	backend := newFileBackend()
	env := newTestEnv(t, backend.mux)
	transfers := env.state.Transfers

	const n = 4
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("doc%d.md", i)
		go func() {
			content := strings.Repeat("x", 64)
			_, err := transfers.Upload(context.Background(), "conv_1", name, strings.NewReader(content), 64)
			errs <- err
		}()
	}
	for i := 0; i < n; i++ {
		if err := <-errs; err != nil {
			t.Fatalf("concurrent upload failed: %v", err)
		}
	}

	if got := transfers.CompletedAttachments(); len(got) != n {
		t.Fatalf("expected %d attachments, got %d", n, len(got))
	}
}

func TestConsumeAttachmentsClears(t *testing.T) {
	backend := newFileBackend()
	env := newTestEnv(t, backend.mux)
	transfers := env.state.Transfers

	if _, err := transfers.Upload(context.Background(), "conv_1", "a.txt", strings.NewReader("aa"), 2); err != nil {
		t.Fatalf("Upload err: %v", err)
	}

	consumed := transfers.ConsumeAttachments()
	if len(consumed) != 1 {
		t.Fatalf("expected 1 attachment, got %d", len(consumed))
	}
	if got := transfers.CompletedAttachments(); len(got) != 0 {
		t.Fatalf("consume must clear pending attachments, got %v", got)
	}
}

func TestRemoveAttachmentDropsLocalCopy(t *testing.T) {
	backend := newFileBackend()
	env := newTestEnv(t, backend.mux)
	transfers := env.state.Transfers

	record, err := transfers.Upload(context.Background(), "conv_1", "a.txt", strings.NewReader("aa"), 2)
	if err != nil {
		t.Fatalf("Upload err: %v", err)
	}

	transfers.RemoveAttachment(context.Background(), "conv_1", record.FileID)
	if got := transfers.CompletedAttachments(); len(got) != 0 {
		t.Fatalf("attachment should be gone, got %v", got)
	}
}
