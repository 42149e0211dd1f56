package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	apperrors "agent-console/errors"
	"agent-console/web/types"

	"go.uber.org/zap"
)

type uploadResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	File    types.UploadedFile `json:"file"`
}

// progressReader reports cumulative percentage as the body is consumed.
type progressReader struct {
	r          io.Reader
	total      int64
	read       int64
	onProgress func(pct int)
	lastPct    int
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 && p.total > 0 && p.onProgress != nil {
		p.read += int64(n)
		pct := int(p.read * 100 / p.total)
		if pct > 100 {
			pct = 100
		}
		if pct != p.lastPct {
			p.lastPct = pct
			p.onProgress(pct)
		}
	}
	return n, err
}

// UploadFile streams one file to the backend as multipart form data,
// reporting percentage through onProgress. Single attempt, like every other
// mutating call.
func (c *Client) UploadFile(ctx context.Context, sessionID, conversationID, filename string, r io.Reader, size int64, onProgress func(pct int)) (*types.UploadedFile, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile("file", filename)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, &progressReader{r: r, total: size, onProgress: onProgress}); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	path := fmt.Sprintf("/files/%s/upload", url.PathEscape(conversationID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL()+path, pr)
	if err != nil {
		return nil, fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(SessionHeader, sessionID)

	resp, err := c.uploadClient.Do(req)
	if err != nil {
		return nil, apperrors.Transportf("upload %s", filename)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Transportf("read upload response for %s", filename)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if detail := decodeDetail(bodyBytes); detail != "" {
			return nil, apperrors.Rejectionf("%s", detail)
		}
		return nil, apperrors.Transportf("upload %s status %s", filename, resp.Status)
	}

	var ur uploadResponse
	if err := json.Unmarshal(bodyBytes, &ur); err != nil {
		return nil, apperrors.Transportf("decode upload response for %s", filename)
	}
	if ur.File.FileID == "" {
		return nil, apperrors.Rejectionf("upload accepted but no file record returned")
	}

	c.logger.Info("File uploaded",
		zap.String("filename", filename),
		zap.String("file_id", ur.File.FileID),
		zap.String("conversation_id", conversationID),
		zap.Int64("size_bytes", size))

	return &ur.File, nil
}

// DeleteFile removes a stored file from the backend.
func (c *Client) DeleteFile(ctx context.Context, sessionID, conversationID, fileID string) error {
	path := fmt.Sprintf("/files/%s/files/%s", url.PathEscape(conversationID), url.PathEscape(fileID))
	return c.doJSON(ctx, sessionID, http.MethodDelete, path, nil, nil)
}
