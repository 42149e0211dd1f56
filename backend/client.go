package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"agent-console/config"
	apperrors "agent-console/errors"

	"go.uber.org/zap"
)

// SessionHeader carries the tab-scoped session token on every request.
const SessionHeader = "X-Session-ID"

// Client talks to the agent backend. Every call is a single attempt; the
// user retries manually on failure, so there is no backoff loop here.
type Client struct {
	cfg          *config.Config
	httpClient   *http.Client
	uploadClient *http.Client
	logger       *zap.Logger
}

func New(cfg *config.Config, logger *zap.Logger) *Client {
	// Uploads get a longer timeout than JSON calls; both rely on context
	// cancellation for anything earlier.
	return &Client{
		cfg:          cfg,
		httpClient:   &http.Client{Timeout: cfg.RequestTimeout},
		uploadClient: &http.Client{Timeout: cfg.UploadTimeout},
		logger:       logger,
	}
}

// BaseURL returns the configured backend base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return strings.TrimRight(c.cfg.BackendBaseURL, "/")
}

// doJSON performs one JSON request/response exchange. Non-2xx responses with
// a decodable error payload become server rejections; anything that never
// produced a usable response is a transport failure.
func (c *Client) doJSON(ctx context.Context, sessionID, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s %s request: %w", method, path, err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	url := c.BaseURL() + path
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("create %s %s request: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if sessionID != "" {
		req.Header.Set(SessionHeader, sessionID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Transportf("%s %s", method, path)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.Transportf("read %s %s response", method, path)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if detail := decodeDetail(bodyBytes); detail != "" {
			if resp.StatusCode == http.StatusNotFound {
				return apperrors.WrapError(apperrors.ErrNotFound, detail)
			}
			return apperrors.Rejectionf("%s", detail)
		}
		return apperrors.Transportf("%s %s status %s", method, path, resp.Status)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return apperrors.Transportf("decode %s %s response", method, path)
	}
	return nil
}

// decodeDetail pulls the backend's error message out of an error payload.
func decodeDetail(body []byte) string {
	var payload struct {
		Detail  string `json:"detail"`
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Detail != "" {
		return payload.Detail
	}
	if payload.Error != "" {
		return payload.Error
	}
	return payload.Message
}
