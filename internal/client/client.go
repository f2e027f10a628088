// Package client talks to a running vimlantis server on behalf of a viewer.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kilupskalvis/vimlantis/internal/models"
)

// HTTPClient is a viewer-side client for the vimlantis HTTP API.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the server at baseURL (e.g. "http://localhost:3000").
func New(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

// SetTimeout bounds every HTTP request made by the client, including opens
// dispatched from a session. Zero means no limit.
func (c *HTTPClient) SetTimeout(d time.Duration) {
	c.httpClient.Timeout = d
}

// BaseURL returns the server address the client was created with.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

func (c *HTTPClient) url(path string) string {
	return c.baseURL + path
}

func (c *HTTPClient) do(ctx context.Context, method, url string, body io.Reader, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	return resp, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, url string, reqBody, respBody interface{}) error {
	var body io.Reader
	headers := map[string]string{"Accept": "application/json"}

	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
		headers["Content-Type"] = "application/json"
	}

	resp, err := c.do(ctx, method, url, body, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if respBody != nil {
		if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// FetchTree downloads the file tree. On failure it returns an empty tree
// together with the error, so a viewer can still start with an empty ocean.
func (c *HTTPClient) FetchTree(ctx context.Context) ([]models.TreeNode, error) {
	var nodes []models.TreeNode
	if err := c.doJSON(ctx, http.MethodGet, c.url("/api/filetree"), nil, &nodes); err != nil {
		return []models.TreeNode{}, fmt.Errorf("fetch file tree: %w", err)
	}
	if nodes == nil {
		nodes = []models.TreeNode{}
	}
	return nodes, nil
}

// Open asks the server to open node in its editor.
func (c *HTTPClient) Open(ctx context.Context, node models.TreeNode) (*models.OpenResponse, error) {
	req := &models.OpenRequest{Path: node.Path, Type: node.Kind.String()}
	var resp models.OpenResponse
	if err := c.doJSON(ctx, http.MethodPost, c.url("/api/open"), req, &resp); err != nil {
		return nil, fmt.Errorf("open %s: %w", node.Path, err)
	}
	return &resp, nil
}

// ReadFile returns the content of a file below the served root.
func (c *HTTPClient) ReadFile(ctx context.Context, path string) (*models.FileContent, error) {
	var resp models.FileContent
	u := c.url("/api/file?path=" + url.QueryEscape(path))
	if err := c.doJSON(ctx, http.MethodGet, u, nil, &resp); err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}
	return &resp, nil
}

// History returns the most recently opened files, newest first.
func (c *HTTPClient) History(ctx context.Context) ([]models.HistoryEntry, error) {
	var entries []models.HistoryEntry
	if err := c.doJSON(ctx, http.MethodGet, c.url("/api/history"), nil, &entries); err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	return entries, nil
}

// RemoteError represents a structured error from the server.
type RemoteError struct {
	Code    string
	Message string
	Status  int
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error (%d): %s: %s", e.Status, e.Code, e.Message)
}

func decodeError(resp *http.Response) error {
	var errResp models.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		return &RemoteError{
			Code:    "unknown",
			Message: fmt.Sprintf("HTTP %d", resp.StatusCode),
			Status:  resp.StatusCode,
		}
	}

	return &RemoteError{
		Code:    errResp.Error,
		Message: errResp.Message,
		Status:  resp.StatusCode,
	}
}
