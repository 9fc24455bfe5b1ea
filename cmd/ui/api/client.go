package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// maxResponseBody is the maximum size of response body to read (10MB)
const maxResponseBody = 10 << 20

// ErrResponseTooLarge is returned when the response body exceeds maxResponseBody
var ErrResponseTooLarge = errors.New("response body too large")

// ErrInvalidBaseURL is returned when the base URL is empty or malformed
var ErrInvalidBaseURL = errors.New("invalid base URL: must be non-empty with scheme and host")

// Client is an HTTP client for the document governance API
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	mu         sync.RWMutex
	token      string
}

// NewClient creates a new API client.
// Returns an error if baseURL is empty or malformed (missing scheme/host).
func NewClient(baseURL string) (*Client, error) {
	if baseURL == "" {
		return nil, ErrInvalidBaseURL
	}

	parsed, err := url.ParseRequestURI(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, ErrInvalidBaseURL
	}

	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// SetToken sets the JWT token for authenticated requests
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) getToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Response wraps API responses
type Response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *ErrorResponse  `json:"error,omitempty"`
}

// ErrorResponse represents an API error
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIError is returned for non-2xx responses
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("HTTP %d: %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
}

func marshalBody(body any) (io.Reader, error) {
	if body == nil {
		return nil, nil
	}
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return bytes.NewReader(jsonBody), nil
}

func readResponseBody(body io.Reader) ([]byte, error) {
	respBody, err := io.ReadAll(io.LimitReader(body, maxResponseBody+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(respBody) > maxResponseBody {
		return nil, ErrResponseTooLarge
	}
	return respBody, nil
}

func parseErrorResponse(statusCode int, body []byte) error {
	var errResp Response
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != nil {
		return &APIError{Status: statusCode, Code: errResp.Error.Code, Message: errResp.Error.Message}
	}
	// Fall back to truncated body (rune-safe to avoid splitting UTF-8 characters)
	runes := []rune(string(body))
	if len(runes) > 200 {
		runes = append(runes[:200], []rune("...")...)
	}
	return &APIError{Status: statusCode, Message: string(runes)}
}

// do performs a request and decodes the envelope's data into out (if non-nil)
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	reqBody, err := marshalBody(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.getToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := readResponseBody(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseErrorResponse(resp.StatusCode, respBody)
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}

	var apiResp Response
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return fmt.Errorf("failed to parse response (HTTP %d): %w", resp.StatusCode, err)
	}
	if err := json.Unmarshal(apiResp.Data, out); err != nil {
		return fmt.Errorf("failed to parse response data: %w", err)
	}
	return nil
}

func documentPath(id string, parts ...string) string {
	p := "/api/v1/documents/" + url.PathEscape(id)
	for _, part := range parts {
		p += "/" + url.PathEscape(part)
	}
	return p
}

// ListDocuments lists one page of a level's pending, approved or rejected bucket
func (c *Client) ListDocuments(ctx context.Context, level int, bucket string, page int) (*DocumentPage, error) {
	q := url.Values{}
	q.Set("level", fmt.Sprint(level))
	q.Set("bucket", bucket)
	if page > 0 {
		q.Set("page", fmt.Sprint(page))
	}
	var out DocumentPage
	if err := c.do(ctx, http.MethodGet, "/api/v1/documents?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListExpiring lists in-force documents inside the near-expiry window
func (c *Client) ListExpiring(ctx context.Context) (*DocumentPage, error) {
	var out DocumentPage
	if err := c.do(ctx, http.MethodGet, "/api/v1/documents/expiring", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetDocument fetches a document with its levels and versions
func (c *Client) GetDocument(ctx context.Context, id string) (*Document, error) {
	var out Document
	if err := c.do(ctx, http.MethodGet, documentPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Approve approves level of a document
func (c *Client) Approve(ctx context.Context, id string, level int) (*Document, error) {
	return c.action(ctx, documentPath(id, "levels", fmt.Sprint(level), "approve"), nil)
}

// Reject rejects level of a document with a mandatory reason
func (c *Client) Reject(ctx context.Context, id string, level int, req RejectRequest) (*Document, error) {
	return c.action(ctx, documentPath(id, "levels", fmt.Sprint(level), "reject"), req)
}

// Resubmit restarts the approval chain of a rejected or expired document
func (c *Client) Resubmit(ctx context.Context, id string, req VersionRequest) (*Document, error) {
	return c.action(ctx, documentPath(id, "resubmit"), req)
}

// Archive retires a document
func (c *Client) Archive(ctx context.Context, id string, req ArchiveRequest) (*Document, error) {
	return c.action(ctx, documentPath(id, "archive"), req)
}

func (c *Client) action(ctx context.Context, path string, body any) (*Document, error) {
	var out Document
	if err := c.do(ctx, http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
