package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zlovtnik/docgov/internal/models"
	"github.com/zlovtnik/docgov/pkg/auth"
)

const testSecret = "middleware-secret"

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(GetUser(r.Context())))
	})
}

func TestAuthMiddleware(t *testing.T) {
	token, err := auth.IssueToken("approver-1", nil, testSecret, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"valid token", "Bearer " + token, http.StatusOK, "approver-1"},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized, ""},
		{"bad token", "Bearer nope", http.StatusUnauthorized, ""},
	}
	h := AuthMiddleware(testSecret)(echoUser())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.body, rec.Body.String())
				return
			}
			var resp models.APIResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, errCodeUnauthorized, resp.Error.Code)
		})
	}
}

func TestLoggingMiddlewareRecordsUserAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	token, err := auth.IssueToken("author-9", nil, testSecret, time.Hour)
	require.NoError(t, err)

	h := LoggingMiddleware(logger)(AuthMiddleware(testSecret)(echoUser()))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Header().Get(headerRequestID))
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "author-9", line["user"])
	assert.Equal(t, rec.Header().Get(headerRequestID), line["request_id"])
	assert.EqualValues(t, http.StatusOK, line["status"])
}

func TestRecoveryMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	h := RecoveryMiddleware(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), errCodeInternal)
}

func TestCORSMiddleware(t *testing.T) {
	h := CORSMiddleware(DefaultCORSConfig("https://console.example"))(echoUser())

	preflight := httptest.NewRequest(http.MethodOptions, "/api/v1/documents", nil)
	preflight.Header.Set("Origin", "https://console.example")
	preflight.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, preflight)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://console.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "86400", rec.Header().Get("Access-Control-Max-Age"))

	other := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	other.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestNormalizePath(t *testing.T) {
	id := "6f1c2a4e-9b1d-4c55-8d2a-0b7e5f3c9a11"
	tests := []struct{ in, want string }{
		{"/health", "/health"},
		{"/api/v1/documents", "/api/v1/documents"},
		{"/api/v1/documents/" + id, "/api/v1/documents/{id}"},
		{"/api/v1/documents/" + id + "/levels/2/approve", "/api/v1/documents/{id}/levels/{level}/approve"},
		{"/api/v1/documents/" + id + "/versions", "/api/v1/documents/{id}/versions"},
		{"/api/v1/documents/" + id + "/versions/1.2/restore", "/api/v1/documents/{id}/versions/{version}/restore"},
		{"/favicon.ico", "other"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizePath(tt.in), tt.in)
	}
	assert.False(t, strings.Contains(normalizePath("/api/v1/documents/"+id), id))
}
