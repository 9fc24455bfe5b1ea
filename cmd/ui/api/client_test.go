package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientValidatesURL(t *testing.T) {
	_, err := NewClient("")
	assert.ErrorIs(t, err, ErrInvalidBaseURL)
	_, err = NewClient("localhost:8080")
	assert.ErrorIs(t, err, ErrInvalidBaseURL)

	c, err := NewClient("http://localhost:8080//")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", c.BaseURL)
}

func TestListDocumentsAndReject(t *testing.T) {
	var gotAuth, gotQuery string
	var gotReject RejectRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/documents":
			gotQuery = r.URL.RawQuery
			_, _ = w.Write([]byte(`{"success":true,"data":{"data":[{"id":"d1","status":"PENDING_LEVEL_2"}],"total_count":1}}`))
		case r.URL.Path == "/api/v1/documents/d1/levels/2/reject":
			_ = json.NewDecoder(r.Body).Decode(&gotReject)
			_, _ = w.Write([]byte(`{"success":true,"data":{"id":"d1","status":"REJECTED_LEVEL_2"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"success":false,"error":{"code":"DOCUMENT_NOT_FOUND","message":"document d9 not found"}}`))
		}
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)
	c.SetToken("tok")
	ctx := context.Background()

	page, err := c.ListDocuments(ctx, 2, "pending", 0)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "bucket=pending&level=2", gotQuery)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "PENDING_LEVEL_2", page.Data[0].Status)

	doc, err := c.Reject(ctx, "d1", 2, RejectRequest{Reason: "wrong owner"})
	require.NoError(t, err)
	assert.Equal(t, "REJECTED_LEVEL_2", doc.Status)
	assert.Equal(t, "wrong owner", gotReject.Reason)

	_, err = c.GetDocument(ctx, "d9")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "DOCUMENT_NOT_FOUND", apiErr.Code)
}

func TestPendingLevel(t *testing.T) {
	doc := Document{Levels: []Level{{Level: 1, State: "APPROVED"}, {Level: 2, State: "PENDING"}}}
	assert.Equal(t, 2, doc.PendingLevel())
	assert.Equal(t, 0, (&Document{}).PendingLevel())
}
