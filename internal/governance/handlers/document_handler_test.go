package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zlovtnik/docgov/internal/governance/domain"
	"github.com/zlovtnik/docgov/internal/governance/repository"
	"github.com/zlovtnik/docgov/internal/governance/service"
	"github.com/zlovtnik/docgov/internal/middleware"
	"github.com/zlovtnik/docgov/pkg/auth"
)

var now = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type testServer struct {
	mux   *http.ServeMux
	audit *repository.MemoryAuditRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.NewDocumentService(repository.NewMemoryStore(), service.Options{
		NearExpiryDays: 30,
		Clock:          service.ClockFunc(func() time.Time { return now }),
		Logger:         logger,
	})
	audit := repository.NewMemoryAuditRepository()
	docs := NewDocumentHandler(svc, logger)
	audits := NewAuditHandler(audit, svc, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/documents", docs.Submit)
	mux.HandleFunc("GET /api/v1/documents", docs.List)
	mux.HandleFunc("GET /api/v1/documents/expiring", docs.ListExpiring)
	mux.HandleFunc("GET /api/v1/documents/{id}", docs.Get)
	mux.HandleFunc("GET /api/v1/documents/{id}/expiry", docs.Expiry)
	mux.HandleFunc("POST /api/v1/documents/{id}/levels/{level}/approve", docs.Approve)
	mux.HandleFunc("POST /api/v1/documents/{id}/levels/{level}/reject", docs.Reject)
	mux.HandleFunc("GET /api/v1/documents/{id}/versions", docs.ListVersions)
	mux.HandleFunc("POST /api/v1/documents/{id}/versions", docs.CreateVersion)
	mux.HandleFunc("POST /api/v1/documents/{id}/versions/{version}/restore", docs.RestoreVersion)
	mux.HandleFunc("POST /api/v1/documents/{id}/resubmit", docs.Resubmit)
	mux.HandleFunc("POST /api/v1/documents/{id}/extend", docs.Extend)
	mux.HandleFunc("POST /api/v1/documents/{id}/renew", docs.Renew)
	mux.HandleFunc("POST /api/v1/documents/{id}/archive", docs.Archive)
	mux.HandleFunc("GET /api/v1/documents/{id}/audit", audits.ListByDocument)
	return &testServer{mux: mux, audit: audit}
}

func (s *testServer) do(t *testing.T, user, method, path string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if user != "" {
		req = req.WithContext(middleware.WithClaims(req.Context(), &auth.Claims{User: user}))
	}
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func (s *testServer) submit(t *testing.T, classification string, expiry *time.Time) DocumentResponse {
	t.Helper()
	code, env := s.do(t, "author-1", http.MethodPost, "/api/v1/documents", SubmitDocumentRequest{
		Title:          "Forklift safety",
		ContentRef:     "blob://forklift-v1.pdf",
		Classification: classification,
		ExpiryDate:     expiry,
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	return decodeData[DocumentResponse](t, env)
}

func TestSubmitAndApproveCompanyDocument(t *testing.T) {
	s := newTestServer(t)
	doc := s.submit(t, "COMPANY_DOCUMENT", nil)

	assert.Equal(t, "PENDING_LEVEL_1", doc.Status)
	assert.Equal(t, "1.0", doc.CurrentVersion)
	assert.Equal(t, 2, doc.ApprovalLevels)
	require.Len(t, doc.Levels, 2)
	assert.Equal(t, levelPending, doc.Levels[0].State)
	assert.Equal(t, levelWaiting, doc.Levels[1].State)

	base := "/api/v1/documents/" + doc.ID
	code, env := s.do(t, "lead", http.MethodPost, base+"/levels/1/approve", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "PENDING_LEVEL_2", decodeData[DocumentResponse](t, env).Status)

	code, env = s.do(t, "director", http.MethodPost, base+"/levels/2/approve", nil)
	require.Equal(t, http.StatusOK, code)
	active := decodeData[DocumentResponse](t, env)
	assert.Equal(t, "ACTIVE", active.Status)
	assert.Equal(t, "director", active.Levels[1].ApprovedBy)
	assert.Equal(t, domain.ExpiryInForce, active.Expiry.Kind)
}

func TestApproveErrors(t *testing.T) {
	s := newTestServer(t)
	doc := s.submit(t, "COMPANY_DOCUMENT", nil)
	base := "/api/v1/documents/" + doc.ID

	tests := []struct {
		name   string
		user   string
		path   string
		status int
		code   string
	}{
		{"skipping a level", "lead", base + "/levels/2/approve", http.StatusConflict, "INVALID_TRANSITION"},
		{"level outside the chain", "lead", base + "/levels/3/approve", http.StatusUnprocessableEntity, "CLASSIFICATION_MISMATCH"},
		{"level out of range", "lead", base + "/levels/9/approve", http.StatusBadRequest, "INVALID_INPUT"},
		{"non-numeric level", "lead", base + "/levels/one/approve", http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown document", "lead", "/api/v1/documents/" + domain.NewDocumentID().String() + "/levels/1/approve", http.StatusNotFound, "DOCUMENT_NOT_FOUND"},
		{"malformed id", "lead", "/api/v1/documents/nope/levels/1/approve", http.StatusBadRequest, ErrCodeInvalidID},
		{"anonymous", "", base + "/levels/1/approve", http.StatusUnauthorized, ErrCodeUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := s.do(t, tt.user, http.MethodPost, tt.path, nil)
			assert.Equal(t, tt.status, code)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func TestSubmitValidation(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, "author-1", http.MethodPost, "/api/v1/documents", SubmitDocumentRequest{Classification: "COMPANY_DOCUMENT"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, ErrCodeValidation, env.Error.Code)
	assert.Contains(t, env.Error.Message, "content_ref")

	code, env = s.do(t, "author-1", http.MethodPost, "/api/v1/documents", SubmitDocumentRequest{
		ContentRef: "blob://x", Classification: "POLICY",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_INPUT", env.Error.Code)

	past := now.Add(-time.Hour)
	code, env = s.do(t, "author-1", http.MethodPost, "/api/v1/documents", SubmitDocumentRequest{
		ContentRef: "blob://x", Classification: "COMPANY_DOCUMENT", ExpiryDate: &past,
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_EXPIRY_DATE", env.Error.Code)

	code, env = s.do(t, "author-1", http.MethodPost, "/api/v1/documents", map[string]any{"unexpected": true})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, ErrCodeInvalidJSON, env.Error.Code)
}

func TestRejectAndResubmit(t *testing.T) {
	s := newTestServer(t)
	doc := s.submit(t, "TRAINING_DOCUMENT", nil)
	base := "/api/v1/documents/" + doc.ID

	code, env := s.do(t, "lead", http.MethodPost, base+"/levels/1/reject", RejectRequest{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "EMPTY_REASON", env.Error.Code)

	code, env = s.do(t, "lead", http.MethodPost, base+"/levels/1/reject", RejectRequest{
		Reason: "missing hazard table", Attachments: []string{"blob://markup.pdf"},
	})
	require.Equal(t, http.StatusOK, code)
	rejected := decodeData[DocumentResponse](t, env)
	assert.Equal(t, "REJECTED_LEVEL_1", rejected.Status)
	assert.Equal(t, levelRejected, rejected.Levels[0].State)
	assert.Equal(t, []string{"blob://markup.pdf"}, rejected.Levels[0].RejectAttachments)

	code, env = s.do(t, "author-1", http.MethodPost, base+"/resubmit", VersionRequest{
		ChangeLog: "added hazard table", ContentRef: "blob://forklift-v2.pdf",
	})
	require.Equal(t, http.StatusOK, code)
	resubmitted := decodeData[DocumentResponse](t, env)
	assert.Equal(t, "PENDING_LEVEL_1", resubmitted.Status)
	assert.Equal(t, "1.1", resubmitted.CurrentVersion)
	assert.Empty(t, resubmitted.Levels[0].RejectReason)
	assert.Len(t, resubmitted.Versions, 2)
}

func TestVersionsAndRestore(t *testing.T) {
	s := newTestServer(t)
	doc := s.submit(t, "COMPANY_DOCUMENT", nil)
	base := "/api/v1/documents/" + doc.ID

	code, env := s.do(t, "author-1", http.MethodPost, base+"/versions", VersionRequest{
		ChangeLog: "rewrite", ContentRef: "blob://forklift-v2.pdf", Version: "2.0",
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	assert.Equal(t, "2.0", decodeData[DocumentResponse](t, env).CurrentVersion)

	code, env = s.do(t, "author-1", http.MethodPost, base+"/versions/1.0/restore", nil)
	require.Equal(t, http.StatusOK, code)
	restored := decodeData[DocumentResponse](t, env)
	assert.Equal(t, "2.1", restored.CurrentVersion)
	assert.Equal(t, "1.0", restored.Versions[0].RestoredFrom)
	assert.Equal(t, "blob://forklift-v1.pdf", restored.Versions[0].ContentRef)

	code, env = s.do(t, "author-1", http.MethodPost, base+"/versions/7.0/restore", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "VERSION_NOT_FOUND", env.Error.Code)

	code, env = s.do(t, "", http.MethodGet, base+"/versions", nil)
	require.Equal(t, http.StatusOK, code)
	versions := decodeData[[]VersionResponse](t, env)
	require.Len(t, versions, 3)
	assert.Equal(t, "2.1", versions[0].Version)
	assert.Equal(t, "1.0", versions[2].Version)
}

func TestExtendAndExpiry(t *testing.T) {
	s := newTestServer(t)
	expiry := now.Add(10 * 24 * time.Hour)
	doc := s.submit(t, "COMPANY_DOCUMENT", &expiry)
	base := "/api/v1/documents/" + doc.ID

	code, env := s.do(t, "author-1", http.MethodPost, base+"/extend", ExtendRequest{
		NewExpiryDate: now.Add(90 * 24 * time.Hour), Reason: "audit moved",
	})
	assert.Equal(t, http.StatusConflict, code, "pending documents cannot be extended")
	assert.Equal(t, "INVALID_TRANSITION", env.Error.Code)

	s.do(t, "lead", http.MethodPost, base+"/levels/1/approve", nil)
	s.do(t, "director", http.MethodPost, base+"/levels/2/approve", nil)

	code, env = s.do(t, "", http.MethodGet, base+"/expiry", nil)
	require.Equal(t, http.StatusOK, code)
	state := decodeData[domain.ExpiryState](t, env)
	assert.Equal(t, domain.ExpiryNearExpiry, state.Kind)
	assert.Equal(t, 10, state.DaysLeft)

	code, env = s.do(t, "", http.MethodGet, "/api/v1/documents/expiring", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), doc.ID)

	code, env = s.do(t, "author-1", http.MethodPost, base+"/extend", ExtendRequest{
		NewExpiryDate: now.Add(90 * 24 * time.Hour), Reason: "audit moved",
	})
	require.Equal(t, http.StatusOK, code)
	extended := decodeData[DocumentResponse](t, env)
	assert.Equal(t, "ACTIVE", extended.Status)
	require.Len(t, extended.ExtensionHistory, 1)
	assert.Equal(t, levelApproved, extended.Levels[1].State)

	code, env = s.do(t, "author-1", http.MethodPost, base+"/renew", RenewRequest{
		NewExpiryDate: now.Add(200 * 24 * time.Hour), Reason: "annual",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_EXPIRY_DATE", env.Error.Code)
}

func TestListByBucket(t *testing.T) {
	s := newTestServer(t)
	pending := s.submit(t, "COMPANY_DOCUMENT", nil)
	approved := s.submit(t, "COMPANY_DOCUMENT", nil)
	s.do(t, "lead", http.MethodPost, "/api/v1/documents/"+approved.ID+"/levels/1/approve", nil)

	code, env := s.do(t, "", http.MethodGet, "/api/v1/documents?level=1&bucket=pending", nil)
	require.Equal(t, http.StatusOK, code)
	var page struct {
		Data       []DocumentSummary `json:"data"`
		TotalCount int               `json:"total_count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Len(t, page.Data, 1)
	assert.Equal(t, pending.ID, page.Data[0].ID)

	code, env = s.do(t, "", http.MethodGet, "/api/v1/documents?level=1&bucket=approved", nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Len(t, page.Data, 1)
	assert.Equal(t, approved.ID, page.Data[0].ID)

	code, env = s.do(t, "", http.MethodGet, "/api/v1/documents?level=1&bucket=limbo", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_INPUT", env.Error.Code)

	code, _ = s.do(t, "", http.MethodGet, "/api/v1/documents?bucket=pending", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestArchiveAndAudit(t *testing.T) {
	s := newTestServer(t)
	doc := s.submit(t, "COMPANY_DOCUMENT", nil)
	base := "/api/v1/documents/" + doc.ID

	code, env := s.do(t, "admin", http.MethodPost, base+"/archive", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ARCHIVED", decodeData[DocumentResponse](t, env).Status)

	code, env = s.do(t, "lead", http.MethodPost, base+"/levels/1/approve", nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "INVALID_TRANSITION", env.Error.Code)

	id, err := domain.ParseDocumentID(doc.ID)
	require.NoError(t, err)
	for _, action := range []domain.Action{domain.ActionSubmit, domain.ActionArchive} {
		entry := domain.AuditEntry{ID: string(action), DocumentID: id, Action: action, Actor: "admin", Timestamp: now}
		s.audit.Create(context.Background(), entry)
	}

	code, env = s.do(t, "", http.MethodGet, base+"/audit?page_size=1", nil)
	require.Equal(t, http.StatusOK, code)
	page := decodeData[AuditPage](t, env)
	require.Len(t, page.Entries, 1)
	assert.Equal(t, domain.ActionArchive, page.Entries[0].Action)

	code, _ = s.do(t, "", http.MethodGet, "/api/v1/documents/"+domain.NewDocumentID().String()+"/audit", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name  string
		query string
		page  int
		size  int
	}{
		{"defaults", "", 1, 20},
		{"explicit", "?page=3&page_size=50", 3, 50},
		{"oversized page falls back", "?page_size=500", 1, 20},
		{"garbage falls back", "?page=zero&page_size=-4", 1, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/v1/documents"+tt.query, nil)
			p := parsePagination(r)
			assert.Equal(t, tt.page, p.Page)
			assert.Equal(t, tt.size, p.PageSize)
		})
	}
}
