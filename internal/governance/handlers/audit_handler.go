package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/zlovtnik/docgov/internal/governance/domain"
	"github.com/zlovtnik/docgov/internal/governance/service"
	"github.com/zlovtnik/docgov/internal/models"
	"github.com/zlovtnik/docgov/pkg/fp"
)

// AuditReader reads the audit trail of a document
type AuditReader interface {
	ListByDocument(ctx context.Context, id domain.DocumentID, offset, limit int) fp.Result[[]domain.AuditEntry]
}

// AuditHandler handles audit trail HTTP requests
type AuditHandler struct {
	audit  AuditReader
	docs   *service.DocumentService
	logger *slog.Logger
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(audit AuditReader, docs *service.DocumentService, logger *slog.Logger) *AuditHandler {
	if audit == nil {
		panic("audit reader is required")
	}
	if docs == nil {
		panic("document service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &AuditHandler{audit: audit, docs: docs, logger: logger}
}

// AuditPage is one page of a document's audit trail, newest first
type AuditPage struct {
	Entries  []domain.AuditEntry `json:"entries"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"page_size"`
}

// ListByDocument handles GET /api/v1/documents/{id}/audit
func (h *AuditHandler) ListByDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := documentIDFromPath(w, r)
	if !ok {
		return
	}
	// 404 for unknown documents rather than an empty trail
	if doc := h.docs.Get(r.Context(), id); fp.IsFailure(doc) {
		writeServiceError(w, h.logger, fp.GetError(doc))
		return
	}

	page := parsePagination(r)
	result := h.audit.ListByDocument(r.Context(), id, page.Offset(), page.Limit())
	if fp.IsFailure(result) {
		writeServiceError(w, h.logger, fp.GetError(result))
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse(AuditPage{
		Entries:  fp.GetValue(result),
		Page:     page.Page,
		PageSize: page.PageSize,
	}))
}
