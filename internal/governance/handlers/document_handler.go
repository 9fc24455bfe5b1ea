package handlers

import (
	"log/slog"
	"net/http"

	"github.com/zlovtnik/docgov/internal/governance/domain"
	"github.com/zlovtnik/docgov/internal/governance/service"
	"github.com/zlovtnik/docgov/internal/models"
	"github.com/zlovtnik/docgov/pkg/fp"
)

const maxTitleLength = 500

// DocumentHandler handles document lifecycle HTTP requests
type DocumentHandler struct {
	svc    *service.DocumentService
	logger *slog.Logger
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(svc *service.DocumentService, logger *slog.Logger) *DocumentHandler {
	if svc == nil {
		panic("document service is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &DocumentHandler{svc: svc, logger: logger}
}

var validateSubmit = []fp.Validator[SubmitDocumentRequest]{
	fp.Field(func(r SubmitDocumentRequest) string { return r.ContentRef }, fp.Required("content_ref")),
	fp.Field(func(r SubmitDocumentRequest) string { return r.Classification }, fp.Required("classification")),
	fp.Field(func(r SubmitDocumentRequest) string { return r.Title }, fp.MaxLength("title", maxTitleLength)),
}

// Submit handles POST /api/v1/documents
func (h *DocumentHandler) Submit(w http.ResponseWriter, r *http.Request) {
	author, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req SubmitDocumentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if v := fp.Validate(req, validateSubmit...); fp.IsFailure(v) {
		writeServiceError(w, h.logger, fp.GetError(v))
		return
	}
	classification, err := domain.ParseClassification(req.Classification)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	result := h.svc.Submit(r.Context(), author, service.SubmitRequest{
		Title:          req.Title,
		ContentRef:     req.ContentRef,
		Classification: classification,
		ChangeLog:      req.ChangeLog,
		ExpiryDate:     req.ExpiryDate,
	})
	h.writeDocument(w, http.StatusCreated, result)
}

// Get handles GET /api/v1/documents/{id}
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := documentIDFromPath(w, r)
	if !ok {
		return
	}
	h.writeDocument(w, http.StatusOK, h.svc.Get(r.Context(), id))
}

// ListVersions handles GET /api/v1/documents/{id}/versions
func (h *DocumentHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	id, ok := documentIDFromPath(w, r)
	if !ok {
		return
	}
	result := h.svc.Get(r.Context(), id)
	if fp.IsFailure(result) {
		writeServiceError(w, h.logger, fp.GetError(result))
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse(toVersionResponses(fp.GetValue(result).Versions)))
}

// Approve handles POST /api/v1/documents/{id}/levels/{level}/approve
func (h *DocumentHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := documentIDFromPath(w, r)
	if !ok {
		return
	}
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	level, err := parseLevel(r.PathValue("level"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	h.writeDocument(w, http.StatusOK, h.svc.ApproveLevel(r.Context(), id, level, actor))
}

// Reject handles POST /api/v1/documents/{id}/levels/{level}/reject
func (h *DocumentHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := documentIDFromPath(w, r)
	if !ok {
		return
	}
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	level, err := parseLevel(r.PathValue("level"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	var req RejectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.writeDocument(w, http.StatusOK, h.svc.RejectLevel(r.Context(), id, level, actor, service.RejectRequest{
		Reason:      req.Reason,
		Attachments: req.Attachments,
	}))
}

// CreateVersion handles POST /api/v1/documents/{id}/versions
func (h *DocumentHandler) CreateVersion(w http.ResponseWriter, r *http.Request) {
	id, ok := documentIDFromPath(w, r)
	if !ok {
		return
	}
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req VersionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.writeDocument(w, http.StatusCreated, h.svc.CreateVersion(r.Context(), id, actor, service.VersionRequest{
		ChangeLog:  req.ChangeLog,
		ContentRef: req.ContentRef,
		Label:      req.Version,
	}))
}

// RestoreVersion handles POST /api/v1/documents/{id}/versions/{version}/restore
func (h *DocumentHandler) RestoreVersion(w http.ResponseWriter, r *http.Request) {
	id, ok := documentIDFromPath(w, r)
	if !ok {
		return
	}
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	h.writeDocument(w, http.StatusOK, h.svc.RestoreVersion(r.Context(), id, actor, r.PathValue("version")))
}

// Resubmit handles POST /api/v1/documents/{id}/resubmit
func (h *DocumentHandler) Resubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := documentIDFromPath(w, r)
	if !ok {
		return
	}
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req VersionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.writeDocument(w, http.StatusOK, h.svc.Resubmit(r.Context(), id, actor, service.VersionRequest{
		ChangeLog:  req.ChangeLog,
		ContentRef: req.ContentRef,
		Label:      req.Version,
	}))
}

// Extend handles POST /api/v1/documents/{id}/extend
func (h *DocumentHandler) Extend(w http.ResponseWriter, r *http.Request) {
	id, ok := documentIDFromPath(w, r)
	if !ok {
		return
	}
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req ExtendRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.writeDocument(w, http.StatusOK, h.svc.Extend(r.Context(), id, actor, service.ExtendRequest{
		NewExpiryDate: req.NewExpiryDate,
		Reason:        req.Reason,
	}))
}

// Renew handles POST /api/v1/documents/{id}/renew
func (h *DocumentHandler) Renew(w http.ResponseWriter, r *http.Request) {
	id, ok := documentIDFromPath(w, r)
	if !ok {
		return
	}
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req RenewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.writeDocument(w, http.StatusOK, h.svc.RenewFromExpired(r.Context(), id, actor, service.RenewRequest{
		NewExpiryDate: req.NewExpiryDate,
		Reason:        req.Reason,
		ContentRef:    req.ContentRef,
		Label:         req.Version,
	}))
}

// Archive handles POST /api/v1/documents/{id}/archive. The body is optional.
func (h *DocumentHandler) Archive(w http.ResponseWriter, r *http.Request) {
	id, ok := documentIDFromPath(w, r)
	if !ok {
		return
	}
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req ArchiveRequest
	if !decodeOptionalJSON(w, r, &req) {
		return
	}
	h.writeDocument(w, http.StatusOK, h.svc.Archive(r.Context(), id, actor, req.Reason))
}

// Expiry handles GET /api/v1/documents/{id}/expiry
func (h *DocumentHandler) Expiry(w http.ResponseWriter, r *http.Request) {
	id, ok := documentIDFromPath(w, r)
	if !ok {
		return
	}
	result := h.svc.ExpiryState(r.Context(), id)
	if fp.IsFailure(result) {
		writeServiceError(w, h.logger, fp.GetError(result))
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse(fp.GetValue(result)))
}

// List handles GET /api/v1/documents?level=N&bucket=pending|approved|rejected
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	levelParam, err := requiredQuery(r, "level")
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	level, err := parseLevel(levelParam)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	bucketParam, err := requiredQuery(r, "bucket")
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	bucket, err := domain.ParseBucket(bucketParam)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.writeList(w, r, h.svc.ListByBucket(r.Context(), level, bucket))
}

// ListExpiring handles GET /api/v1/documents/expiring. With ?expired=true it
// lists documents past their expiry date instead.
func (h *DocumentHandler) ListExpiring(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("expired") == "true" {
		h.writeList(w, r, h.svc.ListExpired(r.Context()))
		return
	}
	h.writeList(w, r, h.svc.ListExpiringSoon(r.Context()))
}

func (h *DocumentHandler) writeDocument(w http.ResponseWriter, status int, result fp.Result[domain.Document]) {
	if fp.IsFailure(result) {
		writeServiceError(w, h.logger, fp.GetError(result))
		return
	}
	doc := fp.GetValue(result)
	now := h.svc.Now()
	expiry := domain.ComputeExpiryState(doc, now, h.svc.NearExpiryDays())
	writeJSON(w, status, models.SuccessResponse(toDocumentResponse(doc, h.svc.EffectiveStatus(doc), expiry)))
}

func (h *DocumentHandler) writeList(w http.ResponseWriter, r *http.Request, result fp.Result[[]domain.Document]) {
	if fp.IsFailure(result) {
		writeServiceError(w, h.logger, fp.GetError(result))
		return
	}
	docs := fp.GetValue(result)
	now := h.svc.Now()
	summaries := make([]DocumentSummary, 0, len(docs))
	for _, doc := range docs {
		expiry := domain.ComputeExpiryState(doc, now, h.svc.NearExpiryDays())
		summaries = append(summaries, toDocumentSummary(doc, h.svc.EffectiveStatus(doc), expiry))
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse(models.Paginate(summaries, parsePagination(r))))
}
