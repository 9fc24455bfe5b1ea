package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/zlovtnik/docgov/internal/governance/domain"
	"github.com/zlovtnik/docgov/internal/governance/repository"
	"github.com/zlovtnik/docgov/internal/middleware"
	"github.com/zlovtnik/docgov/internal/models"
	"github.com/zlovtnik/docgov/pkg/fp"
)

// Error codes for transport-level failures. Domain failures use
// domain.ErrorCode.
const (
	ErrCodeInvalidJSON  = "INVALID_JSON"
	ErrCodeInvalidID    = "INVALID_ID"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

const (
	maxBodyBytes = 1 << 20
	maxPageSize  = 100
)

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	if data == nil {
		w.WriteHeader(status)
		return
	}

	// Encode first to check for errors
	jsonData, err := json.Marshal(data)
	if err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to encode response")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(jsonData)
}

// writeError writes an error response
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, models.ErrorResponse(code, message, nil))
}

// writeServiceError maps a failed operation onto a status code and envelope
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var verrs fp.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse(ErrCodeValidation, verrs.Error(), verrs))
		return
	case errors.Is(err, repository.ErrConflict):
		writeError(w, http.StatusConflict, ErrCodeConflict, "document was modified concurrently, retry")
		return
	}

	code := domain.ErrorCode(err)
	switch {
	case errors.Is(err, domain.ErrDocumentNotFound), errors.Is(err, domain.ErrVersionNotFound):
		writeError(w, http.StatusNotFound, code, err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		writeError(w, http.StatusConflict, code, err.Error())
	case errors.Is(err, domain.ErrClassificationMismatch):
		writeError(w, http.StatusUnprocessableEntity, code, err.Error())
	case code != "":
		writeError(w, http.StatusBadRequest, code, err.Error())
	default:
		logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
	}
}

// decodeJSON decodes a bounded request body into dst. Unknown fields are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	return decode(w, r, dst, false)
}

// decodeOptionalJSON is decodeJSON for routes where the body may be omitted
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	return decode(w, r, dst, true)
}

func decode(w http.ResponseWriter, r *http.Request, dst any, optional bool) bool {
	if r.Body == nil {
		r.Body = http.NoBody
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			if optional {
				return true
			}
			writeError(w, http.StatusBadRequest, ErrCodeInvalidJSON, "request body is required")
			return false
		}
		writeError(w, http.StatusBadRequest, ErrCodeInvalidJSON, "invalid request body")
		return false
	}
	return true
}

// documentIDFromPath parses the {id} path value
func documentIDFromPath(w http.ResponseWriter, r *http.Request) (domain.DocumentID, bool) {
	id, err := domain.ParseDocumentID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidID, "invalid document ID")
		return domain.DocumentID{}, false
	}
	return id, true
}

func parseLevel(s string) (domain.Level, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, domain.NewDomainError(domain.ErrInvalidInput, "level must be a number, got %q", s)
	}
	return domain.Level(n), nil
}

// actorFrom returns the authenticated user, writing 401 when there is none
func actorFrom(w http.ResponseWriter, r *http.Request) (string, bool) {
	user := middleware.GetUser(r.Context())
	if user == "" {
		writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "no authenticated user")
		return "", false
	}
	return user, true
}

// parsePagination extracts pagination parameters from query string
func parsePagination(r *http.Request) models.PaginationParams {
	p := models.DefaultPagination()

	if v := r.URL.Query().Get("page"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			p.Page = parsed
		}
	}
	if v := r.URL.Query().Get("page_size"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= maxPageSize {
			p.PageSize = parsed
		}
	}
	return p
}

func requiredQuery(r *http.Request, name string) (string, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return "", domain.NewDomainError(domain.ErrInvalidInput, "query parameter %q is required", name)
	}
	return v, nil
}
