package handlers

import (
	"time"

	"github.com/zlovtnik/docgov/internal/governance/domain"
)

// SubmitDocumentRequest is the body of POST /api/v1/documents
type SubmitDocumentRequest struct {
	Title          string     `json:"title"`
	ContentRef     string     `json:"content_ref"`
	Classification string     `json:"classification"`
	ChangeLog      string     `json:"change_log,omitempty"`
	ExpiryDate     *time.Time `json:"expiry_date,omitempty"`
}

// RejectRequest is the body of the reject route
type RejectRequest struct {
	Reason      string   `json:"reason"`
	Attachments []string `json:"attachments,omitempty"`
}

// VersionRequest is the body of the create-version and resubmit routes
type VersionRequest struct {
	ChangeLog  string `json:"change_log"`
	ContentRef string `json:"content_ref,omitempty"`
	Version    string `json:"version,omitempty"`
}

// ExtendRequest is the body of the extend route
type ExtendRequest struct {
	NewExpiryDate time.Time `json:"new_expiry_date"`
	Reason        string    `json:"reason"`
}

// RenewRequest is the body of the renew route
type RenewRequest struct {
	NewExpiryDate time.Time `json:"new_expiry_date"`
	Reason        string    `json:"reason"`
	ContentRef    string    `json:"content_ref,omitempty"`
	Version       string    `json:"version,omitempty"`
}

// ArchiveRequest is the optional body of the archive route
type ArchiveRequest struct {
	Reason string `json:"reason,omitempty"`
}

// DocumentResponse represents a document in API responses
type DocumentResponse struct {
	ID               string              `json:"id"`
	Title            string              `json:"title"`
	Classification   string              `json:"classification"`
	Status           string              `json:"status"`
	StoredStatus     string              `json:"stored_status"`
	AuthorID         string              `json:"author_id"`
	CurrentVersion   string              `json:"current_version"`
	ApprovalLevels   int                 `json:"approval_levels"`
	Levels           []LevelResponse     `json:"levels"`
	Versions         []VersionResponse   `json:"versions,omitempty"`
	ExpiryDate       *time.Time          `json:"expiry_date,omitempty"`
	Expiry           domain.ExpiryState  `json:"expiry"`
	ExtensionHistory []ExtensionResponse `json:"extension_history,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// DocumentSummary is the list form of a document
type DocumentSummary struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Classification string     `json:"classification"`
	Status         string     `json:"status"`
	AuthorID       string     `json:"author_id"`
	CurrentVersion string     `json:"current_version"`
	ExpiryDate     *time.Time `json:"expiry_date,omitempty"`
	DaysLeft       *int       `json:"days_left,omitempty"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// LevelResponse represents one approval level of a document's chain
type LevelResponse struct {
	Level             int        `json:"level"`
	State             string     `json:"state"`
	ApprovedBy        string     `json:"approved_by,omitempty"`
	ApprovedAt        *time.Time `json:"approved_at,omitempty"`
	RejectedBy        string     `json:"rejected_by,omitempty"`
	RejectedAt        *time.Time `json:"rejected_at,omitempty"`
	RejectReason      string     `json:"reject_reason,omitempty"`
	RejectAttachments []string   `json:"reject_attachments,omitempty"`
}

// VersionResponse represents a version in API responses
type VersionResponse struct {
	Version      string    `json:"version"`
	ContentRef   string    `json:"content_ref"`
	ChangeLog    string    `json:"change_log"`
	UpdatedAt    time.Time `json:"updated_at"`
	UpdatedBy    string    `json:"updated_by"`
	RestoredFrom string    `json:"restored_from,omitempty"`
}

// ExtensionResponse represents an extension or renewal record
type ExtensionResponse struct {
	PreviousExpiryDate *time.Time `json:"previous_expiry_date,omitempty"`
	NewExpiryDate      time.Time  `json:"new_expiry_date"`
	Reason             string     `json:"reason"`
	ExtendedBy         string     `json:"extended_by"`
	ExtendedAt         time.Time  `json:"extended_at"`
	Renewal            bool       `json:"renewal"`
}

// Level states
const (
	levelPending  = "PENDING"
	levelApproved = "APPROVED"
	levelRejected = "REJECTED"
	levelWaiting  = "WAITING"
)

func levelState(doc domain.Document, l domain.Level) string {
	rec := doc.Level(l)
	switch {
	case rec.IsApproved():
		return levelApproved
	case rec.IsRejected():
		return levelRejected
	}
	if pending, ok := doc.Status.PendingLevel(); ok && pending == l {
		return levelPending
	}
	return levelWaiting
}

func toDocumentResponse(doc domain.Document, effective domain.Status, expiry domain.ExpiryState) DocumentResponse {
	resp := DocumentResponse{
		ID:             doc.ID.String(),
		Title:          doc.Title,
		Classification: string(doc.Classification),
		Status:         string(effective),
		StoredStatus:   string(doc.Status),
		AuthorID:       doc.AuthorID,
		CurrentVersion: doc.CurrentVersion().Label(),
		ApprovalLevels: doc.ChainLength(),
		ExpiryDate:     doc.ExpiryDate,
		Expiry:         expiry,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}

	for l := domain.Level1; int(l) <= doc.ChainLength(); l++ {
		rec := doc.Level(l)
		resp.Levels = append(resp.Levels, LevelResponse{
			Level:             int(l),
			State:             levelState(doc, l),
			ApprovedBy:        rec.ApprovedBy,
			ApprovedAt:        rec.ApprovedAt,
			RejectedBy:        rec.RejectedBy,
			RejectedAt:        rec.RejectedAt,
			RejectReason:      rec.RejectReason,
			RejectAttachments: rec.RejectAttachments,
		})
	}
	resp.Versions = toVersionResponses(doc.Versions)
	for _, e := range doc.ExtensionHistory {
		resp.ExtensionHistory = append(resp.ExtensionHistory, ExtensionResponse(e))
	}
	return resp
}

func toVersionResponses(versions []domain.Version) []VersionResponse {
	out := make([]VersionResponse, 0, len(versions))
	for _, v := range versions {
		resp := VersionResponse{
			Version:    v.Label(),
			ContentRef: v.ContentRef,
			ChangeLog:  v.ChangeLog,
			UpdatedAt:  v.UpdatedAt,
			UpdatedBy:  v.UpdatedBy,
		}
		if v.RestoredFrom != nil {
			resp.RestoredFrom = domain.FormatVersionNumber(*v.RestoredFrom)
		}
		out = append(out, resp)
	}
	return out
}

func toDocumentSummary(doc domain.Document, effective domain.Status, expiry domain.ExpiryState) DocumentSummary {
	s := DocumentSummary{
		ID:             doc.ID.String(),
		Title:          doc.Title,
		Classification: string(doc.Classification),
		Status:         string(effective),
		AuthorID:       doc.AuthorID,
		CurrentVersion: doc.CurrentVersion().Label(),
		ExpiryDate:     doc.ExpiryDate,
		UpdatedAt:      doc.UpdatedAt,
	}
	if expiry.HasDate {
		days := expiry.DaysLeft
		s.DaysLeft = &days
	}
	return s
}
