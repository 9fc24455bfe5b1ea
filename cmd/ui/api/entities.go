package api

import "time"

// DocumentSummary is a row of a document list
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

// DocumentPage is one page of document summaries
type DocumentPage struct {
	Data       []DocumentSummary `json:"data"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalCount int               `json:"total_count"`
	TotalPages int               `json:"total_pages"`
}

// Level is one approval level of a document
type Level struct {
	Level        int        `json:"level"`
	State        string     `json:"state"`
	ApprovedBy   string     `json:"approved_by,omitempty"`
	ApprovedAt   *time.Time `json:"approved_at,omitempty"`
	RejectedBy   string     `json:"rejected_by,omitempty"`
	RejectedAt   *time.Time `json:"rejected_at,omitempty"`
	RejectReason string     `json:"reject_reason,omitempty"`
}

// Version is a content version of a document
type Version struct {
	Version      string    `json:"version"`
	ContentRef   string    `json:"content_ref"`
	ChangeLog    string    `json:"change_log"`
	UpdatedAt    time.Time `json:"updated_at"`
	UpdatedBy    string    `json:"updated_by"`
	RestoredFrom string    `json:"restored_from,omitempty"`
}

// ExpiryState is the derived expiry classification of a document
type ExpiryState struct {
	Kind     string `json:"kind"`
	DaysLeft int    `json:"days_left"`
	HasDate  bool   `json:"has_expiry_date"`
}

// Document is the full view of a document
type Document struct {
	ID             string      `json:"id"`
	Title          string      `json:"title"`
	Classification string      `json:"classification"`
	Status         string      `json:"status"`
	AuthorID       string      `json:"author_id"`
	CurrentVersion string      `json:"current_version"`
	ApprovalLevels int         `json:"approval_levels"`
	Levels         []Level     `json:"levels"`
	Versions       []Version   `json:"versions"`
	ExpiryDate     *time.Time  `json:"expiry_date,omitempty"`
	Expiry         ExpiryState `json:"expiry"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// PendingLevel returns the level awaiting a decision, or 0
func (d *Document) PendingLevel() int {
	for _, l := range d.Levels {
		if l.State == "PENDING" {
			return l.Level
		}
	}
	return 0
}

// RejectRequest rejects a level
type RejectRequest struct {
	Reason      string   `json:"reason"`
	Attachments []string `json:"attachments,omitempty"`
}

// VersionRequest carries new content on resubmission
type VersionRequest struct {
	ChangeLog  string `json:"change_log"`
	ContentRef string `json:"content_ref,omitempty"`
}

// ArchiveRequest archives a document
type ArchiveRequest struct {
	Reason string `json:"reason,omitempty"`
}
