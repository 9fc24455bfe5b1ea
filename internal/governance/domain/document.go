package domain

import (
	"strings"
	"time"
)

// LevelRecord holds the approval and rejection metadata for one level
type LevelRecord struct {
	ApprovedBy        string     `json:"approved_by,omitempty"`
	ApprovedAt        *time.Time `json:"approved_at,omitempty"`
	RejectReason      string     `json:"reject_reason,omitempty"`
	RejectedBy        string     `json:"rejected_by,omitempty"`
	RejectedAt        *time.Time `json:"rejected_at,omitempty"`
	RejectAttachments []string   `json:"reject_attachments,omitempty"`
}

// IsApproved checks if the level carries an approval stamp
func (r LevelRecord) IsApproved() bool {
	return r.ApprovedAt != nil
}

// IsRejected checks if the level carries a rejection
func (r LevelRecord) IsRejected() bool {
	return r.RejectedAt != nil
}

// IsEmpty checks if the record carries no metadata at all
func (r LevelRecord) IsEmpty() bool {
	return r.ApprovedBy == "" && r.ApprovedAt == nil && r.RejectReason == "" &&
		r.RejectedBy == "" && r.RejectedAt == nil && len(r.RejectAttachments) == 0
}

func (r LevelRecord) clone() LevelRecord {
	if r.RejectAttachments != nil {
		r.RejectAttachments = append([]string(nil), r.RejectAttachments...)
	}
	return r
}

// ExtensionRecord is one immutable entry of a document's extension history
type ExtensionRecord struct {
	PreviousExpiryDate *time.Time `json:"previous_expiry_date,omitempty"`
	NewExpiryDate      time.Time  `json:"new_expiry_date"`
	Reason             string     `json:"reason"`
	ExtendedBy         string     `json:"extended_by"`
	ExtendedAt         time.Time  `json:"extended_at"`
	Renewal            bool       `json:"renewal"`
}

// Document is a governed knowledge document (immutable, methods return copies)
type Document struct {
	ID               DocumentID            `json:"id"`
	Title            string                `json:"title"`
	Classification   Classification        `json:"classification"`
	Status           Status                `json:"status"`
	AuthorID         string                `json:"author_id"`
	Versions         []Version             `json:"versions"`
	Levels           [MaxLevel]LevelRecord `json:"levels"`
	ExpiryDate       *time.Time            `json:"expiry_date,omitempty"`
	ExtensionHistory []ExtensionRecord     `json:"extension_history,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
	Revision         int64                 `json:"revision"`
}

// SubmitParams carries the input of a new submission
type SubmitParams struct {
	Title          string
	ContentRef     string
	Classification Classification
	AuthorID       string
	ChangeLog      string
	ExpiryDate     *time.Time
}

// NewDocument builds a document at PENDING_LEVEL_1 holding version 1.0
func NewDocument(p SubmitParams, at time.Time) (Document, Transition, error) {
	if !p.Classification.IsValid() {
		return Document{}, Transition{}, NewDomainError(ErrInvalidInput, "unknown classification %q", p.Classification)
	}
	if strings.TrimSpace(p.ContentRef) == "" {
		return Document{}, Transition{}, NewDomainError(ErrInvalidInput, "content reference is required")
	}
	if strings.TrimSpace(p.AuthorID) == "" {
		return Document{}, Transition{}, NewDomainError(ErrInvalidInput, "author is required")
	}
	if p.ExpiryDate != nil && !p.ExpiryDate.After(at) {
		return Document{}, Transition{}, NewDomainError(ErrInvalidExpiryDate, "expiry date must be in the future")
	}

	changeLog := strings.TrimSpace(p.ChangeLog)
	if changeLog == "" {
		changeLog = "Initial submission"
	}

	doc := Document{
		ID:             NewDocumentID(),
		Title:          strings.TrimSpace(p.Title),
		Classification: p.Classification,
		Status:         StatusPendingLevel1,
		AuthorID:       p.AuthorID,
		Versions: []Version{{
			Number:     InitialVersionNumber,
			ContentRef: p.ContentRef,
			ChangeLog:  changeLog,
			UpdatedAt:  at,
			UpdatedBy:  p.AuthorID,
		}},
		ExpiryDate: copyTime(p.ExpiryDate),
		CreatedAt:  at,
		UpdatedAt:  at,
	}

	return doc, newTransition(doc, ActionSubmit, 0, "", p.AuthorID, changeLog, at), nil
}

// CurrentVersion returns the newest version
func (d Document) CurrentVersion() Version {
	if len(d.Versions) == 0 {
		return Version{}
	}
	return d.Versions[0]
}

// FindVersion returns the version with the given number
func (d Document) FindVersion(number string) (Version, bool) {
	n, err := ParseVersionNumber(number)
	if err != nil {
		return Version{}, false
	}
	for _, v := range d.Versions {
		if v.Number.Equal(n) {
			return v, true
		}
	}
	return Version{}, false
}

// Level returns the metadata recorded for a level
func (d Document) Level(l Level) LevelRecord {
	if !l.IsValid() {
		return LevelRecord{}
	}
	return d.Levels[l.index()]
}

// ChainLength returns the number of approval levels of the document
func (d Document) ChainLength() int {
	return d.Classification.ChainLength()
}

// Clone returns a deep copy sharing no slices or pointers with d
func (d Document) Clone() Document {
	if d.Versions != nil {
		versions := make([]Version, len(d.Versions))
		for i, v := range d.Versions {
			if v.RestoredFrom != nil {
				rf := *v.RestoredFrom
				v.RestoredFrom = &rf
			}
			versions[i] = v
		}
		d.Versions = versions
	}
	for i := range d.Levels {
		d.Levels[i] = d.Levels[i].clone()
		d.Levels[i].ApprovedAt = copyTime(d.Levels[i].ApprovedAt)
		d.Levels[i].RejectedAt = copyTime(d.Levels[i].RejectedAt)
	}
	d.ExpiryDate = copyTime(d.ExpiryDate)
	if d.ExtensionHistory != nil {
		history := make([]ExtensionRecord, len(d.ExtensionHistory))
		for i, e := range d.ExtensionHistory {
			e.PreviousExpiryDate = copyTime(e.PreviousExpiryDate)
			history[i] = e
		}
		d.ExtensionHistory = history
	}
	return d
}

// Validate checks the structural invariants of a document
func (d Document) Validate() error {
	if d.ID.IsZero() {
		return NewDomainError(ErrInvalidInput, "document id is required")
	}
	if !d.Classification.IsValid() {
		return NewDomainError(ErrInvalidInput, "unknown classification %q", d.Classification)
	}
	if !d.Classification.Allows(d.Status) {
		return NewDomainError(ErrClassificationMismatch, "status %s is not reachable for %s", d.Status, d.Classification)
	}
	if len(d.Versions) == 0 {
		return NewDomainError(ErrInvalidInput, "document %s has no versions", d.ID)
	}
	for l := Level(d.ChainLength() + 1); l <= MaxLevel; l++ {
		if !d.Level(l).IsEmpty() {
			return NewDomainError(ErrClassificationMismatch, "level %d is outside the %s chain", l, d.Classification)
		}
	}
	return nil
}

// withVersion returns a copy with v prepended to the version history
func (d Document) withVersion(v Version) Document {
	versions := make([]Version, 0, len(d.Versions)+1)
	versions = append(versions, v)
	d.Versions = append(versions, d.Versions...)
	return d
}

// withExtension returns a copy with e appended to the extension history
func (d Document) withExtension(e ExtensionRecord) Document {
	history := make([]ExtensionRecord, 0, len(d.ExtensionHistory)+1)
	history = append(history, d.ExtensionHistory...)
	d.ExtensionHistory = append(history, e)
	return d
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
