package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditEntry represents an audit trail entry (immutable)
type AuditEntry struct {
	ID         string                 `json:"id"`
	DocumentID DocumentID             `json:"document_id"`
	Action     Action                 `json:"action"`
	Level      Level                  `json:"level,omitempty"`
	FromStatus Status                 `json:"from_status,omitempty"`
	ToStatus   Status                 `json:"to_status"`
	Version    string                 `json:"version"`
	Actor      string                 `json:"actor"`
	Reason     string                 `json:"reason,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
}

// NewAuditEntry creates the audit entry for a committed transition
func NewAuditEntry(t Transition) AuditEntry {
	actor := t.Actor
	if actor == "" {
		actor = "system"
	}
	return AuditEntry{
		ID:         uuid.New().String(),
		DocumentID: t.DocumentID,
		Action:     t.Action,
		Level:      t.Level,
		FromStatus: t.From,
		ToStatus:   t.To,
		Version:    t.Version,
		Actor:      actor,
		Reason:     t.Reason,
		Timestamp:  t.At,
	}
}

// WithMetadata returns a copy with metadata
func (e AuditEntry) WithMetadata(metadata map[string]interface{}) AuditEntry {
	if metadata != nil {
		e.Metadata = make(map[string]interface{}, len(metadata))
		for k, v := range metadata {
			e.Metadata[k] = v
		}
	} else {
		e.Metadata = nil
	}
	return e
}
