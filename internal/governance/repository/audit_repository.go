package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/zlovtnik/docgov/internal/governance/domain"
	"github.com/zlovtnik/docgov/pkg/fp"
)

// AuditRepository handles audit trail persistence
type AuditRepository struct {
	db      *sql.DB
	dialect Dialect
}

// NewAuditRepository creates a new AuditRepository
func NewAuditRepository(db *sql.DB, dialect Dialect) *AuditRepository {
	return &AuditRepository{db: db, dialect: dialect}
}

// Create inserts a new audit entry
func (r *AuditRepository) Create(ctx context.Context, entry domain.AuditEntry) fp.Result[domain.AuditEntry] {
	query := `
		INSERT INTO gov_audit_trail (
			id, document_id, action, approval_level, from_status, to_status,
			version_number, actor, reason, metadata, created_at
		) VALUES (:1, :2, :3, :4, :5, :6, :7, :8, :9, :10, :11)`

	var metadata sql.NullString
	if entry.Metadata != nil {
		b, err := json.Marshal(entry.Metadata)
		if err != nil {
			return fp.Failure[domain.AuditEntry](fmt.Errorf("marshal audit field Metadata: %w", err))
		}
		metadata = sql.NullString{String: string(b), Valid: true}
	}

	var level sql.NullInt64
	if entry.Level.IsValid() {
		level = sql.NullInt64{Int64: int64(entry.Level), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, r.dialect.rebind(query),
		entry.ID,
		entry.DocumentID.String(),
		string(entry.Action),
		level,
		nullableString(string(entry.FromStatus)),
		string(entry.ToStatus),
		entry.Version,
		entry.Actor,
		nullableString(entry.Reason),
		metadata,
		entry.Timestamp,
	)
	if err != nil {
		// a retry of an insert that already committed
		if r.exists(ctx, entry.ID) {
			return fp.Success(entry)
		}
		return fp.Failure[domain.AuditEntry](err)
	}

	return fp.Success(entry)
}

func (r *AuditRepository) exists(ctx context.Context, id string) bool {
	var n int
	query := `SELECT COUNT(*) FROM gov_audit_trail WHERE id = :1`
	if err := r.db.QueryRowContext(ctx, r.dialect.rebind(query), id).Scan(&n); err != nil {
		return false
	}
	return n > 0
}

// ListByDocument retrieves the audit trail of a document, newest first
func (r *AuditRepository) ListByDocument(ctx context.Context, id domain.DocumentID, offset, limit int) fp.Result[[]domain.AuditEntry] {
	query := `
		SELECT id, document_id, action, approval_level, from_status, to_status,
			version_number, actor, reason, metadata, created_at
		FROM gov_audit_trail
		WHERE document_id = :1
		ORDER BY created_at DESC
		OFFSET :2 ROWS FETCH NEXT :3 ROWS ONLY`

	rows, err := r.db.QueryContext(ctx, r.dialect.rebind(query), id.String(), offset, limit)
	if err != nil {
		return fp.Failure[[]domain.AuditEntry](err)
	}
	defer rows.Close()

	entries := make([]domain.AuditEntry, 0)
	for rows.Next() {
		result := scanAuditEntry(rows)
		if fp.IsFailure(result) {
			return fp.Failure[[]domain.AuditEntry](fp.GetError(result))
		}
		entries = append(entries, fp.GetValue(result))
	}

	if err := rows.Err(); err != nil {
		return fp.Failure[[]domain.AuditEntry](err)
	}

	return fp.Success(entries)
}

func scanAuditEntry(rows *sql.Rows) fp.Result[domain.AuditEntry] {
	var entry domain.AuditEntry
	var docID, action, toStatus string
	var level sql.NullInt64
	var fromStatus, reason, metadata sql.NullString

	err := rows.Scan(
		&entry.ID, &docID, &action, &level, &fromStatus, &toStatus,
		&entry.Version, &entry.Actor, &reason, &metadata, &entry.Timestamp,
	)
	if err != nil {
		return fp.Failure[domain.AuditEntry](err)
	}

	if entry.DocumentID, err = parseDocumentID(docID); err != nil {
		return fp.Failure[domain.AuditEntry](err)
	}
	entry.Action = domain.Action(action)
	entry.Level = domain.Level(level.Int64)
	entry.FromStatus = domain.Status(fromStatus.String)
	entry.ToStatus = domain.Status(toStatus)
	entry.Reason = reason.String

	if metadata.Valid {
		if err := json.Unmarshal([]byte(metadata.String), &entry.Metadata); err != nil {
			return fp.Failure[domain.AuditEntry](fmt.Errorf("unmarshal audit metadata: %w", err))
		}
	}

	return fp.Success(entry)
}

// MemoryAuditRepository keeps the audit trail in process, for the memory
// storage driver.
type MemoryAuditRepository struct {
	mu      sync.RWMutex
	entries map[domain.DocumentID][]domain.AuditEntry
}

// NewMemoryAuditRepository creates an empty MemoryAuditRepository
func NewMemoryAuditRepository() *MemoryAuditRepository {
	return &MemoryAuditRepository{entries: make(map[domain.DocumentID][]domain.AuditEntry)}
}

// Create appends an audit entry. An entry whose ID is already stored is
// accepted without being added again.
func (r *MemoryAuditRepository) Create(_ context.Context, entry domain.AuditEntry) fp.Result[domain.AuditEntry] {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries[entry.DocumentID] {
		if e.ID == entry.ID {
			return fp.Success(entry)
		}
	}
	r.entries[entry.DocumentID] = append(r.entries[entry.DocumentID], entry.WithMetadata(entry.Metadata))
	return fp.Success(entry)
}

// ListByDocument retrieves the audit trail of a document, newest first
func (r *MemoryAuditRepository) ListByDocument(_ context.Context, id domain.DocumentID, offset, limit int) fp.Result[[]domain.AuditEntry] {
	r.mu.RLock()
	stored := r.entries[id]
	entries := make([]domain.AuditEntry, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		entries = append(entries, stored[i])
	}
	r.mu.RUnlock()

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	if offset >= len(entries) {
		return fp.Success([]domain.AuditEntry{})
	}
	end := offset + limit
	if limit <= 0 || end > len(entries) {
		end = len(entries)
	}
	return fp.Success(entries[offset:end])
}
