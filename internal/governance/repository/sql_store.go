package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/zlovtnik/docgov/internal/governance/domain"
	"github.com/zlovtnik/docgov/pkg/fp"
)

// Dialect selects the bind-variable syntax of the target database
type Dialect int

const (
	// DialectOracle uses :1, :2 ... binds (godror)
	DialectOracle Dialect = iota
	// DialectPostgres uses $1, $2 ... binds (pgx)
	DialectPostgres
)

var oracleBind = regexp.MustCompile(`:(\d+)`)

// rebind rewrites a query written with Oracle binds for the dialect
func (d Dialect) rebind(query string) string {
	if d == DialectPostgres {
		return oracleBind.ReplaceAllString(query, "$$$1")
	}
	return query
}

// maxInClauseSize is the maximum number of items in an IN clause to avoid DB limits
const maxInClauseSize = 1000

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLStore is a DocumentStore over database/sql. Version and extension rows
// are only ever inserted.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLStore creates a new SQLStore
func NewSQLStore(db *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

const documentColumns = `id, title, classification, status, author_id, expiry_date, created_at, updated_at, revision`

// Create inserts a new document with its first version
func (s *SQLStore) Create(ctx context.Context, doc domain.Document) fp.Result[domain.Document] {
	if err := doc.Validate(); err != nil {
		return fp.Failure[domain.Document](err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fp.Failure[domain.Document](err)
	}
	defer tx.Rollback()

	doc = doc.Clone()
	doc.Revision = 1

	query := `
		INSERT INTO gov_documents (` + documentColumns + `)
		VALUES (:1, :2, :3, :4, :5, :6, :7, :8, :9)`
	_, err = tx.ExecContext(ctx, s.dialect.rebind(query),
		doc.ID.String(),
		doc.Title,
		string(doc.Classification),
		string(doc.Status),
		doc.AuthorID,
		nullableTime(doc.ExpiryDate),
		doc.CreatedAt,
		doc.UpdatedAt,
		doc.Revision,
	)
	if err != nil {
		return fp.Failure[domain.Document](fmt.Errorf("insert document %s: %w", doc.ID, err))
	}

	if err := s.insertVersions(ctx, tx, doc.ID, doc.Versions, 0); err != nil {
		return fp.Failure[domain.Document](err)
	}
	if err := s.insertExtensions(ctx, tx, doc.ID, doc.ExtensionHistory, 0); err != nil {
		return fp.Failure[domain.Document](err)
	}
	if err := s.replaceLevels(ctx, tx, doc); err != nil {
		return fp.Failure[domain.Document](err)
	}

	if err := tx.Commit(); err != nil {
		return fp.Failure[domain.Document](err)
	}
	return fp.Success(doc)
}

// Get retrieves a document with its full history
func (s *SQLStore) Get(ctx context.Context, id domain.DocumentID) fp.Result[domain.Document] {
	query := `SELECT ` + documentColumns + ` FROM gov_documents WHERE id = :1`
	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(query), id.String())
	if err != nil {
		return fp.Failure[domain.Document](err)
	}
	docs, err := scanDocuments(rows)
	if err != nil {
		return fp.Failure[domain.Document](err)
	}
	if len(docs) == 0 {
		return fp.Failure[domain.Document](notFound(id))
	}
	if err := s.loadChildren(ctx, s.db, docs); err != nil {
		return fp.Failure[domain.Document](err)
	}
	return fp.Success(docs[0])
}

// Save updates a document guarded by its revision. Only the versions and
// extension records missing from the database are inserted.
func (s *SQLStore) Save(ctx context.Context, doc domain.Document) fp.Result[domain.Document] {
	if err := doc.Validate(); err != nil {
		return fp.Failure[domain.Document](err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fp.Failure[domain.Document](err)
	}
	defer tx.Rollback()

	query := `
		UPDATE gov_documents SET
			title = :1, status = :2, expiry_date = :3, updated_at = :4, revision = revision + 1
		WHERE id = :5 AND revision = :6`
	res, err := tx.ExecContext(ctx, s.dialect.rebind(query),
		doc.Title,
		string(doc.Status),
		nullableTime(doc.ExpiryDate),
		doc.UpdatedAt,
		doc.ID.String(),
		doc.Revision,
	)
	if err != nil {
		return fp.Failure[domain.Document](fmt.Errorf("update document %s: %w", doc.ID, err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fp.Failure[domain.Document](err)
	}
	if affected == 0 {
		return fp.Failure[domain.Document](s.missingOrStale(ctx, tx, doc))
	}

	storedVersions, err := s.count(ctx, tx, "gov_document_versions", doc.ID)
	if err != nil {
		return fp.Failure[domain.Document](err)
	}
	added := len(doc.Versions) - storedVersions
	if added < 0 {
		return fp.Failure[domain.Document](fmt.Errorf("%w: document %s would drop %d versions", ErrHistoryRewrite, doc.ID, -added))
	}
	if err := s.insertVersions(ctx, tx, doc.ID, doc.Versions[:added], storedVersions); err != nil {
		return fp.Failure[domain.Document](err)
	}

	storedExtensions, err := s.count(ctx, tx, "gov_extension_records", doc.ID)
	if err != nil {
		return fp.Failure[domain.Document](err)
	}
	if len(doc.ExtensionHistory) < storedExtensions {
		return fp.Failure[domain.Document](fmt.Errorf("%w: document %s would drop extension records", ErrHistoryRewrite, doc.ID))
	}
	if err := s.insertExtensions(ctx, tx, doc.ID, doc.ExtensionHistory[storedExtensions:], storedExtensions); err != nil {
		return fp.Failure[domain.Document](err)
	}

	if err := s.replaceLevels(ctx, tx, doc); err != nil {
		return fp.Failure[domain.Document](err)
	}

	if err := tx.Commit(); err != nil {
		return fp.Failure[domain.Document](err)
	}

	saved := doc.Clone()
	saved.Revision++
	return fp.Success(saved)
}

// ListByStatus lists documents in any of the given statuses
func (s *SQLStore) ListByStatus(ctx context.Context, statuses ...domain.Status) fp.Result[[]domain.Document] {
	if len(statuses) == 0 {
		return fp.Success([]domain.Document{})
	}

	args := make([]any, len(statuses))
	for i, st := range statuses {
		args[i] = string(st)
	}
	query := `SELECT ` + documentColumns + ` FROM gov_documents
		WHERE status IN (` + binds(1, len(statuses)) + `)
		ORDER BY updated_at, id`

	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(query), args...)
	if err != nil {
		return fp.Failure[[]domain.Document](err)
	}
	docs, err := scanDocuments(rows)
	if err != nil {
		return fp.Failure[[]domain.Document](err)
	}
	if err := s.loadChildren(ctx, s.db, docs); err != nil {
		return fp.Failure[[]domain.Document](err)
	}
	return fp.Success(docs)
}

func (s *SQLStore) missingOrStale(ctx context.Context, q querier, doc domain.Document) error {
	var revision int64
	query := `SELECT revision FROM gov_documents WHERE id = :1`
	err := q.QueryRowContext(ctx, s.dialect.rebind(query), doc.ID.String()).Scan(&revision)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound(doc.ID)
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: document %s is at revision %d, not %d", ErrConflict, doc.ID, revision, doc.Revision)
}

func (s *SQLStore) count(ctx context.Context, q querier, table string, id domain.DocumentID) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM ` + table + ` WHERE document_id = :1`
	if err := q.QueryRowContext(ctx, s.dialect.rebind(query), id.String()).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s for %s: %w", table, id, err)
	}
	return n, nil
}

// insertVersions stores versions (newest first) with sequence numbers
// counting up from firstSeq for the oldest.
func (s *SQLStore) insertVersions(ctx context.Context, q querier, id domain.DocumentID, versions []domain.Version, firstSeq int) error {
	query := s.dialect.rebind(`
		INSERT INTO gov_document_versions (
			document_id, seq, version_number, content_ref, change_log,
			updated_at, updated_by, restored_from
		) VALUES (:1, :2, :3, :4, :5, :6, :7, :8)`)

	for i := len(versions) - 1; i >= 0; i-- {
		v := versions[i]
		var restoredFrom sql.NullString
		if v.RestoredFrom != nil {
			restoredFrom = sql.NullString{String: domain.FormatVersionNumber(*v.RestoredFrom), Valid: true}
		}
		seq := firstSeq + len(versions) - 1 - i
		_, err := q.ExecContext(ctx, query,
			id.String(), seq, v.Label(), v.ContentRef, v.ChangeLog,
			v.UpdatedAt, v.UpdatedBy, restoredFrom,
		)
		if err != nil {
			return fmt.Errorf("insert version %s of %s: %w", v.Label(), id, err)
		}
	}
	return nil
}

func (s *SQLStore) insertExtensions(ctx context.Context, q querier, id domain.DocumentID, records []domain.ExtensionRecord, firstSeq int) error {
	query := s.dialect.rebind(`
		INSERT INTO gov_extension_records (
			document_id, seq, previous_expiry_date, new_expiry_date, reason,
			extended_by, extended_at, renewal
		) VALUES (:1, :2, :3, :4, :5, :6, :7, :8)`)

	for i, e := range records {
		_, err := q.ExecContext(ctx, query,
			id.String(), firstSeq+i, nullableTime(e.PreviousExpiryDate), e.NewExpiryDate, e.Reason,
			e.ExtendedBy, e.ExtendedAt, boolToInt(e.Renewal),
		)
		if err != nil {
			return fmt.Errorf("insert extension record of %s: %w", id, err)
		}
	}
	return nil
}

// replaceLevels rewrites the level records. They are current-state
// metadata, the audit trail keeps their history.
func (s *SQLStore) replaceLevels(ctx context.Context, q querier, doc domain.Document) error {
	del := `DELETE FROM gov_level_records WHERE document_id = :1`
	if _, err := q.ExecContext(ctx, s.dialect.rebind(del), doc.ID.String()); err != nil {
		return fmt.Errorf("clear level records of %s: %w", doc.ID, err)
	}

	query := s.dialect.rebind(`
		INSERT INTO gov_level_records (
			document_id, approval_level, approved_by, approved_at, reject_reason,
			rejected_by, rejected_at, reject_attachments
		) VALUES (:1, :2, :3, :4, :5, :6, :7, :8)`)

	for i, rec := range doc.Levels {
		if rec.IsEmpty() {
			continue
		}
		var attachments sql.NullString
		if len(rec.RejectAttachments) > 0 {
			b, err := json.Marshal(rec.RejectAttachments)
			if err != nil {
				return fmt.Errorf("marshal reject attachments: %w", err)
			}
			attachments = sql.NullString{String: string(b), Valid: true}
		}
		_, err := q.ExecContext(ctx, query,
			doc.ID.String(), i+1,
			nullableString(rec.ApprovedBy), nullableTime(rec.ApprovedAt),
			nullableString(rec.RejectReason), nullableString(rec.RejectedBy), nullableTime(rec.RejectedAt),
			attachments,
		)
		if err != nil {
			return fmt.Errorf("insert level %d record of %s: %w", i+1, doc.ID, err)
		}
	}
	return nil
}

func scanDocuments(rows *sql.Rows) ([]domain.Document, error) {
	defer rows.Close()

	docs := make([]domain.Document, 0)
	for rows.Next() {
		var doc domain.Document
		var id, classification, status string
		var title sql.NullString
		var expiry sql.NullTime

		err := rows.Scan(&id, &title, &classification, &status, &doc.AuthorID,
			&expiry, &doc.CreatedAt, &doc.UpdatedAt, &doc.Revision)
		if err != nil {
			return nil, err
		}
		if doc.ID, err = parseDocumentID(id); err != nil {
			return nil, err
		}
		doc.Title = title.String
		doc.Classification = domain.Classification(classification)
		doc.Status = domain.Status(status)
		doc.ExpiryDate = timePtr(expiry)
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// loadChildren fills versions, level records and extension history, in
// chunks to stay below IN clause limits.
func (s *SQLStore) loadChildren(ctx context.Context, q querier, docs []domain.Document) error {
	index := make(map[string]int, len(docs))
	ids := make([]any, len(docs))
	for i, d := range docs {
		index[d.ID.String()] = i
		ids[i] = d.ID.String()
	}

	for start := 0; start < len(ids); start += maxInClauseSize {
		end := start + maxInClauseSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]
		if err := s.loadVersions(ctx, q, chunk, docs, index); err != nil {
			return err
		}
		if err := s.loadLevels(ctx, q, chunk, docs, index); err != nil {
			return err
		}
		if err := s.loadExtensions(ctx, q, chunk, docs, index); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLStore) loadVersions(ctx context.Context, q querier, ids []any, docs []domain.Document, index map[string]int) error {
	query := `
		SELECT document_id, version_number, content_ref, change_log, updated_at, updated_by, restored_from
		FROM gov_document_versions
		WHERE document_id IN (` + binds(1, len(ids)) + `)
		ORDER BY document_id, seq DESC`

	rows, err := q.QueryContext(ctx, s.dialect.rebind(query), ids...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var docID, number string
		var restoredFrom sql.NullString
		var v domain.Version
		if err := rows.Scan(&docID, &number, &v.ContentRef, &v.ChangeLog, &v.UpdatedAt, &v.UpdatedBy, &restoredFrom); err != nil {
			return err
		}
		if v.Number, err = decimal.NewFromString(number); err != nil {
			return fmt.Errorf("parse version_number %q: %w", number, err)
		}
		if restoredFrom.Valid {
			rf, err := decimal.NewFromString(restoredFrom.String)
			if err != nil {
				return fmt.Errorf("parse restored_from %q: %w", restoredFrom.String, err)
			}
			v.RestoredFrom = &rf
		}
		i := index[docID]
		docs[i].Versions = append(docs[i].Versions, v)
	}
	return rows.Err()
}

func (s *SQLStore) loadLevels(ctx context.Context, q querier, ids []any, docs []domain.Document, index map[string]int) error {
	query := `
		SELECT document_id, approval_level, approved_by, approved_at, reject_reason,
			rejected_by, rejected_at, reject_attachments
		FROM gov_level_records
		WHERE document_id IN (` + binds(1, len(ids)) + `)`

	rows, err := q.QueryContext(ctx, s.dialect.rebind(query), ids...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var docID string
		var level int
		var approvedBy, rejectReason, rejectedBy, attachments sql.NullString
		var approvedAt, rejectedAt sql.NullTime
		if err := rows.Scan(&docID, &level, &approvedBy, &approvedAt, &rejectReason, &rejectedBy, &rejectedAt, &attachments); err != nil {
			return err
		}
		if !domain.Level(level).IsValid() {
			return fmt.Errorf("document %s has level record %d", docID, level)
		}
		rec := domain.LevelRecord{
			ApprovedBy:   approvedBy.String,
			ApprovedAt:   timePtr(approvedAt),
			RejectReason: rejectReason.String,
			RejectedBy:   rejectedBy.String,
			RejectedAt:   timePtr(rejectedAt),
		}
		if attachments.Valid {
			if err := json.Unmarshal([]byte(attachments.String), &rec.RejectAttachments); err != nil {
				return fmt.Errorf("unmarshal reject attachments of %s: %w", docID, err)
			}
		}
		docs[index[docID]].Levels[level-1] = rec
	}
	return rows.Err()
}

func (s *SQLStore) loadExtensions(ctx context.Context, q querier, ids []any, docs []domain.Document, index map[string]int) error {
	query := `
		SELECT document_id, previous_expiry_date, new_expiry_date, reason, extended_by, extended_at, renewal
		FROM gov_extension_records
		WHERE document_id IN (` + binds(1, len(ids)) + `)
		ORDER BY document_id, seq`

	rows, err := q.QueryContext(ctx, s.dialect.rebind(query), ids...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var docID string
		var previous sql.NullTime
		var renewal int
		var e domain.ExtensionRecord
		if err := rows.Scan(&docID, &previous, &e.NewExpiryDate, &e.Reason, &e.ExtendedBy, &e.ExtendedAt, &renewal); err != nil {
			return err
		}
		e.PreviousExpiryDate = timePtr(previous)
		e.Renewal = renewal == 1
		i := index[docID]
		docs[i].ExtensionHistory = append(docs[i].ExtensionHistory, e)
	}
	return rows.Err()
}

// binds returns ":first, :first+1, ..." for n bind variables
func binds(first, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf(":%d", first+i)
	}
	return strings.Join(parts, ", ")
}
