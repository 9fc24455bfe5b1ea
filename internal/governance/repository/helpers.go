package repository

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zlovtnik/docgov/internal/governance/domain"
)

// nullableString returns a sql.NullString for a string value.
// Empty strings result in a NULL database value.
func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullableTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

// boolToInt converts a boolean for NUMBER(1)/SMALLINT storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func parseDocumentID(s string) (domain.DocumentID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return domain.DocumentID{}, fmt.Errorf("parse document_id %q: %w", s, err)
	}
	return domain.DocumentID(id), nil
}

// appendedVersions returns the versions of next that are not yet stored,
// newest first. The stored history must be an unchanged suffix of next.
func appendedVersions(stored, next domain.Document) ([]domain.Version, error) {
	if len(next.Versions) < len(stored.Versions) {
		return nil, fmt.Errorf("%w: document %s would drop %d versions",
			ErrHistoryRewrite, next.ID, len(stored.Versions)-len(next.Versions))
	}
	added := len(next.Versions) - len(stored.Versions)
	for i, v := range stored.Versions {
		if !sameVersion(v, next.Versions[added+i]) {
			return nil, fmt.Errorf("%w: document %s version %s was modified", ErrHistoryRewrite, next.ID, v.Label())
		}
	}
	return next.Versions[:added], nil
}

// appendedExtensions returns the extension records of next that are not yet
// stored, oldest first.
func appendedExtensions(stored, next domain.Document) ([]domain.ExtensionRecord, error) {
	if len(next.ExtensionHistory) < len(stored.ExtensionHistory) {
		return nil, fmt.Errorf("%w: document %s would drop extension records", ErrHistoryRewrite, next.ID)
	}
	for i, e := range stored.ExtensionHistory {
		if !sameExtension(e, next.ExtensionHistory[i]) {
			return nil, fmt.Errorf("%w: document %s extension %d was modified", ErrHistoryRewrite, next.ID, i)
		}
	}
	return next.ExtensionHistory[len(stored.ExtensionHistory):], nil
}

func sameVersion(a, b domain.Version) bool {
	return a.Number.Equal(b.Number) &&
		a.ContentRef == b.ContentRef &&
		a.ChangeLog == b.ChangeLog &&
		a.UpdatedAt.Equal(b.UpdatedAt) &&
		a.UpdatedBy == b.UpdatedBy &&
		sameDecimal(a.RestoredFrom, b.RestoredFrom)
}

func sameExtension(a, b domain.ExtensionRecord) bool {
	return sameTime(a.PreviousExpiryDate, b.PreviousExpiryDate) &&
		a.NewExpiryDate.Equal(b.NewExpiryDate) &&
		a.Reason == b.Reason &&
		a.ExtendedBy == b.ExtendedBy &&
		a.ExtendedAt.Equal(b.ExtendedAt) &&
		a.Renewal == b.Renewal
}

func sameDecimal(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func sortDocuments(docs []domain.Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		if !docs[i].UpdatedAt.Equal(docs[j].UpdatedAt) {
			return docs[i].UpdatedAt.Before(docs[j].UpdatedAt)
		}
		return docs[i].ID.String() < docs[j].ID.String()
	})
}

func statusSet(statuses []domain.Status) map[domain.Status]bool {
	set := make(map[domain.Status]bool, len(statuses))
	for _, s := range statuses {
		set[s] = true
	}
	return set
}
