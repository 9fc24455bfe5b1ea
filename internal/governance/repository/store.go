package repository

import (
	"context"
	"errors"

	"github.com/zlovtnik/docgov/internal/governance/domain"
	"github.com/zlovtnik/docgov/pkg/fp"
)

var (
	// ErrConflict is returned by Save when the stored revision moved on
	// since the document was read.
	ErrConflict = errors.New("document was modified concurrently")

	// ErrHistoryRewrite is returned by Save when the version or extension
	// history of the incoming document does not extend the stored one.
	ErrHistoryRewrite = errors.New("document history is append-only")
)

// DocumentStore persists governed documents. Implementations must return
// deep copies so callers never share state with the store.
type DocumentStore interface {
	// Create inserts a new document at revision 1
	Create(ctx context.Context, doc domain.Document) fp.Result[domain.Document]
	// Get returns the document or an error wrapping domain.ErrDocumentNotFound
	Get(ctx context.Context, id domain.DocumentID) fp.Result[domain.Document]
	// Save writes doc if the stored revision equals doc.Revision and
	// returns it with the revision incremented.
	Save(ctx context.Context, doc domain.Document) fp.Result[domain.Document]
	// ListByStatus returns documents in any of the given statuses ordered
	// by UpdatedAt then ID.
	ListByStatus(ctx context.Context, statuses ...domain.Status) fp.Result[[]domain.Document]
}

func notFound(id domain.DocumentID) error {
	return domain.NewDomainError(domain.ErrDocumentNotFound, "document %s not found", id)
}
