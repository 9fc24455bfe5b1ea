package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/zlovtnik/docgov/internal/governance/domain"
	"github.com/zlovtnik/docgov/pkg/fp"
)

// MemoryStore is an in-process DocumentStore
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[domain.DocumentID]domain.Document
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[domain.DocumentID]domain.Document)}
}

// Create inserts a new document
func (s *MemoryStore) Create(_ context.Context, doc domain.Document) fp.Result[domain.Document] {
	if err := doc.Validate(); err != nil {
		return fp.Failure[domain.Document](err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.docs[doc.ID]; exists {
		return fp.Failure[domain.Document](fmt.Errorf("%w: document %s already exists", ErrConflict, doc.ID))
	}
	doc = doc.Clone()
	doc.Revision = 1
	s.docs[doc.ID] = doc
	return fp.Success(doc.Clone())
}

// Get retrieves a document by ID
func (s *MemoryStore) Get(_ context.Context, id domain.DocumentID) fp.Result[domain.Document] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return fp.Failure[domain.Document](notFound(id))
	}
	return fp.Success(doc.Clone())
}

// Save replaces a document if its revision is current
func (s *MemoryStore) Save(_ context.Context, doc domain.Document) fp.Result[domain.Document] {
	if err := doc.Validate(); err != nil {
		return fp.Failure[domain.Document](err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.docs[doc.ID]
	if !ok {
		return fp.Failure[domain.Document](notFound(doc.ID))
	}
	if stored.Revision != doc.Revision {
		return fp.Failure[domain.Document](fmt.Errorf("%w: document %s is at revision %d, not %d",
			ErrConflict, doc.ID, stored.Revision, doc.Revision))
	}
	if _, err := appendedVersions(stored, doc); err != nil {
		return fp.Failure[domain.Document](err)
	}
	if _, err := appendedExtensions(stored, doc); err != nil {
		return fp.Failure[domain.Document](err)
	}

	doc = doc.Clone()
	doc.Revision++
	s.docs[doc.ID] = doc
	return fp.Success(doc.Clone())
}

// ListByStatus lists documents in any of the given statuses
func (s *MemoryStore) ListByStatus(_ context.Context, statuses ...domain.Status) fp.Result[[]domain.Document] {
	want := statusSet(statuses)

	s.mu.RLock()
	docs := make([]domain.Document, 0)
	for _, doc := range s.docs {
		if want[doc.Status] {
			docs = append(docs, doc.Clone())
		}
	}
	s.mu.RUnlock()

	sortDocuments(docs)
	return fp.Success(docs)
}
