package repository

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/zlovtnik/docgov/internal/governance/domain"
	"github.com/zlovtnik/docgov/pkg/fp"
)

var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docgov_document_cache_hits_total",
		Help: "Document reads served from the LRU cache.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docgov_document_cache_misses_total",
		Help: "Document reads that went to the backing store.",
	})
)

// CachedStore keeps recently read documents in a per-instance LRU with TTL.
// A stale entry can only cause a Save conflict, never a lost update, since
// the backing store checks the revision.
type CachedStore struct {
	next  DocumentStore
	cache *expirable.LRU[domain.DocumentID, domain.Document]
}

// NewCachedStore wraps next with a cache of at most size entries
func NewCachedStore(next DocumentStore, size int, ttl time.Duration) *CachedStore {
	if next == nil {
		panic("backing document store is required")
	}
	return &CachedStore{
		next:  next,
		cache: expirable.NewLRU[domain.DocumentID, domain.Document](size, nil, ttl),
	}
}

// Create inserts through to the backing store and caches the result
func (s *CachedStore) Create(ctx context.Context, doc domain.Document) fp.Result[domain.Document] {
	return s.remember(s.next.Create(ctx, doc))
}

// Get serves from the cache when possible
func (s *CachedStore) Get(ctx context.Context, id domain.DocumentID) fp.Result[domain.Document] {
	if doc, ok := s.cache.Get(id); ok {
		cacheHitsTotal.Inc()
		return fp.Success(doc.Clone())
	}
	cacheMissesTotal.Inc()
	return s.remember(s.next.Get(ctx, id))
}

// Save writes through and refreshes the cache. Conflicts evict the entry
// so the next read sees the current revision.
func (s *CachedStore) Save(ctx context.Context, doc domain.Document) fp.Result[domain.Document] {
	result := s.next.Save(ctx, doc)
	if err := fp.GetError(result); err != nil {
		if errors.Is(err, ErrConflict) || errors.Is(err, domain.ErrDocumentNotFound) {
			s.cache.Remove(doc.ID)
		}
		return result
	}
	return s.remember(result)
}

// ListByStatus always reads the backing store
func (s *CachedStore) ListByStatus(ctx context.Context, statuses ...domain.Status) fp.Result[[]domain.Document] {
	return s.next.ListByStatus(ctx, statuses...)
}

func (s *CachedStore) remember(result fp.Result[domain.Document]) fp.Result[domain.Document] {
	if fp.IsSuccess(result) {
		doc := fp.GetValue(result)
		s.cache.Add(doc.ID, doc.Clone())
	}
	return result
}
