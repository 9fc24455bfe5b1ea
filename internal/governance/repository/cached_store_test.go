package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zlovtnik/docgov/internal/governance/domain"
	"github.com/zlovtnik/docgov/pkg/fp"
)

type countingStore struct {
	DocumentStore
	gets int
}

func (s *countingStore) Get(ctx context.Context, id domain.DocumentID) fp.Result[domain.Document] {
	s.gets++
	return s.DocumentStore.Get(ctx, id)
}

func TestCachedStore_ServesRepeatedReads(t *testing.T) {
	ctx := context.Background()
	backing := &countingStore{DocumentStore: NewMemoryStore()}
	store := NewCachedStore(backing, 16, time.Minute)

	doc := mustValue(t, store.Create(ctx, newDoc(t, domain.ClassificationCompany, base)))
	mustValue(t, store.Get(ctx, doc.ID))
	mustValue(t, store.Get(ctx, doc.ID))
	assert.Equal(t, 0, backing.gets)

	approved, _, err := domain.Approve(doc, domain.Level1, "lead", base)
	require.NoError(t, err)
	mustValue(t, store.Save(ctx, approved))

	got := mustValue(t, store.Get(ctx, doc.ID))
	assert.Equal(t, domain.StatusPendingLevel2, got.Status)
	assert.Equal(t, int64(2), got.Revision)
	assert.Equal(t, 0, backing.gets)
}

func TestCachedStore_ConflictEvicts(t *testing.T) {
	ctx := context.Background()
	backing := &countingStore{DocumentStore: NewMemoryStore()}
	store := NewCachedStore(backing, 16, time.Minute)

	doc := mustValue(t, store.Create(ctx, newDoc(t, domain.ClassificationCompany, base)))

	// another instance moves the document on behind the cache
	other, _, err := domain.Approve(doc, domain.Level1, "lead", base)
	require.NoError(t, err)
	mustValue(t, backing.Save(ctx, other))

	stale := mustValue(t, store.Get(ctx, doc.ID))
	rejected, _, err := domain.Reject(stale, domain.Level1, "no", nil, "r", base)
	require.NoError(t, err)
	assert.ErrorIs(t, fp.GetError(store.Save(ctx, rejected)), ErrConflict)

	fresh := mustValue(t, store.Get(ctx, doc.ID))
	assert.Equal(t, domain.StatusPendingLevel2, fresh.Status)
	assert.Equal(t, 1, backing.gets)
}
