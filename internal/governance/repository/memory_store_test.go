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

var base = time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)

func newDoc(t *testing.T, c domain.Classification, at time.Time) domain.Document {
	t.Helper()
	doc, _, err := domain.NewDocument(domain.SubmitParams{
		Title:          "Onboarding",
		ContentRef:     "blob://onboarding.pdf",
		Classification: c,
		AuthorID:       "author-1",
	}, at)
	require.NoError(t, err)
	return doc
}

func mustValue[T any](t *testing.T, r fp.Result[T]) T {
	t.Helper()
	require.NoError(t, fp.GetError(r))
	return fp.GetValue(r)
}

func TestMemoryStore_CreateGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	doc := newDoc(t, domain.ClassificationTraining, base)

	created := mustValue(t, store.Create(ctx, doc))
	assert.Equal(t, int64(1), created.Revision)

	got := mustValue(t, store.Get(ctx, doc.ID))
	assert.Equal(t, doc.ID, got.ID)
	assert.Equal(t, domain.StatusPendingLevel1, got.Status)

	// callers cannot reach into stored state
	got.Versions[0].ChangeLog = "tampered"
	again := mustValue(t, store.Get(ctx, doc.ID))
	assert.Equal(t, "Initial submission", again.Versions[0].ChangeLog)

	err := fp.GetError(store.Create(ctx, doc))
	assert.ErrorIs(t, err, ErrConflict)
}

func TestMemoryStore_GetMissing(t *testing.T) {
	err := fp.GetError(NewMemoryStore().Get(context.Background(), domain.NewDocumentID()))
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestMemoryStore_SaveChecksRevision(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	doc := mustValue(t, store.Create(ctx, newDoc(t, domain.ClassificationCompany, base)))

	approved, _, err := domain.Approve(doc, domain.Level1, "lead", base.Add(time.Hour))
	require.NoError(t, err)
	saved := mustValue(t, store.Save(ctx, approved))
	assert.Equal(t, int64(2), saved.Revision)

	// a second writer holding the old snapshot loses
	rejected, _, err := domain.Reject(doc, domain.Level1, "no", nil, "other", base.Add(time.Hour))
	require.NoError(t, err)
	err = fp.GetError(store.Save(ctx, rejected))
	assert.ErrorIs(t, err, ErrConflict)

	current := mustValue(t, store.Get(ctx, doc.ID))
	assert.Equal(t, domain.StatusPendingLevel2, current.Status)
}

func TestMemoryStore_SaveRefusesHistoryRewrite(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	doc := mustValue(t, store.Create(ctx, newDoc(t, domain.ClassificationCompany, base)))

	doc, _, err := domain.AddVersion(doc, domain.VersionParams{ChangeLog: "v2", ContentRef: "blob://v2", Actor: "e"}, base)
	require.NoError(t, err)
	doc = mustValue(t, store.Save(ctx, doc))

	truncated := doc.Clone()
	truncated.Versions = truncated.Versions[:1]
	assert.ErrorIs(t, fp.GetError(store.Save(ctx, truncated)), ErrHistoryRewrite)

	rewritten := doc.Clone()
	rewritten.Versions[1].ContentRef = "blob://forged"
	assert.ErrorIs(t, fp.GetError(store.Save(ctx, rewritten)), ErrHistoryRewrite)
}

func TestMemoryStore_SaveRefusesFieldEdits(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	doc := mustValue(t, store.Create(ctx, newDoc(t, domain.ClassificationTraining, base)))
	for l := domain.Level1; l <= domain.Level3; l++ {
		var err error
		doc, _, err = domain.Approve(doc, l, "lead", base.Add(time.Hour))
		require.NoError(t, err)
	}
	doc, _, err := domain.Extend(doc, domain.ExtendParams{
		NewExpiryDate: base.Add(400 * 24 * time.Hour), Reason: "annual review", Actor: "owner",
	}, base.Add(2*time.Hour))
	require.NoError(t, err)
	doc = mustValue(t, store.Save(ctx, doc))

	tests := []struct {
		name string
		edit func(d *domain.Document)
	}{
		{"version change log", func(d *domain.Document) { d.Versions[0].ChangeLog = "rewritten" }},
		{"version author", func(d *domain.Document) { d.Versions[0].UpdatedBy = "someone-else" }},
		{"version time", func(d *domain.Document) { d.Versions[0].UpdatedAt = base.Add(time.Minute) }},
		{"extension actor", func(d *domain.Document) { d.ExtensionHistory[0].ExtendedBy = "someone-else" }},
		{"extension renewal flag", func(d *domain.Document) { d.ExtensionHistory[0].Renewal = true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edited := doc.Clone()
			tt.edit(&edited)
			assert.ErrorIs(t, fp.GetError(store.Save(ctx, edited)), ErrHistoryRewrite)
		})
	}

	stored := mustValue(t, store.Get(ctx, doc.ID))
	assert.Equal(t, "Initial submission", stored.Versions[0].ChangeLog)
	assert.Equal(t, "owner", stored.ExtensionHistory[0].ExtendedBy)
}

func TestMemoryStore_ListByStatus(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	first := mustValue(t, store.Create(ctx, newDoc(t, domain.ClassificationTraining, base.Add(2*time.Hour))))
	second := mustValue(t, store.Create(ctx, newDoc(t, domain.ClassificationCompany, base)))
	third := mustValue(t, store.Create(ctx, newDoc(t, domain.ClassificationCompany, base.Add(time.Hour))))

	third, _, err := domain.Approve(third, domain.Level1, "lead", base.Add(3*time.Hour))
	require.NoError(t, err)
	mustValue(t, store.Save(ctx, third))

	pending := mustValue(t, store.ListByStatus(ctx, domain.StatusPendingLevel1))
	require.Len(t, pending, 2)
	assert.Equal(t, second.ID, pending[0].ID, "oldest first")
	assert.Equal(t, first.ID, pending[1].ID)

	both := mustValue(t, store.ListByStatus(ctx, domain.StatusPendingLevel1, domain.StatusPendingLevel2))
	assert.Len(t, both, 3)

	assert.Empty(t, mustValue(t, store.ListByStatus(ctx)))
}
