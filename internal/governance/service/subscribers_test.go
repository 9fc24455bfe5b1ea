package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zlovtnik/docgov/internal/governance/domain"
	"github.com/zlovtnik/docgov/internal/governance/repository"
	"github.com/zlovtnik/docgov/pkg/fp"
)

func TestNotificationsFor(t *testing.T) {
	id := domain.NewDocumentID()
	base := domain.Transition{DocumentID: id, Title: "Fire drill", AuthorID: "author-1", Version: "1.0"}

	tests := []struct {
		name       string
		mutate     func(tr *domain.Transition)
		recipients []string
	}{
		{"submission alerts level 1", func(tr *domain.Transition) {
			tr.Action, tr.To = domain.ActionSubmit, domain.StatusPendingLevel1
		}, []string{"reviewers:level-1"}},
		{"rejection tells the author", func(tr *domain.Transition) {
			tr.Action, tr.Level, tr.From, tr.To, tr.Reason = domain.ActionReject, domain.Level2, domain.StatusPendingLevel2, domain.StatusRejectedLevel2, "typos"
		}, []string{"author-1"}},
		{"activation tells the author", func(tr *domain.Transition) {
			tr.Action, tr.Level, tr.From, tr.To = domain.ActionApprove, domain.Level2, domain.StatusPendingLevel2, domain.StatusActive
		}, []string{"author-1"}},
		{"extension is silent", func(tr *domain.Transition) {
			tr.Action, tr.From, tr.To = domain.ActionExtend, domain.StatusActive, domain.StatusActive
		}, nil},
		{"expiry tells the author", func(tr *domain.Transition) {
			tr.Action, tr.From, tr.To = domain.ActionExpirySweep, domain.StatusNearExpired, domain.StatusExpired
		}, []string{"author-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := base
			tt.mutate(&tr)
			var got []string
			for _, n := range notificationsFor(tr) {
				got = append(got, n.Recipient)
			}
			assert.Equal(t, tt.recipients, got)
		})
	}
}

func TestAuditSubscriber(t *testing.T) {
	ctx := context.Background()
	audit := repository.NewMemoryAuditRepository()
	sub := NewAuditSubscriber(audit)

	doc, _, err := domain.NewDocument(domain.SubmitParams{
		ContentRef: "blob://x", Classification: domain.ClassificationCompany, AuthorID: "a",
	}, time.Now())
	require.NoError(t, err)
	doc, tr, err := domain.Reject(doc, domain.Level1, "missing owner", []string{"blob://annotated.pdf"}, "lead", time.Now())
	require.NoError(t, err)

	require.NoError(t, sub.Handle(ctx, Event{Transition: tr, Document: doc}))

	entries, err := fp.Unwrap(audit.ListByDocument(ctx, doc.ID, 0, 10))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionReject, entries[0].Action)
	assert.Equal(t, "lead", entries[0].Actor)
	assert.Equal(t, "missing owner", entries[0].Reason)
	assert.Equal(t, []string{"blob://annotated.pdf"}, entries[0].Metadata["attachments"])
}

// lostAckWriter stores every entry but reports the first write as failed,
// like an insert that committed before its connection dropped.
type lostAckWriter struct {
	*repository.MemoryAuditRepository
	calls int32
}

func (w *lostAckWriter) Create(ctx context.Context, entry domain.AuditEntry) fp.Result[domain.AuditEntry] {
	result := w.MemoryAuditRepository.Create(ctx, entry)
	if atomic.AddInt32(&w.calls, 1) == 1 {
		return fp.Failure[domain.AuditEntry](errors.New("connection reset"))
	}
	return result
}

func TestAuditSubscriberRetryWritesOnce(t *testing.T) {
	ctx := context.Background()
	writer := &lostAckWriter{MemoryAuditRepository: repository.NewMemoryAuditRepository()}
	dispatcher := NewDispatcher(DispatcherConfig{Workers: 1, RetryDelay: time.Millisecond}, nil, NewAuditSubscriber(writer))
	dispatcher.Start(ctx)

	doc, tr, err := domain.NewDocument(domain.SubmitParams{
		ContentRef: "blob://x", Classification: domain.ClassificationCompany, AuthorID: "a",
	}, time.Now())
	require.NoError(t, err)
	eventID := uuid.New().String()
	require.True(t, dispatcher.Publish(Event{ID: eventID, Transition: tr, Document: doc}))
	dispatcher.Stop()

	assert.Equal(t, int32(2), atomic.LoadInt32(&writer.calls))
	entries, err := fp.Unwrap(writer.ListByDocument(ctx, doc.ID, 0, 10))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, eventID, entries[0].ID)
}
