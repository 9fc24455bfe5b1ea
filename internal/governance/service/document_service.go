package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/zlovtnik/docgov/internal/governance/domain"
	"github.com/zlovtnik/docgov/internal/governance/repository"
	"github.com/zlovtnik/docgov/pkg/fp"
)

// Clock supplies the current time
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock returns wall-clock UTC time
func SystemClock() Clock {
	return ClockFunc(func() time.Time { return time.Now().UTC() })
}

// maxConflictRetries bounds how often a mutation is re-validated after
// another writer committed first.
const maxConflictRetries = 2

// Options configures a DocumentService
type Options struct {
	// NearExpiryDays is the near-expiry window; 0 means domain.DefaultNearExpiryDays
	NearExpiryDays int
	Clock          Clock
	Dispatcher     *Dispatcher
	Logger         *slog.Logger
}

// DocumentService runs the document lifecycle. Every mutation is a
// read-validate-write against one document, serialised per document, with
// side effects published only after the write committed.
type DocumentService struct {
	store          repository.DocumentStore
	locks          *keyedMutex
	clock          Clock
	nearExpiryDays int
	dispatcher     *Dispatcher
	logger         *slog.Logger
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(store repository.DocumentStore, opts Options) *DocumentService {
	if store == nil {
		panic("document store is required")
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock()
	}
	if opts.NearExpiryDays <= 0 {
		opts.NearExpiryDays = domain.DefaultNearExpiryDays
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &DocumentService{
		store:          store,
		locks:          newKeyedMutex(),
		clock:          opts.Clock,
		nearExpiryDays: opts.NearExpiryDays,
		dispatcher:     opts.Dispatcher,
		logger:         opts.Logger,
	}
}

// Now returns the service clock's current time
func (s *DocumentService) Now() time.Time {
	return s.clock.Now()
}

// NearExpiryDays returns the configured near-expiry window
func (s *DocumentService) NearExpiryDays() int {
	return s.nearExpiryDays
}

// SubmitRequest represents a new document submission
type SubmitRequest struct {
	Title          string
	ContentRef     string
	Classification domain.Classification
	ChangeLog      string
	ExpiryDate     *time.Time
}

// Submit creates a document at PENDING_LEVEL_1 with version 1.0
func (s *DocumentService) Submit(ctx context.Context, authorID string, req SubmitRequest) fp.Result[domain.Document] {
	doc, tr, err := domain.NewDocument(domain.SubmitParams{
		Title:          req.Title,
		ContentRef:     req.ContentRef,
		Classification: req.Classification,
		AuthorID:       authorID,
		ChangeLog:      req.ChangeLog,
		ExpiryDate:     req.ExpiryDate,
	}, s.clock.Now())
	if err != nil {
		s.record(domain.ActionSubmit, err)
		return fp.Failure[domain.Document](err)
	}

	result := s.store.Create(ctx, doc)
	s.record(domain.ActionSubmit, fp.GetError(result))
	if fp.IsSuccess(result) {
		s.publish(tr, fp.GetValue(result))
	}
	return result
}

// Get retrieves a document by ID
func (s *DocumentService) Get(ctx context.Context, id domain.DocumentID) fp.Result[domain.Document] {
	return s.store.Get(ctx, id)
}

// ApproveLevel approves level of a document
func (s *DocumentService) ApproveLevel(ctx context.Context, id domain.DocumentID, level domain.Level, approver string) fp.Result[domain.Document] {
	return s.mutate(ctx, id, domain.ActionApprove, func(doc domain.Document, now time.Time) (domain.Document, domain.Transition, error) {
		return domain.Approve(doc, level, approver, now)
	})
}

// RejectRequest represents a rejection at one level
type RejectRequest struct {
	Reason      string
	Attachments []string
}

// RejectLevel rejects a document at level
func (s *DocumentService) RejectLevel(ctx context.Context, id domain.DocumentID, level domain.Level, rejector string, req RejectRequest) fp.Result[domain.Document] {
	return s.mutate(ctx, id, domain.ActionReject, func(doc domain.Document, now time.Time) (domain.Document, domain.Transition, error) {
		return domain.Reject(doc, level, req.Reason, req.Attachments, rejector, now)
	})
}

// Archive retires a document
func (s *DocumentService) Archive(ctx context.Context, id domain.DocumentID, actor, reason string) fp.Result[domain.Document] {
	return s.mutate(ctx, id, domain.ActionArchive, func(doc domain.Document, now time.Time) (domain.Document, domain.Transition, error) {
		return domain.Archive(doc, actor, reason, now)
	})
}

type transitionFunc func(doc domain.Document, now time.Time) (domain.Document, domain.Transition, error)

// mutate runs apply against the current snapshot of a document and saves
// the result. A revision conflict from another writer re-runs the
// validation against the fresh snapshot.
func (s *DocumentService) mutate(ctx context.Context, id domain.DocumentID, action domain.Action, apply transitionFunc) fp.Result[domain.Document] {
	unlock := s.locks.Lock(id)
	defer unlock()

	var result fp.Result[domain.Document]
	var tr domain.Transition
	for attempt := 0; attempt <= maxConflictRetries; attempt++ {
		current := s.store.Get(ctx, id)
		if fp.IsFailure(current) {
			s.record(action, fp.GetError(current))
			return current
		}

		next, t, err := apply(fp.GetValue(current), s.clock.Now())
		if err != nil {
			if err != errUnchanged {
				s.record(action, err)
			}
			return fp.Failure[domain.Document](err)
		}
		tr = t

		result = s.store.Save(ctx, next)
		if !errors.Is(fp.GetError(result), repository.ErrConflict) {
			break
		}
		s.logger.Warn("document changed concurrently, retrying",
			"document_id", id.String(), "action", string(action), "attempt", attempt+1)
	}

	s.record(action, fp.GetError(result))
	if fp.IsSuccess(result) {
		s.publish(tr, fp.GetValue(result))
	}
	return result
}

func (s *DocumentService) publish(tr domain.Transition, doc domain.Document) {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Publish(Event{ID: uuid.New().String(), Transition: tr, Document: doc})
}

func (s *DocumentService) record(action domain.Action, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case domain.ErrorCode(err) != "":
		outcome = "refused"
	default:
		outcome = "error"
		s.logger.Error("document operation failed", "action", string(action), "error", err)
	}
	transitionsTotal.WithLabelValues(string(action), outcome).Inc()
}
