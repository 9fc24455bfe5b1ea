package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/zlovtnik/docgov/internal/governance/domain"
	"github.com/zlovtnik/docgov/pkg/fp"
)

// ExtendRequest represents an expiry extension
type ExtendRequest struct {
	NewExpiryDate time.Time
	Reason        string
}

// RenewRequest represents the renewal of an expired document. ContentRef
// and Label are optional.
type RenewRequest struct {
	NewExpiryDate time.Time
	Reason        string
	ContentRef    string
	Label         string
}

// Extend moves the expiry date of an in-force document without re-approval
func (s *DocumentService) Extend(ctx context.Context, id domain.DocumentID, actor string, req ExtendRequest) fp.Result[domain.Document] {
	return s.mutate(ctx, id, domain.ActionExtend, func(doc domain.Document, now time.Time) (domain.Document, domain.Transition, error) {
		return domain.Extend(doc, domain.ExtendParams{
			NewExpiryDate: req.NewExpiryDate,
			Reason:        req.Reason,
			Actor:         actor,
		}, now)
	})
}

// RenewFromExpired resubmits an expired document with a new expiry date
func (s *DocumentService) RenewFromExpired(ctx context.Context, id domain.DocumentID, actor string, req RenewRequest) fp.Result[domain.Document] {
	return s.mutate(ctx, id, domain.ActionRenew, func(doc domain.Document, now time.Time) (domain.Document, domain.Transition, error) {
		return domain.Renew(doc,
			domain.ExtendParams{NewExpiryDate: req.NewExpiryDate, Reason: req.Reason, Actor: actor},
			domain.VersionParams{ContentRef: req.ContentRef, Label: req.Label},
			now)
	})
}

// ExpiryState computes the expiry classification of a document now
func (s *DocumentService) ExpiryState(ctx context.Context, id domain.DocumentID) fp.Result[domain.ExpiryState] {
	return fp.Map(func(doc domain.Document) domain.ExpiryState {
		return domain.ComputeExpiryState(doc, s.clock.Now(), s.nearExpiryDays)
	})(s.store.Get(ctx, id))
}

// EffectiveStatus returns the status readers should see for doc now
func (s *DocumentService) EffectiveStatus(doc domain.Document) domain.Status {
	return domain.EffectiveStatus(doc, s.clock.Now(), s.nearExpiryDays)
}

// ListExpiringSoon lists in-force documents inside the near-expiry window,
// soonest expiry first
func (s *DocumentService) ListExpiringSoon(ctx context.Context) fp.Result[[]domain.Document] {
	return s.listInForce(ctx, domain.StatusNearExpired)
}

// ListExpired lists documents whose expiry date has passed
func (s *DocumentService) ListExpired(ctx context.Context) fp.Result[[]domain.Document] {
	return s.listInForce(ctx, domain.StatusExpired)
}

func (s *DocumentService) listInForce(ctx context.Context, want domain.Status) fp.Result[[]domain.Document] {
	result := s.store.ListByStatus(ctx, domain.StatusActive, domain.StatusNearExpired, domain.StatusExpired)
	if fp.IsFailure(result) {
		return result
	}
	now := s.clock.Now()
	docs := make([]domain.Document, 0)
	for _, doc := range fp.GetValue(result) {
		if domain.EffectiveStatus(doc, now, s.nearExpiryDays) == want {
			docs = append(docs, doc)
		}
	}
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].ExpiryDate.Before(*docs[j].ExpiryDate)
	})
	return fp.Success(docs)
}

// SweepExpiry stores the derived expiry status of every in-force document
// whose stored status is out of date. It returns how many were updated.
func (s *DocumentService) SweepExpiry(ctx context.Context) (int, error) {
	result := s.store.ListByStatus(ctx, domain.StatusActive, domain.StatusNearExpired, domain.StatusExpired)
	if fp.IsFailure(result) {
		return 0, fmt.Errorf("list in-force documents: %w", fp.GetError(result))
	}

	now := s.clock.Now()
	updated := 0
	var firstErr error
	for _, doc := range fp.GetValue(result) {
		if domain.EffectiveStatus(doc, now, s.nearExpiryDays) == doc.Status {
			continue
		}
		if err := ctx.Err(); err != nil {
			return updated, err
		}
		saved := s.mutate(ctx, doc.ID, domain.ActionExpirySweep, func(current domain.Document, at time.Time) (domain.Document, domain.Transition, error) {
			next, tr, changed := domain.MaterializeExpiry(current, at, s.nearExpiryDays)
			if !changed {
				return current, tr, errUnchanged
			}
			return next, tr, nil
		})
		switch err := fp.GetError(saved); {
		case err == nil:
			updated++
			expirySweepDocuments.WithLabelValues(string(fp.GetValue(saved).Status)).Inc()
		case err == errUnchanged:
		case firstErr == nil:
			firstErr = err
		}
	}
	return updated, firstErr
}

// errUnchanged aborts a sweep mutation whose document no longer needs it
var errUnchanged = domain.NewDomainError(domain.ErrInvalidTransition, "expiry status already current")
