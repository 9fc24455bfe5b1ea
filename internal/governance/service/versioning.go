package service

import (
	"context"
	"time"

	"github.com/zlovtnik/docgov/internal/governance/domain"
	"github.com/zlovtnik/docgov/pkg/fp"
)

// VersionRequest represents new content for a document. Label is an
// optional explicit version number; ContentRef may be empty on resubmit to
// keep the current content.
type VersionRequest struct {
	ChangeLog  string
	ContentRef string
	Label      string
}

// CreateVersion adds a version and restarts the approval chain
func (s *DocumentService) CreateVersion(ctx context.Context, id domain.DocumentID, actor string, req VersionRequest) fp.Result[domain.Document] {
	return s.mutate(ctx, id, domain.ActionCreateVersion, func(doc domain.Document, now time.Time) (domain.Document, domain.Transition, error) {
		return domain.AddVersion(doc, domain.VersionParams{
			ChangeLog:  req.ChangeLog,
			ContentRef: req.ContentRef,
			Label:      req.Label,
			Actor:      actor,
		}, now)
	})
}

// RestoreVersion adds a version mirroring an earlier one and restarts the
// approval chain
func (s *DocumentService) RestoreVersion(ctx context.Context, id domain.DocumentID, actor, number string) fp.Result[domain.Document] {
	return s.mutate(ctx, id, domain.ActionRestoreVersion, func(doc domain.Document, now time.Time) (domain.Document, domain.Transition, error) {
		return domain.Restore(doc, number, actor, now)
	})
}

// Resubmit restarts the approval chain of a rejected or expired document.
// req.ChangeLog carries the resubmission reason.
func (s *DocumentService) Resubmit(ctx context.Context, id domain.DocumentID, actor string, req VersionRequest) fp.Result[domain.Document] {
	return s.mutate(ctx, id, domain.ActionResubmit, func(doc domain.Document, now time.Time) (domain.Document, domain.Transition, error) {
		return domain.Resubmit(doc, domain.VersionParams{
			ChangeLog:  req.ChangeLog,
			ContentRef: req.ContentRef,
			Label:      req.Label,
			Actor:      actor,
		}, now)
	})
}
