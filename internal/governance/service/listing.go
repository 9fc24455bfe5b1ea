package service

import (
	"context"

	"github.com/zlovtnik/docgov/internal/governance/domain"
	"github.com/zlovtnik/docgov/pkg/fp"
)

// ListByBucket lists the documents pending, approved or rejected at level
func (s *DocumentService) ListByBucket(ctx context.Context, level domain.Level, bucket domain.Bucket) fp.Result[[]domain.Document] {
	if !level.IsValid() {
		return fp.Failure[[]domain.Document](domain.NewDomainError(domain.ErrInvalidInput,
			"level must be between 1 and %d, got %d", domain.MaxLevel, level))
	}
	statuses := domain.BucketStatuses(level, bucket)
	if len(statuses) == 0 {
		return fp.Failure[[]domain.Document](domain.NewDomainError(domain.ErrInvalidInput, "unknown bucket %q", bucket))
	}

	return fp.Map(func(docs []domain.Document) []domain.Document {
		out := make([]domain.Document, 0, len(docs))
		for _, doc := range docs {
			if domain.InBucket(doc, level, bucket) {
				out = append(out, doc)
			}
		}
		return out
	})(s.store.ListByStatus(ctx, statuses...))
}

// ListPending lists documents awaiting a decision at level
func (s *DocumentService) ListPending(ctx context.Context, level domain.Level) fp.Result[[]domain.Document] {
	return s.ListByBucket(ctx, level, domain.BucketPending)
}

// ListApproved lists documents that have passed level
func (s *DocumentService) ListApproved(ctx context.Context, level domain.Level) fp.Result[[]domain.Document] {
	return s.ListByBucket(ctx, level, domain.BucketApproved)
}

// ListRejected lists documents rejected at level
func (s *DocumentService) ListRejected(ctx context.Context, level domain.Level) fp.Result[[]domain.Document] {
	return s.ListByBucket(ctx, level, domain.BucketRejected)
}

// ListByStatus lists documents by stored status
func (s *DocumentService) ListByStatus(ctx context.Context, statuses ...domain.Status) fp.Result[[]domain.Document] {
	return s.store.ListByStatus(ctx, statuses...)
}
