package domain

import "strings"

// Bucket groups documents relative to one approval level
type Bucket string

const (
	BucketPending  Bucket = "pending"
	BucketApproved Bucket = "approved"
	BucketRejected Bucket = "rejected"
)

// ParseBucket parses a bucket name, case-insensitively
func ParseBucket(s string) (Bucket, error) {
	b := Bucket(strings.ToLower(strings.TrimSpace(s)))
	switch b {
	case BucketPending, BucketApproved, BucketRejected:
		return b, nil
	}
	return "", NewDomainError(ErrInvalidInput, "unknown bucket %q", s)
}

// BucketStatuses returns the stored statuses that can place a document in
// the bucket for level. It over-approximates the approved bucket, use
// InBucket to filter by classification.
func BucketStatuses(level Level, bucket Bucket) []Status {
	if !level.IsValid() {
		return nil
	}
	switch bucket {
	case BucketPending:
		return []Status{PendingStatus(level)}
	case BucketRejected:
		return []Status{RejectedStatus(level)}
	case BucketApproved:
		var statuses []Status
		for l := level + 1; l <= MaxLevel; l++ {
			statuses = append(statuses, PendingStatus(l), RejectedStatus(l))
		}
		return append(statuses, StatusActive, StatusNearExpired, StatusExpired)
	}
	return nil
}

// InBucket reports whether doc belongs to the bucket for level. A document
// is approved at level N once its status is past N in its own chain.
// Archived documents belong to no bucket.
func InBucket(doc Document, level Level, bucket Bucket) bool {
	if !doc.Classification.Contains(level) {
		return false
	}
	for _, s := range BucketStatuses(level, bucket) {
		if doc.Status == s {
			return true
		}
	}
	return false
}
