package domain

import "time"

// DefaultNearExpiryDays is the window before expiry in which a document is
// reported as near expiry.
const DefaultNearExpiryDays = 30

const day = 24 * time.Hour

// ExpiryKind classifies a document against its expiry date
type ExpiryKind string

const (
	ExpiryInForce    ExpiryKind = "IN_FORCE"
	ExpiryNearExpiry ExpiryKind = "NEAR_EXPIRY"
	ExpiryExpired    ExpiryKind = "EXPIRED"
)

// ExpiryState is the result of ComputeExpiryState. DaysLeft is only
// meaningful for NEAR_EXPIRY and IN_FORCE with an expiry date.
type ExpiryState struct {
	Kind     ExpiryKind `json:"kind"`
	DaysLeft int        `json:"days_left"`
	HasDate  bool       `json:"has_expiry_date"`
}

// ComputeExpiryState classifies expiryDate against now. Days left are
// rounded up, so anything expiring later today counts as one day.
func ComputeExpiryState(doc Document, now time.Time, thresholdDays int) ExpiryState {
	if doc.ExpiryDate == nil {
		return ExpiryState{Kind: ExpiryInForce}
	}
	remaining := doc.ExpiryDate.Sub(now)
	if remaining <= 0 {
		return ExpiryState{Kind: ExpiryExpired, HasDate: true}
	}
	daysLeft := int((remaining + day - 1) / day)
	if daysLeft <= thresholdDays {
		return ExpiryState{Kind: ExpiryNearExpiry, DaysLeft: daysLeft, HasDate: true}
	}
	return ExpiryState{Kind: ExpiryInForce, DaysLeft: daysLeft, HasDate: true}
}

// EffectiveStatus derives the status a reader should see. In-force statuses
// are recomputed from the expiry date, everything else is returned as stored.
func EffectiveStatus(doc Document, now time.Time, thresholdDays int) Status {
	if !doc.Status.IsInForce() {
		return doc.Status
	}
	return statusForExpiry(ComputeExpiryState(doc, now, thresholdDays))
}

// IsExpired checks if the document is effectively expired at now
func IsExpired(doc Document, now time.Time) bool {
	return EffectiveStatus(doc, now, 0) == StatusExpired
}

func statusForExpiry(state ExpiryState) Status {
	switch state.Kind {
	case ExpiryExpired:
		return StatusExpired
	case ExpiryNearExpiry:
		return StatusNearExpired
	default:
		return StatusActive
	}
}
