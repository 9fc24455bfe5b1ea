package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func withExpiry(expiry *time.Time) Document {
	return Document{Status: StatusActive, ExpiryDate: expiry}
}

func TestComputeExpiryState(t *testing.T) {
	now := t0
	at := func(d time.Duration) *time.Time {
		v := now.Add(d)
		return &v
	}

	tests := []struct {
		name      string
		expiry    *time.Time
		threshold int
		want      ExpiryState
	}{
		{"no expiry date", nil, 30, ExpiryState{Kind: ExpiryInForce}},
		{"far future", at(90 * day), 30, ExpiryState{Kind: ExpiryInForce, DaysLeft: 90, HasDate: true}},
		{"ten days out", at(10 * day), 30, ExpiryState{Kind: ExpiryNearExpiry, DaysLeft: 10, HasDate: true}},
		{"exactly at threshold", at(30 * day), 30, ExpiryState{Kind: ExpiryNearExpiry, DaysLeft: 30, HasDate: true}},
		{"just past threshold", at(30*day + time.Minute), 30, ExpiryState{Kind: ExpiryInForce, DaysLeft: 31, HasDate: true}},
		{"later today", at(time.Hour), 30, ExpiryState{Kind: ExpiryNearExpiry, DaysLeft: 1, HasDate: true}},
		{"expires now", at(0), 30, ExpiryState{Kind: ExpiryExpired, HasDate: true}},
		{"expired yesterday", at(-day), 30, ExpiryState{Kind: ExpiryExpired, HasDate: true}},
		{"zero threshold", at(2 * day), 0, ExpiryState{Kind: ExpiryInForce, DaysLeft: 2, HasDate: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeExpiryState(withExpiry(tt.expiry), now, tt.threshold))
		})
	}
}

func TestEffectiveStatus(t *testing.T) {
	expiry := t0.Add(10 * day)

	doc := withExpiry(&expiry)
	assert.Equal(t, StatusActive, EffectiveStatus(doc, t0, 5))
	assert.Equal(t, StatusNearExpired, EffectiveStatus(doc, t0, 30))
	assert.Equal(t, StatusExpired, EffectiveStatus(doc, t0.Add(11*day), 30))

	// a stored NEAR_EXPIRED is recomputed after an extension
	doc.Status = StatusNearExpired
	far := t0.Add(200 * day)
	doc.ExpiryDate = &far
	assert.Equal(t, StatusActive, EffectiveStatus(doc, t0, 30))

	pending := Document{Status: StatusPendingLevel2, ExpiryDate: &expiry}
	assert.Equal(t, StatusPendingLevel2, EffectiveStatus(pending, t0.Add(100*day), 30))
}
