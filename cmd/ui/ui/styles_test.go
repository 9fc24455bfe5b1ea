package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextBucketWraps(t *testing.T) {
	assert.Equal(t, "approved", NextBucket("pending"))
	assert.Equal(t, "rejected", NextBucket("approved"))
	assert.Equal(t, "pending", NextBucket("rejected"))
	assert.Equal(t, "pending", NextBucket("bogus"))
}

func TestStatusStyleColors(t *testing.T) {
	assert.Equal(t, neonGreen, StatusStyle("ACTIVE").GetForeground())
	assert.Equal(t, neonOrange, StatusStyle("PENDING_LEVEL_2").GetForeground())
	assert.Equal(t, neonRed, StatusStyle("REJECTED_LEVEL_1").GetForeground())
	assert.Equal(t, neonYellow, StatusStyle("NEAR_EXPIRED").GetForeground())
	assert.Equal(t, textDim, StatusStyle("ARCHIVED").GetForeground())
}
