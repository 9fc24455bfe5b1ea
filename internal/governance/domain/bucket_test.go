package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInBucket(t *testing.T) {
	tests := []struct {
		name   string
		class  Classification
		status Status
		level  Level
		bucket Bucket
		want   bool
	}{
		{"pending at its level", ClassificationTraining, StatusPendingLevel2, Level2, BucketPending, true},
		{"pending elsewhere", ClassificationTraining, StatusPendingLevel2, Level1, BucketPending, false},
		{"approved past level", ClassificationTraining, StatusPendingLevel2, Level1, BucketApproved, true},
		{"rejected later is approved earlier", ClassificationTraining, StatusRejectedLevel3, Level2, BucketApproved, true},
		{"rejected at level", ClassificationCompany, StatusRejectedLevel1, Level1, BucketRejected, true},
		{"active is approved at every level", ClassificationTraining, StatusActive, Level3, BucketApproved, true},
		{"expired is approved", ClassificationCompany, StatusExpired, Level2, BucketApproved, true},
		{"company has no level 3", ClassificationCompany, StatusActive, Level3, BucketApproved, false},
		{"archived in no bucket", ClassificationTraining, StatusArchived, Level1, BucketApproved, false},
		{"pending not approved at own level", ClassificationTraining, StatusPendingLevel1, Level1, BucketApproved, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Document{Classification: tt.class, Status: tt.status}
			assert.Equal(t, tt.want, InBucket(doc, tt.level, tt.bucket))
		})
	}
}

func TestParseBucket(t *testing.T) {
	b, err := ParseBucket(" Approved ")
	assert.NoError(t, err)
	assert.Equal(t, BucketApproved, b)

	_, err = ParseBucket("done")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestClassificationStatuses(t *testing.T) {
	assert.Len(t, ClassificationTraining.Statuses(), 10)
	assert.NotContains(t, ClassificationCompany.Statuses(), StatusPendingLevel3)
	assert.False(t, ClassificationCompany.Allows(StatusRejectedLevel3))
	assert.True(t, ClassificationCompany.Allows(StatusArchived))
}
