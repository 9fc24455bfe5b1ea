package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextVersionNumber(t *testing.T) {
	n := InitialVersionNumber
	labels := []string{"1.0"}
	for i := 0; i < 10; i++ {
		n = NextVersionNumber(n)
		labels = append(labels, FormatVersionNumber(n))
	}
	assert.Equal(t, []string{"1.0", "1.1", "1.2", "1.3", "1.4", "1.5", "1.6", "1.7", "1.8", "1.9", "2.0"}, labels)
}

func TestParseVersionNumber(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"1.3", "1.3", false},
		{" 2 ", "2.0", false},
		{"1.25", "1.25", false},
		{"abc", "", true},
		{"0", "", true},
		{"-1.0", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseVersionNumber(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, FormatVersionNumber(got))
		})
	}
}

func TestResolveVersionNumber(t *testing.T) {
	current := decimal.RequireFromString("1.4")

	n, err := resolveVersionNumber(current, "")
	require.NoError(t, err)
	assert.Equal(t, "1.5", FormatVersionNumber(n))

	n, err = resolveVersionNumber(current, "3")
	require.NoError(t, err)
	assert.Equal(t, "3.0", FormatVersionNumber(n))

	_, err = resolveVersionNumber(current, "1.40")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
