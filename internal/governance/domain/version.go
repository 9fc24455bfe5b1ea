package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// InitialVersionNumber is the number of the first version of every document
	InitialVersionNumber = decimal.New(10, -1)

	versionStep = decimal.New(1, -1)
)

// Version is one immutable entry of a document's version history
type Version struct {
	Number       decimal.Decimal  `json:"number"`
	ContentRef   string           `json:"content_ref"`
	ChangeLog    string           `json:"change_log"`
	UpdatedAt    time.Time        `json:"updated_at"`
	UpdatedBy    string           `json:"updated_by"`
	RestoredFrom *decimal.Decimal `json:"restored_from,omitempty"`
}

// Label renders the version number, always with at least one decimal place
func (v Version) Label() string {
	return FormatVersionNumber(v.Number)
}

// NextVersionNumber returns the default number following current
func NextVersionNumber(current decimal.Decimal) decimal.Decimal {
	return current.Add(versionStep)
}

// ParseVersionNumber parses a version label such as "1.3" or "2"
func ParseVersionNumber(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, NewDomainError(ErrInvalidInput, "invalid version number %q", s)
	}
	if !d.IsPositive() {
		return decimal.Decimal{}, NewDomainError(ErrInvalidInput, "version number must be positive, got %s", s)
	}
	return d, nil
}

// FormatVersionNumber renders "2" as "2.0" and leaves "1.25" untouched
func FormatVersionNumber(d decimal.Decimal) string {
	if d.Equal(d.Truncate(0)) {
		return d.StringFixed(1)
	}
	return d.String()
}

// resolveVersionNumber picks the number for a new version: the explicit
// label when given, otherwise current + 0.1.
func resolveVersionNumber(current decimal.Decimal, label string) (decimal.Decimal, error) {
	if strings.TrimSpace(label) == "" {
		return NextVersionNumber(current), nil
	}
	n, err := ParseVersionNumber(label)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if !n.GreaterThan(current) {
		return decimal.Decimal{}, NewDomainError(ErrInvalidInput,
			"version %s must be greater than current version %s", FormatVersionNumber(n), FormatVersionNumber(current))
	}
	return n, nil
}
