package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// DocumentID identifies a governed document
type DocumentID uuid.UUID

func (id DocumentID) String() string { return uuid.UUID(id).String() }
func (id DocumentID) IsZero() bool   { return uuid.UUID(id) == uuid.Nil }

func (id DocumentID) MarshalText() ([]byte, error) {
	return uuid.UUID(id).MarshalText()
}

func (id *DocumentID) UnmarshalText(b []byte) error {
	parsed, err := ParseDocumentID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// NewDocumentID creates a new DocumentID
func NewDocumentID() DocumentID { return DocumentID(uuid.New()) }

// ParseDocumentID parses a string to a DocumentID
func ParseDocumentID(s string) (DocumentID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return DocumentID{}, NewDomainError(ErrInvalidInput, "invalid document id %q", s)
	}
	return DocumentID(u), nil
}

// Classification decides how many approval levels a document passes through
type Classification string

const (
	ClassificationTraining Classification = "TRAINING_DOCUMENT"
	ClassificationCompany  Classification = "COMPANY_DOCUMENT"
)

var chainLengths = map[Classification]int{
	ClassificationTraining: 3,
	ClassificationCompany:  2,
}

// ChainLength returns the number of approval levels, or 0 for an unknown classification
func (c Classification) ChainLength() int {
	return chainLengths[c]
}

// IsValid checks if the classification is known
func (c Classification) IsValid() bool {
	_, ok := chainLengths[c]
	return ok
}

// Contains reports whether level belongs to this classification's chain
func (c Classification) Contains(level Level) bool {
	return level >= Level1 && int(level) <= c.ChainLength()
}

// Statuses lists every status a document of this classification may hold
func (c Classification) Statuses() []Status {
	n := c.ChainLength()
	statuses := make([]Status, 0, 2*n+4)
	for l := Level1; int(l) <= n; l++ {
		statuses = append(statuses, PendingStatus(l), RejectedStatus(l))
	}
	return append(statuses, StatusActive, StatusNearExpired, StatusExpired, StatusArchived)
}

// Allows checks if a status is representable for this classification
func (c Classification) Allows(s Status) bool {
	if l, ok := s.PendingLevel(); ok {
		return c.Contains(l)
	}
	if l, ok := s.RejectedLevel(); ok {
		return c.Contains(l)
	}
	return s.IsValid()
}

// ParseClassification parses a classification name, case-insensitively
func ParseClassification(s string) (Classification, error) {
	c := Classification(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", NewDomainError(ErrInvalidInput, "unknown classification %q", s)
	}
	return c, nil
}

// Level is a 1-based approval level
type Level int

const (
	Level1 Level = 1
	Level2 Level = 2
	Level3 Level = 3

	// MaxLevel is the longest chain of any classification
	MaxLevel = 3
)

// IsValid checks if the level is within 1..MaxLevel
func (l Level) IsValid() bool {
	return l >= Level1 && l <= MaxLevel
}

func (l Level) index() int {
	return int(l) - 1
}

// Status is the stored lifecycle status of a document
type Status string

const (
	StatusPendingLevel1  Status = "PENDING_LEVEL_1"
	StatusPendingLevel2  Status = "PENDING_LEVEL_2"
	StatusPendingLevel3  Status = "PENDING_LEVEL_3"
	StatusRejectedLevel1 Status = "REJECTED_LEVEL_1"
	StatusRejectedLevel2 Status = "REJECTED_LEVEL_2"
	StatusRejectedLevel3 Status = "REJECTED_LEVEL_3"
	StatusActive         Status = "ACTIVE"
	StatusNearExpired    Status = "NEAR_EXPIRED"
	StatusExpired        Status = "EXPIRED"
	StatusArchived       Status = "ARCHIVED"
)

var (
	pendingByLevel  = [MaxLevel]Status{StatusPendingLevel1, StatusPendingLevel2, StatusPendingLevel3}
	rejectedByLevel = [MaxLevel]Status{StatusRejectedLevel1, StatusRejectedLevel2, StatusRejectedLevel3}
)

// AllStatuses is the closed set of statuses
var AllStatuses = []Status{
	StatusPendingLevel1, StatusPendingLevel2, StatusPendingLevel3,
	StatusRejectedLevel1, StatusRejectedLevel2, StatusRejectedLevel3,
	StatusActive, StatusNearExpired, StatusExpired, StatusArchived,
}

// PendingStatus returns the pending status for a level
func PendingStatus(l Level) Status {
	if !l.IsValid() {
		panic(fmt.Sprintf("pending status for invalid level %d", l))
	}
	return pendingByLevel[l.index()]
}

// RejectedStatus returns the rejected status for a level
func RejectedStatus(l Level) Status {
	if !l.IsValid() {
		panic(fmt.Sprintf("rejected status for invalid level %d", l))
	}
	return rejectedByLevel[l.index()]
}

// PendingLevel returns the level awaiting a decision, if any
func (s Status) PendingLevel() (Level, bool) {
	for i, p := range pendingByLevel {
		if s == p {
			return Level(i + 1), true
		}
	}
	return 0, false
}

// RejectedLevel returns the level that rejected the document, if any
func (s Status) RejectedLevel() (Level, bool) {
	for i, r := range rejectedByLevel {
		if s == r {
			return Level(i + 1), true
		}
	}
	return 0, false
}

// IsValid checks if the status is part of the closed set
func (s Status) IsValid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// IsInForce reports whether the document has completed its approval chain
// and is not archived.
func (s Status) IsInForce() bool {
	return s == StatusActive || s == StatusNearExpired || s == StatusExpired
}

// IsTerminal checks if no further transitions are allowed
func (s Status) IsTerminal() bool {
	return s == StatusArchived
}
