package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Action names a lifecycle operation
type Action string

const (
	ActionSubmit         Action = "SUBMIT"
	ActionApprove        Action = "APPROVE"
	ActionReject         Action = "REJECT"
	ActionCreateVersion  Action = "CREATE_VERSION"
	ActionRestoreVersion Action = "RESTORE_VERSION"
	ActionResubmit       Action = "RESUBMIT"
	ActionExtend         Action = "EXTEND"
	ActionRenew          Action = "RENEW"
	ActionArchive        Action = "ARCHIVE"
	ActionExpirySweep    Action = "EXPIRY_SWEEP"
)

// Transition records a committed state change. It is the input of every
// post-commit side effect (audit, notification).
type Transition struct {
	DocumentID DocumentID `json:"document_id"`
	Title      string     `json:"title"`
	AuthorID   string     `json:"author_id"`
	Action     Action     `json:"action"`
	Level      Level      `json:"level,omitempty"`
	From       Status     `json:"from,omitempty"`
	To         Status     `json:"to"`
	Version    string     `json:"version"`
	Actor      string     `json:"actor"`
	Reason     string     `json:"reason,omitempty"`
	At         time.Time  `json:"at"`
}

// Activated reports whether the transition put the document in force
func (t Transition) Activated() bool {
	return t.To == StatusActive && !t.From.IsInForce()
}

func newTransition(doc Document, action Action, level Level, from Status, actor, reason string, at time.Time) Transition {
	return Transition{
		DocumentID: doc.ID,
		Title:      doc.Title,
		AuthorID:   doc.AuthorID,
		Action:     action,
		Level:      level,
		From:       from,
		To:         doc.Status,
		Version:    doc.CurrentVersion().Label(),
		Actor:      actor,
		Reason:     reason,
		At:         at,
	}
}

// ResetApprovalMetadata clears every level record and puts the document back
// at the start of its approval chain. All paths that restart the chain go
// through here.
func ResetApprovalMetadata(doc Document) Document {
	doc.Levels = [MaxLevel]LevelRecord{}
	doc.Status = StatusPendingLevel1
	return doc
}

func checkLevel(doc Document, level Level) error {
	if !level.IsValid() {
		return NewDomainError(ErrInvalidInput, "level must be between 1 and %d, got %d", MaxLevel, level)
	}
	if !doc.Classification.Contains(level) {
		return NewDomainError(ErrClassificationMismatch,
			"%s has %d approval levels, level %d does not exist", doc.Classification, doc.ChainLength(), level)
	}
	return nil
}

func checkNotArchived(doc Document, action Action) error {
	if doc.Status.IsTerminal() {
		return NewDomainError(ErrInvalidTransition, "cannot %s archived document %s", actionVerb(action), doc.ID)
	}
	return nil
}

func requireActor(actor string) error {
	if strings.TrimSpace(actor) == "" {
		return NewDomainError(ErrInvalidInput, "actor is required")
	}
	return nil
}

// Approve records approval of level and advances the document to the next
// level, or to ACTIVE at the end of the chain.
func Approve(doc Document, level Level, approver string, at time.Time) (Document, Transition, error) {
	if err := checkLevel(doc, level); err != nil {
		return doc, Transition{}, err
	}
	if err := requireActor(approver); err != nil {
		return doc, Transition{}, err
	}
	if doc.Status != PendingStatus(level) {
		return doc, Transition{}, NewDomainError(ErrInvalidTransition,
			"cannot approve level %d of document %s in status %s", level, doc.ID, doc.Status)
	}

	from := doc.Status
	next := doc.Clone()
	approvedAt := at
	next.Levels[level.index()] = LevelRecord{ApprovedBy: approver, ApprovedAt: &approvedAt}
	if int(level) < next.ChainLength() {
		next.Status = PendingStatus(level + 1)
	} else {
		next.Status = StatusActive
	}
	next.UpdatedAt = at

	return next, newTransition(next, ActionApprove, level, from, approver, "", at), nil
}

// Reject records a rejection at level. Approvals of lower levels are kept;
// the document stays rejected until it is resubmitted.
func Reject(doc Document, level Level, reason string, attachments []string, rejector string, at time.Time) (Document, Transition, error) {
	if err := checkLevel(doc, level); err != nil {
		return doc, Transition{}, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return doc, Transition{}, NewDomainError(ErrEmptyReason, "a rejection reason is required")
	}
	if err := requireActor(rejector); err != nil {
		return doc, Transition{}, err
	}
	if doc.Status != PendingStatus(level) {
		return doc, Transition{}, NewDomainError(ErrInvalidTransition,
			"cannot reject level %d of document %s in status %s", level, doc.ID, doc.Status)
	}

	from := doc.Status
	next := doc.Clone()
	rejectedAt := at
	next.Levels[level.index()] = LevelRecord{
		RejectReason:      reason,
		RejectedBy:        rejector,
		RejectedAt:        &rejectedAt,
		RejectAttachments: cleanAttachments(attachments),
	}
	next.Status = RejectedStatus(level)
	next.UpdatedAt = at

	return next, newTransition(next, ActionReject, level, from, rejector, reason, at), nil
}

// VersionParams carries the input of any operation that adds a version
type VersionParams struct {
	ChangeLog  string
	ContentRef string
	Label      string
	Actor      string
}

// AddVersion prepends a new version and restarts the approval chain
func AddVersion(doc Document, p VersionParams, at time.Time) (Document, Transition, error) {
	if err := checkNotArchived(doc, ActionCreateVersion); err != nil {
		return doc, Transition{}, err
	}
	if strings.TrimSpace(p.ChangeLog) == "" {
		return doc, Transition{}, NewDomainError(ErrEmptyReason, "a change log is required")
	}
	if strings.TrimSpace(p.ContentRef) == "" {
		return doc, Transition{}, NewDomainError(ErrInvalidInput, "content reference is required")
	}
	next, err := appendVersion(doc, p, nil, at)
	if err != nil {
		return doc, Transition{}, err
	}
	return next, newTransition(next, ActionCreateVersion, 0, doc.Status, p.Actor, next.CurrentVersion().ChangeLog, at), nil
}

// Restore adds a new version mirroring the content of an older one. History
// is never rewritten.
func Restore(doc Document, number string, actor string, at time.Time) (Document, Transition, error) {
	if err := checkNotArchived(doc, ActionRestoreVersion); err != nil {
		return doc, Transition{}, err
	}
	target, ok := doc.FindVersion(number)
	if !ok {
		return doc, Transition{}, NewDomainError(ErrVersionNotFound, "document %s has no version %s", doc.ID, number)
	}
	restoredFrom := target.Number
	next, err := appendVersion(doc, VersionParams{
		ChangeLog:  "Restored from version " + target.Label(),
		ContentRef: target.ContentRef,
		Actor:      actor,
	}, &restoredFrom, at)
	if err != nil {
		return doc, Transition{}, err
	}
	return next, newTransition(next, ActionRestoreVersion, 0, doc.Status, actor, next.CurrentVersion().ChangeLog, at), nil
}

// Resubmit restarts the chain of a rejected or expired document with a new
// version. The content of the current version is carried over when
// p.ContentRef is empty.
func Resubmit(doc Document, p VersionParams, now time.Time) (Document, Transition, error) {
	if err := checkNotArchived(doc, ActionResubmit); err != nil {
		return doc, Transition{}, err
	}
	if strings.TrimSpace(p.ChangeLog) == "" {
		return doc, Transition{}, NewDomainError(ErrEmptyReason, "a resubmission reason is required")
	}
	_, rejected := doc.Status.RejectedLevel()
	if !rejected && !IsExpired(doc, now) {
		return doc, Transition{}, NewDomainError(ErrInvalidTransition,
			"only rejected or expired documents can be resubmitted, document %s is %s", doc.ID, EffectiveStatus(doc, now, 0))
	}
	if strings.TrimSpace(p.ContentRef) == "" {
		p.ContentRef = doc.CurrentVersion().ContentRef
	}
	next, err := appendVersion(doc, p, nil, now)
	if err != nil {
		return doc, Transition{}, err
	}
	return next, newTransition(next, ActionResubmit, 0, doc.Status, p.Actor, next.CurrentVersion().ChangeLog, now), nil
}

// ExtendParams carries the input of an extension or renewal
type ExtendParams struct {
	NewExpiryDate time.Time
	Reason        string
	Actor         string
}

// Extend moves the expiry date of an in-force document without a new
// version and without touching its status or approvals.
func Extend(doc Document, p ExtendParams, now time.Time) (Document, Transition, error) {
	if err := checkNotArchived(doc, ActionExtend); err != nil {
		return doc, Transition{}, err
	}
	reason := strings.TrimSpace(p.Reason)
	if reason == "" {
		return doc, Transition{}, NewDomainError(ErrEmptyReason, "an extension reason is required")
	}
	if err := requireActor(p.Actor); err != nil {
		return doc, Transition{}, err
	}
	if !p.NewExpiryDate.After(now) {
		return doc, Transition{}, NewDomainError(ErrInvalidExpiryDate, "new expiry date must be after now")
	}
	if !doc.Status.IsInForce() || IsExpired(doc, now) {
		return doc, Transition{}, NewDomainError(ErrInvalidTransition,
			"only active or near-expired documents can be extended, document %s is %s", doc.ID, EffectiveStatus(doc, now, 0))
	}

	next := doc.Clone().withExtension(ExtensionRecord{
		PreviousExpiryDate: copyTime(doc.ExpiryDate),
		NewExpiryDate:      p.NewExpiryDate,
		Reason:             reason,
		ExtendedBy:         p.Actor,
		ExtendedAt:         now,
	})
	newExpiry := p.NewExpiryDate
	next.ExpiryDate = &newExpiry
	next.UpdatedAt = now

	return next, newTransition(next, ActionExtend, 0, doc.Status, p.Actor, reason, now), nil
}

// Renew resubmits an expired document with a new expiry date. The reason is
// both the new version's change log and the renewal record's reason.
func Renew(doc Document, p ExtendParams, content VersionParams, now time.Time) (Document, Transition, error) {
	if err := checkNotArchived(doc, ActionRenew); err != nil {
		return doc, Transition{}, err
	}
	reason := strings.TrimSpace(p.Reason)
	if reason == "" {
		return doc, Transition{}, NewDomainError(ErrEmptyReason, "a renewal reason is required")
	}
	if err := requireActor(p.Actor); err != nil {
		return doc, Transition{}, err
	}
	if !doc.Status.IsInForce() || !IsExpired(doc, now) {
		return doc, Transition{}, NewDomainError(ErrInvalidExpiryDate,
			"only expired documents can be renewed, document %s is %s", doc.ID, EffectiveStatus(doc, now, 0))
	}
	if !p.NewExpiryDate.After(now) {
		return doc, Transition{}, NewDomainError(ErrInvalidExpiryDate, "new expiry date must be after now")
	}

	contentRef := content.ContentRef
	if strings.TrimSpace(contentRef) == "" {
		contentRef = doc.CurrentVersion().ContentRef
	}
	next, err := appendVersion(doc, VersionParams{
		ChangeLog:  reason,
		ContentRef: contentRef,
		Label:      content.Label,
		Actor:      p.Actor,
	}, nil, now)
	if err != nil {
		return doc, Transition{}, err
	}
	next = next.withExtension(ExtensionRecord{
		PreviousExpiryDate: copyTime(doc.ExpiryDate),
		NewExpiryDate:      p.NewExpiryDate,
		Reason:             reason,
		ExtendedBy:         p.Actor,
		ExtendedAt:         now,
		Renewal:            true,
	})
	newExpiry := p.NewExpiryDate
	next.ExpiryDate = &newExpiry

	return next, newTransition(next, ActionRenew, 0, doc.Status, p.Actor, reason, now), nil
}

// Archive retires a document. Archived is terminal.
func Archive(doc Document, actor, reason string, at time.Time) (Document, Transition, error) {
	if err := checkNotArchived(doc, ActionArchive); err != nil {
		return doc, Transition{}, err
	}
	if err := requireActor(actor); err != nil {
		return doc, Transition{}, err
	}
	from := doc.Status
	next := doc.Clone()
	next.Status = StatusArchived
	next.UpdatedAt = at
	return next, newTransition(next, ActionArchive, 0, from, actor, strings.TrimSpace(reason), at), nil
}

// MaterializeExpiry stores the derived expiry status of an in-force
// document. changed is false when the stored status is already current.
func MaterializeExpiry(doc Document, now time.Time, thresholdDays int) (next Document, tr Transition, changed bool) {
	if !doc.Status.IsInForce() {
		return doc, Transition{}, false
	}
	status := EffectiveStatus(doc, now, thresholdDays)
	if status == doc.Status {
		return doc, Transition{}, false
	}
	from := doc.Status
	next = doc.Clone()
	next.Status = status
	next.UpdatedAt = now
	return next, newTransition(next, ActionExpirySweep, 0, from, "system", "", now), true
}

func appendVersion(doc Document, p VersionParams, restoredFrom *decimal.Decimal, at time.Time) (Document, error) {
	if err := requireActor(p.Actor); err != nil {
		return doc, err
	}
	number, err := resolveVersionNumber(doc.CurrentVersion().Number, p.Label)
	if err != nil {
		return doc, err
	}
	next := doc.Clone().withVersion(Version{
		Number:       number,
		ContentRef:   p.ContentRef,
		ChangeLog:    strings.TrimSpace(p.ChangeLog),
		UpdatedAt:    at,
		UpdatedBy:    p.Actor,
		RestoredFrom: restoredFrom,
	})
	next = ResetApprovalMetadata(next)
	next.UpdatedAt = at
	return next, nil
}

func cleanAttachments(refs []string) []string {
	var out []string
	for _, r := range refs {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

func actionVerb(a Action) string {
	return strings.ToLower(strings.ReplaceAll(string(a), "_", " "))
}
