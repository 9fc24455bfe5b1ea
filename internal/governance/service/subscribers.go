package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zlovtnik/docgov/internal/governance/domain"
	"github.com/zlovtnik/docgov/pkg/fp"
)

// AuditWriter persists audit entries
type AuditWriter interface {
	Create(ctx context.Context, entry domain.AuditEntry) fp.Result[domain.AuditEntry]
}

// AuditSubscriber writes one audit entry per committed transition
type AuditSubscriber struct {
	writer AuditWriter
}

// NewAuditSubscriber creates an AuditSubscriber
func NewAuditSubscriber(writer AuditWriter) *AuditSubscriber {
	if writer == nil {
		panic("audit writer is required")
	}
	return &AuditSubscriber{writer: writer}
}

func (s *AuditSubscriber) Name() string { return "audit" }

// Handle records the transition. The entry takes the event's ID, so a
// retried delivery cannot add a second row.
func (s *AuditSubscriber) Handle(ctx context.Context, ev Event) error {
	entry := domain.NewAuditEntry(ev.Transition)
	if ev.ID != "" {
		entry.ID = ev.ID
	}
	if att := ev.Document.Level(ev.Transition.Level).RejectAttachments; ev.Transition.Action == domain.ActionReject && len(att) > 0 {
		entry = entry.WithMetadata(map[string]interface{}{"attachments": att})
	}
	return fp.GetError(s.writer.Create(ctx, entry))
}

// Notification is a message for a person or a reviewer group
type Notification struct {
	Recipient  string
	DocumentID domain.DocumentID
	Subject    string
	Body       string
}

// Notifier delivers notifications. Delivery channels live outside this
// service.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// NotificationSubscriber turns transitions into notifications
type NotificationSubscriber struct {
	notifier Notifier
}

// NewNotificationSubscriber creates a NotificationSubscriber
func NewNotificationSubscriber(notifier Notifier) *NotificationSubscriber {
	if notifier == nil {
		panic("notifier is required")
	}
	return &NotificationSubscriber{notifier: notifier}
}

func (s *NotificationSubscriber) Name() string { return "notification" }

// Handle notifies the author and the next reviewers where relevant
func (s *NotificationSubscriber) Handle(ctx context.Context, ev Event) error {
	for _, n := range notificationsFor(ev.Transition) {
		if err := s.notifier.Notify(ctx, n); err != nil {
			return fmt.Errorf("notify %s: %w", n.Recipient, err)
		}
	}
	return nil
}

// ReviewerGroup names the reviewers of a level as a notification recipient
func ReviewerGroup(level domain.Level) string {
	return fmt.Sprintf("reviewers:level-%d", level)
}

func notificationsFor(tr domain.Transition) []Notification {
	title := tr.Title
	if title == "" {
		title = tr.DocumentID.String()
	}
	toAuthor := func(subject, body string) Notification {
		return Notification{Recipient: tr.AuthorID, DocumentID: tr.DocumentID, Subject: subject, Body: body}
	}

	var out []Notification
	switch tr.Action {
	case domain.ActionReject:
		out = append(out, toAuthor(
			fmt.Sprintf("%q was rejected at level %d", title, tr.Level),
			tr.Reason,
		))
	case domain.ActionExpirySweep:
		switch tr.To {
		case domain.StatusNearExpired:
			out = append(out, toAuthor(fmt.Sprintf("%q expires soon", title), "Extend or renew the document before it expires."))
		case domain.StatusExpired:
			out = append(out, toAuthor(fmt.Sprintf("%q has expired", title), "Renew the document to return it to the repository."))
		}
	}

	if tr.Activated() {
		out = append(out, toAuthor(fmt.Sprintf("%q is now active", title), "Version "+tr.Version+" was approved at every level."))
	}
	if level, ok := tr.To.PendingLevel(); ok {
		out = append(out, Notification{
			Recipient:  ReviewerGroup(level),
			DocumentID: tr.DocumentID,
			Subject:    fmt.Sprintf("%q awaits level %d review", title, level),
			Body:       "Version " + tr.Version,
		})
	}
	return out
}

// LogNotifier writes notifications to the structured log
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// Notify logs n
func (n *LogNotifier) Notify(_ context.Context, msg Notification) error {
	n.logger.Info("notification",
		"recipient", msg.Recipient,
		"document_id", msg.DocumentID.String(),
		"subject", msg.Subject,
		"body", msg.Body,
	)
	return nil
}
