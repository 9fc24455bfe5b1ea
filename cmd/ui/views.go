package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/zlovtnik/docgov/cmd/ui/api"
	"github.com/zlovtnik/docgov/cmd/ui/ui"
)

const dateFormat = "2006-01-02"

func (m Model) View() string {
	var body string
	switch m.view {
	case ui.ViewLogin, ui.ViewForm:
		body = m.formView()
	case ui.ViewDetail:
		body = m.detailView()
	default:
		body = m.queueView()
	}

	parts := []string{ui.HeaderStyle.Width(m.width).Render("docgov reviewer console"), body}
	if m.message != "" {
		parts = append(parts, ui.MessageStyle(m.messageType).Render(m.message))
	}
	parts = append(parts, ui.HelpStyle.Render(m.helpText()))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) helpText() string {
	switch m.view {
	case ui.ViewLogin:
		return "enter sign in • tab next field • esc quit"
	case ui.ViewForm:
		return "enter submit • tab next field • esc cancel"
	case ui.ViewDetail:
		return "a approve • r reject • s resubmit • A archive • esc back"
	default:
		return "1/2/3 level • tab bucket • x expiring • enter open • R refresh • q quit"
	}
}

func (m Model) queueView() string {
	var b strings.Builder

	tabs := make([]string, 0, 4)
	for level := 1; level <= 3; level++ {
		label := fmt.Sprintf("Level %d", level)
		if !m.expiring && level == m.level {
			tabs = append(tabs, ui.ActiveTabStyle.Render(label))
		} else {
			tabs = append(tabs, ui.TabStyle.Render(label))
		}
	}
	if m.expiring {
		tabs = append(tabs, ui.ActiveTabStyle.Render("Expiring"))
	} else {
		tabs = append(tabs, ui.TabStyle.Render("["+m.bucket+"]"))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n\n")

	if len(m.docs) == 0 {
		b.WriteString(ui.RowStyle.Render("no documents"))
		return b.String()
	}
	for i, d := range m.docs {
		row := fmt.Sprintf("%-36s %-8s %s %s", truncate(d.Title, 36), d.CurrentVersion,
			ui.StatusStyle(d.Status).Render(d.Status), daysLeft(d))
		if i == m.cursor {
			b.WriteString(ui.SelectedRowStyle.Render(row))
		} else {
			b.WriteString(ui.RowStyle.Render(row))
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\n%d of %d", len(m.docs), m.total)
	return b.String()
}

func daysLeft(d api.DocumentSummary) string {
	if d.DaysLeft == nil {
		return ""
	}
	return fmt.Sprintf("(%dd)", *d.DaysLeft)
}

func (m Model) detailView() string {
	d := m.selected
	if d == nil {
		return ""
	}

	var b strings.Builder
	row := func(label, value string) {
		b.WriteString(ui.LabelStyle.Render(label) + ui.ValueStyle.Render(value) + "\n")
	}
	row("Title", d.Title)
	row("ID", d.ID)
	row("Classification", d.Classification)
	b.WriteString(ui.LabelStyle.Render("Status") + ui.StatusStyle(d.Status).Render(d.Status) + "\n")
	row("Author", d.AuthorID)
	row("Version", d.CurrentVersion)
	if d.ExpiryDate != nil {
		row("Expires", fmt.Sprintf("%s (%s, %d days)", d.ExpiryDate.Format(dateFormat), d.Expiry.Kind, d.Expiry.DaysLeft))
	}

	b.WriteString("\n")
	for _, l := range d.Levels {
		line := fmt.Sprintf("L%d %s", l.Level, ui.StatusStyle(l.State).Render(l.State))
		switch {
		case l.ApprovedBy != "":
			line += " by " + l.ApprovedBy
		case l.RejectedBy != "":
			line += fmt.Sprintf(" by %s: %s", l.RejectedBy, l.RejectReason)
		}
		b.WriteString(line + "\n")
	}

	if len(d.Versions) > 0 {
		b.WriteString("\n")
		for _, v := range d.Versions {
			line := fmt.Sprintf("v%s %s %s", v.Version, v.UpdatedAt.Format(dateFormat), v.ChangeLog)
			if v.RestoredFrom != "" {
				line += " (restored from " + v.RestoredFrom + ")"
			}
			b.WriteString(ui.ValueStyle.Render(line) + "\n")
		}
	}
	return ui.PanelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) formView() string {
	titles := map[string]string{
		formLogin:    "Dev login",
		formReject:   "Reject level",
		formResubmit: "Resubmit document",
		formArchive:  "Archive document",
	}
	var b strings.Builder
	b.WriteString(ui.FormTitleStyle.Render(titles[m.formAction]))
	b.WriteString("\n")
	for _, in := range m.inputs {
		b.WriteString(in.View() + "\n")
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
