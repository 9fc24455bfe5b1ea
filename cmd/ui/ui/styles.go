package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Message type constants for consistent UI messaging
const (
	// MessageTypeError indicates an error message style.
	MessageTypeError = "error"
	// MessageTypeSuccess indicates a success message style.
	MessageTypeSuccess = "success"
	// MessageTypeInfo indicates an informational message style.
	MessageTypeInfo = "info"
)

var (
	bgSecondary = lipgloss.Color("#161b22")
	bgElevated  = lipgloss.Color("#1f2937")

	neonCyan    = lipgloss.Color("#00ffff")
	neonMagenta = lipgloss.Color("#ff00ff")
	neonGreen   = lipgloss.Color("#39ff14")
	neonOrange  = lipgloss.Color("#ff6600")
	neonRed     = lipgloss.Color("#ff0055")
	neonBlue    = lipgloss.Color("#00d4ff")
	neonYellow  = lipgloss.Color("#ffff00")

	textPrimary = lipgloss.Color("#f0f6fc")
	textMuted   = lipgloss.Color("#8b949e")
	textDim     = lipgloss.Color("#4d5566")

	borderDefault = lipgloss.Color("#30363d")

	HeaderStyle = lipgloss.NewStyle().
			Background(bgSecondary).
			Foreground(neonCyan).
			Bold(true).
			Padding(0, 2).
			BorderBottom(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderBottomForeground(neonCyan)

	TabStyle = lipgloss.NewStyle().
			Foreground(textMuted).
			Padding(0, 1)

	ActiveTabStyle = lipgloss.NewStyle().
			Foreground(neonMagenta).
			Bold(true).
			Underline(true).
			Padding(0, 1)

	RowStyle = lipgloss.NewStyle().
			Foreground(textPrimary).
			PaddingLeft(2)

	SelectedRowStyle = lipgloss.NewStyle().
				Background(bgElevated).
				Foreground(neonCyan).
				Bold(true).
				PaddingLeft(1).
				BorderLeft(true).
				BorderStyle(lipgloss.ThickBorder()).
				BorderLeftForeground(neonMagenta)

	LabelStyle = lipgloss.NewStyle().
			Foreground(textMuted).
			Width(16)

	ValueStyle = lipgloss.NewStyle().
			Foreground(textPrimary)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderDefault).
			Padding(0, 1)

	FormTitleStyle = lipgloss.NewStyle().
			Foreground(neonMagenta).
			Bold(true).
			MarginBottom(1)

	HelpStyle = lipgloss.NewStyle().
			Foreground(textDim)

	ErrorStyle   = lipgloss.NewStyle().Foreground(neonRed).Bold(true)
	SuccessStyle = lipgloss.NewStyle().Foreground(neonGreen).Bold(true)
	InfoStyle    = lipgloss.NewStyle().Foreground(neonBlue)
)

// MessageStyle returns the style for a status bar message
func MessageStyle(messageType string) lipgloss.Style {
	switch messageType {
	case MessageTypeError:
		return ErrorStyle
	case MessageTypeSuccess:
		return SuccessStyle
	default:
		return InfoStyle
	}
}

// StatusStyle colors a document status or level state
func StatusStyle(status string) lipgloss.Style {
	s := lipgloss.NewStyle().Bold(true)
	switch {
	case status == "ACTIVE" || status == "APPROVED":
		return s.Foreground(neonGreen)
	case status == "NEAR_EXPIRED":
		return s.Foreground(neonYellow)
	case status == "EXPIRED" || status == "REJECTED" || strings.HasPrefix(status, "REJECTED_"):
		return s.Foreground(neonRed)
	case status == "PENDING" || strings.HasPrefix(status, "PENDING_"):
		return s.Foreground(neonOrange)
	case status == "ARCHIVED" || status == "WAITING":
		return s.Foreground(textDim)
	default:
		return s.Foreground(textPrimary)
	}
}
