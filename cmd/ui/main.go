package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/zlovtnik/docgov/cmd/ui/api"
	"github.com/zlovtnik/docgov/cmd/ui/ui"
)

const (
	formReject   = "reject"
	formResubmit = "resubmit"
	formArchive  = "archive"
	formLogin    = "login"
)

// Model is the main application model
type Model struct {
	client      *api.Client
	view        ui.ViewState
	cursor      int
	message     string
	messageType string

	// Queue
	level    int
	bucket   string
	expiring bool
	docs     []api.DocumentSummary
	total    int

	selected *api.Document

	// Form inputs
	inputs     []textinput.Model
	focusIndex int
	formAction string

	devSecret string
	user      string

	width  int
	height int
}

func initialModel() Model {
	baseURL := os.Getenv("DOCGOV_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	client, err := api.NewClient(baseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid API URL %q: %v\n", baseURL, err)
		os.Exit(1)
	}

	m := Model{
		client:    client,
		view:      ui.ViewQueue,
		level:     1,
		bucket:    "pending",
		devSecret: os.Getenv("DOCGOV_DEV_SECRET"),
		width:     80,
		height:    24,
	}

	if token := os.Getenv("DOCGOV_TOKEN"); token != "" {
		client.SetToken(token)
		return m
	}
	if m.devSecret == "" {
		fmt.Fprintln(os.Stderr, "Error: set DOCGOV_TOKEN, or DOCGOV_DEV_SECRET for a local dev login")
		os.Exit(1)
	}
	return m.openForm(formLogin)
}

func (m Model) Init() tea.Cmd {
	if m.view == ui.ViewLogin {
		return textinput.Blink
	}
	return m.fetchQueue()
}

// Messages for async operations
type queueMsg struct {
	page *api.DocumentPage
}
type documentMsg struct {
	doc *api.Document
}
type actionMsg struct {
	doc  *api.Document
	verb string
}
type errMsg struct{ err error }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case queueMsg:
		m.docs = msg.page.Data
		m.total = msg.page.TotalCount
		if m.cursor >= len(m.docs) {
			m.cursor = max(len(m.docs)-1, 0)
		}
		return m, nil
	case documentMsg:
		m.selected = msg.doc
		m.view = ui.ViewDetail
		return m, nil
	case actionMsg:
		m.selected = msg.doc
		m.view = ui.ViewDetail
		m.inputs = nil
		m.message = fmt.Sprintf("%s: %s is now %s", msg.verb, msg.doc.Title, msg.doc.Status)
		m.messageType = ui.MessageTypeSuccess
		return m, m.fetchQueue()
	case loginMsg:
		return m.handleLogin(msg)
	case errMsg:
		m.message = msg.err.Error()
		m.messageType = ui.MessageTypeError
		return m, nil
	}

	if len(m.inputs) > 0 {
		return m.updateInputs(msg)
	}
	return m, nil
}

func (m Model) handleLogin(msg loginMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.message = msg.err.Error()
		m.messageType = ui.MessageTypeError
		return m, nil
	}
	m.client.SetToken(msg.token)
	m.user = msg.user
	m.inputs = nil
	m.view = ui.ViewQueue
	m.message = fmt.Sprintf("Signed in as %s", msg.user)
	m.messageType = ui.MessageTypeSuccess
	return m, m.fetchQueue()
}

// handleKeyMsg processes keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.message != "" && msg.String() != "enter" {
		m.message = ""
	}

	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if len(m.inputs) > 0 {
		return m.handleFormKey(msg)
	}

	switch m.view {
	case ui.ViewDetail:
		return m.handleDetailKey(msg.String())
	default:
		return m.handleQueueKey(msg.String())
	}
}

func (m Model) handleQueueKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.docs)-1 {
			m.cursor++
		}
	case "1", "2", "3":
		m.level = int(key[0] - '0')
		m.expiring = false
		m.cursor = 0
		return m, m.fetchQueue()
	case "tab":
		m.bucket = ui.NextBucket(m.bucket)
		m.expiring = false
		m.cursor = 0
		return m, m.fetchQueue()
	case "x":
		m.expiring = !m.expiring
		m.cursor = 0
		return m, m.fetchQueue()
	case "R":
		return m, m.fetchQueue()
	case "enter":
		if len(m.docs) > 0 {
			return m, m.fetchDocument(m.docs[m.cursor].ID)
		}
	}
	return m, nil
}

func (m Model) handleDetailKey(key string) (tea.Model, tea.Cmd) {
	if m.selected == nil {
		m.view = ui.ViewQueue
		return m, nil
	}
	switch key {
	case "esc", "q":
		m.view = ui.ViewQueue
		m.selected = nil
		return m, nil
	case "a":
		level := m.selected.PendingLevel()
		if level == 0 {
			m.message = "document is not awaiting approval"
			m.messageType = ui.MessageTypeInfo
			return m, nil
		}
		return m, m.approve(m.selected.ID, level)
	case "r":
		if m.selected.PendingLevel() == 0 {
			m.message = "document is not awaiting approval"
			m.messageType = ui.MessageTypeInfo
			return m, nil
		}
		return m.openForm(formReject), textinput.Blink
	case "s":
		if !canResubmit(m.selected.Status) {
			m.message = "only rejected or expired documents can be resubmitted"
			m.messageType = ui.MessageTypeInfo
			return m, nil
		}
		return m.openForm(formResubmit), textinput.Blink
	case "A":
		return m.openForm(formArchive), textinput.Blink
	}
	return m, nil
}

func canResubmit(status string) bool {
	return status == "EXPIRED" || strings.HasPrefix(status, "REJECTED_")
}

// openForm replaces the inputs with the fields of action
func (m Model) openForm(action string) Model {
	var fields []string
	switch action {
	case formLogin:
		fields = []string{"User ID", "Roles (comma separated)"}
		m.view = ui.ViewLogin
	case formReject:
		fields = []string{"Reason", "Attachments (comma separated)"}
		m.view = ui.ViewForm
	case formResubmit:
		fields = []string{"Change log", "Content ref (blank keeps current)"}
		m.view = ui.ViewForm
	case formArchive:
		fields = []string{"Reason"}
		m.view = ui.ViewForm
	}

	m.inputs = make([]textinput.Model, len(fields))
	for i, placeholder := range fields {
		in := textinput.New()
		in.Placeholder = placeholder
		in.CharLimit = 500
		in.Width = 60
		if i == 0 {
			in.Focus()
		}
		m.inputs[i] = in
	}
	m.focusIndex = 0
	m.formAction = action
	return m
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.formAction == formLogin {
			return m, tea.Quit
		}
		m.inputs = nil
		m.view = ui.ViewDetail
		return m, nil
	case "tab", "down":
		m.focusIndex = (m.focusIndex + 1) % len(m.inputs)
		return m.updateInputFocus(), nil
	case "shift+tab", "up":
		m.focusIndex = (m.focusIndex - 1 + len(m.inputs)) % len(m.inputs)
		return m.updateInputFocus(), nil
	case "enter":
		return m.submitForm()
	}
	return m.updateInputs(msg)
}

func (m Model) updateInputFocus() Model {
	for i := range m.inputs {
		if i == m.focusIndex {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return m
}

func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, len(m.inputs))
	for i := range m.inputs {
		m.inputs[i], cmds[i] = m.inputs[i].Update(msg)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) inputValue(i int) string {
	if i >= len(m.inputs) {
		return ""
	}
	return strings.TrimSpace(m.inputs[i].Value())
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	first := m.inputValue(0)
	switch m.formAction {
	case formLogin:
		if first == "" {
			return m.formError("user id is required")
		}
		return m, m.devLogin(first, splitList(m.inputValue(1)))
	case formReject:
		if first == "" {
			return m.formError("a rejection reason is required")
		}
		req := api.RejectRequest{Reason: first, Attachments: splitList(m.inputValue(1))}
		return m, m.reject(m.selected.ID, m.selected.PendingLevel(), req)
	case formResubmit:
		if first == "" {
			return m.formError("a change log is required")
		}
		return m, m.resubmit(m.selected.ID, api.VersionRequest{ChangeLog: first, ContentRef: m.inputValue(1)})
	case formArchive:
		return m, m.archive(m.selected.ID, api.ArchiveRequest{Reason: first})
	}
	return m, nil
}

func (m Model) formError(text string) (tea.Model, tea.Cmd) {
	m.message = text
	m.messageType = ui.MessageTypeError
	return m, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func main() {
	p := tea.NewProgram(initialModel(), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}
