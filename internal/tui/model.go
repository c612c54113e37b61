// Package tui is the terminal chat screen: a transcript viewport above an input line.
// Lines starting with "/" are commands; anything else is a question.
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/hyperjump/pdfchat/internal/models"
)

// Session is the TUI-facing subset of the session dispatcher.
type Session interface {
	Upload(ctx context.Context, files []models.UploadedFile) (*models.UploadResult, error)
	Chat(ctx context.Context, question string) (*models.ChatResponse, error)
	Reset(ctx context.Context) (models.SessionStatus, error)
	Status(ctx context.Context) (models.SessionStatus, error)
}

const helpText = "Commands: /upload <paths...>  /reset  /status  /quit"

type entryKind int

const (
	entryUser entryKind = iota
	entryAssistant
	entrySystem
	entryError
)

type entry struct {
	kind entryKind
	text string
}

type uploadMsg struct {
	res *models.UploadResult
	err error
}

type answerMsg struct {
	resp *models.ChatResponse
	err  error
}

type statusMsg struct {
	status models.SessionStatus
	reset  bool
	err    error
}

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	session    Session
	ctx        context.Context
	input      textinput.Model
	viewport   viewport.Model
	transcript []entry
	status     models.SessionStatus
	busy       bool
	ready      bool
}

// New creates the chat model.
func New(ctx context.Context, session Session) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about your PDFs, or /upload <file.pdf>"
	ti.Focus()
	ti.CharLimit = 0
	return Model{
		session:    session,
		ctx:        ctx,
		input:      ti,
		viewport:   viewport.New(0, 0),
		transcript: []entry{{kind: entrySystem, text: helpText}},
	}
}

// Init starts the cursor blink and loads the initial status.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.statusCmd(false))
}

// Update handles keys, window resizes and session replies.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptStyle.GetFrameSize()
		_, ih := inputStyle.GetFrameSize()
		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = max(3, msg.Height-th-ih-3)
		m.refresh()
		return m, nil
	case uploadMsg:
		m.busy = false
		if msg.err != nil {
			m.push(entryError, "Upload failed: "+msg.err.Error())
		} else {
			m.push(entrySystem, msg.res.Status)
		}
		return m, m.statusCmd(false)
	case answerMsg:
		m.busy = false
		if msg.err != nil {
			m.push(entryError, msg.err.Error())
		} else {
			m.push(entryAssistant, msg.resp.Answer)
		}
		return m, m.statusCmd(false)
	case statusMsg:
		if msg.err != nil {
			if msg.reset {
				m.busy = false
			}
			m.push(entryError, msg.err.Error())
			return m, nil
		}
		m.status = msg.status
		if msg.reset {
			m.busy = false
			m.transcript = []entry{{kind: entrySystem, text: "Session cleared."}}
			m.refresh()
		}
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.Type == tea.KeyEnter {
			line := strings.TrimSpace(m.input.Value())
			if line == "" || m.busy {
				return m, nil
			}
			m.input.SetValue("")
			return m.submit(line)
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit(line string) (tea.Model, tea.Cmd) {
	name, args := parseCommand(line)
	switch name {
	case "":
		m.push(entryUser, line)
		m.busy = true
		return m, m.chatCmd(line)
	case "quit", "exit":
		return m, tea.Quit
	case "upload":
		if len(args) == 0 {
			m.push(entryError, "usage: /upload <paths...>")
			return m, nil
		}
		m.push(entrySystem, "Uploading "+strings.Join(args, ", ")+"...")
		m.busy = true
		return m, m.uploadCmd(args)
	case "reset":
		m.busy = true
		return m, m.statusCmd(true)
	case "status":
		m.push(entrySystem, describeStatus(m.status))
		return m, m.statusCmd(false)
	case "help":
		m.push(entrySystem, helpText)
		return m, nil
	default:
		m.push(entryError, fmt.Sprintf("unknown command /%s", name))
		return m, nil
	}
}

func (m Model) chatCmd(question string) tea.Cmd {
	return func() tea.Msg {
		resp, err := m.session.Chat(m.ctx, question)
		return answerMsg{resp: resp, err: err}
	}
}

func (m Model) uploadCmd(paths []string) tea.Cmd {
	return func() tea.Msg {
		files, err := ReadFiles(paths)
		if err != nil {
			return uploadMsg{err: err}
		}
		res, err := m.session.Upload(m.ctx, files)
		return uploadMsg{res: res, err: err}
	}
}

func (m Model) statusCmd(reset bool) tea.Cmd {
	return func() tea.Msg {
		var st models.SessionStatus
		var err error
		if reset {
			st, err = m.session.Reset(m.ctx)
		} else {
			st, err = m.session.Status(m.ctx)
		}
		return statusMsg{status: st, reset: reset, err: err}
	}
}

// ReadFiles loads paths as uploaded files named by their base name.
func ReadFiles(paths []string) ([]models.UploadedFile, error) {
	files := make([]models.UploadedFile, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		files = append(files, models.UploadedFile{Name: filepath.Base(p), Data: data})
	}
	return files, nil
}

// parseCommand splits "/name arg1 arg2" into its parts. Plain text yields an empty name.
func parseCommand(line string) (string, []string) {
	if !strings.HasPrefix(line, "/") {
		return "", nil
	}
	fields := strings.Fields(line[1:])
	if len(fields) == 0 {
		return "help", nil
	}
	return strings.ToLower(fields[0]), fields[1:]
}

func (m *Model) push(kind entryKind, text string) {
	m.transcript = append(m.transcript, entry{kind: kind, text: text})
	m.refresh()
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m Model) renderTranscript() string {
	width := max(10, m.viewport.Width)
	var b strings.Builder
	for i, e := range m.transcript {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch e.kind {
		case entryUser:
			b.WriteString(userStyle.Render("You: ") + wrap(e.text, width))
		case entryAssistant:
			b.WriteString(assistantStyle.Render("Assistant: ") + wrap(e.text, width))
		case entryError:
			b.WriteString(errorStyle.Render(wrap(e.text, width)))
		default:
			b.WriteString(systemStyle.Render(wrap(e.text, width)))
		}
	}
	return b.String()
}

func wrap(text string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(text)
}

func describeStatus(st models.SessionStatus) string {
	files := "none"
	if len(st.Filenames) > 0 {
		files = strings.Join(st.Filenames, ", ")
	}
	return fmt.Sprintf("State: %s | pages: %d | segments: %d | files: %s", st.State, st.Documents, st.Segments, files)
}

// View renders the transcript, input line and status bar.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := titleStyle.Render("PDF Chat")
	status := describeStatus(m.status)
	if m.busy {
		status = "Working... | " + status
	}
	return header + "\n" +
		transcriptStyle.Render(m.viewport.View()) + "\n" +
		inputStyle.Render(m.input.View()) + "\n" +
		statusStyle.Render(status)
}

var (
	titleStyle      = lipgloss.NewStyle().Bold(true)
	transcriptStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	userStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	systemStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)
