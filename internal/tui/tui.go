// Package tui is the interactive terminal front end for a copier session.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/temirov/copier/internal/services/clipboard"
	"github.com/temirov/copier/internal/session"
	"github.com/temirov/copier/internal/utils"
)

// --- Styles ---
var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	labelStyle    = lipgloss.NewStyle().Bold(true)
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("197"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	faintStyle    = lipgloss.NewStyle().Faint(true)
	previewStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
)

const (
	previewLineLimit  = 12
	patternPrompt     = "pattern> "
	patternHint       = "node_modules/, *.log, *test*"
	helpLine          = "r rescan • g generate • a add pattern • d remove pattern • ↑/↓ move • x clear files • c copy • s save • q quit"
	inputHelpLine     = "enter add • esc cancel"
	statusBusy        = "an operation is already running"
	statusNoRoot      = "no root folder selected"
	statusNothingMade = "nothing to generate: no files"
)

// --- Messages ---
type scanDoneMsg struct {
	count int
	err   error
}

type generateDoneMsg struct {
	document string
	err      error
}

type exportDoneMsg struct {
	message string
	err     error
}

type mode int

const (
	modeBrowse mode = iota
	modeAddPattern
)

// Options wires a Model to its session.
type Options struct {
	Controller *session.Controller
	Copier     clipboard.Copier
	// SaveDirectory receives saved documents.
	SaveDirectory string
	// RootName and RootFS, when set, are selected as soon as the program starts.
	RootName string
	RootFS   fs.FS
}

// Model is the bubbletea model driving a session.Controller.
type Model struct {
	controller    *session.Controller
	copier        clipboard.Copier
	saveDirectory string
	initialRoot   string
	initialFS     fs.FS

	spinner spinner.Model
	input   textinput.Model
	mode    mode
	cursor  int
	busy    bool
	status  string
	failed  bool
}

// New returns a model for options.
func New(options Options) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	input := textinput.New()
	input.Prompt = patternPrompt
	input.Placeholder = patternHint

	return Model{
		controller:    options.Controller,
		copier:        options.Copier,
		saveDirectory: options.SaveDirectory,
		initialRoot:   options.RootName,
		initialFS:     options.RootFS,
		spinner:       s,
		input:         input,
		busy:          options.RootFS != nil,
	}
}

func (m Model) Init() tea.Cmd {
	if m.initialFS == nil {
		return nil
	}
	return tea.Batch(m.spinner.Tick, m.selectRoot(m.initialRoot, m.initialFS))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.mode == modeAddPattern {
			return m.updatePatternInput(msg)
		}
		return m.updateBrowse(msg)

	case scanDoneMsg:
		m.busy = false
		m.setResult(fmt.Sprintf("scanned %d files", msg.count), msg.err)
		return m, nil

	case generateDoneMsg:
		m.busy = false
		if msg.err == nil && msg.document == "" {
			m.setResult(statusNothingMade, nil)
			return m, nil
		}
		m.setResult(fmt.Sprintf("generated %s", utils.FormatFileSize(int64(len(msg.document)))), msg.err)
		return m, nil

	case exportDoneMsg:
		m.setResult(msg.message, msg.err)
		return m, nil

	default:
		var cmd tea.Cmd
		if m.busy {
			m.spinner, cmd = m.spinner.Update(msg)
		}
		return m, cmd
	}
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.controller.Snapshot().IgnorePatterns)-1 {
			m.cursor++
		}
	case "a":
		m.mode = modeAddPattern
		focusCmd := m.input.Focus()
		return m, focusCmd
	case "d":
		patterns := m.controller.Snapshot().IgnorePatterns
		if m.cursor < len(patterns) {
			m.controller.RemoveIgnorePattern(patterns[m.cursor])
			m.setResult("removed "+patterns[m.cursor], nil)
			m.clampCursor()
		}
	case "x":
		m.controller.ClearFiles()
		m.setResult("cleared files", nil)
	case "r":
		if m.busy {
			m.setResult("", errors.New(statusBusy))
			return m, nil
		}
		if !m.controller.Snapshot().HasRoot {
			m.setResult("", errors.New(statusNoRoot))
			return m, nil
		}
		m.busy = true
		return m, tea.Batch(m.spinner.Tick, m.rescan())
	case "g":
		if m.busy {
			m.setResult("", errors.New(statusBusy))
			return m, nil
		}
		m.busy = true
		return m, tea.Batch(m.spinner.Tick, m.generate())
	case "c":
		return m, m.copyDocument()
	case "s":
		return m, m.saveDocument()
	}
	return m, nil
}

func (m Model) updatePatternInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		value := m.input.Value()
		if m.controller.AddIgnorePattern(value) {
			m.setResult("added "+strings.TrimSpace(value), nil)
		}
		m.leavePatternInput()
		return m, nil
	case tea.KeyEsc:
		m.leavePatternInput()
		return m, nil
	case tea.KeyCtrlC:
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) leavePatternInput() {
	m.mode = modeBrowse
	m.input.Reset()
	m.input.Blur()
}

func (m *Model) clampCursor() {
	count := len(m.controller.Snapshot().IgnorePatterns)
	if m.cursor >= count {
		m.cursor = count - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) setResult(message string, err error) {
	if err != nil {
		m.status = err.Error()
		m.failed = true
		return
	}
	m.status = message
	m.failed = false
}

func (m Model) selectRoot(rootName string, fsys fs.FS) tea.Cmd {
	controller := m.controller
	return func() tea.Msg {
		count, err := controller.SelectRoot(context.Background(), rootName, fsys)
		return scanDoneMsg{count: count, err: err}
	}
}

func (m Model) rescan() tea.Cmd {
	controller := m.controller
	return func() tea.Msg {
		count, err := controller.Rescan(context.Background())
		return scanDoneMsg{count: count, err: err}
	}
}

func (m Model) generate() tea.Cmd {
	controller := m.controller
	return func() tea.Msg {
		document, err := controller.Generate(context.Background())
		return generateDoneMsg{document: document, err: err}
	}
}

func (m Model) copyDocument() tea.Cmd {
	controller, copier := m.controller, m.copier
	return func() tea.Msg {
		if copier == nil {
			return exportDoneMsg{err: clipboard.ErrUnavailable}
		}
		if err := controller.CopyMarkdown(copier); err != nil {
			return exportDoneMsg{err: err}
		}
		return exportDoneMsg{message: "copied markdown to clipboard"}
	}
}

func (m Model) saveDocument() tea.Cmd {
	controller, directory := m.controller, m.saveDirectory
	return func() tea.Msg {
		path, err := controller.SaveMarkdown(directory)
		if err != nil {
			return exportDoneMsg{err: err}
		}
		return exportDoneMsg{message: "saved " + path}
	}
}

func (m Model) View() string {
	snapshot := m.controller.Snapshot()
	var b strings.Builder

	b.WriteString(headerStyle.Render("copier"))
	b.WriteString("\n\n")

	rootName := snapshot.RootName
	if rootName == "" {
		rootName = faintStyle.Render("(none)")
	}
	b.WriteString(fmt.Sprintf("%s %s   %s %d\n\n", labelStyle.Render("Root:"), rootName, labelStyle.Render("Files:"), len(snapshot.Files)))

	b.WriteString(labelStyle.Render("Ignore patterns:"))
	b.WriteString("\n")
	if len(snapshot.IgnorePatterns) == 0 {
		b.WriteString(faintStyle.Render("  (none)"))
		b.WriteString("\n")
	}
	for index, pattern := range snapshot.IgnorePatterns {
		if index == m.cursor && m.mode == modeBrowse {
			b.WriteString(selectedStyle.Render("> " + pattern))
		} else {
			b.WriteString("  " + pattern)
		}
		b.WriteString("\n")
	}
	if m.mode == modeAddPattern {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.busy {
		b.WriteString(fmt.Sprintf("%s Working...\n", m.spinner.View()))
	} else if m.status != "" {
		if m.failed {
			b.WriteString(errorStyle.Render("Error: " + m.status))
		} else {
			b.WriteString(successStyle.Render(m.status))
		}
		b.WriteString("\n")
	}

	if snapshot.Markdown != "" {
		b.WriteString(previewStyle.Render(previewLines(snapshot.Markdown, previewLineLimit)))
		b.WriteString("\n")
	}

	if m.mode == modeAddPattern {
		b.WriteString(faintStyle.Render(inputHelpLine))
	} else {
		b.WriteString(faintStyle.Render(helpLine))
	}
	return b.String()
}

// previewLines returns at most limit lines of document followed by an ellipsis line when truncated.
func previewLines(document string, limit int) string {
	lines := strings.Split(strings.TrimRight(document, "\n"), "\n")
	if len(lines) <= limit {
		return strings.Join(lines, "\n")
	}
	return strings.Join(lines[:limit], "\n") + fmt.Sprintf("\n… %d more lines", len(lines)-limit)
}

// Run starts the interactive program and blocks until the user quits.
func Run(options Options) error {
	_, err := tea.NewProgram(New(options)).Run()
	return err
}
