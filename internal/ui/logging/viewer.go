package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pilotdeck/pilotdeck/internal/ui"
)

const (
	// MaxLogsInMemory is the hard limit for lines kept in the display buffer
	// When exceeded, oldest lines are evicted
	MaxLogsInMemory = 10_000

	defaultViewerWidth  = 100
	defaultViewerHeight = 20
)

// LogViewerConfig contains configuration for the log viewer
type LogViewerConfig struct {
	ui.DisplayConfig

	Width  int       // Viewport width (default: 100)
	Height int       // Viewport height (default: 20)
	Out    io.Writer // Simple output destination (default: stdout)
}

// LogViewerModel shows a deploy log in a scrollable viewport. It is the
// DeploySink for a DeployPoller: sink calls are queued without blocking and
// applied on the next Update.
type LogViewerModel struct {
	config   LogViewerConfig
	viewport viewport.Model
	spinner  *ui.SpinnerModel

	mu      sync.Mutex
	pending []sinkEvent
	notify  chan struct{}

	lines      []string
	status     StatusKind
	statusText string
	outcome    Outcome
	err        error
	isComplete bool
}

var _ DeploySink = (*LogViewerModel)(nil)

// NewLogViewer creates a new log viewer
func NewLogViewer(config LogViewerConfig) *LogViewerModel {
	if config.Width == 0 {
		config.Width = defaultViewerWidth
	}
	if config.Height == 0 {
		config.Height = defaultViewerHeight
	}
	if config.Out == nil {
		config.Out = os.Stdout
	}

	return &LogViewerModel{
		config:   config,
		viewport: viewport.New(config.Width, config.Height),
		spinner:  ui.NewSpinner(),
		notify:   make(chan struct{}, 1),
		status:   StatusIdle,
	}
}

type sinkEventKind int

const (
	eventReplace sinkEventKind = iota
	eventAppend
	eventStatus
	eventNote
	eventDone
)

type sinkEvent struct {
	kind    sinkEventKind
	lines   []string
	status  StatusKind
	text    string
	outcome Outcome
	err     error
}

// OnReplace implements DeploySink
func (m *LogViewerModel) OnReplace(lines []string) {
	m.enqueue(sinkEvent{kind: eventReplace, lines: append([]string(nil), lines...)})
}

// OnAppend implements DeploySink
func (m *LogViewerModel) OnAppend(lines []string) {
	m.enqueue(sinkEvent{kind: eventAppend, lines: append([]string(nil), lines...)})
}

// OnStatus implements DeploySink
func (m *LogViewerModel) OnStatus(kind StatusKind, text string) {
	m.enqueue(sinkEvent{kind: eventStatus, status: kind, text: text})
}

// OnNote implements DeploySink
func (m *LogViewerModel) OnNote(text string) {
	m.enqueue(sinkEvent{kind: eventNote, text: text})
}

// Finish marks the log complete once queued updates are applied. It has the
// signature of DeployPollerConfig.OnDone.
func (m *LogViewerModel) Finish(outcome Outcome, err error) {
	m.enqueue(sinkEvent{kind: eventDone, outcome: outcome, err: err})
}

func (m *LogViewerModel) enqueue(ev sinkEvent) {
	m.mu.Lock()
	m.pending = append(m.pending, ev)
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
}

func (m *LogViewerModel) drain() []sinkEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	events := m.pending
	m.pending = nil
	return events
}

// Error returns the error if any occurred during execution
func (m *LogViewerModel) Error() error {
	return m.err
}

func (m *LogViewerModel) Init() tea.Cmd {
	if m.config.SimpleOutput() {
		return m.WaitForUpdates()
	}
	return tea.Batch(m.spinner.Init(), m.WaitForUpdates())
}

// WaitForUpdates blocks until the sink has queued updates and delivers them
// as a message
func (m *LogViewerModel) WaitForUpdates() tea.Cmd {
	return func() tea.Msg {
		<-m.notify
		return sinkUpdatesMsg{events: m.drain()}
	}
}

// Update handles messages
func (m *LogViewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case sinkUpdatesMsg:
		m.apply(msg.events)
		if m.isComplete {
			return m, nil
		}
		return m, m.WaitForUpdates()

	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-4, 5)
		return m, nil

	case tea.KeyMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	default:
		if !m.config.SimpleOutput() {
			updatedSpinner, cmd := m.spinner.Update(msg)
			m.spinner = updatedSpinner.(*ui.SpinnerModel) //nolint:errcheck // Type assertion guaranteed by SpinnerModel structure
			return m, cmd
		}
	}

	return m, nil
}

func (m *LogViewerModel) apply(events []sinkEvent) {
	atBottom := m.viewport.AtBottom() || len(m.lines) == 0
	contentChanged := false

	for _, ev := range events {
		switch ev.kind {
		case eventReplace:
			m.lines = ev.lines
			m.print(ev.lines...)
			contentChanged = true

		case eventAppend:
			m.lines = append(m.lines, ev.lines...)
			m.print(ev.lines...)
			contentChanged = true

		case eventNote:
			m.lines = append(m.lines, ev.text)
			m.print(ev.text)
			contentChanged = true

		case eventStatus:
			if m.config.SimpleOutput() && (ev.status != m.status || ev.text != m.statusText) {
				_, _ = fmt.Fprintln(m.config.Out, formatStatus(ev.status, ev.text))
			}
			m.status = ev.status
			m.statusText = ev.text

		case eventDone:
			m.outcome = ev.outcome
			m.err = ev.err
			m.isComplete = true
		}
	}

	// Enforce memory limit - evict oldest lines if needed
	if len(m.lines) > MaxLogsInMemory {
		m.lines = m.lines[len(m.lines)-MaxLogsInMemory:]
	}

	if contentChanged && !m.config.SimpleOutput() {
		styled := make([]string, len(m.lines))
		for i, line := range m.lines {
			styled[i] = formatLine(line)
		}
		m.viewport.SetContent(strings.Join(styled, "\n"))
		if atBottom {
			m.viewport.GotoBottom()
		}
	}
}

// print writes lines straight through in simple mode
func (m *LogViewerModel) print(lines ...string) {
	if !m.config.SimpleOutput() {
		return
	}
	for _, line := range lines {
		_, _ = fmt.Fprintln(m.config.Out, formatLine(line))
	}
}

// View renders the log viewer
func (m *LogViewerModel) View() string {
	// Simple mode: output already printed directly, return empty
	if m.config.SimpleOutput() {
		return ""
	}

	var output strings.Builder

	if !m.isComplete {
		output.WriteString(m.spinner.View())
		output.WriteString(" ")
	}
	output.WriteString(formatStatus(m.status, m.statusText))
	output.WriteString("\n\n")
	output.WriteString(m.viewport.View())
	output.WriteString("\n")

	return output.String()
}

// Lines returns the displayed log buffer
func (m *LogViewerModel) Lines() []string {
	return m.lines
}

// Status returns the current status line
func (m *LogViewerModel) Status() (StatusKind, string) {
	return m.status, m.statusText
}

// Outcome returns how the watch ended, once IsComplete
func (m *LogViewerModel) Outcome() Outcome {
	return m.outcome
}

// IsComplete returns true once the poller has finished and its updates are applied
func (m *LogViewerModel) IsComplete() bool {
	return m.isComplete
}

// Messages

type sinkUpdatesMsg struct {
	events []sinkEvent
}
