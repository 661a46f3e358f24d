package agent

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pilotdeck/pilotdeck/internal/api"
	"github.com/pilotdeck/pilotdeck/internal/ui"
)

// EventsConfig configures the agent events view
type EventsConfig struct {
	ui.DisplayConfig

	Client  api.Client
	Filters api.AgentEventFilters
	Out     io.Writer
}

// EventsView prints the agent event stream oldest first, one line per event
type EventsView struct {
	ctx context.Context

	events  []api.AgentEvent
	loading bool
	spinner *ui.SpinnerModel
	err     *ui.UIError

	conf EventsConfig
}

func NewEventsView(ctx context.Context, conf EventsConfig) *EventsView {
	if conf.Out == nil {
		conf.Out = os.Stdout
	}
	return &EventsView{
		ctx:     ctx,
		loading: true,
		spinner: ui.NewSpinner(),
		conf:    conf,
	}
}

// Error returns the error if any occurred during execution
func (m *EventsView) Error() error {
	if m.err == nil {
		return nil
	}
	return m.err
}

func (m *EventsView) Init() tea.Cmd {
	return tea.Batch(m.spinner.Init(), m.fetchEvents)
}

func (m *EventsView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.SignalCancelMsg:
		return m, tea.Quit

	case eventsLoadedMsg:
		m.events = msg.events
		m.loading = false
		if m.conf.SimpleOutput() {
			if len(m.events) == 0 {
				fmt.Fprintln(m.conf.Out, "No agent events found")
			}
			for _, ev := range m.events {
				fmt.Fprintln(m.conf.Out, FormatEventLine(ev))
			}
		}
		return m, tea.Quit

	case *ui.UIError:
		m.err = msg
		m.loading = false
		if !m.conf.SimpleOutput() {
			msg.SilentExit = true
		}
		return m, tea.Quit

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}

	default:
		if !m.conf.SimpleOutput() && m.loading {
			spinnerModel, cmd := m.spinner.Update(msg)
			m.spinner = spinnerModel.(*ui.SpinnerModel) //nolint:errcheck // Type assertion guaranteed by SpinnerModel structure
			return m, cmd
		}
	}

	return m, nil
}

func (m *EventsView) View() string {
	if m.conf.SimpleOutput() {
		return ""
	}

	if m.loading {
		return m.spinner.Loading("Loading agent events...")
	}

	if m.err != nil {
		return ui.FormatError(m.err)
	}

	if len(m.events) == 0 {
		return ui.WarningStyle.Render("No agent events found") + "\n"
	}

	var output strings.Builder
	for _, ev := range m.events {
		output.WriteString(ui.TimestampStyle.Render(formatAbsolute(ev.Timestamp.Time)))
		output.WriteString(" ")
		output.WriteString(colorizeLevel(ev.Level))
		output.WriteString(" ")
		output.WriteString(eventBody(ev))
		output.WriteString("\n")
	}
	return output.String()
}

// FormatEventLine renders one event for non-TTY output
func FormatEventLine(ev api.AgentEvent) string {
	return fmt.Sprintf("%s %-5s %s", formatAbsolute(ev.Timestamp.Time), levelLabel(ev.Level), eventBody(ev))
}

func eventBody(ev api.AgentEvent) string {
	var b strings.Builder
	b.WriteString("[" + orDash(ev.Type) + "]")
	if ev.ProjectID != "" {
		b.WriteString(" " + ev.ProjectID)
	}
	if ev.RunID != "" {
		b.WriteString("/" + ev.RunID)
	}
	switch {
	case ev.Title != "" && ev.Message != "":
		b.WriteString(" " + ev.Title + ": " + ev.Message)
	case ev.Title != "":
		b.WriteString(" " + ev.Title)
	case ev.Message != "":
		b.WriteString(" " + ev.Message)
	}
	return b.String()
}

func levelLabel(level string) string {
	if level == "" {
		return "INFO"
	}
	return strings.ToUpper(level)
}

func colorizeLevel(level string) string {
	label := fmt.Sprintf("%-5s", levelLabel(level))
	switch strings.ToLower(level) {
	case "error":
		return ui.RedStyle.Render(label)
	case "warn":
		return ui.YellowStyle.Render(label)
	case "debug":
		return ui.PendingStyle.Render(label)
	default:
		return ui.CyanStyle.Render(label)
	}
}

// Messages

type eventsLoadedMsg struct {
	events []api.AgentEvent
}

func (m *EventsView) fetchEvents() tea.Msg {
	events, err := m.conf.Client.GetAgentEvents(m.ctx, m.conf.Filters)
	if err != nil {
		return ui.NewErrorFromAPI(fmt.Errorf("list agent events: %w", err))
	}
	return eventsLoadedMsg{events: events}
}
