package agent

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pilotdeck/pilotdeck/internal/api"
	"github.com/pilotdeck/pilotdeck/internal/timeutil"
	"github.com/pilotdeck/pilotdeck/internal/ui"
)

// RunsConfig configures the agent runs view
type RunsConfig struct {
	ui.DisplayConfig

	Client  api.Client
	Filters api.AgentRunFilters
	Out     io.Writer
	Now     func() time.Time
}

// RunsView is the Bubbletea model for displaying agent runs
type RunsView struct {
	ctx context.Context

	list    *api.AgentRunList
	loading bool
	spinner *ui.SpinnerModel
	table   table.Model
	err     *ui.UIError

	conf RunsConfig
}

// NewRunsView creates a new agent runs view
func NewRunsView(ctx context.Context, conf RunsConfig) *RunsView {
	if conf.Out == nil {
		conf.Out = os.Stdout
	}
	if conf.Now == nil {
		conf.Now = time.Now
	}
	return &RunsView{
		ctx:     ctx,
		loading: true,
		spinner: ui.NewSpinner(),
		conf:    conf,
	}
}

// Error returns the error if any occurred during execution
func (m *RunsView) Error() error {
	if m.err == nil {
		return nil
	}
	return m.err
}

func (m *RunsView) Init() tea.Cmd {
	return tea.Batch(m.spinner.Init(), m.fetchRuns)
}

func (m *RunsView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.SignalCancelMsg:
		return m, tea.Quit

	case runsLoadedMsg:
		return m.onLoaded(msg.list)

	case *ui.UIError:
		m.err = msg
		m.loading = false
		if !m.conf.SimpleOutput() {
			msg.SilentExit = true
		}
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
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

func (m *RunsView) View() string {
	if m.conf.SimpleOutput() {
		return ""
	}

	if m.loading {
		return m.spinner.Loading("Loading agent runs...")
	}

	if m.err != nil {
		return ui.FormatError(m.err)
	}

	if m.list == nil || len(m.list.Runs) == 0 {
		return ui.WarningStyle.Render("No agent runs found") + "\n"
	}

	var output strings.Builder
	output.WriteString(ui.TitleStyle.Render(m.title()))
	output.WriteString("\n\n")
	output.WriteString(m.table.View())
	output.WriteString("\n\n")
	return output.String()
}

func (m *RunsView) title() string {
	title := fmt.Sprintf("Agent runs (%d of %d)", len(m.list.Runs), m.list.Total)
	if m.conf.Filters.ProjectID != "" {
		title += " for " + m.conf.Filters.ProjectID
	}
	return title
}

func (m *RunsView) onLoaded(list *api.AgentRunList) (tea.Model, tea.Cmd) {
	m.list = list
	m.loading = false

	if m.conf.SimpleOutput() {
		if list == nil || len(list.Runs) == 0 {
			fmt.Fprintln(m.conf.Out, "No agent runs found")
		} else {
			fmt.Fprint(m.conf.Out, FormatRunsTable(list.Runs))
		}
		return m, tea.Quit
	}

	if list == nil {
		return m, tea.Quit
	}

	now := m.conf.Now()
	rows := make([]table.Row, 0, len(list.Runs))
	for _, run := range list.Runs {
		rows = append(rows, table.Row{
			run.ID,
			orDash(run.ProjectID),
			ui.ColorizeStatus(string(run.Status)),
			ui.Truncate(run.Title, 48),
			timeutil.FormatRelative(run.UpdatedAt.Time, now),
		})
	}
	m.table = newTable([]string{"Run ID", "Project", "Status", "Title", "Updated"}, rows)
	return m, tea.Quit
}

// FormatRunsTable formats agent runs for non-TTY output
func FormatRunsTable(runs []api.AgentRun) string {
	var output strings.Builder

	fmt.Fprintf(&output, "%-28s %-20s %-10s %-25s %s\n", "RUN ID", "PROJECT", "STATUS", "UPDATED AT", "TITLE")
	for _, run := range runs {
		fmt.Fprintf(&output, "%-28s %-20s %-10s %-25s %s\n",
			run.ID,
			orDash(run.ProjectID),
			run.Status,
			formatAbsolute(run.UpdatedAt.Time),
			run.Title,
		)
	}

	return output.String()
}

// Messages

type runsLoadedMsg struct {
	list *api.AgentRunList
}

func (m *RunsView) fetchRuns() tea.Msg {
	list, err := m.conf.Client.GetAgentRuns(m.ctx, m.conf.Filters)
	if err != nil {
		return ui.NewErrorFromAPI(fmt.Errorf("list agent runs: %w", err))
	}
	return runsLoadedMsg{list: list}
}

// Utils

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatAbsolute(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04:05 MST")
}

func newTable(headers []string, rows []table.Row) table.Model {
	const padding = 4

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	columns := make([]table.Column, len(headers))
	for i, h := range headers {
		columns[i] = table.Column{Title: h, Width: widths[i] + padding}
	}

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("11")).
		BorderBottom(true).
		Bold(true).
		Padding(0, 1)
	// Nothing is selectable in a printed table
	s.Selected = s.Selected.
		Foreground(lipgloss.NoColor{}).
		Background(lipgloss.NoColor{}).
		Bold(false)

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(len(rows)+1),
		table.WithFocused(false),
	)
	t.SetStyles(s)

	return t
}
