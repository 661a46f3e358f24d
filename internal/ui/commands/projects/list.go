package projects

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pilotdeck/pilotdeck/internal/api"
	"github.com/pilotdeck/pilotdeck/internal/ui"
)

// Sort orders accepted by --sort
const (
	SortManual   = "manual"
	SortPriority = "priority"
)

// ListConfig configures the projects list view
type ListConfig struct {
	ui.DisplayConfig

	Client  api.Client
	Filters api.ProjectFilters
	// TagPattern keeps projects with at least one tag matching the glob
	TagPattern string
	Sort       string
	Out        io.Writer
}

// ListView is the Bubbletea model for the projects table
type ListView struct {
	ctx context.Context

	projects []api.Project
	loading  bool
	spinner  *ui.SpinnerModel
	table    table.Model
	err      *ui.UIError

	conf ListConfig
}

// NewListView creates a new projects list view
func NewListView(ctx context.Context, conf ListConfig) *ListView {
	if conf.Out == nil {
		conf.Out = os.Stdout
	}
	return &ListView{
		ctx:     ctx,
		loading: true,
		spinner: ui.NewSpinner(),
		conf:    conf,
	}
}

// Error returns the error if any occurred during execution
func (m *ListView) Error() error {
	if m.err == nil {
		return nil
	}
	return m.err
}

func (m *ListView) Init() tea.Cmd {
	return tea.Batch(m.spinner.Init(), m.fetchProjects)
}

func (m *ListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.SignalCancelMsg:
		return m, tea.Quit

	case projectsLoadedMsg:
		return m.onLoaded(msg.projects)

	case *ui.UIError:
		m.err = msg
		m.loading = false
		if !m.conf.SimpleOutput() {
			msg.SilentExit = true
		}
		return m, tea.Quit

	case tea.KeyMsg:
		return m.onKey(msg)

	default:
		if !m.conf.SimpleOutput() && m.loading {
			spinnerModel, cmd := m.spinner.Update(msg)
			m.spinner = spinnerModel.(*ui.SpinnerModel) //nolint:errcheck // Type assertion guaranteed by SpinnerModel structure
			return m, cmd
		}
	}

	return m, nil
}

func (m *ListView) View() string {
	if m.conf.SimpleOutput() {
		return ""
	}

	if m.loading {
		return m.spinner.Loading("Loading projects...")
	}

	if m.err != nil {
		return ui.FormatError(m.err)
	}

	if len(m.projects) == 0 {
		return ui.WarningStyle.Render("No projects found") + "\n"
	}

	var output strings.Builder
	output.WriteString(ui.TitleStyle.Render(fmt.Sprintf("Projects (%d)", len(m.projects))))
	output.WriteString("\n\n")
	output.WriteString(m.table.View())
	output.WriteString("\n\n")

	if ui.TableBiggerThanView(m.table) {
		output.WriteString(ui.HelpStyle.Render("j/k scroll • J/K scroll to bottom/top • ctrl+d/ctrl+u page up/down • <esc> or q to quit"))
		output.WriteString("\n")
	}
	return output.String()
}

// Projects returns the filtered and sorted projects once loaded
func (m *ListView) Projects() []api.Project {
	return m.projects
}

func (m *ListView) onKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	}
	if m.conf.SimpleOutput() || m.loading || len(m.table.Rows()) == 0 {
		return m, nil
	}

	switch msg.String() {
	case "J":
		m.table.GotoBottom()
		return m, nil
	case "K":
		m.table.GotoTop()
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *ListView) onLoaded(projects []api.Project) (tea.Model, tea.Cmd) {
	m.projects = projects
	m.loading = false

	if m.conf.SimpleOutput() {
		if len(m.projects) == 0 {
			fmt.Fprintln(m.conf.Out, "No projects found")
		} else {
			fmt.Fprint(m.conf.Out, FormatProjectsTable(m.projects))
		}
		return m, tea.Quit
	}

	rows := make([]table.Row, 0, len(m.projects))
	for _, p := range m.projects {
		rows = append(rows, table.Row{
			p.ID,
			ui.Truncate(p.Name, 40),
			ui.ColorizeStatus(string(p.Status)),
			ui.ColorizePriority(string(p.Priority)),
			ui.FormatProgress(p.Progress),
			categoryOrDash(p.Category),
		})
	}
	m.table = newTable(rows)

	// Stay open for scrolling only when the table does not fit
	if !ui.TableBiggerThanView(m.table) {
		return m, tea.Quit
	}
	return m, nil
}

// FormatProjectsTable formats projects for non-TTY output
func FormatProjectsTable(projects []api.Project) string {
	var output strings.Builder

	fmt.Fprintf(&output, "%-24s %-40s %-12s %-8s %-8s %s\n",
		"ID", "NAME", "STATUS", "PRIORITY", "PROGRESS", "CATEGORY")

	for _, p := range projects {
		fmt.Fprintf(&output, "%-24s %-40s %-12s %-8s %-8s %s\n",
			p.ID,
			ui.Truncate(p.Name, 40),
			p.Status,
			p.Priority,
			strconv.Itoa(p.Progress)+"%",
			categoryOrDash(p.Category),
		)
	}

	return output.String()
}

// FilterAndSort applies the client-side tag filter and sort order.
// The manual order is the server's order. The priority sort is stable so
// projects of equal priority keep their manual order.
func FilterAndSort(projects []api.Project, tagPattern, sortOrder string) ([]api.Project, error) {
	result := make([]api.Project, 0, len(projects))
	for _, p := range projects {
		ok, err := matchesTag(p, tagPattern)
		if err != nil {
			return nil, err
		}
		if ok {
			result = append(result, p)
		}
	}

	switch sortOrder {
	case "", SortManual:
	case SortPriority:
		slices.SortStableFunc(result, func(a, b api.Project) int {
			return b.Priority.Rank() - a.Priority.Rank()
		})
	default:
		return nil, fmt.Errorf("unknown sort order %q (expected %s or %s)", sortOrder, SortManual, SortPriority)
	}

	return result, nil
}

func matchesTag(p api.Project, pattern string) (bool, error) {
	if pattern == "" {
		return true, nil
	}
	if !doublestar.ValidatePattern(pattern) {
		return false, fmt.Errorf("invalid tag pattern %q", pattern)
	}
	for _, tag := range p.Tags {
		// ValidatePattern above makes the error unreachable
		if ok, _ := doublestar.Match(pattern, tag); ok {
			return true, nil
		}
	}
	return false, nil
}

func categoryOrDash(category string) string {
	if category == "" {
		return "-"
	}
	return category
}

// Messages

type projectsLoadedMsg struct {
	projects []api.Project
}

func (m *ListView) fetchProjects() tea.Msg {
	projects, err := m.conf.Client.GetProjects(m.ctx, m.conf.Filters)
	if err != nil {
		return ui.NewErrorFromAPI(fmt.Errorf("list projects: %w", err))
	}

	filtered, err := FilterAndSort(projects, m.conf.TagPattern, m.conf.Sort)
	if err != nil {
		return ui.NewValidationError(err)
	}

	slog.Debug("loaded projects", "total", len(projects), "shown", len(filtered))
	return projectsLoadedMsg{projects: filtered}
}

func newTable(rows []table.Row) table.Model {
	const padding = 4

	headers := []string{"ID", "Name", "Status", "Priority", "Progress", "Category"}
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
	s.Selected = s.Selected.Bold(true)

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(min(len(rows)+1, ui.MAX_TABLE_HEIGHT)), // Include header
		table.WithFocused(true),
	)
	t.SetStyles(s)

	return t
}
