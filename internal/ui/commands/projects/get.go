package projects

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

type GetConfig struct {
	ui.DisplayConfig

	Client    api.Client
	ProjectID string
	Out       io.Writer
}

// GetView is the Bubbletea model for displaying one project
type GetView struct {
	ctx context.Context

	project *api.Project
	loading bool
	spinner *ui.SpinnerModel
	err     *ui.UIError

	conf GetConfig
}

// NewGetView creates a new project detail view
func NewGetView(ctx context.Context, conf GetConfig) *GetView {
	if conf.Out == nil {
		conf.Out = os.Stdout
	}
	return &GetView{
		ctx:     ctx,
		loading: true,
		spinner: ui.NewSpinner(),
		conf:    conf,
	}
}

// Error returns the error if any occurred during execution
func (m *GetView) Error() error {
	if m.err == nil {
		return nil
	}
	return m.err
}

func (m *GetView) Init() tea.Cmd {
	return tea.Batch(m.spinner.Init(), m.fetchProject)
}

func (m *GetView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.SignalCancelMsg:
		if m.conf.SimpleOutput() {
			fmt.Fprintf(os.Stderr, "\nCancelled\n")
		}
		return m, tea.Quit

	case projectLoadedMsg:
		m.project = msg.project
		m.loading = false
		if m.conf.SimpleOutput() {
			fmt.Fprint(m.conf.Out, FormatProjectDetails(m.project))
		}
		return m, tea.Quit

	case *ui.UIError:
		msg.SilentExit = true
		m.err = msg
		m.loading = false
		if m.conf.SimpleOutput() {
			fmt.Fprintf(m.conf.Out, "Error: %s\n", msg.Error())
		}
		return m, tea.Quit

	default:
		if !m.conf.SimpleOutput() && m.loading {
			spinnerModel, cmd := m.spinner.Update(msg)
			m.spinner = spinnerModel.(*ui.SpinnerModel) //nolint:errcheck // Type assertion guaranteed by SpinnerModel structure
			return m, cmd
		}
	}

	return m, nil
}

func (m *GetView) View() string {
	if m.conf.SimpleOutput() {
		return ""
	}

	if m.loading {
		return m.spinner.Loading("Loading project " + m.conf.ProjectID + "...")
	}

	if m.err != nil {
		return ui.FormatError(m.err)
	}

	if m.project == nil {
		return ui.WarningStyle.Render("Project not found")
	}

	return m.formatProjectPanel()
}

func (m *GetView) formatProjectPanel() string {
	p := m.project

	sections := []ui.TableSection{{
		Header: "PROJECT",
		Rows: []ui.TableRow{
			{Label: "ID", Value: p.ID},
			{Label: "Name", Value: p.Name},
			{Label: "Category", Value: categoryOrDash(p.Category)},
			{Label: "Tags", Value: joinOrDash(p.Tags)},
			{Label: "Created At", Value: ui.FormatTimestamp(p.CreatedAt.Time)},
			{Label: "Updated At", Value: ui.FormatTimestamp(p.UpdatedAt.Time)},
		},
	}, {
		Header: "STATUS",
		Rows: []ui.TableRow{
			{Label: "Status", Value: ui.ColorizeStatus(string(p.Status))},
			{Label: "Priority", Value: ui.ColorizePriority(string(p.Priority))},
			{Label: "Progress", Value: ui.FormatProgress(p.Progress)},
		},
	}, {
		Header: "FINANCIAL",
		Rows: []ui.TableRow{
			{Label: "Cost", Value: formatMoney(p.Cost.Total)},
			{Label: "Revenue", Value: formatMoney(p.Revenue.Total)},
			{Label: "Net", Value: formatMoney(p.Revenue.Total - p.Cost.Total)},
		},
	}}

	if links := projectLinks(p); len(links) > 0 {
		sections = append(sections, ui.TableSection{Header: "LINKS", Rows: links})
	}

	if len(p.Orders) > 0 {
		rows := make([]ui.TableRow, 0, len(p.Orders))
		for _, o := range p.Orders {
			rows = append(rows, ui.TableRow{
				Label: ui.Truncate(o.Title, 28),
				Value: fmt.Sprintf("%s  %s  %s", formatMoney(o.Amount), o.Customer, ui.ColorizeStatus(o.Status)),
			})
		}
		sections = append(sections, ui.TableSection{Header: "ORDERS", Rows: rows})
	}

	content := ui.RenderDetailTable(sections)
	if desc := strings.TrimSpace(p.Description); desc != "" {
		content = desc + "\n\n" + content
	}
	return ui.RenderPanel("Project "+p.Name, content)
}

// FormatProjectDetails formats a project for non-TTY output
func FormatProjectDetails(p *api.Project) string {
	var output strings.Builder

	header := "Project: " + p.Name
	output.WriteString(header + "\n")
	output.WriteString(strings.Repeat("=", len(header)) + "\n\n")

	if desc := strings.TrimSpace(p.Description); desc != "" {
		output.WriteString(desc + "\n\n")
	}

	fmt.Fprintf(&output, "  ID: %s\n", p.ID)
	fmt.Fprintf(&output, "  Status: %s\n", p.Status)
	fmt.Fprintf(&output, "  Priority: %s\n", p.Priority)
	fmt.Fprintf(&output, "  Progress: %d%%\n", p.Progress)
	fmt.Fprintf(&output, "  Category: %s\n", categoryOrDash(p.Category))
	fmt.Fprintf(&output, "  Tags: %s\n", joinOrDash(p.Tags))
	fmt.Fprintf(&output, "  Cost: %s\n", formatMoney(p.Cost.Total))
	fmt.Fprintf(&output, "  Revenue: %s\n", formatMoney(p.Revenue.Total))
	for _, link := range projectLinks(p) {
		fmt.Fprintf(&output, "  %s: %s\n", link.Label, link.Value)
	}
	if len(p.Orders) > 0 {
		output.WriteString("\nORDERS\n")
		for _, o := range p.Orders {
			fmt.Fprintf(&output, "  %s: %s %s (%s)\n", o.Title, formatMoney(o.Amount), o.Customer, o.Status)
		}
	}

	return output.String()
}

func projectLinks(p *api.Project) []ui.TableRow {
	var rows []ui.TableRow
	if p.GitHub != "" {
		rows = append(rows, ui.TableRow{Label: "GitHub", Value: p.GitHub})
	}
	if p.Workspace != "" {
		rows = append(rows, ui.TableRow{Label: "Workspace", Value: p.Workspace})
	}
	return rows
}

func formatMoney(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}

// Messages

type projectLoadedMsg struct {
	project *api.Project
}

func (m *GetView) fetchProject() tea.Msg {
	project, err := m.conf.Client.GetProject(m.ctx, m.conf.ProjectID)
	if err != nil {
		return ui.NewErrorFromAPI(fmt.Errorf("get project %s: %w", m.conf.ProjectID, err))
	}
	return projectLoadedMsg{project: project}
}
