package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bugsnag/bugsnag-go/v2"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pilotdeck/pilotdeck/internal/api"
	"github.com/pilotdeck/pilotdeck/internal/clock"
	"github.com/pilotdeck/pilotdeck/internal/ui"
	"github.com/pilotdeck/pilotdeck/internal/ui/logging"
	"github.com/pilotdeck/pilotdeck/pkg/telemetry"
)

// DeployState represents the current state of the deploy flow
type DeployState int

const (
	StateTriggering DeployState = iota
	StateWatching
	StateDetached
	StateCancelled
	StateDeploySuccess
	StateDeployError
)

const (
	restartWarning = "[WARN] The service will restart; HTTP 502 may appear meanwhile. This is normal and the log reconnects automatically."
	watchHint      = "Follow it with: pilotdeck deploy watch"
)

// DeployConfig contains deploy configuration
type DeployConfig struct {
	ui.DisplayConfig

	Client api.Client
	Clock  clock.Clock // Default: clock.Real()

	// RequestTimeout bounds each log/status request. Zero waits indefinitely.
	RequestTimeout time.Duration

	Detach    bool      // Trigger the deploy and exit without following the log
	WatchOnly bool      // Follow the current job without triggering a new one
	Out       io.Writer // Simple output destination (default: stdout)
}

// DeployView is the Bubbletea model for `pilotdeck deploy`: it triggers the
// deploy job and then follows its log until the job finishes.
type DeployView struct {
	ctx       context.Context
	ctxCancel context.CancelFunc

	state     DeployState
	started   *api.DeployStartResponse
	poller    *logging.DeployPoller
	logViewer *logging.LogViewerModel
	spinner   *ui.SpinnerModel
	err       *ui.UIError

	conf DeployConfig
}

// NewDeployView creates a new deploy view
func NewDeployView(ctx context.Context, conf DeployConfig) *DeployView {
	if conf.Out == nil {
		conf.Out = os.Stdout
	}

	initialState := StateTriggering
	if conf.WatchOnly {
		initialState = StateWatching
	}

	ctx, cancel := context.WithCancel(ctx)

	return &DeployView{
		ctx:       ctx,
		ctxCancel: cancel,
		state:     initialState,
		spinner:   ui.NewSpinner(),
		conf:      conf,
	}
}

// Error returns the error if any occurred during execution
func (m *DeployView) Error() error {
	if m.err == nil {
		return nil
	}
	return m.err
}

// GetError returns the structured error, if any
func (m *DeployView) GetError() *ui.UIError {
	return m.err
}

// Outcome reports how the watched deploy ended. OutcomeNone until it has.
func (m *DeployView) Outcome() logging.Outcome {
	if m.logViewer == nil || !m.logViewer.IsComplete() {
		return logging.OutcomeNone
	}
	return m.logViewer.Outcome()
}

func (m *DeployView) Init() tea.Cmd {
	if m.state == StateWatching {
		return m.startWatching()
	}

	if m.conf.SimpleOutput() {
		m.printf("Starting deploy...\n")
		return m.startDeploy
	}

	return tea.Batch(
		m.spinner.Init(),
		m.startDeploy,
	)
}

// Update handles messages
func (m *DeployView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if m.logViewer != nil {
			updated, cmd := m.logViewer.Update(msg)
			m.logViewer = updated.(*logging.LogViewerModel) //nolint:errcheck // Type assertion guaranteed by LogViewerModel structure
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.onKey(msg)

	case ui.SignalCancelMsg:
		if m.conf.SimpleOutput() {
			m.printf("\nReceived termination signal.\n")
		}
		return m.stopWatching()

	case deployStartedMsg:
		return m.onDeployStarted(msg.response)

	case *ui.UIError:
		// Structured error from async operations
		m.ctxCancel()
		msg.SilentExit = true // Shown below
		m.err = msg
		m.state = StateDeployError

		if msg.Type != ui.ErrorTypeUserCancelled && msg.Type != ui.ErrorTypeConfiguration {
			telemetry.NotifyWithMetadata(m.ctx, msg.Err, bugsnag.SeverityError, bugsnag.MetaData{
				"deploy": {"stage": "trigger"},
			})
		}

		if m.conf.SimpleOutput() {
			m.printf("✗ %s\n", msg.Error())
			return m, tea.Quit
		}

		return m, tea.Sequence(
			tea.Println(ui.ErrorStyle.Render(fmt.Sprintf("✗ %s", msg.Error()))),
			tea.Quit,
		)

	default:
		var cmds []tea.Cmd

		if m.state == StateTriggering && !m.conf.SimpleOutput() {
			spinnerModel, spinnerCmd := m.spinner.Update(msg)
			m.spinner = spinnerModel.(*ui.SpinnerModel) //nolint:errcheck // Type assertion guaranteed by SpinnerModel structure
			cmds = append(cmds, spinnerCmd)
		}

		if m.logViewer != nil && m.state == StateWatching {
			updated, logCmd := m.logViewer.Update(msg)
			m.logViewer = updated.(*logging.LogViewerModel) //nolint:errcheck // Type assertion guaranteed by LogViewerModel structure
			cmds = append(cmds, logCmd)

			if m.logViewer.IsComplete() {
				return m.onWatchComplete()
			}
		}

		return m, tea.Batch(cmds...)
	}
}

// View renders the output
func (m *DeployView) View() string {
	// Simple mode: output has already been printed directly
	if m.conf.SimpleOutput() {
		return ""
	}

	var output strings.Builder

	switch m.state {
	case StateTriggering:
		output.WriteString(fmt.Sprintf("%s  %s", m.spinner.View(), ui.ActiveStyle.Render("Starting deploy...")))
		output.WriteString("\n")

	case StateWatching:
		if m.logViewer != nil {
			output.WriteString(m.logViewer.View())
		}
		output.WriteString(ui.HelpStyle.Render("↑/↓ scroll • q stop following (the deploy keeps running)"))
		output.WriteString("\n")

	case StateDetached, StateCancelled, StateDeploySuccess, StateDeployError:
		// Printed to scrollback via tea.Println before quitting
		return ""
	}

	return output.String()
}

// Update helpers

func (m *DeployView) onKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m.stopWatching()
	}

	if m.conf.SimpleOutput() || m.logViewer == nil {
		return m, nil
	}

	updated, cmd := m.logViewer.Update(msg)
	m.logViewer = updated.(*logging.LogViewerModel) //nolint:errcheck // Type assertion guaranteed by LogViewerModel structure
	return m, cmd
}

func (m *DeployView) onDeployStarted(resp *api.DeployStartResponse) (tea.Model, tea.Cmd) {
	m.started = resp
	lines := []string{StartedLine(resp), restartWarning}

	slog.Info("Deploy job started", "jobId", resp.JobID, "method", resp.Method, "unit", resp.Unit)

	if m.conf.Detach {
		m.state = StateDetached
		m.ctxCancel()
		lines = append(lines, "Deploy is running on the server. "+watchHint)

		if m.conf.SimpleOutput() {
			for _, line := range lines {
				m.printf("%s\n", line)
			}
			return m, tea.Quit
		}

		return m, tea.Sequence(printlnAll(lines, tea.Quit)...)
	}

	m.state = StateWatching
	watchCmd := m.startWatching()

	if m.conf.SimpleOutput() {
		for _, line := range lines {
			m.printf("%s\n", line)
		}
		return m, watchCmd
	}

	return m, tea.Sequence(printlnAll(lines, watchCmd)...)
}

// startWatching wires a poller to a fresh log viewer and starts polling.
func (m *DeployView) startWatching() tea.Cmd {
	m.logViewer = logging.NewLogViewer(logging.LogViewerConfig{
		DisplayConfig: m.conf.DisplayConfig,
		Out:           m.conf.Out,
	})
	m.poller = logging.NewDeployPoller(logging.DeployPollerConfig{
		Source:         m.conf.Client,
		Sink:           m.logViewer,
		Clock:          m.conf.Clock,
		RequestTimeout: m.conf.RequestTimeout,
		OnDone:         m.logViewer.Finish,
	})
	m.poller.Start(m.ctx)

	return m.logViewer.Init()
}

// stopWatching leaves the deploy running on the server and exits.
func (m *DeployView) stopWatching() (tea.Model, tea.Cmd) {
	if m.poller != nil {
		m.poller.Stop()
	}
	m.ctxCancel()

	wasWatching := m.state == StateWatching
	m.state = StateCancelled
	m.err = ui.NewUserCancelledError()

	if !wasWatching {
		return m, tea.Quit
	}

	notice := "Stopped following the deploy log. The deploy keeps running on the server. " + watchHint
	if m.conf.SimpleOutput() {
		m.printf("%s\n", notice)
		return m, tea.Quit
	}

	return m, tea.Sequence(
		tea.Println(ui.YellowStyle.Render(notice)),
		tea.Quit,
	)
}

func (m *DeployView) onWatchComplete() (tea.Model, tea.Cmd) {
	m.ctxCancel()

	outcome, err := m.logViewer.Outcome(), m.logViewer.Error()
	slog.Debug("Deploy watch finished", "outcome", outcome, "error", err)

	switch outcome {
	case logging.OutcomeSucceeded:
		m.state = StateDeploySuccess

	case logging.OutcomeStopped:
		m.state = StateCancelled
		m.err = ui.NewUserCancelledError()

	case logging.OutcomeFailed:
		m.state = StateDeployError
		m.err = ui.NewAPIError(err)
		m.err.SilentExit = true // Hint already shown as the final status

		var failed *logging.DeployFailedError
		metadata := bugsnag.MetaData{"deploy": {"outcome": outcome.String()}}
		if errors.As(err, &failed) && failed.ExitCode != nil {
			metadata.Add("deploy", "exit_code", *failed.ExitCode)
		}
		if m.started != nil {
			metadata.Add("deploy", "job_id", m.started.JobID)
			metadata.Add("deploy", "method", m.started.Method)
		}
		telemetry.NotifyWithMetadata(m.ctx, err, bugsnag.SeverityWarning, metadata)

	default:
		m.state = StateDeployError
		m.err = ui.NewErrorFromAPI(err)
		m.err.SilentExit = true // Reason already shown as the final status
	}

	if m.conf.SimpleOutput() {
		return m, tea.Quit
	}

	// Keep the final log window in scrollback once the TUI exits
	return m, tea.Sequence(
		tea.Println(strings.TrimRight(m.logViewer.View(), "\n")),
		tea.Quit,
	)
}

func (m *DeployView) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(m.conf.Out, format, args...)
}

func printlnAll(lines []string, then tea.Cmd) []tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(lines)+1)
	for _, line := range lines {
		cmds = append(cmds, tea.Println(line))
	}
	return append(cmds, then)
}

// StartedLine renders the deploy trigger response as a log note, e.g.
// "[INFO] Deploy started. jobId=42 method=systemd unit=pilotdeck.service pid=1234"
func StartedLine(resp *api.DeployStartResponse) string {
	var b strings.Builder
	b.WriteString("[INFO] Deploy started. jobId=")
	b.WriteString(resp.JobID)
	b.WriteString(" method=")
	b.WriteString(resp.Method)
	if resp.Unit != "" {
		b.WriteString(" unit=")
		b.WriteString(resp.Unit)
	}
	if resp.PID != nil {
		b.WriteString(" pid=")
		b.WriteString(strconv.Itoa(*resp.PID))
	}
	return b.String()
}

// Messages

type deployStartedMsg struct {
	response *api.DeployStartResponse
}

// Commands (async operations)

func (m *DeployView) startDeploy() tea.Msg {
	resp, err := m.conf.Client.StartDeploy(m.ctx)
	if err != nil {
		if m.ctx.Err() != nil {
			return ui.NewUserCancelledError()
		}
		return ui.NewErrorFromAPI(fmt.Errorf("start deploy: %w", err))
	}
	return deployStartedMsg{response: resp}
}
