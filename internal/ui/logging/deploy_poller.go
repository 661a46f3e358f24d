package logging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/pilotdeck/pilotdeck/internal/api"
	"github.com/pilotdeck/pilotdeck/internal/clock"
)

const (
	DefaultBaseDelay    = 1500 * time.Millisecond
	DefaultMaxDelay     = 10 * time.Second
	DefaultNoteInterval = 6 * time.Second

	// maxBackoffExponent caps the multiplier at 8x the base delay
	maxBackoffExponent = 3
)

// DeployPollerConfig configures a DeployPoller
type DeployPollerConfig struct {
	Source DeploySource
	Sink   DeploySink
	Clock  clock.Clock // Default: clock.Real()

	BaseDelay    time.Duration // Default: 1.5s
	MaxDelay     time.Duration // Default: 10s
	NoteInterval time.Duration // Minimum gap between reconnect notes. Default: 6s

	// RequestTimeout bounds each fetch. Zero leaves requests to the transport.
	RequestTimeout time.Duration

	// OnDone is called once per Start when polling ends, without the poller's lock held
	OnDone func(outcome Outcome, err error)
}

// DeployFailedError is reported when the deploy job ends in the failed state
type DeployFailedError struct {
	Hint     string
	ExitCode *int
}

func (e *DeployFailedError) Error() string {
	if e.ExitCode != nil {
		return fmt.Sprintf("deploy failed (exit %d): %s", *e.ExitCode, e.Hint)
	}
	return "deploy failed: " + e.Hint
}

// DeployPoller watches a deploy job: each tick fetches the log window,
// reconciles it into the sink, then fetches the status to decide whether to
// keep going. Transient failures back off exponentially; fatal failures and
// terminal job states stop it.
type DeployPoller struct {
	source         DeploySource
	sink           DeploySink
	clock          clock.Clock
	baseDelay      time.Duration
	maxDelay       time.Duration
	noteInterval   time.Duration
	requestTimeout time.Duration
	onDone         func(Outcome, error)

	mu         sync.Mutex
	state      PollState
	generation uint64 // Bumped on Start and Stop; ticks from older generations are discarded
	parent     context.Context
	timer      *clock.Timer
	cancelTick context.CancelFunc
	stopWatch  func() bool // Unregisters the parent context watcher
	lastNoteAt time.Time
	lastStatus StatusKind
	outcome    Outcome
	err        error
	done       chan struct{}
}

// NewDeployPoller creates a poller in the idle state
func NewDeployPoller(cfg DeployPollerConfig) *DeployPoller {
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultBaseDelay
	}
	if cfg.MaxDelay < cfg.BaseDelay {
		cfg.MaxDelay = max(DefaultMaxDelay, cfg.BaseDelay)
	}
	if cfg.NoteInterval <= 0 {
		cfg.NoteInterval = DefaultNoteInterval
	}

	done := make(chan struct{})
	close(done)

	return &DeployPoller{
		source:         cfg.Source,
		sink:           cfg.Sink,
		clock:          cfg.Clock,
		baseDelay:      cfg.BaseDelay,
		maxDelay:       cfg.MaxDelay,
		noteInterval:   cfg.NoteInterval,
		requestTimeout: cfg.RequestTimeout,
		onDone:         cfg.OnDone,
		state:          PollState{CurrentDelay: cfg.BaseDelay},
		done:           done,
	}
}

// Start begins polling. The first tick is scheduled with no delay; with a
// fake clock it runs before Start returns. Starting a running poller stops
// the previous run first. Cancelling ctx ends polling with OutcomeStopped.
func (p *DeployPoller) Start(ctx context.Context) {
	p.mu.Lock()
	notify := p.stopLocked(OutcomeStopped, nil)

	p.generation++
	gen := p.generation
	p.parent = ctx
	p.state = PollState{
		Polling:      true,
		CurrentDelay: p.baseDelay,
	}
	p.lastNoteAt = time.Time{}
	p.outcome = OutcomeNone
	p.err = nil
	p.done = make(chan struct{})
	p.setStatusLocked(StatusRunning, "Fetching deploy log... (the service may be briefly unavailable while it restarts; will reconnect automatically)")
	p.stopWatch = context.AfterFunc(ctx, func() { p.stopGeneration(gen, ctx.Err()) })
	p.mu.Unlock()

	notify()

	slog.Debug("Deploy poller started", "generation", gen, "baseDelay", p.baseDelay, "classificationVersion", ClassificationVersion)

	// Not stored as p.timer: a stale generation makes this tick a no-op
	p.clock.AfterFunc(0, func() { p.tick(gen) })
}

// Stop cancels the scheduled tick and any in-flight fetch. Results that
// arrive afterwards are discarded. Safe to call more than once.
func (p *DeployPoller) Stop() {
	p.mu.Lock()
	notify := p.stopLocked(OutcomeStopped, nil)
	p.mu.Unlock()

	notify()
}

// stopGeneration stops the run identified by gen, if it is still current
func (p *DeployPoller) stopGeneration(gen uint64, err error) {
	p.mu.Lock()
	if gen != p.generation {
		p.mu.Unlock()
		return
	}
	notify := p.stopLocked(OutcomeStopped, err)
	p.mu.Unlock()

	notify()
}

// State returns a copy of the current poll state
func (p *DeployPoller) State() PollState {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := p.state
	s.LastSnapshot = append([]string(nil), p.state.LastSnapshot...)
	return s
}

// Done is closed when the current run ends
func (p *DeployPoller) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Outcome reports how the last run ended, and the error behind it if any
func (p *DeployPoller) Outcome() (Outcome, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.outcome, p.err
}

// tickResult is what a tick learned from the network
type tickResult struct {
	state    JobState
	exitCode *int
	err      error
}

func (p *DeployPoller) tick(gen uint64) {
	ctx, ok := p.beginTick(gen)
	if !ok {
		return
	}

	res, ok := p.runTick(ctx, gen)
	if !ok {
		return
	}

	p.mu.Lock()
	notify := p.finishTickLocked(gen, res)
	p.mu.Unlock()

	notify()
}

// beginTick registers the tick's cancel func so Stop can abort its requests
func (p *DeployPoller) beginTick(gen uint64) (context.Context, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.generation || !p.state.Polling {
		return nil, false
	}

	ctx, cancel := context.WithCancel(p.parent)
	p.cancelTick = cancel
	p.timer = nil
	return ctx, true
}

// runTick fetches the log then the status. It returns false when the tick
// went stale while waiting on the network.
func (p *DeployPoller) runTick(ctx context.Context, gen uint64) (tickResult, bool) {
	logResp, err := p.fetchLog(ctx)
	if err != nil {
		return tickResult{err: fmt.Errorf("fetch deploy log: %w", err)}, true
	}

	if !p.applyLog(gen, logResp.Lines) {
		return tickResult{}, false
	}

	status, err := p.fetchStatus(ctx)
	if err != nil {
		return tickResult{err: fmt.Errorf("fetch deploy status: %w", err)}, true
	}

	return tickResult{state: status.State.Normalize(), exitCode: status.ExitCode}, true
}

func (p *DeployPoller) fetchLog(ctx context.Context) (*api.DeployLogResponse, error) {
	ctx, cancel := p.requestContext(ctx)
	defer cancel()
	return p.source.GetDeployLog(ctx)
}

func (p *DeployPoller) fetchStatus(ctx context.Context) (*api.DeployStatus, error) {
	ctx, cancel := p.requestContext(ctx)
	defer cancel()
	return p.source.GetDeployStatus(ctx)
}

func (p *DeployPoller) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.requestTimeout > 0 {
		return context.WithTimeout(ctx, p.requestTimeout)
	}
	return ctx, func() {}
}

// applyLog reconciles a fresh log window into the sink
func (p *DeployPoller) applyLog(gen uint64, lines []string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.generation || !p.state.Polling {
		slog.Debug("Discarding deploy log from stopped poll", "generation", gen)
		return false
	}

	delta := Reconcile(p.state.LastSnapshot, lines)
	switch {
	case delta.Mode == ReconcileReplace:
		p.sink.OnReplace(delta.Lines)
	case len(delta.Lines) > 0:
		p.sink.OnAppend(delta.Lines)
	}

	p.state.LastSnapshot = lines
	p.state.LastJoinedText = strings.Join(lines, "\n")
	return true
}

func (p *DeployPoller) finishTickLocked(gen uint64, res tickResult) func() {
	if gen != p.generation || !p.state.Polling {
		slog.Debug("Discarding deploy tick result from stopped poll", "generation", gen)
		return func() {}
	}

	if p.cancelTick != nil {
		p.cancelTick()
		p.cancelTick = nil
	}

	if res.err != nil {
		if parentErr := p.parent.Err(); parentErr != nil {
			return p.stopLocked(OutcomeStopped, parentErr)
		}
		if notify, stopped := p.handleErrorLocked(res.err); stopped {
			return notify
		}
	} else {
		switch res.state {
		case api.DeployStateSuccess:
			p.setStatusLocked(StatusSuccess, "Deploy finished: success. Check the service to confirm everything works.")
			p.sink.OnNote("[INFO] Deploy status: success")
			return p.stopLocked(OutcomeSucceeded, nil)

		case api.DeployStateFailed:
			hint := FailureHint(p.state.LastJoinedText)
			p.setStatusLocked(StatusFailed, hint)
			p.sink.OnNote("[ERROR] Deploy status: failed")
			return p.stopLocked(OutcomeFailed, &DeployFailedError{Hint: hint, ExitCode: res.exitCode})

		default:
			p.state.ConsecutiveFailures = 0
			p.state.CurrentDelay = p.baseDelay
			if p.lastStatus == StatusRestarting {
				p.setStatusLocked(StatusRunning, "Connection restored, deploy in progress...")
			}
		}
	}

	p.timer = p.clock.AfterFunc(p.state.CurrentDelay, func() { p.tick(gen) })
	return func() {}
}

// handleErrorLocked applies the error policy. It reports true when polling stopped.
func (p *DeployPoller) handleErrorLocked(err error) (func(), bool) {
	class, rule := classify(err)
	slog.Warn("Deploy poll failed",
		"error", err,
		"class", class,
		"rule", rule,
		"consecutiveFailures", p.state.ConsecutiveFailures,
	)

	msg := errorText(err)
	switch class {
	case ErrorClassFatal:
		p.sink.OnNote("[WARN] Log refresh stopped: " + msg)
		p.setStatusLocked(StatusFailed, "Cannot keep fetching the deploy log: "+msg)
		return p.stopLocked(OutcomeFatal, err), true

	case ErrorClassTransient:
		p.setStatusLocked(StatusRestarting, "Service restarting, waiting for it to come back... (usually 10-30 seconds)")
		now := p.clock.Now()
		if p.lastNoteAt.IsZero() || now.Sub(p.lastNoteAt) > p.noteInterval {
			p.sink.OnNote(fmt.Sprintf("[INFO] Service restarting, waiting to reconnect... (%s)", msg))
			p.lastNoteAt = now
		}

	default:
		p.sink.OnNote("[WARN] Log fetch failed: " + msg)
	}

	p.state.ConsecutiveFailures++
	p.state.CurrentDelay = p.backoff(p.state.ConsecutiveFailures)
	return nil, false
}

// backoff is clamp(base * 2^min(failures, 3), base, max)
func (p *DeployPoller) backoff(failures int) time.Duration {
	exp := min(failures, maxBackoffExponent)
	delay := p.baseDelay * time.Duration(1<<exp)
	return min(max(delay, p.baseDelay), p.maxDelay)
}

func (p *DeployPoller) setStatusLocked(kind StatusKind, text string) {
	p.lastStatus = kind
	p.sink.OnStatus(kind, text)
}

// stopLocked ends the current run. The returned func runs OnDone and must be
// called after the lock is released.
func (p *DeployPoller) stopLocked(outcome Outcome, err error) func() {
	if !p.state.Polling {
		return func() {}
	}

	p.generation++
	p.state.Polling = false
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	if p.cancelTick != nil {
		p.cancelTick()
		p.cancelTick = nil
	}
	if p.stopWatch != nil {
		p.stopWatch()
		p.stopWatch = nil
	}
	p.outcome = outcome
	p.err = err
	close(p.done)

	slog.Debug("Deploy poller stopped", "outcome", outcome, "error", err)

	onDone := p.onDone
	return func() {
		if onDone != nil {
			onDone(outcome, err)
		}
	}
}

// errorText is the message shown to the user for a fetch error
func errorText(err error) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	return err.Error()
}
