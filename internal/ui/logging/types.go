package logging

import (
	"context"
	"time"

	"github.com/pilotdeck/pilotdeck/internal/api"
)

// DeploySource fetches the deploy job's log window and status. api.Client satisfies it.
type DeploySource interface {
	GetDeployLog(ctx context.Context) (*api.DeployLogResponse, error)
	GetDeployStatus(ctx context.Context) (*api.DeployStatus, error)
}

// DeploySink receives display updates from a DeployPoller.
// Methods are called with the poller's lock held and must not block or call back into the poller.
type DeploySink interface {
	// OnReplace discards the displayed log and shows lines instead
	OnReplace(lines []string)

	// OnAppend adds lines to the end of the displayed log
	OnAppend(lines []string)

	// OnStatus updates the status line
	OnStatus(kind StatusKind, text string)

	// OnNote adds an informational line to the log, e.g. "[INFO] Deploy status: success"
	OnNote(text string)
}

// JobState is the server-reported state of a deploy job
type JobState = api.DeployJobState

// StatusKind classifies the status line shown alongside the log
type StatusKind string

const (
	StatusIdle       StatusKind = "idle"
	StatusRunning    StatusKind = "running"
	StatusRestarting StatusKind = "restarting"
	StatusSuccess    StatusKind = "success"
	StatusFailed     StatusKind = "failed"
)

// Outcome is how a watch ended
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeSucceeded
	OutcomeFailed
	OutcomeFatal
	OutcomeStopped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	case OutcomeFatal:
		return "fatal"
	case OutcomeStopped:
		return "stopped"
	default:
		return "none"
	}
}

// PollState is a snapshot of the poller's progress
type PollState struct {
	Polling             bool
	ConsecutiveFailures int
	CurrentDelay        time.Duration
	// LastSnapshot is the last log window received
	LastSnapshot []string
	// LastJoinedText is LastSnapshot joined with newlines, used for failure hints
	LastJoinedText string
}
