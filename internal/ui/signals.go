package ui

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// SignalCancelMsg is sent to the running view on SIGINT or SIGTERM
type SignalCancelMsg struct {
	Signal os.Signal
}

// defaultShutdownTimeout bounds how long a view may take to quit after a signal
const defaultShutdownTimeout = 100 * time.Millisecond

// SetupSignalHandling replaces Bubbletea's signal handler with one that sends
// SignalCancelMsg so views can stop pollers before quitting. A second signal or
// the shutdown timeout force-exits with 130. Call before p.Run and close the
// returned channel once it returns.
func SetupSignalHandling(p *tea.Program, shutdownTimeout time.Duration) chan<- struct{} {
	tea.WithoutSignalHandler()(p)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	h := &signalHandler{
		signals: sigChan,
		done:    make(chan struct{}),
		send:    p.Send,
		timeout: shutdownTimeout,
		stderr:  os.Stderr,
		exit:    os.Exit,
	}
	go func() {
		defer signal.Stop(sigChan)
		h.run()
	}()
	return h.done
}

type signalHandler struct {
	signals <-chan os.Signal
	done    chan struct{}
	send    func(tea.Msg)
	timeout time.Duration
	stderr  io.Writer
	exit    func(code int)
}

func (h *signalHandler) run() {
	var sig os.Signal
	select {
	case sig = <-h.signals:
	case <-h.done:
		return
	}

	h.send(SignalCancelMsg{Signal: sig})

	timeout := h.timeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-h.signals:
		fmt.Fprintf(h.stderr, "\nForce quitting...\n")
		h.exit(130)
	case <-timer.C:
		fmt.Fprintf(h.stderr, "\nTimeout trying to clean up, force quitting...\n")
		h.exit(130)
	case <-h.done:
	}
}
