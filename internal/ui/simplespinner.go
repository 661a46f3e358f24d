package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// SimpleSpinner is a non-Bubbletea spinner for one-shot commands. It draws on
// stderr so stdout stays clean for piping and -o json.
type SimpleSpinner struct {
	message string
	frames  []string
	out     io.Writer
	enabled bool

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewSimpleSpinner creates a spinner that only animates when stderr is a TTY
func NewSimpleSpinner(message string) *SimpleSpinner {
	return newSimpleSpinner(message, os.Stderr, isatty.IsTerminal(os.Stderr.Fd()))
}

func newSimpleSpinner(message string, out io.Writer, enabled bool) *SimpleSpinner {
	return &SimpleSpinner{
		message: message,
		frames:  []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		out:     out,
		enabled: enabled,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (s *SimpleSpinner) Start() {
	if !s.enabled {
		close(s.done)
		return
	}

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			fmt.Fprintf(s.out, "\r%s %s", s.frames[i%len(s.frames)], s.message)
			select {
			case <-s.stop:
				fmt.Fprint(s.out, "\r\033[K")
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop clears the spinner line. Safe to call more than once.
func (s *SimpleSpinner) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}
