package ui

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrorModel is a Bubbletea model that records its failure for the caller
type ErrorModel interface {
	tea.Model
	Error() error
}

// RunProgram runs model to completion and returns its recorded error as a
// *UIError. main skips printing errors marked SilentExit but still exits
// non-zero.
func RunProgram[T ErrorModel](model T, display DisplayConfig, shutdownTimeout time.Duration) (T, error) {
	var programOpts []tea.ProgramOption
	if !display.IsInteractive {
		programOpts = append(programOpts,
			tea.WithoutRenderer(),
			tea.WithInput(nil),
		)
	} else {
		// Keep the command line in the terminal history
		fmt.Println()
	}

	p := tea.NewProgram(model, programOpts...)

	doneCh := SetupSignalHandling(p, shutdownTimeout)
	defer close(doneCh)

	finalModel, err := p.Run()
	if err != nil {
		return model, NewInternalError(fmt.Errorf("internal error: %w", err))
	}

	m, ok := finalModel.(T)
	if !ok {
		return model, NewInternalError(fmt.Errorf("unexpected model type %T", finalModel))
	}

	return m, resultError(m.Error())
}

func resultError(err error) error {
	if err == nil {
		return nil
	}

	var uiErr *UIError
	if !errors.As(err, &uiErr) {
		return NewInternalError(err)
	}
	return uiErr
}
