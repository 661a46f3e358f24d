package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pilotdeck/pilotdeck/internal/commands"
	"github.com/pilotdeck/pilotdeck/internal/ui"
	"github.com/pilotdeck/pilotdeck/pkg/telemetry"
)

func main() {
	telemetry.Initialize()
	defer telemetry.NotifyOnPanic(context.Background())

	rootCmd := commands.NewRootCmd()
	err := rootCmd.Execute()
	if err == nil {
		return
	}

	var uiErr *ui.UIError
	if errors.As(err, &uiErr) {
		if uiErr.Type == ui.ErrorTypeInternal {
			telemetry.NotifyError(context.Background(), err)
		}
		if uiErr.SilentExit {
			// The view already rendered it
			os.Exit(exitCode(uiErr))
		}
		fmt.Fprint(os.Stderr, ui.FormatError(uiErr))
		os.Exit(exitCode(uiErr))
	}

	errMsg := err.Error()
	if strings.HasPrefix(errMsg, "unknown command") {
		// Commands suppress usage, so print it here
		_ = rootCmd.Usage()
		fmt.Fprintln(os.Stderr)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func exitCode(err *ui.UIError) int {
	if err.Type == ui.ErrorTypeUserCancelled {
		return 130
	}
	return 1
}
