package logging

import (
	"strings"

	"github.com/pilotdeck/pilotdeck/internal/ui"
)

// formatLine colors the level tag of notes and script output
func formatLine(line string) string {
	switch {
	case strings.HasPrefix(line, "[ERROR]"):
		return ui.ErrorStyle.Render("[ERROR]") + line[len("[ERROR]"):]
	case strings.HasPrefix(line, "[WARN]"):
		return ui.WarningStyle.Render("[WARN]") + line[len("[WARN]"):]
	case strings.HasPrefix(line, "[INFO]"):
		return ui.TimestampStyle.Render("[INFO]") + line[len("[INFO]"):]
	default:
		return line
	}
}

func formatStatus(kind StatusKind, text string) string {
	switch kind {
	case StatusSuccess:
		return ui.GreenStyle.Render("✓ ") + text
	case StatusFailed:
		return ui.RedStyle.Render("✗ ") + text
	case StatusRestarting:
		return ui.YellowStyle.Render("↻ ") + text
	default:
		return text
	}
}
