package ui

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// StatusLabel turns a backend enum value such as "in-progress" into "In Progress"
func StatusLabel(status string) string {
	normalized := strings.NewReplacer("-", " ", "_", " ").Replace(strings.TrimSpace(status))
	if normalized == "" {
		return "-"
	}
	return titleCaser.String(normalized)
}

// ColorizeStatus styles a project, agent run or deploy job status
func ColorizeStatus(status string) string {
	label := StatusLabel(status)

	switch strings.ToLower(strings.TrimSpace(status)) {
	case "completed", "success":
		return GreenStyle.Render(label)
	case "in-progress", "running":
		return CyanStyle.Render(label)
	case "planning":
		return MagentaStyle.Render(label)
	case "paused", "unknown":
		return PendingStyle.Render(label)
	case "failed", "error":
		return RedStyle.Render(label)
	case "cancelled":
		return YellowStyle.Render(label)
	default:
		return BoldStyle.Render(label)
	}
}

// ColorizePriority styles a project priority
func ColorizePriority(priority string) string {
	label := StatusLabel(priority)

	switch strings.ToLower(strings.TrimSpace(priority)) {
	case "urgent":
		return RedStyle.Render(label)
	case "high":
		return YellowStyle.Render(label)
	case "medium":
		return CyanStyle.Render(label)
	default:
		return PendingStyle.Render(label)
	}
}

// FormatProgress renders a 0-100 percentage as a ten cell bar
func FormatProgress(percent int) string {
	percent = min(max(percent, 0), 100)
	filled := percent / 10
	return strings.Repeat("█", filled) + strings.Repeat("░", 10-filled) + fmt.Sprintf(" %3d%%", percent)
}

// FormatTimestamp formats a time.Time to a human-readable string
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

// FormatError formats an error message with styling
// NOTE: Adds a new line manually. Use strings.TrimSpace if you want to strip it.
func FormatError(err error) string {
	if err == nil {
		return ""
	}
	// The last line printed before bubbletea exits can be overwritten:
	// https://github.com/charmbracelet/bubbletea/issues/304
	return ErrorStyle.Render(fmt.Sprintf("✗ Error: %s", err.Error())) + "\n"
}
