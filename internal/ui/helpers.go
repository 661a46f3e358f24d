package ui

import (
	"github.com/charmbracelet/bubbles/table"
)

// MAX_TABLE_HEIGHT defines the max number of rows viewable in one render.
// Not including header. Tables longer than this should scroll.
const MAX_TABLE_HEIGHT = 15

func TableBiggerThanView(t table.Model) bool {
	return len(t.Rows()) > MAX_TABLE_HEIGHT
}

// Truncate shortens s to at most width runes, marking the cut with an ellipsis
func Truncate(s string, width int) string {
	runes := []rune(s)
	if width <= 0 || len(runes) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}
