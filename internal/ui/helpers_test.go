package ui

import (
	"errors"
	"testing"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func TestStatusLabel(t *testing.T) {
	tcs := []struct {
		status string
		label  string
	}{
		{status: "in-progress", label: "In Progress"},
		{status: "planning", label: "Planning"},
		{status: "success", label: "Success"},
		{status: "data_only", label: "Data Only"},
		{status: "  urgent ", label: "Urgent"},
		{status: "", label: "-"},
	}

	for _, tc := range tcs {
		t.Run(tc.status, func(t *testing.T) {
			assert.Equal(t, tc.label, StatusLabel(tc.status))
		})
	}
}

func TestColorizeStatus_ASCII(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	assert.Equal(t, "In Progress", ColorizeStatus("in-progress"))
	assert.Equal(t, "Failed", ColorizeStatus("failed"))
	assert.Equal(t, "Urgent", ColorizePriority("urgent"))
}

func TestFormatProgress(t *testing.T) {
	tcs := []struct {
		percent  int
		expected string
	}{
		{percent: 0, expected: "░░░░░░░░░░   0%"},
		{percent: 45, expected: "████░░░░░░  45%"},
		{percent: 100, expected: "██████████ 100%"},
		{percent: 150, expected: "██████████ 100%"},
		{percent: -5, expected: "░░░░░░░░░░   0%"},
	}

	for _, tc := range tcs {
		assert.Equal(t, tc.expected, FormatProgress(tc.percent))
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcd…", Truncate("abcdefgh", 5))
	assert.Equal(t, "…", Truncate("abc", 1))
	assert.Equal(t, "abc", Truncate("abc", 0))
}

func TestTableBiggerThanView(t *testing.T) {
	rows := make([]table.Row, MAX_TABLE_HEIGHT+1)
	for i := range rows {
		rows[i] = table.Row{"x"}
	}
	tbl := table.New(table.WithColumns([]table.Column{{Title: "ID", Width: 4}}), table.WithRows(rows))
	assert.True(t, TableBiggerThanView(tbl))

	tbl.SetRows(rows[:MAX_TABLE_HEIGHT])
	assert.False(t, TableBiggerThanView(tbl))
}

func TestFormatError(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	assert.Empty(t, FormatError(nil))
	assert.Equal(t, "✗ Error: boom\n", FormatError(errors.New("boom")))
}
