package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPanel(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	out := RenderPanel("Project Website", "ID      p-web\nStatus  In Progress")
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.GreaterOrEqual(t, len(lines), 4)

	assert.True(t, strings.HasPrefix(lines[0], "╭─ Project Website "))
	assert.True(t, strings.HasSuffix(lines[0], "╮"))
	assert.True(t, strings.HasPrefix(lines[len(lines)-1], "╰"))

	// Every row is the same width as the border
	width := lipgloss.Width(lines[0])
	for _, line := range lines {
		assert.Equal(t, width, lipgloss.Width(line), line)
	}
	assert.Contains(t, out, "│  ID      p-web")
}

func TestRenderPanel_LongTitle(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	out := RenderPanel("A title much longer than the content", "x")
	assert.Contains(t, out, " A title much longer than the content ─╮")
}

func TestRenderDetailTable(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	out := RenderDetailTable([]TableSection{
		{Header: "PROJECT", Rows: []TableRow{{Label: "ID", Value: "p-web"}}},
		{Header: "STATUS", Rows: []TableRow{{Label: "Priority", Value: "High"}}},
	})

	assert.Equal(t,
		"PROJECT\n\n"+
			"ID"+strings.Repeat(" ", detailLabelWidth-2)+"p-web\n"+
			"\nSTATUS\n\n"+
			"Priority"+strings.Repeat(" ", detailLabelWidth-8)+"High\n",
		out)
}
