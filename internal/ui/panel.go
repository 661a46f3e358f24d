package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// detailLabelWidth is the label column of RenderDetailTable
const detailLabelWidth = 24

// RenderPanel draws content in a rounded box with title set into the top border:
//
//	╭─ Project Website ──╮
//	│                    │
//	│  content           │
//	╰────────────────────╯
func RenderPanel(title, content string) string {
	lines := strings.Split(lipgloss.NewStyle().Padding(1, 2, 0).Render(content), "\n")

	width := 0
	for _, line := range lines {
		width = max(width, lipgloss.Width(line))
	}

	styledTitle := " " + panelTitleStyle.Render(title) + " "
	// "╭─" + title + fill + "╮" spans width+2 cells
	fill := max(width-1-lipgloss.Width(styledTitle), 1)

	var b strings.Builder
	b.WriteString(panelBorderStyle.Render("╭─") + styledTitle + panelBorderStyle.Render(strings.Repeat("─", fill)+"╮") + "\n")
	side := panelBorderStyle.Render("│")
	for _, line := range lines {
		pad := strings.Repeat(" ", width-lipgloss.Width(line))
		b.WriteString(side + line + pad + side + "\n")
	}
	b.WriteString(panelBorderStyle.Render("╰"+strings.Repeat("─", width)+"╯") + "\n")

	return b.String()
}

// TableSection is one titled block of a detail table
type TableSection struct {
	Header string
	Rows   []TableRow
}

type TableRow struct {
	Label string
	Value string
}

// RenderDetailTable renders label/value rows grouped under section headers
func RenderDetailTable(sections []TableSection) string {
	var b strings.Builder
	label := detailLabelStyle.Width(detailLabelWidth)

	for i, section := range sections {
		if section.Header != "" {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(detailHeaderStyle.Render(section.Header) + "\n\n")
		}
		for _, row := range section.Rows {
			b.WriteString(label.Render(row.Label) + row.Value + "\n")
		}
	}

	return b.String()
}
