package ui

import "github.com/charmbracelet/lipgloss"

// ANSI 256 palette shared by every view
const (
	colorGreen   = lipgloss.Color("10")
	colorRed     = lipgloss.Color("9")
	colorYellow  = lipgloss.Color("11")
	colorCyan    = lipgloss.Color("14")
	colorMagenta = lipgloss.Color("13")
	colorWhite   = lipgloss.Color("15")
	colorGray    = lipgloss.Color("8")
	colorDim     = lipgloss.Color("240")
	colorSubtle  = lipgloss.Color("246")

	// accent is the PilotDeck brand color, used for titles and panel borders
	accent = colorYellow
)

var (
	// Status colors
	GreenStyle   = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	RedStyle     = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	YellowStyle  = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	CyanStyle    = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	MagentaStyle = lipgloss.NewStyle().Foreground(colorMagenta).Bold(true)
	BoldStyle    = lipgloss.NewStyle().Bold(true)

	ActiveStyle  = lipgloss.NewStyle().Foreground(colorWhite)
	PendingStyle = lipgloss.NewStyle().Foreground(colorGray)

	SpinnerStyle = lipgloss.NewStyle().Foreground(colorMagenta)
	ErrorStyle   = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	WarningStyle = lipgloss.NewStyle().Foreground(colorYellow)

	TitleStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true).
			Padding(0, 1)

	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 2)

	HelpStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Italic(true).
			Padding(0, 1)

	// Deploy log timestamps and [INFO] notes
	TimestampStyle = lipgloss.NewStyle().Foreground(colorSubtle)

	panelBorderStyle  = lipgloss.NewStyle().Foreground(accent)
	panelTitleStyle   = lipgloss.NewStyle().Foreground(accent).Bold(true)
	detailLabelStyle  = lipgloss.NewStyle().Bold(true)
	detailHeaderStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)
