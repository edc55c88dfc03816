package output

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette. Never use inline lipgloss.Color literals elsewhere.
var (
	// ColorCyan is used for identifiable nouns: recipe names, images, stages.
	ColorCyan = lipgloss.Color("14")

	// ColorGreen is used for passed checks.
	ColorGreen = lipgloss.Color("82")

	// ColorYellow is used for directive kinds.
	ColorYellow = lipgloss.Color("220")

	// ColorBoldRed is used for failed checks (matches ERROR level).
	ColorBoldRed = lipgloss.Color("204")

	// ColorGreenCheck is used for the completion checkmark.
	ColorGreenCheck = lipgloss.Color("10")

	// ColorBlue is used for table headers.
	ColorBlue = lipgloss.Color("12")

	// ColorDimGray is used for borders and other structural chrome.
	ColorDimGray = lipgloss.Color("240")
)

// Semantic styles.
var (
	// StyleNoun styles identifiable nouns.
	StyleNoun = lipgloss.NewStyle().Foreground(ColorCyan)

	// StyleKind styles directive kinds.
	StyleKind = lipgloss.NewStyle().Foreground(ColorYellow)

	// StyleDim styles structural chrome (scope prefixes, separators).
	StyleDim = lipgloss.NewStyle().Faint(true)

	// StyleSummary styles completion and summary lines.
	StyleSummary = lipgloss.NewStyle().Bold(true)
)

// Check status constants used by vet-style output.
const (
	StatusValid  = "valid"
	StatusFailed = "failed"
)

func statusStyle(status string) lipgloss.Style {
	switch status {
	case StatusValid:
		return lipgloss.NewStyle().Foreground(ColorGreen)
	case StatusFailed:
		return lipgloss.NewStyle().Bold(true).Foreground(ColorBoldRed)
	default:
		return lipgloss.NewStyle()
	}
}

// FormatCheckmark renders a green checkmark with a message.
func FormatCheckmark(msg string) string {
	check := lipgloss.NewStyle().Foreground(ColorGreenCheck).Render("✔")
	return check + " " + msg
}

// vetLabelWidth is the column detail text of vet checks starts at.
const vetLabelWidth = 34

// FormatVetCheck renders a passed check with an optional detail aligned
// to a fixed column.
func FormatVetCheck(label, detail string) string {
	line := FormatCheckmark(label)
	if detail == "" {
		return line
	}
	padding := vetLabelWidth - len(label)
	if padding < 2 {
		padding = 2
	}
	return line + strings.Repeat(" ", padding) + StyleDim.Render(detail)
}

// FormatStatus renders a status word in its color.
func FormatStatus(status string) string {
	return statusStyle(status).Render(status)
}

// minKindColumnWidth keeps directive summaries aligned.
const minKindColumnWidth = 14

// FormatDirectiveLine renders one directive of a stage listing:
// its position, kind and a short summary.
func FormatDirectiveLine(index int, kind, summary string) string {
	padding := minKindColumnWidth - len(kind)
	if padding < 1 {
		padding = 1
	}
	pos := StyleDim.Render(padLeft(strconv.Itoa(index), 3) + ".")
	return pos + " " + StyleKind.Render(kind) + strings.Repeat(" ", padding) + summary
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}
