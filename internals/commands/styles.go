package commands

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	// StyleGrass is used for phase headings (installing, launching …)
	StyleGrass = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#2e7d32", Dark: "#7bc96f"})
	// StyleDirt is the dimmed brown of the tree lines
	StyleDirt = lipgloss.NewStyle().Foreground(lipgloss.Color("#7a563b"))
	// StyleKey renders the left side of key/value output
	StyleKey = lipgloss.NewStyle().Width(24).Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#9e9e9e"})
)

var styleErrBox = lipgloss.NewStyle().
	Width(80).
	MarginTop(1).
	Bold(true).
	Background(lipgloss.AdaptiveColor{Light: "#ffcdd2", Dark: "#512222"}).
	Foreground(lipgloss.AdaptiveColor{Light: "#b71c1c", Dark: "#fa8a8a"}).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderLeftForeground(lipgloss.Color("#f86262")).
	Padding(1, 2)

var styleHelpBox = lipgloss.NewStyle().
	Width(80).
	Background(lipgloss.AdaptiveColor{Light: "#e9e9e9", Dark: "#2f2f2f"}).
	Padding(0, 2).
	Margin(0, 1).
	PaddingTop(1)

var styleErrText = lipgloss.NewStyle().Width(62)

// ErrorBox renders an error (and optional help text) in a red box
func ErrorBox(errorString string, helpText string) string {
	rendered := styleErrBox.Render(
		lipgloss.JoinHorizontal(
			lipgloss.Top, Emoji("❗ "),
			styleErrText.Render(fmt.Sprintf("Error: %s", errorString)),
		),
	)
	if helpText != "" {
		rendered = lipgloss.JoinVertical(lipgloss.Left, rendered, styleHelpBox.Render(Emoji("❔ ")+helpText))
	}

	return rendered
}

// Heading renders a phase heading hanging off the tree line
func Heading(emoji, text string) string {
	return lipgloss.JoinHorizontal(
		0.5,
		StyleDirt.Render("│\n┕"),
		StyleGrass.Render(Emoji(emoji)+text),
	)
}

// KeyValue renders one aligned "key value" line
func KeyValue(key string, value interface{}) string {
	return StyleKey.Render(key) + fmt.Sprint(value)
}
