package commands

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jwalton/gchalk"
)

// CliError is an error meant for the person at the terminal. Err is the
// underlying cause and is only shown as a dimmed detail line
type CliError struct {
	Text        string
	Suggestions []string
	Help        string
	Err         error
}

func (e *CliError) Error() string {
	if e.Err != nil {
		return e.Text + ": " + e.Err.Error()
	}
	return e.Text
}

func (e *CliError) Unwrap() error { return e.Err }

// RichError renders the error box followed by the suggestions
func (e *CliError) RichError() string {
	text := e.Text
	if e.Err != nil {
		text += "\n" + gchalk.Gray(e.Err.Error())
	}
	rendered := ErrorBox(text, e.Help)
	if len(e.Suggestions) == 0 {
		return rendered
	}

	var b strings.Builder
	b.WriteString(Emoji("📎 "))
	if len(e.Suggestions) == 1 {
		b.WriteString("Suggestion:\n")
	} else {
		b.WriteString("Suggestions:\n")
	}
	for _, s := range e.Suggestions {
		b.WriteString(" ⦁ " + s + "\n")
	}
	return lipgloss.JoinVertical(lipgloss.Left, rendered, styleHelpBox.Render(b.String()))
}
