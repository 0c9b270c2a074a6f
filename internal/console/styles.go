package console

import "github.com/charmbracelet/lipgloss"

// Styles for interactive sessions. Piped sessions print plain text.
var (
	accent = lipgloss.Color("#FF5A5F")
	muted  = lipgloss.Color("#6B7280")

	promptStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true)

	introStyle = lipgloss.NewStyle().
			Foreground(muted)
)

const (
	plainPrompt = "(hbnb) "
	intro       = `Welcome to the hbnb console. Type "help" or "?" for a list of commands. Type "exit" or "quit" to leave.`
)
