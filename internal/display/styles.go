// Package display holds the console styling for the REPL: a soft palette
// rendered with lipgloss, plus small formatting helpers for the bits of
// state the status commands print.
package display

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	// bannerStyle — muted slate for the startup banner.
	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	// announceStyle — soft sky blue for spoken lines echoed to the console.
	announceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bae6fd"))

	// headerStyle — soft mint for section headers.
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0")).
			Bold(true)

	// primaryStyle — light zinc for regular output.
	primaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8"))

	// secondaryStyle — dimmed zinc for hints and metadata.
	secondaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	// urgentStyle — soft coral for errors.
	urgentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))
)

// Prompt returns the styled input prompt.
func Prompt() string {
	return promptStyle.Render("caller> ")
}

// Header renders a section header.
func Header(s string) string {
	return headerStyle.Render(s)
}

// Announce renders a spoken line as echoed to the console.
func Announce(dest, text string) string {
	return announceStyle.Render(fmt.Sprintf("♪ [%s] %s", dest, text))
}

// Line renders regular output.
func Line(format string, args ...any) string {
	return primaryStyle.Render(fmt.Sprintf(format, args...))
}

// Hint renders dimmed secondary output.
func Hint(format string, args ...any) string {
	return secondaryStyle.Render(fmt.Sprintf(format, args...))
}

// Errorf renders an error line.
func Errorf(format string, args ...any) string {
	return urgentStyle.Render(fmt.Sprintf(format, args...))
}

// GameTime formats a second count as M:SS.
func GameTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
