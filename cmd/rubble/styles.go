package main

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Semantic colors following nextest/vitest conventions.
var (
	colorError   = lipgloss.Color("#ef4444") // red-500
	colorWarning = lipgloss.Color("#eab308") // yellow-500
	colorInfo    = lipgloss.Color("#06b6d4") // cyan-500
	colorHint    = lipgloss.Color("#10b981") // green-500

	colorDim    = lipgloss.Color("#6b7280") // gray-500
	colorAccent = lipgloss.Color("#3b82f6") // blue-500
)

// Styles holds the lipgloss styles for CLI output.
type Styles struct {
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Hint    lipgloss.Style

	Dim   lipgloss.Style
	Bold  lipgloss.Style
	Path  lipgloss.Style
	Label lipgloss.Style
}

// DefaultStyles returns the default CLI styles.
func DefaultStyles() *Styles {
	return &Styles{
		Error:   lipgloss.NewStyle().Foreground(colorError).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(colorWarning).Bold(true),
		Info:    lipgloss.NewStyle().Foreground(colorInfo).Bold(true),
		Hint:    lipgloss.NewStyle().Foreground(colorHint).Bold(true),

		Dim:   lipgloss.NewStyle().Foreground(colorDim),
		Bold:  lipgloss.NewStyle().Bold(true),
		Path:  lipgloss.NewStyle().Foreground(colorAccent),
		Label: lipgloss.NewStyle().Foreground(colorHint),
	}
}

// PlainStyles returns styles with no color, for non-TTY output.
func PlainStyles() *Styles {
	plain := lipgloss.NewStyle()

	return &Styles{
		Error:   plain,
		Warning: plain,
		Info:    plain,
		Hint:    plain,
		Dim:     plain,
		Bold:    plain,
		Path:    plain,
		Label:   plain,
	}
}

// stylesFor picks colored or plain styles based on whether out is a terminal.
func stylesFor(out *os.File) *Styles {
	if isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd()) {
		return DefaultStyles()
	}

	return PlainStyles()
}
