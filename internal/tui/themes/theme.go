package themes

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the interface for TUI themes
type Theme interface {
	Name() string

	// Base styles
	Base() lipgloss.Style

	// Text styles
	PrimaryText() lipgloss.Style
	SecondaryText() lipgloss.Style
	MutedText() lipgloss.Style
	ErrorText() lipgloss.Style
	SuccessText() lipgloss.Style

	// UI element styles
	Border() lipgloss.Style
	BorderActive() lipgloss.Style
	Title() lipgloss.Style

	// Status styles
	StatusBar() lipgloss.Style

	// Message styles
	UserLabel() lipgloss.Style
	BotLabel() lipgloss.Style

	// Colors
	Primary() lipgloss.Color
	Foreground() lipgloss.Color
	Muted() lipgloss.Color
	Error() lipgloss.Color
	Success() lipgloss.Color

	// MarkdownStyle names the glamour style matching the theme
	MarkdownStyle() string
}

// Get returns the theme registered under name, or the default theme
func Get(name string) Theme {
	switch strings.ToLower(name) {
	case "ascii":
		return NewASCIITheme()
	default:
		return NewDefaultTheme()
	}
}
