package themes

import (
	"github.com/charmbracelet/lipgloss"
)

// ASCIITheme implements a simple ASCII-only theme for better terminal compatibility
type ASCIITheme struct {
	*DefaultTheme
}

// NewASCIITheme creates a new ASCII-only theme
func NewASCIITheme() Theme {
	return &ASCIITheme{
		DefaultTheme: NewDefaultTheme().(*DefaultTheme),
	}
}

func (t *ASCIITheme) Name() string { return "ascii" }

// Override border styles to use ASCII characters
func (t *ASCIITheme) Border() lipgloss.Style {
	return t.Base().
		Border(lipgloss.ASCIIBorder()).
		BorderForeground(t.muted)
}

func (t *ASCIITheme) BorderActive() lipgloss.Style {
	return t.Base().
		Border(lipgloss.ASCIIBorder()).
		BorderForeground(t.primary)
}

func (t *ASCIITheme) MarkdownStyle() string { return "notty" }
