package themes

import (
	"github.com/charmbracelet/lipgloss"
)

// DefaultTheme implements the docchat default theme
type DefaultTheme struct {
	primary    lipgloss.Color
	secondary  lipgloss.Color
	foreground lipgloss.Color
	error      lipgloss.Color
	success    lipgloss.Color
	muted      lipgloss.Color
	statusBg   lipgloss.Color
}

// NewDefaultTheme creates a new default theme
func NewDefaultTheme() Theme {
	return &DefaultTheme{
		primary:    lipgloss.Color("#00D9FF"), // Cyan
		secondary:  lipgloss.Color("#FF79C6"), // Pink
		foreground: lipgloss.Color("#F8F8F2"),
		error:      lipgloss.Color("#FF5555"),
		success:    lipgloss.Color("#50FA7B"),
		muted:      lipgloss.Color("#6272A4"),
		statusBg:   lipgloss.Color("#44475A"),
	}
}

func (t *DefaultTheme) Name() string { return "default" }

func (t *DefaultTheme) Base() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.foreground)
}

func (t *DefaultTheme) PrimaryText() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.primary)
}

func (t *DefaultTheme) SecondaryText() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.secondary)
}

func (t *DefaultTheme) MutedText() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.muted)
}

func (t *DefaultTheme) ErrorText() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.error)
}

func (t *DefaultTheme) SuccessText() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.success)
}

func (t *DefaultTheme) Border() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.muted)
}

func (t *DefaultTheme) BorderActive() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.primary)
}

func (t *DefaultTheme) Title() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(t.primary).
		Bold(true)
}

func (t *DefaultTheme) StatusBar() lipgloss.Style {
	return lipgloss.NewStyle().
		Background(t.statusBg).
		Foreground(t.foreground).
		Padding(0, 1)
}

func (t *DefaultTheme) UserLabel() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(t.secondary).
		Bold(true)
}

func (t *DefaultTheme) BotLabel() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(t.primary).
		Bold(true)
}

func (t *DefaultTheme) Primary() lipgloss.Color    { return t.primary }
func (t *DefaultTheme) Foreground() lipgloss.Color { return t.foreground }
func (t *DefaultTheme) Muted() lipgloss.Color      { return t.muted }
func (t *DefaultTheme) Error() lipgloss.Color      { return t.error }
func (t *DefaultTheme) Success() lipgloss.Color    { return t.success }

func (t *DefaultTheme) MarkdownStyle() string { return "auto" }
