package status

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/entrepeneur4lyf/docchat/internal/coordinator"
	"github.com/entrepeneur4lyf/docchat/internal/tui/themes"
)

// Model is the single status line shared by the upload panel and the chat.
// It shows a spinner while a request is in flight, otherwise the error or
// the status string of the last outcome.
type Model struct {
	theme   themes.Theme
	spinner spinner.Model
	state   coordinator.State
	width   int
}

// New creates a status line
func New(th themes.Theme) Model {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = th.PrimaryText()
	return Model{theme: th, spinner: sp}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// SetState replaces the displayed snapshot. The returned command starts the
// spinner when loading begins.
func (m *Model) SetState(st coordinator.State) tea.Cmd {
	starting := st.Loading && !m.state.Loading
	m.state = st
	if starting {
		return m.spinner.Tick
	}
	return nil
}

// State returns the displayed snapshot
func (m Model) State() coordinator.State {
	return m.state
}

func (m *Model) SetWidth(width int) {
	m.width = width
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if _, ok := msg.(spinner.TickMsg); ok {
		if !m.state.Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	left := m.message()
	right := m.sessionLabel()

	bar := m.theme.StatusBar()
	inner := m.width - bar.GetHorizontalPadding()
	if room := inner - lipgloss.Width(right) - 1; lipgloss.Width(left) > room {
		left = ansi.Truncate(left, max(room, 0), "…")
	}
	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return bar.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) message() string {
	switch {
	case m.state.Loading:
		return m.spinner.View() + " " + loadingText(m.state.Source)
	case m.state.Error != "":
		return m.theme.ErrorText().Render(m.state.Error)
	case m.state.Status != "":
		return m.theme.SuccessText().Render(m.state.Status)
	default:
		return m.theme.MutedText().Render(m.state.Hint())
	}
}

func (m Model) sessionLabel() string {
	if !m.state.HasSession() {
		return m.theme.MutedText().Render("no session")
	}
	return m.theme.MutedText().Render("session " + shortID(m.state.SessionID))
}

func loadingText(src coordinator.Source) string {
	switch src {
	case coordinator.SourceUpload:
		return "uploading document..."
	case coordinator.SourceChat:
		return "waiting for the answer..."
	default:
		return "working..."
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
