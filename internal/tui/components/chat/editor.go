package chat

import (
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/entrepeneur4lyf/docchat/internal/tui/themes"
)

// SubmitMsg carries the editor text when the user presses enter. The editor
// keeps its text until Reset is called.
type SubmitMsg struct {
	Content string
}

type EditorKeyMaps struct {
	Send    key.Binding
	NewLine key.Binding
	Paste   key.Binding
}

var editorKeys = EditorKeyMaps{
	Send: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "send"),
	),
	NewLine: key.NewBinding(
		key.WithKeys("alt+enter", "ctrl+j"),
		key.WithHelp("alt+enter", "new line"),
	),
	Paste: key.NewBinding(
		key.WithKeys("ctrl+v"),
		key.WithHelp("ctrl+v", "paste"),
	),
}

type EditorModel struct {
	width    int
	height   int
	textarea textarea.Model
	theme    themes.Theme
}

func NewEditorModel(th themes.Theme) *EditorModel {
	ta := textarea.New()
	ta.Placeholder = "Ask a question about your document..."
	ta.CharLimit = 4000
	ta.SetWidth(80)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.KeyMap.InsertNewline.SetEnabled(false)

	ta.FocusedStyle.Placeholder = th.MutedText()
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.BlurredStyle.Base = th.MutedText()

	return &EditorModel{
		textarea: ta,
		theme:    th,
	}
}

func (m *EditorModel) Init() tea.Cmd {
	return textarea.Blink
}

func (m *EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if keyMsg, ok := msg.(tea.KeyMsg); ok && m.textarea.Focused() {
		switch {
		case key.Matches(keyMsg, editorKeys.NewLine):
			m.textarea.InsertString("\n")
			return m, nil

		case key.Matches(keyMsg, editorKeys.Send):
			value := m.textarea.Value()
			return m, func() tea.Msg { return SubmitMsg{Content: value} }

		case key.Matches(keyMsg, editorKeys.Paste):
			return m, m.paste()
		}
	}

	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

type pasteMsg string

func (m *EditorModel) paste() tea.Cmd {
	return func() tea.Msg {
		text, err := clipboard.ReadAll()
		if err != nil {
			return nil
		}
		return pasteMsg(text)
	}
}

// HandlePaste inserts clipboard text delivered by the paste command
func (m *EditorModel) HandlePaste(msg tea.Msg) bool {
	text, ok := msg.(pasteMsg)
	if !ok {
		return false
	}
	m.textarea.InsertString(strings.ReplaceAll(string(text), "\r\n", "\n"))
	return true
}

func (m *EditorModel) View() string {
	promptStyle := lipgloss.NewStyle().
		Padding(0, 1, 0, 1).
		Bold(true).
		Foreground(m.theme.Primary())

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		promptStyle.Render(">"),
		m.textarea.View(),
	)
}

func (m *EditorModel) Value() string {
	return m.textarea.Value()
}

// Reset clears the input after a question has been sent
func (m *EditorModel) Reset() {
	m.textarea.Reset()
}

func (m *EditorModel) SetValue(s string) {
	m.textarea.SetValue(s)
}

func (m *EditorModel) SetWidth(width int) {
	m.width = width
	m.textarea.SetWidth(max(width-3, 1))
}

func (m *EditorModel) SetHeight(height int) {
	m.height = height
	m.textarea.SetHeight(height)
}

func (m *EditorModel) Focus() tea.Cmd {
	return m.textarea.Focus()
}

func (m *EditorModel) Blur() {
	m.textarea.Blur()
}

func (m *EditorModel) Focused() bool {
	return m.textarea.Focused()
}
