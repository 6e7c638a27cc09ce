package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/entrepeneur4lyf/docchat/internal/conversation"
	"github.com/entrepeneur4lyf/docchat/internal/markdown"
	"github.com/entrepeneur4lyf/docchat/internal/tui/themes"
)

// MessagesModel shows the conversation log and follows its tail
type MessagesModel struct {
	theme    themes.Theme
	viewport viewport.Model
	renderer *markdown.Renderer
	messages []conversation.Message
	hint     string
	// rendered caches bot answers by message id
	rendered map[string]string
	width    int
	height   int
}

// NewMessagesModel creates the message list
func NewMessagesModel(th themes.Theme, renderer *markdown.Renderer) *MessagesModel {
	return &MessagesModel{
		theme:    th,
		viewport: viewport.New(0, 0),
		renderer: renderer,
		rendered: make(map[string]string),
	}
}

func (m *MessagesModel) Init() tea.Cmd {
	return nil
}

// SetMessages replaces the displayed log. The view jumps to the latest
// message whenever the number of messages changes.
func (m *MessagesModel) SetMessages(msgs []conversation.Message, hint string) {
	grew := len(msgs) != len(m.messages)
	if len(msgs) < len(m.messages) {
		m.rendered = make(map[string]string)
	}
	m.messages = msgs
	m.hint = hint
	m.refresh()
	if grew {
		m.viewport.GotoBottom()
	}
}

func (m *MessagesModel) SetSize(width, height int) {
	if width != m.width {
		m.rendered = make(map[string]string)
		if m.renderer != nil {
			_ = m.renderer.SetWidth(width - 2)
		}
	}
	m.width, m.height = width, height
	m.viewport.Width = width
	m.viewport.Height = height
	m.refresh()
}

func (m *MessagesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *MessagesModel) View() string {
	return m.viewport.View()
}

// AtBottom reports whether the latest message is visible
func (m *MessagesModel) AtBottom() bool {
	return m.viewport.AtBottom()
}

func (m *MessagesModel) refresh() {
	if len(m.messages) == 0 {
		hint := m.theme.MutedText().
			Width(m.width).
			Align(lipgloss.Center).
			Render(m.hint)
		m.viewport.SetContent(hint)
		return
	}

	blocks := make([]string, 0, len(m.messages))
	for _, msg := range m.messages {
		blocks = append(blocks, m.renderMessage(msg))
	}
	m.viewport.SetContent(strings.Join(blocks, "\n\n"))
}

func (m *MessagesModel) renderMessage(msg conversation.Message) string {
	switch msg.Sender {
	case conversation.Bot:
		body, ok := m.rendered[msg.ID]
		if !ok {
			body = msg.Content
			if m.renderer != nil {
				body = m.renderer.RenderOrPlain(msg.Content)
			}
			m.rendered[msg.ID] = body
		}
		return m.theme.BotLabel().Render("Assistant") + "\n" + body
	default:
		body := lipgloss.NewStyle().Width(max(m.width-2, 1)).Render(msg.Content)
		return m.theme.UserLabel().Render("You") + "\n" + body
	}
}
