package chat

import (
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/entrepeneur4lyf/docchat/internal/conversation"
	"github.com/entrepeneur4lyf/docchat/internal/markdown"
	"github.com/entrepeneur4lyf/docchat/internal/tui/themes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMessages(t *testing.T) *MessagesModel {
	t.Helper()
	r, err := markdown.NewRenderer(markdown.Config{Width: 60, Style: markdown.StylePlain})
	require.NoError(t, err)
	m := NewMessagesModel(themes.NewASCIITheme(), r)
	m.SetSize(60, 6)
	return m
}

func TestMessagesHint(t *testing.T) {
	m := newMessages(t)
	m.SetMessages(nil, "upload a document to start chatting")
	assert.Contains(t, m.View(), "upload a document to start chatting")
}

func TestMessagesRender(t *testing.T) {
	m := newMessages(t)
	log := conversation.NewLog()
	log.Append(conversation.User, "What is X?")
	log.Append(conversation.Bot, "X is **Y**")

	m.SetSize(60, 20)
	m.SetMessages(log.Messages(), "")
	view := m.View()

	assert.Contains(t, view, "You")
	assert.Contains(t, view, "What is X?")
	assert.Contains(t, view, "Assistant")
	assert.Contains(t, view, "X is")
	assert.NotContains(t, view, "**")
}

func TestMessagesFollowTail(t *testing.T) {
	m := newMessages(t)
	log := conversation.NewLog()
	for i := 0; i < 10; i++ {
		log.Append(conversation.User, fmt.Sprintf("question %d", i))
	}

	m.SetMessages(log.Messages(), "")
	assert.True(t, m.AtBottom())
	assert.Contains(t, m.View(), "question 9")

	m.viewport.GotoTop()
	m.SetMessages(log.Messages(), "")
	assert.False(t, m.AtBottom(), "same length keeps the scroll position")

	log.Append(conversation.Bot, "answer")
	m.SetMessages(log.Messages(), "")
	assert.True(t, m.AtBottom())
}

func TestEditorSubmit(t *testing.T) {
	e := NewEditorModel(themes.NewASCIITheme())
	e.Focus()
	e.SetValue("What is X?")

	_, cmd := e.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, SubmitMsg{Content: "What is X?"}, cmd())
	assert.Equal(t, "What is X?", e.Value(), "text stays until the question is accepted")

	e.Reset()
	assert.Empty(t, e.Value())
}

func TestEditorPaste(t *testing.T) {
	e := NewEditorModel(themes.NewASCIITheme())
	e.Focus()

	assert.False(t, e.HandlePaste(tea.KeyMsg{}))
	assert.True(t, e.HandlePaste(pasteMsg("pasted\r\ntext")))
	assert.Equal(t, "pasted\ntext", e.Value())
}
