package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/entrepeneur4lyf/docchat/internal/app"
	"github.com/entrepeneur4lyf/docchat/internal/coordinator"
	"github.com/entrepeneur4lyf/docchat/internal/events"
	"github.com/entrepeneur4lyf/docchat/internal/markdown"
	"github.com/entrepeneur4lyf/docchat/internal/tui/components/chat"
	"github.com/entrepeneur4lyf/docchat/internal/tui/components/status"
	"github.com/entrepeneur4lyf/docchat/internal/tui/components/upload"
	"github.com/entrepeneur4lyf/docchat/internal/tui/themes"
)

type focusArea int

const (
	focusUpload focusArea = iota
	focusChat
)

const (
	uploadPanelHeight = 14
	editorHeight      = 3
)

// stateMsg delivers a coordinator event to the program
type stateMsg events.Event[coordinator.State]

// subscriptionClosedMsg is sent when the event stream ends
type subscriptionClosedMsg struct{}

// uploadDoneMsg and answerDoneMsg report finished requests; the outcome
// itself arrives through the coordinator state.
type uploadDoneMsg struct{ err error }

type answerDoneMsg struct{ err error }

type Model struct {
	coord  *coordinator.Coordinator
	theme  themes.Theme
	logger *log.Logger

	ctx    context.Context
	events <-chan events.Event[coordinator.State]

	upload   upload.Model
	messages *chat.MessagesModel
	editor   *chat.EditorModel
	status   status.Model

	focus  focusArea
	width  int
	height int
}

// New creates the root model. Events are consumed until ctx is done.
func New(ctx context.Context, application *app.App, dir string) (*Model, error) {
	th := themes.Get(application.Config.TUI.Theme)

	renderer, err := markdown.NewRenderer(markdown.Config{Width: 80, Style: th.MarkdownStyle()})
	if err != nil {
		return nil, err
	}

	coord := application.Coordinator
	m := &Model{
		coord:    coord,
		theme:    th,
		logger:   application.Logger.WithPrefix("tui"),
		ctx:      ctx,
		events:   coord.Subscribe(ctx),
		upload:   upload.New(th, coord, dir, application.Logger),
		messages: chat.NewMessagesModel(th, renderer),
		editor:   chat.NewEditorModel(th),
		status:   status.New(th),
	}

	st := coord.State()
	m.status.SetState(st)
	m.messages.SetMessages(coord.Messages(), st.Hint())
	if st.HasSession() {
		m.focusChat()
	} else {
		m.focusUpload()
	}
	return m, nil
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.upload.Init(),
		m.editor.Init(),
		m.waitForEvent(),
	)
}

func (m *Model) waitForEvent() tea.Cmd {
	ch := m.events
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return subscriptionClosedMsg{}
		}
		return stateMsg(e)
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.SwitchFocus):
			if m.focus == focusUpload {
				return m, m.focusChat()
			}
			return m, m.focusUpload()
		case m.focus == focusChat && key.Matches(msg, keys.ScrollUp, keys.ScrollDown):
			_, cmd := m.messages.Update(msg)
			return m, cmd
		}

	case stateMsg:
		// The payload may be stale if an earlier event was dropped.
		st := m.coord.State()
		m.applyState(st)
		return m, tea.Batch(m.status.SetState(st), m.waitForEvent())

	case subscriptionClosedMsg:
		return m, nil

	case upload.SubmitMsg:
		return m, m.submitUpload()

	case uploadDoneMsg:
		if msg.err == nil {
			return m, m.focusChat()
		}
		return m, nil

	case chat.SubmitMsg:
		return m, m.submitQuestion(msg.Content)

	case answerDoneMsg:
		m.refreshMessages()
		return m, nil
	}

	if m.editor.HandlePaste(msg) {
		return m, nil
	}

	var cmd tea.Cmd
	m.status, cmd = m.status.Update(msg)
	cmds = append(cmds, cmd)

	// The file picker needs its directory reads even while blurred.
	m.upload, cmd = m.upload.Update(msg)
	cmds = append(cmds, cmd)

	if _, isKey := msg.(tea.KeyMsg); !isKey || m.focus == focusChat {
		_, cmd = m.editor.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) submitUpload() tea.Cmd {
	coord, ctx := m.coord, m.ctx
	return func() tea.Msg {
		_, err := coord.SubmitUpload(ctx)
		return uploadDoneMsg{err: err}
	}
}

// submitQuestion appends the question right away and asks for the answer
// in the background.
func (m *Model) submitQuestion(text string) tea.Cmd {
	if !m.coord.CanSend(text) {
		return nil
	}
	turn, err := m.coord.BeginSend(text)
	if err != nil {
		if !errors.Is(err, coordinator.ErrBusy) {
			m.logger.Debug("question not sent", "err", err)
		}
		return nil
	}
	m.editor.Reset()
	m.refreshMessages()

	coord, ctx := m.coord, m.ctx
	return func() tea.Msg {
		_, err := coord.CompleteSend(ctx, turn)
		return answerDoneMsg{err: err}
	}
}

func (m *Model) applyState(st coordinator.State) {
	m.refreshMessages()
	if st.Loading {
		m.editor.Blur()
	} else if m.focus == focusChat && !m.editor.Focused() {
		m.editor.Focus()
	}
}

func (m *Model) refreshMessages() {
	m.messages.SetMessages(m.coord.Messages(), m.coord.State().Hint())
}

func (m *Model) focusUpload() tea.Cmd {
	m.focus = focusUpload
	m.editor.Blur()
	m.upload.Focus()
	return nil
}

func (m *Model) focusChat() tea.Cmd {
	m.focus = focusChat
	m.upload.Blur()
	return m.editor.Focus()
}

func (m *Model) layout() {
	m.upload.SetSize(m.width, uploadPanelHeight)
	m.status.SetWidth(m.width)
	m.editor.SetWidth(m.width)
	m.editor.SetHeight(editorHeight)

	// status line, help line and the editor
	chatHeight := m.height - uploadPanelHeight - editorHeight - 2
	m.messages.SetSize(m.width, max(chatHeight, 1))
}

func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.upload.View(),
		m.messages.View(),
		m.status.View(),
		m.editor.View(),
		m.helpView(),
	)
}

func (m *Model) helpView() string {
	bindings := []key.Binding{keys.SwitchFocus, keys.Send, keys.Quit}
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		parts = append(parts, b.Help().Key+" "+b.Help().Desc)
	}
	return m.theme.MutedText().Render(strings.Join(parts, " · "))
}

// Run starts the TUI application
func Run(ctx context.Context, application *app.App, dir string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model, err := New(ctx, application, dir)
	if err != nil {
		return err
	}

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// Key bindings
type keyMap struct {
	Quit        key.Binding
	SwitchFocus key.Binding
	Send        key.Binding
	ScrollUp    key.Binding
	ScrollDown  key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "ctrl+q"),
		key.WithHelp("ctrl+c", "quit"),
	),
	SwitchFocus: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "switch panel"),
	),
	Send: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "send"),
	),
	ScrollUp: key.NewBinding(
		key.WithKeys("pgup"),
		key.WithHelp("pgup", "scroll up"),
	),
	ScrollDown: key.NewBinding(
		key.WithKeys("pgdown"),
		key.WithHelp("pgdown", "scroll down"),
	),
}
