package upload

import (
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/entrepeneur4lyf/docchat/internal/tui/themes"
	docupload "github.com/entrepeneur4lyf/docchat/internal/upload"
)

// filepicker subtracts this from the window height when AutoHeight is set.
const pickerMarginBottom = 5

// SubmitMsg asks the parent to upload the current candidate
type SubmitMsg struct{}

// Candidates is the part of the coordinator the panel drives
type Candidates interface {
	SelectPath(path string) error
	Candidate() (docupload.File, bool)
	ClearFile()
	CanUpload() bool
}

type keyMap struct {
	Upload key.Binding
	Clear  key.Binding
}

var keys = keyMap{
	Upload: key.NewBinding(
		key.WithKeys("ctrl+u"),
		key.WithHelp("ctrl+u", "upload"),
	),
	Clear: key.NewBinding(
		key.WithKeys("ctrl+x"),
		key.WithHelp("ctrl+x", "clear file"),
	),
}

// Model is the document panel: a file picker limited to the accepted types
// and the single pending candidate.
type Model struct {
	theme      themes.Theme
	candidates Candidates
	picker     filepicker.Model
	focused    bool
	width      int
	height     int
	logger     *log.Logger
}

// New creates the panel rooted at dir
func New(th themes.Theme, candidates Candidates, dir string, logger *log.Logger) Model {
	fp := filepicker.New()
	fp.AllowedTypes = docupload.AcceptedExtensions()
	fp.AutoHeight = true
	fp.ShowPermissions = false
	if dir == "" {
		if wd, err := os.Getwd(); err == nil {
			dir = wd
		}
	}
	fp.CurrentDirectory = dir
	fp.Styles.Cursor = th.PrimaryText()
	fp.Styles.Selected = th.PrimaryText().Bold(true)
	fp.Styles.Directory = th.SecondaryText()

	if logger == nil {
		logger = log.Default()
	}
	return Model{
		theme:      th,
		candidates: candidates,
		picker:     fp,
		logger:     logger.WithPrefix("tui"),
	}
}

func (m Model) Init() tea.Cmd {
	return m.picker.Init()
}

// SetSize sets the outer size of the panel
func (m *Model) SetSize(width, height int) {
	m.width, m.height = width, height
	// border, title, candidate line and help line
	listHeight := height - 5
	if listHeight < 1 {
		listHeight = 1
	}
	m.picker, _ = m.picker.Update(tea.WindowSizeMsg{Width: width, Height: listHeight + pickerMarginBottom})
}

func (m *Model) Focus() {
	m.focused = true
}

func (m *Model) Blur() {
	m.focused = false
}

func (m Model) Focused() bool {
	return m.focused
}

// Directory returns the directory the picker is showing
func (m Model) Directory() string {
	return m.picker.CurrentDirectory
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if !m.focused {
			return m, nil
		}
		switch {
		case key.Matches(keyMsg, keys.Upload):
			if !m.candidates.CanUpload() {
				return m, nil
			}
			return m, func() tea.Msg { return SubmitMsg{} }
		case key.Matches(keyMsg, keys.Clear):
			m.candidates.ClearFile()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		if err := m.candidates.SelectPath(path); err != nil {
			m.logger.Debug("file not offered as candidate", "path", path, "err", err)
		}
	}
	return m, cmd
}

func (m Model) View() string {
	border := m.theme.Border()
	if m.focused {
		border = m.theme.BorderActive()
	}

	lines := []string{
		m.theme.Title().Render("Document"),
		m.candidateLine(),
		m.picker.View(),
		m.helpLine(),
	}

	inner := m.width - border.GetHorizontalFrameSize()
	if inner < 0 {
		inner = 0
	}
	return border.
		Width(inner).
		Height(max(m.height-border.GetVerticalFrameSize(), 0)).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) candidateLine() string {
	f, ok := m.candidates.Candidate()
	if !ok {
		return m.theme.MutedText().Render("no file selected")
	}
	return m.theme.Base().Render(f.Name) + m.theme.MutedText().Render(" · "+f.SizeKB())
}

func (m Model) helpLine() string {
	parts := []string{
		"enter select",
		keys.Upload.Help().Key + " " + keys.Upload.Help().Desc,
		keys.Clear.Help().Key + " " + keys.Clear.Help().Desc,
	}
	return m.theme.MutedText().Render(strings.Join(parts, " · "))
}
