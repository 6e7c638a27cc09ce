package status

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/entrepeneur4lyf/docchat/internal/coordinator"
	"github.com/entrepeneur4lyf/docchat/internal/tui/themes"
	"github.com/stretchr/testify/assert"
)

func TestView(t *testing.T) {
	m := New(themes.NewASCIITheme())
	m.SetWidth(100)

	assert.Contains(t, m.View(), coordinator.HintNoDocument)
	assert.Contains(t, m.View(), "no session")

	cmd := m.SetState(coordinator.State{Loading: true, Source: coordinator.SourceUpload})
	assert.NotNil(t, cmd, "spinner starts with loading")
	assert.Contains(t, m.View(), "uploading document")

	cmd = m.SetState(coordinator.State{Loading: true, Source: coordinator.SourceUpload})
	assert.Nil(t, cmd, "spinner already running")

	m.SetState(coordinator.State{Error: "file too large", Status: "ignored"})
	assert.Contains(t, m.View(), "file too large")
	assert.NotContains(t, m.View(), "ignored")

	m.SetState(coordinator.State{Status: coordinator.StatusUploaded, SessionID: "0123456789abcdef"})
	assert.Contains(t, m.View(), coordinator.StatusUploaded)
	assert.Contains(t, m.View(), "session 01234567")
}

func TestLongErrorIsTruncated(t *testing.T) {
	m := New(themes.NewASCIITheme())
	m.SetWidth(40)
	m.SetState(coordinator.State{Error: strings.Repeat("very long error ", 10)})

	view := m.View()
	assert.LessOrEqual(t, lipgloss.Width(view), 40)
	assert.Contains(t, view, "no session")
}
