package markdown

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// Styles accepted by Config.Style.
const (
	StyleAuto  = "auto"
	StyleDark  = "dark"
	StyleLight = "light"
	StylePlain = "notty"
)

const minWidth = 20

// Config holds configuration for markdown rendering
type Config struct {
	Width int
	Style string
}

// DefaultConfig returns the configuration used for bot answers
func DefaultConfig() Config {
	return Config{Width: 80, Style: StyleAuto}
}

// Renderer renders answer text for the terminal. Answers are trusted text
// coming from the document service.
type Renderer struct {
	mu     sync.Mutex
	config Config
	term   *glamour.TermRenderer
}

// NewRenderer creates a markdown renderer
func NewRenderer(config Config) (*Renderer, error) {
	r := &Renderer{config: config}
	if err := r.rebuild(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Renderer) rebuild() error {
	if r.config.Width < minWidth {
		r.config.Width = minWidth
	}
	style := glamour.WithStandardStyle(r.config.Style)
	if r.config.Style == "" || r.config.Style == StyleAuto {
		style = glamour.WithAutoStyle()
	}

	term, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(r.config.Width))
	if err != nil {
		return fmt.Errorf("failed to create glamour renderer: %w", err)
	}
	r.term = term
	return nil
}

// Width returns the current wrap width
func (r *Renderer) Width() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.config.Width
}

// SetWidth changes the wrap width, rebuilding the renderer when it differs
func (r *Renderer) SetWidth(width int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if width < minWidth {
		width = minWidth
	}
	if width == r.config.Width {
		return nil
	}
	r.config.Width = width
	return r.rebuild()
}

// Render renders markdown content to styled terminal output
func (r *Renderer) Render(markdown string) (string, error) {
	if strings.TrimSpace(markdown) == "" {
		return "", nil
	}

	r.mu.Lock()
	rendered, err := r.term.Render(trimLines(markdown))
	r.mu.Unlock()
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}

	return collapseBlankLines(rendered), nil
}

// RenderOrPlain renders markdown, falling back to the raw text
func (r *Renderer) RenderOrPlain(markdown string) string {
	out, err := r.Render(markdown)
	if err != nil {
		return markdown
	}
	return out
}

// trimLines drops trailing whitespace outside fenced code blocks
func trimLines(markdown string) string {
	lines := strings.Split(markdown, "\n")
	inFence := false
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
			continue
		}
		if !inFence {
			lines[i] = strings.TrimRight(line, " \t")
		}
	}
	return strings.Join(lines, "\n")
}

// collapseBlankLines keeps at most one blank line in a row and trims the edges
func collapseBlankLines(rendered string) string {
	lines := strings.Split(rendered, "\n")
	result := make([]string, 0, len(lines))
	blank := 0

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			blank++
			if blank > 1 {
				continue
			}
			line = ""
		} else {
			blank = 0
		}
		result = append(result, line)
	}

	return strings.Trim(strings.Join(result, "\n"), "\n")
}
