package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plainRenderer(t *testing.T, width int) *Renderer {
	t.Helper()
	r, err := NewRenderer(Config{Width: width, Style: StylePlain})
	require.NoError(t, err)
	return r
}

func TestRender(t *testing.T) {
	r := plainRenderer(t, 80)

	out, err := r.Render("# Answer\n\nX is **Y**.\n\n\n\n- first\n- second")
	require.NoError(t, err)
	assert.Contains(t, out, "Answer")
	assert.Contains(t, out, "Y")
	assert.Contains(t, out, "first")
	assert.NotContains(t, out, "**")
	assert.NotContains(t, out, "\n\n\n")
	assert.False(t, strings.HasPrefix(out, "\n"))
}

func TestRenderEmpty(t *testing.T) {
	r := plainRenderer(t, 80)

	out, err := r.Render("  \n ")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSetWidth(t *testing.T) {
	r := plainRenderer(t, 80)

	require.NoError(t, r.SetWidth(40))
	assert.Equal(t, 40, r.Width())

	require.NoError(t, r.SetWidth(5))
	assert.Equal(t, minWidth, r.Width())

	out := r.RenderOrPlain(strings.Repeat("word ", 30))
	assert.Greater(t, len(strings.Split(out, "\n")), 5, "narrow width wraps the paragraph")
}

func TestTrimLines(t *testing.T) {
	in := "text  \n```\ncode  \n```\nmore\t"
	assert.Equal(t, "text\n```\ncode  \n```\nmore", trimLines(in))
}

func TestCollapseBlankLines(t *testing.T) {
	assert.Equal(t, "a\n\nb", collapseBlankLines("\n\na\n  \n\n\nb\n\n"))
}
