package cmd

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/entrepeneur4lyf/docchat/internal/mockserver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) (serverURL, dir string) {
	t.Helper()
	srv := httptest.NewServer(mockserver.New(mockserver.WithLogger(log.New(io.Discard))))
	t.Cleanup(srv.Close)

	dir = t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("DOCCHAT_DATA_DIRECTORY", filepath.Join(dir, "data"))
	t.Setenv("DOCCHAT_STORAGE_DRIVER", "file")
	t.Cleanup(cleanupLogging)
	return srv.URL, dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	cleanupLogging()
	return out.String(), err
}

func TestUploadAskSession(t *testing.T) {
	server, dir := setupEnv(t)

	out, err := run(t, "session", "--server", server)
	require.NoError(t, err)
	assert.Contains(t, out, "no session")

	doc := filepath.Join(dir, "notes.md")
	require.NoError(t, os.WriteFile(doc, []byte("# Notes\n\nThe meeting moved to Thursday.\n\nLunch is at noon."), 0644))

	out, err = run(t, "upload", doc, "--server", server)
	require.NoError(t, err)
	assert.Contains(t, out, "document uploaded, you can start chatting")
	assert.Contains(t, out, "session: ")

	out, err = run(t, "session", "--server", server)
	require.NoError(t, err)
	assert.Contains(t, out, "document loaded, you can start chatting")

	out, err = run(t, "ask", "--raw", "--server", server, "when", "is", "the", "meeting")
	require.NoError(t, err)
	assert.Equal(t, "The meeting moved to Thursday.\n", out)

	_, err = os.Stat(filepath.Join(dir, "data", "logs", "docchat.log"))
	assert.NoError(t, err, "logs go to the data directory")
}

func TestSessionWithUnusableDataDir(t *testing.T) {
	server, dir := setupEnv(t)

	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	t.Setenv("DOCCHAT_DATA_DIRECTORY", filepath.Join(blocker, "data"))

	out, err := run(t, "session", "--server", server)
	require.NoError(t, err)
	assert.Contains(t, out, "no session")
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	server, dir := setupEnv(t)

	img := filepath.Join(dir, "photo.png")
	require.NoError(t, os.WriteFile(img, []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), 0644))

	_, err := run(t, "upload", img, "--server", server)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an accepted document")
}

func TestAskWithoutSession(t *testing.T) {
	server, _ := setupEnv(t)

	_, err := run(t, "ask", "--server", server, "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no document uploaded yet")
}

func TestAskUnknownSession(t *testing.T) {
	server, dir := setupEnv(t)

	state := filepath.Join(dir, "data", "state.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(state), 0755))
	require.NoError(t, os.WriteFile(state, []byte("[entries]\nragChatbotSessionId = \"expired\"\n"), 0644))

	_, err := run(t, "ask", "--server", server, "anything")
	require.Error(t, err)
	assert.Equal(t, mockserver.DetailUnknownSession, err.Error())
}
