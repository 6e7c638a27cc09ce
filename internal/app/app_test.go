package app

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/charmbracelet/log"
	"github.com/entrepeneur4lyf/docchat/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server:  config.ServerConfig{BaseURL: "http://127.0.0.1:1"},
		Storage: config.StorageConfig{Driver: "file", Key: config.DefaultStorageKey},
		Data:    config.Data{Directory: t.TempDir()},
	}
}

func TestNewFileStorage(t *testing.T) {
	cfg := testConfig(t)
	state := config.NewState()
	state.Entries[config.DefaultStorageKey] = "abc123"
	require.NoError(t, config.SaveState(filepath.Join(cfg.Data.Directory, "state.toml"), state))

	a, err := New(context.Background(), cfg, log.New(io.Discard))
	require.NoError(t, err)
	defer a.Close()

	st := a.Coordinator.State()
	assert.Equal(t, "abc123", st.SessionID)
	assert.Equal(t, "http://127.0.0.1:1", a.Client.BaseURL())
}

func TestNewWithUnusableDataDir(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	cfg := testConfig(t)
	cfg.Data.Directory = filepath.Join(blocker, "data")

	a, err := New(context.Background(), cfg, log.New(io.Discard))
	require.NoError(t, err, "unavailable storage must not stop startup")
	defer a.Close()

	st := a.Coordinator.State()
	assert.False(t, st.HasSession())
	assert.Empty(t, st.Error)
}

func TestNewRedisStorage(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set(config.DefaultStorageKey, "from-redis"))

	cfg := testConfig(t)
	cfg.Storage.Driver = "redis"
	cfg.Storage.Redis.Addr = mr.Addr()

	a, err := New(context.Background(), cfg, log.New(io.Discard))
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, "from-redis", a.Coordinator.State().SessionID)
}

func TestNewMemoryStorage(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Driver = "memory"

	a, err := New(context.Background(), cfg, log.New(io.Discard))
	require.NoError(t, err)
	defer a.Close()

	assert.False(t, a.Coordinator.State().HasSession())
}

func TestNewUnknownDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Driver = "sqlite"

	_, err := New(context.Background(), cfg, log.New(io.Discard))
	assert.Error(t, err)
}
