package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		dir := t.TempDir()
		cfg, err := Load(Options{
			ConfigFile: writeConfig(t, dir, `{}`),
			EnvFile:    filepath.Join(dir, "missing.env"),
		})
		require.NoError(t, err)

		assert.Equal(t, "http://localhost:8000", cfg.Server.BaseURL)
		assert.Equal(t, 120*time.Second, cfg.Server.UploadTimeout)
		assert.Equal(t, 60*time.Second, cfg.Server.ChatTimeout)
		assert.Equal(t, "file", cfg.Storage.Driver)
		assert.Equal(t, DefaultStorageKey, cfg.Storage.Key)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.False(t, cfg.Debug)
	})

	t.Run("config file values", func(t *testing.T) {
		dir := t.TempDir()
		cfg, err := Load(Options{
			ConfigFile: writeConfig(t, dir, `{
				"server": {"baseURL": "http://docs.internal:9000/", "chatTimeout": "5s"},
				"storage": {"driver": "redis", "redis": {"addr": "cache:6379", "db": 2}}
			}`),
			EnvFile: filepath.Join(dir, "missing.env"),
		})
		require.NoError(t, err)

		assert.Equal(t, "http://docs.internal:9000", cfg.Server.BaseURL)
		assert.Equal(t, 5*time.Second, cfg.Server.ChatTimeout)
		assert.Equal(t, "redis", cfg.Storage.Driver)
		assert.Equal(t, "cache:6379", cfg.Storage.Redis.Addr)
		assert.Equal(t, 2, cfg.Storage.Redis.DB)
	})

	t.Run("dotenv and environment", func(t *testing.T) {
		dir := t.TempDir()
		envFile := filepath.Join(dir, "test.env")
		require.NoError(t, os.WriteFile(envFile, []byte("DOCCHAT_SERVER_BASEURL=http://from-dotenv:8000\n"), 0644))
		t.Cleanup(func() { os.Unsetenv("DOCCHAT_SERVER_BASEURL") })

		cfg, err := Load(Options{ConfigFile: writeConfig(t, dir, `{}`), EnvFile: envFile})
		require.NoError(t, err)
		assert.Equal(t, "http://from-dotenv:8000", cfg.Server.BaseURL)
	})

	t.Run("debug forces debug logging", func(t *testing.T) {
		dir := t.TempDir()
		cfg, err := Load(Options{
			ConfigFile: writeConfig(t, dir, `{"log": {"level": "warn"}}`),
			EnvFile:    filepath.Join(dir, "missing.env"),
			Debug:      true,
		})
		require.NoError(t, err)
		assert.True(t, cfg.Debug)
		assert.Equal(t, "debug", cfg.Log.Level)
	})

	t.Run("rejects unknown storage driver", func(t *testing.T) {
		dir := t.TempDir()
		_, err := Load(Options{
			ConfigFile: writeConfig(t, dir, `{"storage": {"driver": "indexeddb"}}`),
			EnvFile:    filepath.Join(dir, "missing.env"),
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "indexeddb")
	})
}

func TestState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.toml")

	state, err := LoadState(path)
	require.NoError(t, err)
	assert.Empty(t, state.Entries)

	state.Entries[DefaultStorageKey] = "abc123"
	state.UpdatedAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, SaveState(path, state))

	loaded, err := LoadState(path)
	require.NoError(t, err)
	assert.Equal(t, "abc123", loaded.Entries[DefaultStorageKey])
	assert.True(t, state.UpdatedAt.Equal(loaded.UpdatedAt))

	require.NoError(t, os.WriteFile(path, []byte("entries = ["), 0644))
	_, err = LoadState(path)
	assert.Error(t, err)
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "docchat.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}
