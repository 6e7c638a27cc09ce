package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathManager(t *testing.T) {
	t.Run("creates directories under the data dir", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "data")
		pm := NewPathManager(root)

		assert.Equal(t, filepath.Join(root, "state.toml"), pm.StatePath())
		_, err := os.Stat(root)
		assert.True(t, os.IsNotExist(err), "state path does not create the data dir")

		logPath, err := pm.GetLogPath()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, "logs", "docchat.log"), logPath)

		info, err := os.Stat(filepath.Join(root, "logs"))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("expands a leading tilde", func(t *testing.T) {
		assert.Equal(t, filepath.Join("/home/u", ".docchat"), expandHome("~/.docchat", "/home/u"))
		assert.Equal(t, "/home/u", expandHome("~", "/home/u"))
		assert.Equal(t, "/var/lib/docchat", expandHome("/var/lib/docchat", "/home/u"))
	})
}
