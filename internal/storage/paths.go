package storage

import (
	"os"
	"path/filepath"
)

// PathManager resolves where docchat keeps its durable client state
type PathManager struct {
	homeDir string
	dataDir string
}

// NewPathManager creates a path manager rooted at dataDir. An empty dataDir
// falls back to ~/.docchat.
func NewPathManager(dataDir string) *PathManager {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home dir is not available
		homeDir = "."
	}

	if dataDir == "" {
		dataDir = filepath.Join(homeDir, ".docchat")
	}

	return &PathManager{
		homeDir: homeDir,
		dataDir: expandHome(dataDir, homeDir),
	}
}

// GetDataDir returns the main data directory, creating it if needed
func (pm *PathManager) GetDataDir() (string, error) {
	if err := os.MkdirAll(pm.dataDir, 0755); err != nil {
		return "", err
	}
	return pm.dataDir, nil
}

// StatePath returns the path of the persisted session state file. The
// directory is created on first write, not here.
func (pm *PathManager) StatePath() string {
	return filepath.Join(pm.dataDir, "state.toml")
}

// GetLogsDir returns the directory for log files
func (pm *PathManager) GetLogsDir() (string, error) {
	dir, err := pm.GetDataDir()
	if err != nil {
		return "", err
	}
	logsDir := filepath.Join(dir, "logs")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return "", err
	}
	return logsDir, nil
}

// GetLogPath returns the log file path
func (pm *PathManager) GetLogPath() (string, error) {
	dir, err := pm.GetLogsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "docchat.log"), nil
}

// GetHomeDir returns the user's home directory
func (pm *PathManager) GetHomeDir() string {
	return pm.homeDir
}

func expandHome(path, homeDir string) string {
	if path == "~" {
		return homeDir
	}
	if len(path) > 1 && path[0] == '~' && (path[1] == '/' || path[1] == filepath.Separator) {
		return filepath.Join(homeDir, path[2:])
	}
	return path
}
