package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// State is the durable client state kept on disk. It is a flat key-value
// table; docchat only ever writes the session handle into it.
type State struct {
	Entries   map[string]string `toml:"entries"`
	UpdatedAt time.Time         `toml:"updated_at"`
}

// NewState creates an empty state
func NewState() *State {
	return &State{
		Entries: make(map[string]string),
	}
}

// SaveState writes the state to a TOML file, replacing it atomically
func SaveState(filePath string, state *State) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.toml")
	if err != nil {
		return fmt.Errorf("failed to create temp state file in %s: %w", dir, err)
	}
	defer os.Remove(tmp.Name())

	writer := bufio.NewWriter(tmp)
	encoder := toml.NewEncoder(writer)
	if err := encoder.Encode(state); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode state to TOML file %s: %w", filePath, err)
	}
	if err := writer.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to flush writer for state file %s: %w", filePath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close state file %s: %w", filePath, err)
	}

	if err := os.Rename(tmp.Name(), filePath); err != nil {
		return fmt.Errorf("failed to replace state file %s: %w", filePath, err)
	}
	return nil
}

// LoadState loads the state from a TOML file. A missing file yields an
// empty state.
func LoadState(filePath string) (*State, error) {
	state := NewState()
	if _, err := toml.DecodeFile(filePath, state); err != nil {
		if _, statErr := os.Stat(filePath); os.IsNotExist(statErr) {
			return NewState(), nil
		}
		return nil, fmt.Errorf("failed to decode TOML from file %s: %w", filePath, err)
	}
	if state.Entries == nil {
		state.Entries = make(map[string]string)
	}
	return state, nil
}
