package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// Status is the lifecycle state of the session handle.
type Status int

const (
	StatusEmpty Status = iota
	StatusReady
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	default:
		return "empty"
	}
}

// Session is the server-issued handle bound to an uploaded document. The id
// is opaque and only ever compared for equality.
type Session struct {
	ID     string
	Status Status
}

// Ready reports whether the session holds a handle.
func (s Session) Ready() bool {
	return s.Status == StatusReady
}

// ErrEmptyID is returned by Commit for a blank handle.
var ErrEmptyID = errors.New("session id must not be empty")

// Store owns the session handle. It is read from the backend once by Load
// and replaced by Commit; there is no way to clear it.
type Store struct {
	mu      sync.RWMutex
	backend Backend
	key     string
	current Session
	logger  *log.Logger
}

// NewStore creates a store persisting under key. A nil backend keeps the
// handle in memory only.
func NewStore(backend Backend, key string, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{
		backend: backend,
		key:     key,
		logger:  logger.WithPrefix("session"),
	}
}

// Load reads the persisted handle. Storage failures are logged and leave the
// store Empty; they are never returned to the caller.
func (s *Store) Load(ctx context.Context) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.backend == nil {
		return s.current, s.current.Ready()
	}

	id, err := s.backend.Get(ctx, s.key)
	switch {
	case errors.Is(err, ErrNotFound):
		s.logger.Debug("no persisted session", "key", s.key)
	case err != nil:
		s.logger.Warn("persisted storage unavailable, starting without a session", "key", s.key, "err", err)
	case strings.TrimSpace(id) == "":
		s.logger.Debug("persisted session is blank", "key", s.key)
	default:
		s.current = Session{ID: id, Status: StatusReady}
		s.logger.Info("loaded persisted session", "session_id", id)
	}

	return s.current, s.current.Ready()
}

// Commit makes id the current handle and writes it to the backend, replacing
// whatever was stored. The in-memory handle is updated even when the write
// fails; the write error is returned for logging.
func (s *Store) Commit(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrEmptyID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = Session{ID: id, Status: StatusReady}
	if s.backend == nil {
		return nil
	}
	if err := s.backend.Set(ctx, s.key, id); err != nil {
		return fmt.Errorf("persist session %s: %w", id, err)
	}
	s.logger.Debug("committed session", "session_id", id)
	return nil
}

// Current returns the in-memory session.
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// ID returns the current handle, or "" when Empty.
func (s *Store) ID() string {
	return s.Current().ID
}

// Close releases the backend.
func (s *Store) Close() error {
	if s.backend == nil {
		return nil
	}
	return s.backend.Close()
}
