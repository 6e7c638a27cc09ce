package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/entrepeneur4lyf/docchat/internal/config"
	"github.com/redis/go-redis/v9"
)

// Common errors for persisted storage.
var (
	ErrNotFound         = errors.New("key not found")
	ErrInvalidConfig    = errors.New("invalid storage configuration")
	ErrInvalidStoreType = errors.New("invalid storage driver")
)

// Backend is the durable key-value storage the session handle is kept in.
type Backend interface {
	// Get returns ErrNotFound when the key has never been written.
	Get(ctx context.Context, key string) (string, error)

	// Set overwrites the value stored under key.
	Set(ctx context.Context, key, value string) error

	// Close releases any resources held by the backend.
	Close() error
}

// Driver names a Backend implementation.
type Driver string

const (
	DriverFile   Driver = "file"
	DriverRedis  Driver = "redis"
	DriverMemory Driver = "memory"
)

// Option configures NewBackend.
type Option func(*backendConfig)

type backendConfig struct {
	statePath   string
	redisClient *redis.Client
}

// WithStatePath sets the TOML file used by the file driver.
func WithStatePath(path string) Option {
	return func(c *backendConfig) {
		c.statePath = path
	}
}

// WithRedisClient sets the client used by the redis driver.
func WithRedisClient(client *redis.Client) Option {
	return func(c *backendConfig) {
		c.redisClient = client
	}
}

// NewBackend creates a Backend for the given driver.
func NewBackend(driver Driver, opts ...Option) (Backend, error) {
	cfg := &backendConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	switch driver {
	case DriverFile:
		if cfg.statePath == "" {
			return nil, fmt.Errorf("%w: file driver needs a state path", ErrInvalidConfig)
		}
		return &fileBackend{path: cfg.statePath}, nil

	case DriverRedis:
		if cfg.redisClient == nil {
			return nil, fmt.Errorf("%w: redis driver needs a client", ErrInvalidConfig)
		}
		return &redisBackend{client: cfg.redisClient}, nil

	case DriverMemory:
		return NewMemoryBackend(), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStoreType, driver)
	}
}

// fileBackend keeps entries in the TOML state file.
type fileBackend struct {
	mu   sync.Mutex
	path string
}

func (b *fileBackend) Get(ctx context.Context, key string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	state, err := config.LoadState(b.path)
	if err != nil {
		return "", err
	}
	value, ok := state.Entries[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (b *fileBackend) Set(ctx context.Context, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	state, err := config.LoadState(b.path)
	if err != nil {
		// An unreadable file is replaced rather than merged.
		state = config.NewState()
	}
	state.Entries[key] = value
	state.UpdatedAt = time.Now().UTC()
	return config.SaveState(b.path, state)
}

func (b *fileBackend) Close() error {
	return nil
}

// redisBackend keeps entries as plain redis strings without expiry.
type redisBackend struct {
	client *redis.Client
}

func (b *redisBackend) Get(ctx context.Context, key string) (string, error) {
	val, err := b.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (b *redisBackend) Set(ctx context.Context, key, value string) error {
	return b.client.Set(ctx, key, value, 0).Err()
}

func (b *redisBackend) Close() error {
	return b.client.Close()
}

// MemoryBackend is a Backend that lives only as long as the process.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: make(map[string]string)}
}

func (b *MemoryBackend) Get(ctx context.Context, key string) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	value, ok := b.entries[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (b *MemoryBackend) Set(ctx context.Context, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[key] = value
	return nil
}

func (b *MemoryBackend) Close() error {
	return nil
}
