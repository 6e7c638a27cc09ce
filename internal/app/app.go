package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/entrepeneur4lyf/docchat/internal/api"
	"github.com/entrepeneur4lyf/docchat/internal/config"
	"github.com/entrepeneur4lyf/docchat/internal/coordinator"
	"github.com/entrepeneur4lyf/docchat/internal/session"
	"github.com/entrepeneur4lyf/docchat/internal/storage"
	"github.com/redis/go-redis/v9"
)

// App holds the wired components shared by the TUI and the CLI commands
type App struct {
	Config      *config.Config
	Paths       *storage.PathManager
	Client      *api.Client
	Coordinator *coordinator.Coordinator
	Logger      *log.Logger
}

// New builds the client, the session store and the coordinator from cfg,
// then loads the persisted session.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = log.Default()
	}

	paths := storage.NewPathManager(cfg.Data.Directory)

	backend, err := newBackend(cfg, paths)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session storage: %w", err)
	}

	client := api.NewClient(api.Options{
		BaseURL:       cfg.Server.BaseURL,
		UploadTimeout: cfg.Server.UploadTimeout,
		ChatTimeout:   cfg.Server.ChatTimeout,
		Logger:        logger,
	})

	store := session.NewStore(backend, cfg.Storage.Key, logger)
	coord := coordinator.New(store, client, logger)

	app := &App{
		Config:      cfg,
		Paths:       paths,
		Client:      client,
		Coordinator: coord,
		Logger:      logger,
	}

	st := coord.Start(ctx)
	logger.Info("docchat initialized",
		"server", cfg.Server.BaseURL,
		"storage", cfg.Storage.Driver,
		"session", st.HasSession())

	return app, nil
}

// newBackend creates the persisted storage selected by storage.driver
func newBackend(cfg *config.Config, paths *storage.PathManager) (session.Backend, error) {
	driver := session.Driver(cfg.Storage.Driver)

	switch driver {
	case session.DriverFile:
		statePath := cfg.Storage.StatePath
		if statePath == "" {
			statePath = paths.StatePath()
		}
		return session.NewBackend(driver, session.WithStatePath(statePath))

	case session.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Storage.Redis.Addr,
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
		})
		return session.NewBackend(driver, session.WithRedisClient(client))

	default:
		return session.NewBackend(driver)
	}
}

// Close releases the session backend and event subscriptions
func (a *App) Close() error {
	if err := a.Coordinator.Close(); err != nil {
		return fmt.Errorf("failed to close session storage: %w", err)
	}
	return nil
}
