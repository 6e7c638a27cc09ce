package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ServerConfig describes the remote document question-answering service
type ServerConfig struct {
	BaseURL       string        `mapstructure:"baseURL"`
	UploadTimeout time.Duration `mapstructure:"uploadTimeout"`
	ChatTimeout   time.Duration `mapstructure:"chatTimeout"`
}

// RedisConfig defines the redis connection used by the redis storage driver
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// StorageConfig defines where the session handle is persisted
type StorageConfig struct {
	Driver    string      `mapstructure:"driver"` // "file", "redis", "memory"
	Key       string      `mapstructure:"key"`
	StatePath string      `mapstructure:"statePath"`
	Redis     RedisConfig `mapstructure:"redis"`
}

// Data defines the local data directory
type Data struct {
	Directory string `mapstructure:"directory"`
}

// LogConfig defines logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// TUIConfig defines terminal UI configuration
type TUIConfig struct {
	Theme string `mapstructure:"theme"`
}

// MockConfig defines the development stub server
type MockConfig struct {
	Addr string `mapstructure:"addr"`
}

// Config is the main configuration structure for the application
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Data    Data          `mapstructure:"data"`
	Log     LogConfig     `mapstructure:"log"`
	TUI     TUIConfig     `mapstructure:"tui"`
	Mock    MockConfig    `mapstructure:"mock"`
	Debug   bool          `mapstructure:"debug"`
}

// Application constants
const (
	appName              = "docchat"
	defaultBaseURL       = "http://localhost:8000"
	defaultDataDirectory = "~/.docchat"
	defaultLogLevel      = "info"

	// DefaultStorageKey is the fixed key the session handle is stored under
	DefaultStorageKey = "ragChatbotSessionId"
)

// Options control how Load resolves configuration
type Options struct {
	ConfigFile string // explicit config file, skips the search paths
	EnvFile    string // dotenv file, defaults to .env in the working directory
	Debug      bool
}

// Load reads configuration from the dotenv file, the config file and the
// environment, in increasing order of precedence.
func Load(opts Options) (*Config, error) {
	if err := loadDotEnv(opts.EnvFile); err != nil {
		return nil, err
	}

	v := viper.New()
	configureViper(v, opts.ConfigFile)
	setDefaults(v, opts.Debug)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if opts.Debug {
		cfg.Debug = true
		cfg.Log.Level = "debug"
	}
	cfg.Server.BaseURL = strings.TrimRight(cfg.Server.BaseURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that cannot be defaulted away
func (c *Config) Validate() error {
	if c.Server.BaseURL == "" {
		return errors.New("server.baseURL must not be empty")
	}
	switch c.Storage.Driver {
	case "file", "redis", "memory":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Key == "" {
		return errors.New("storage.key must not be empty")
	}
	if c.Server.UploadTimeout < 0 || c.Server.ChatTimeout < 0 {
		return errors.New("request timeouts must not be negative")
	}
	return nil
}

func loadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// configureViper sets up viper's configuration paths and environment variables
func configureViper(v *viper.Viper, configFile string) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(fmt.Sprintf(".%s", appName))
		v.SetConfigType("json")
		v.AddConfigPath("$HOME")
		v.AddConfigPath(fmt.Sprintf("$XDG_CONFIG_HOME/%s", appName))
		v.AddConfigPath(fmt.Sprintf("$HOME/.config/%s", appName))
	}
	v.SetEnvPrefix(strings.ToUpper(appName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// setDefaults configures default values for configuration options
func setDefaults(v *viper.Viper, debug bool) {
	v.SetDefault("server.baseURL", defaultBaseURL)
	v.SetDefault("server.uploadTimeout", 120*time.Second)
	v.SetDefault("server.chatTimeout", 60*time.Second)

	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.key", DefaultStorageKey)
	v.SetDefault("storage.statePath", "")
	v.SetDefault("storage.redis.addr", "localhost:6379")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)

	v.SetDefault("data.directory", defaultDataDirectory)
	v.SetDefault("tui.theme", "default")
	v.SetDefault("mock.addr", ":8000")

	v.SetDefault("debug", debug)
	if debug {
		v.SetDefault("log.level", "debug")
	} else {
		v.SetDefault("log.level", defaultLogLevel)
	}
}
