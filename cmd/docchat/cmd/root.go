package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/entrepeneur4lyf/docchat/internal/app"
	"github.com/entrepeneur4lyf/docchat/internal/config"
	"github.com/entrepeneur4lyf/docchat/internal/storage"
	"github.com/entrepeneur4lyf/docchat/internal/tui"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	debug      bool
	serverURL  string
	configFile string
	workingDir string
)

var (
	cfg     *config.Config
	logger  *log.Logger
	logFile *lumberjack.Logger // For cleanup
)

// setupLogging sends logs to the data directory, or to stderr in debug mode
func setupLogging(c *config.Config) (*log.Logger, error) {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		level = log.InfoLevel
	}

	if c.Debug {
		l := log.NewWithOptions(os.Stderr, log.Options{
			Level:           log.DebugLevel,
			ReportTimestamp: true,
		})
		log.SetDefault(l)
		return l, nil
	}

	logPath, err := storage.NewPathManager(c.Data.Directory).GetLogPath()
	if err != nil {
		// No usable data directory: run without a log file.
		l := log.New(io.Discard)
		log.SetDefault(l)
		return l, nil
	}
	logFile = &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    10, // Megabytes
		MaxBackups: 3,
		MaxAge:     30, // Days
		Compress:   true,
	}

	l := log.NewWithOptions(logFile, log.Options{
		Level:           level,
		ReportTimestamp: true,
		Formatter:       log.LogfmtFormatter,
	})
	log.SetDefault(l)
	return l, nil
}

// cleanupLogging closes the log file if it was opened
func cleanupLogging() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

// withApp builds the application for one command and closes it afterwards
func withApp(ctx context.Context, fn func(*app.App) error) error {
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize docchat: %w", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("close failed", "err", err)
		}
	}()
	return fn(a)
}

var rootCmd = &cobra.Command{
	Use:   "docchat",
	Short: "Chat with your documents",
	Long: `docchat uploads a document to a question-answering service and lets you
hold a conversation about it.

Usage:
  docchat                     # Start the terminal UI
  docchat upload report.pdf   # Upload a document and start a new session
  docchat ask "question"      # Ask about the current document
  docchat session             # Show the current session`,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	Args:              cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(config.Options{ConfigFile: configFile, Debug: debug})
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if serverURL != "" {
			cfg.Server.BaseURL = serverURL
		}

		logger, err = setupLogging(cfg)
		if err != nil {
			return fmt.Errorf("failed to setup logging: %w", err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			return tui.Run(cmd.Context(), a, workingDir)
		})
	},
}

func init() {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug mode (logs to stderr)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Base URL of the document service")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to configuration file")
	rootCmd.Flags().StringVar(&workingDir, "dir", wd, "Directory the file picker starts in")

	rootCmd.AddCommand(uploadCmd, askCmd, sessionCmd, serveMockCmd)
}

// Execute runs the root command until it finishes or a signal arrives
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer cleanupLogging()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		cleanupLogging()
		os.Exit(1)
	}
}
