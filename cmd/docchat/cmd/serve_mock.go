package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/entrepeneur4lyf/docchat/internal/mockserver"
	"github.com/spf13/cobra"
)

var (
	mockAddr    string
	mockLatency time.Duration
)

var serveMockCmd = &cobra.Command{
	Use:   "serve-mock",
	Short: "Run a local stand-in for the document service",
	Long: `Run an in-memory implementation of the /upload and /chat endpoints.
Answers are the paragraphs of the uploaded document that best match the question.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := mockAddr
		if addr == "" {
			addr = cfg.Mock.Addr
		}

		srv := &http.Server{
			Addr: addr,
			Handler: mockserver.New(
				mockserver.WithLogger(logger),
				mockserver.WithLatency(mockLatency),
			),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.ListenAndServe()
		}()
		fmt.Fprintf(cmd.OutOrStdout(), "Mock document service listening on %s\n", addr)
		logger.Info("mock server started", "addr", addr)

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("mock server failed: %w", err)
		case <-cmd.Context().Done():
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("mock server shutting down")
		return srv.Shutdown(ctx)
	},
}

func init() {
	serveMockCmd.Flags().StringVar(&mockAddr, "addr", "", "Listen address (default from mock.addr)")
	serveMockCmd.Flags().DurationVar(&mockLatency, "latency", 0, "Artificial delay added to every response")
}
