package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aretw0/syllabus"
	"github.com/aretw0/syllabus/internal/cli"
	"github.com/aretw0/syllabus/internal/presentation/tui"
	httpAdapter "github.com/aretw0/syllabus/pkg/adapters/http"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the editor HTTP server",
	Long:  `Serves editing sessions over HTTP, with an SSE change stream per draft and Prometheus metrics on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		app, err := loadApp(sigCtx, cmd)
		if err != nil {
			return err
		}
		defer func() {
			if err := app.Close(); err != nil {
				app.Logger.Error("Failed to close sessions", "error", err)
			}
		}()

		cfg := app.Config
		opts := []httpAdapter.Option{
			httpAdapter.WithMetrics(app.Metrics),
			httpAdapter.WithLogger(app.Logger),
		}
		if cfg.Server.ValidateRequests {
			spec, err := httpAdapter.LoadSpec(sigCtx)
			if err != nil {
				return err
			}
			opts = append(opts, httpAdapter.WithRequestValidation(spec))
		}
		handler := httpAdapter.NewHandler(app.Sessions, opts...)
		srv := &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      handler,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}

		if tui.IsTerminal(os.Stderr) {
			tui.PrintBanner(os.Stderr, strings.TrimSpace(syllabus.Version))
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			app.Logger.Info("Starting Syllabus Server", "addr", srv.Addr, "store", cfg.Store.Backend)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case <-sigCtx.Done():
			app.Logger.Info("Start shutdown", "signal", sigCtx.Signal())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				app.Logger.Warn("Graceful shutdown did not complete", "timeout", 5*time.Second, "error", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			app.Logger.Info("Syllabus Server stopped gracefully", "version", strings.TrimSpace(syllabus.Version))
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
}
