package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/dragsort/internal/config"
	"github.com/roach88/dragsort/internal/engine"
	"github.com/roach88/dragsort/internal/server"
)

// shutdownTimeout bounds how long open requests get after a signal.
const shutdownTimeout = 5 * time.Second

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Database        string
	Addr            string
	CompletionDelay time.Duration

	// Listener overrides the listener opened on Addr (for testing).
	Listener net.Listener

	// SessionIDs overrides the session id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	SessionIDs engine.SessionIDGenerator
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return newServeCommand(&ServeOptions{RootOptions: rootOpts})
}

func newServeCommand(opts *ServeOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalogue API and websocket sessions",
		Long: `Serve the catalogue over HTTP and play sessions over websockets.

Configuration comes from the environment (DRAGSORT_ADDR, DRAGSORT_DB,
DRAGSORT_COMPLETION_DELAY, DRAGSORT_LOG_LEVEL); flags override it.
Every websocket connection runs its own session, and every resolved
drop is recorded to the database.

Example:
  dragsort serve --db ./dragsort.db
  DRAGSORT_ADDR=:9000 dragsort serve --completion-delay 1s`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default $DRAGSORT_DB)")
	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (default $DRAGSORT_ADDR)")
	cmd.Flags().DurationVar(&opts.CompletionDelay, "completion-delay", 0, "delay before the success hook (default $DRAGSORT_COMPLETION_DELAY)")

	return cmd
}

// resolveServeConfig layers flags over the environment.
func resolveServeConfig(opts *ServeOptions, cmd *cobra.Command) (config.ServeConfig, error) {
	cfg, err := config.LoadServeConfig()
	if err != nil {
		return config.ServeConfig{}, err
	}
	if cmd.Flags().Changed("db") {
		cfg.DBPath = opts.Database
	}
	if cmd.Flags().Changed("addr") {
		cfg.Addr = opts.Addr
	}
	if cmd.Flags().Changed("completion-delay") {
		cfg.CompletionDelay = opts.CompletionDelay
	}
	if err := cfg.Validate(); err != nil {
		return config.ServeConfig{}, err
	}
	return cfg, nil
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	cfg, err := resolveServeConfig(opts, cmd)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	logger := opts.Logger
	if logger == nil {
		level := cfg.LogLevel
		if opts.Verbose {
			level = slog.LevelDebug
		}
		logger = newLogger(cmd, level)
	}

	logger.Info("opening database", "path", cfg.DBPath)
	st, err := openStore(cfg.DBPath, false)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	srv := server.New(st, server.Config{
		CompletionDelay: cfg.CompletionDelay,
		SessionIDs:      opts.SessionIDs,
		Logger:          logger,
	})

	ln := opts.Listener
	if ln == nil {
		ln, err = net.Listen("tcp", cfg.Addr)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to listen on %s", cfg.Addr), err)
		}
	}

	httpServer := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.Serve(ln)
	}()

	logger.Info("server listening", "addr", ln.Addr().String(), "completion_delay", cfg.CompletionDelay)
	fmt.Fprintf(cmd.OutOrStdout(), "Serving on %s\n", ln.Addr())
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl-C to stop.")

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return WrapExitError(ExitFailure, "server error", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutting down", "reason", context.Cause(ctx))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return WrapExitError(ExitFailure, "shutdown failed", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}
