package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jaminalder/timetravel-tictactoe/internal/app"
	"github.com/jaminalder/timetravel-tictactoe/internal/config"
	"github.com/jaminalder/timetravel-tictactoe/internal/logging"
	"github.com/jaminalder/timetravel-tictactoe/internal/tui"
	"github.com/jaminalder/timetravel-tictactoe/internal/web"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "tictactoe",
		Short:         "Tic-tac-toe with move history and time travel",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override the configured log level")

	root.AddCommand(newServeCmd(opts), newPlayCmd())
	return root
}

// load resolves the config and builds the logger shared by subcommands.
func (o *rootOptions) load() (config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return config.Config{}, zerolog.Nop(), fmt.Errorf("log level %q: %w", cfg.LogLevel, err)
	}
	return cfg, logger, nil
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the browser game over HTTP",
		Long: `Serves the game as server-rendered HTML with live updates.

Examples:
  tictactoe serve
  tictactoe serve --addr :9000 --log-level debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

func serve(ctx context.Context, cfg config.Config, logger zerolog.Logger) error {
	svc := app.NewService(app.WithLogger(logger), app.WithBuffer(cfg.SubscriberBuffer))
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           web.NewServer(svc, web.WithLogger(logger), web.WithHeartbeat(cfg.Heartbeat)),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr).Msg("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func newPlayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Play in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			final, err := tea.NewProgram(tui.New(), tea.WithAltScreen()).Run()
			if err != nil {
				return fmt.Errorf("terminal ui: %w", err)
			}
			if m, ok := final.(tui.Model); ok {
				v := m.State().View()
				fmt.Fprintln(cmd.OutOrStdout(), v.Status)
			}
			return nil
		},
	}
}
