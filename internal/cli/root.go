package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rpggio/flowboard/internal/app"
	"github.com/rpggio/flowboard/internal/config"
	"github.com/rpggio/flowboard/internal/mcp"
)

type rootOptions struct {
	configPath string
	logLevel   string
	driver     string
}

// Execute runs the root command
func Execute(version string) error {
	root := newRootCmd(version)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func newRootCmd(version string) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "flowboard",
		Short: "flowboard - kanban projects and tasks",
		Long: `flowboard keeps projects and their tasks in durable storage.

Run "flowboard serve" to expose the board over JSON-RPC and MCP, or use the
projects and tasks commands to edit it directly.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", os.Getenv("FLOWBOARD_CONFIG_PATH"), "Path to a YAML config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&opts.driver, "driver", "", "Storage driver: memory, sqlite, redis")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newProjectsCmd(opts))
	root.AddCommand(newTasksCmd(opts))
	root.AddCommand(newActivityCmd(opts))

	return root
}

// loadConfig applies command-line overrides on top of file and env config,
// then validates the result.
func (o *rootOptions) loadConfig(overrides ...func(*config.Config)) (config.Config, error) {
	cfg, err := config.Read(o.configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("config error: %w", err)
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.driver != "" {
		cfg.Storage.Driver = o.driver
	}
	for _, override := range overrides {
		override(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("config error: %w", err)
	}
	return cfg, nil
}

// session is an opened App plus the handler every data command goes through.
type session struct {
	app     *app.App
	handler *mcp.Handler
	closeFn func()
}

func (s *session) Close() {
	s.closeFn()
}

// openSession loads config, opens storage and fetches both collections.
// A failed fetch is fatal here: writing on top of an unread slot would
// overwrite it.
func (o *rootOptions) openSession(ctx context.Context, stderr io.Writer) (*session, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	logger, closeLog, err := newLogger(cfg, stderr)
	if err != nil {
		return nil, err
	}

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		closeLog()
		return nil, err
	}
	if err := a.Fetch(ctx); err != nil {
		_ = a.Close()
		closeLog()
		return nil, fmt.Errorf("load board: %w", err)
	}

	return &session{
		app:     a,
		handler: mcp.NewAppHandler(a),
		closeFn: func() {
			if err := a.Close(); err != nil {
				logger.Warn("close storage", "error", err)
			}
			closeLog()
		},
	}, nil
}

// call runs one handler method and returns its result.
func (s *session) call(ctx context.Context, method string, params any) (any, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	return s.handler.Handle(ctx, method, raw)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
