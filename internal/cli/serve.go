package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rpggio/flowboard/internal/app"
	"github.com/rpggio/flowboard/internal/config"
	"github.com/rpggio/flowboard/internal/mcp"
	"github.com/rpggio/flowboard/internal/transport"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the board over JSON-RPC/MCP (http) or MCP (stdio)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode, _ := cmd.Flags().GetString("transport")
			cfg, err := opts.loadConfig(func(c *config.Config) {
				if mode != "" {
					c.Transport.Mode = mode
				}
			})
			if err != nil {
				return err
			}

			// Use stderr for logs in stdio mode to keep stdout clean for JSON-RPC.
			var logWriter io.Writer = cmd.OutOrStdout()
			if cfg.Transport.Mode == config.TransportStdio {
				logWriter = cmd.ErrOrStderr()
			}
			logger, closeLog, err := newLogger(cfg, logWriter)
			if err != nil {
				return err
			}
			defer closeLog()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfg, logger, &sdkmcp.StdioTransport{})
		},
	}
	cmd.Flags().String("transport", "", "Override transport mode: http or stdio")
	return cmd
}

// runServe serves until ctx is done. stdio is the transport used in stdio mode.
func runServe(ctx context.Context, cfg config.Config, logger *slog.Logger, stdio sdkmcp.Transport) error {
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("close storage", "error", err)
		}
	}()

	// Stores keep their last good list and expose the error in their state.
	if err := a.Fetch(ctx); err != nil {
		logger.Warn("initial fetch failed", "error", err)
	}

	handler := mcp.NewAppHandler(a)
	mcpServer := mcp.NewServer(mcp.Config{Handler: handler, Logger: logger})

	if cfg.Transport.Mode == config.TransportStdio {
		return runStdio(ctx, logger, mcpServer, stdio)
	}
	return runHTTP(ctx, logger, cfg.Server.Addr(), transport.NewServer(transport.Options{
		Handler: handler,
		State:   func() any { return a.Snapshot() },
		MCP: sdkmcp.NewStreamableHTTPHandler(
			func(*http.Request) *sdkmcp.Server { return mcpServer },
			&sdkmcp.StreamableHTTPOptions{SessionTimeout: 30 * time.Minute},
		),
		Logger: logger,
	}))
}

func runStdio(ctx context.Context, logger *slog.Logger, server *sdkmcp.Server, transport sdkmcp.Transport) error {
	logger.Info("starting stdio transport")

	// Run blocks until the client disconnects or ctx is canceled.
	err := server.Run(ctx, transport)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("stdio server error", "error", err)
		return err
	}
	logger.Info("shutting down")
	return nil
}

func runHTTP(ctx context.Context, logger *slog.Logger, addr string, handler http.Handler) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		logger.Info("shutting down")
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", "error", err)
		return err
	}
	return nil
}
