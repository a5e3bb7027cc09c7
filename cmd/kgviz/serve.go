package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/psidex/kgviz/internal/graphs"
	"github.com/psidex/kgviz/internal/live"
)

var serveFlags struct {
	addr      string
	staticDir string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve live graph sessions over a WebSocket",
	Long: `Serve a static directory on / and live graph sessions on /ws.

A client opens /ws and sends a session config {kind, nodes, edges, options,
tickInterval, runtime}. The server streams the graph, then simulation ticks, and
answers hover, click, drag, zoom and highlight messages until the runtime ends or
the client sends {"type": "close"}.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveFlags.addr, "addr", "b", "", "the ip:port to bind the webserver to (default from config)")
	serveCmd.Flags().StringVarP(&serveFlags.staticDir, "dir", "d", "", "the directory to serve static files from (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := cfg.Server.Addr
	if serveFlags.addr != "" {
		addr = serveFlags.addr
	}
	staticDir := cfg.Server.StaticDir
	if serveFlags.staticDir != "" {
		staticDir = serveFlags.staticDir
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sheet := graphs.NewStylesheet(graphs.DefaultCSS)
	srv := &http.Server{
		Addr:        addr,
		Handler:     live.NewServer(cfg.Live, sheet, logger).Handler(staticDir),
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errs := make(chan error, 1)
	go func() {
		logger.Info("serving", "addr", addr, "static", staticDir)
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", cfg.Server.Shutdown)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.Shutdown)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
