package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"tailscale.com/tsnet"

	"github.com/claude/ironprogress/internal/ingest/alpha"
	"github.com/claude/ironprogress/internal/mcp"
	"github.com/claude/ironprogress/internal/remote"
	"github.com/claude/ironprogress/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (and MCP over HTTP at /mcp)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	log := a.log
	log.Info("IronProgress starting", "version", Version, "storage", a.cfg.Storage.Driver)

	j, err := a.openJournal(ctx)
	if err != nil {
		return err
	}
	log.Info("journal loaded", "sessions", j.Len())

	api := server.New(j, a.newCoach(ctx), alpha.NewProvider(j, log), server.Options{
		Location:        a.loc,
		CoachWindowDays: a.cfg.Coach.WindowDays,
	}, log)

	router := chi.NewRouter()
	router.Handle("/mcp", mcpserver.NewStreamableHTTPServer(mcp.New(mcp.FromJournal(j), Version, a.loc, log)))
	router.Mount("/", api)

	// tsnet or plain HTTP
	var listener net.Listener
	if a.cfg.Tailscale.Enabled {
		tsServer := &tsnet.Server{
			Hostname: a.cfg.Tailscale.Hostname,
			Dir:      a.cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			return fmt.Errorf("tsnet start: %w", err)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			return fmt.Errorf("tsnet listen: %w", err)
		}
		log.Info("tsnet server starting", "hostname", a.cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", addr, err)
		}
		log.Info("server starting", "addr", addr, "mode", "plain http")
	}

	httpSrv := &http.Server{Handler: router}
	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)
	select {
	case sig := <-quit:
		log.Info("shutting down", "signal", sig)
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
	return nil
}

func newMCPCmd(a *app) *cobra.Command {
	var remoteURL string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the MCP tools over stdio",
		Long:  "mcp serves the IronProgress MCP tools and resources over stdin/stdout. With --remote the tools read from another ironprogress server's export instead of the local store.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var ds mcp.DataSource
			if remoteURL != "" {
				ds = mcp.FromRemote(remote.NewClient(remoteURL))
				a.log.Info("mcp reading from remote", "url", remoteURL)
			} else {
				j, err := a.openJournal(cmd.Context())
				if err != nil {
					return err
				}
				ds = mcp.FromJournal(j)
			}
			return mcpserver.ServeStdio(mcp.New(ds, Version, a.loc, a.log))
		},
	}
	cmd.Flags().StringVar(&remoteURL, "remote", "", "base URL of an ironprogress server to read from")

	return cmd
}
