package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/subcommands"

	"github.com/ahmethakanbesel/eodscraper/internal/config"
	"github.com/ahmethakanbesel/eodscraper/internal/server"
)

type serveCmd struct {
	cfg config.Config

	addr   string
	source string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve histories and the run journal over HTTP" }
func (*serveCmd) Usage() string {
	return `serve [-addr host:port]:
  Read-only JSON/CSV API over the stored histories and journal.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "listen address (default HTTP_ADDR)")
	f.StringVar(&c.source, "source", string(defaultSource), "quote source whose histories are served")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	addr := c.cfg.HTTPAddr
	if c.addr != "" {
		addr = c.addr
	}

	jobs, cleanup, err := initJournal(c.cfg)
	if err != nil {
		return exitWith("open journal", err)
	}
	defer cleanup()

	srv := server.New(ctx, addr, provideHistory(c.cfg, sourceName(c.source)), jobs)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return exitWith("server error", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		return subcommands.ExitFailure
	}
	slog.Info("server stopped")
	return subcommands.ExitSuccess
}
