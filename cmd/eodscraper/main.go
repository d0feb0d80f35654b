package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/subcommands"

	"github.com/ahmethakanbesel/eodscraper/internal/apperror"
	"github.com/ahmethakanbesel/eodscraper/internal/config"
	"github.com/ahmethakanbesel/eodscraper/internal/slogx"
)

func main() {
	config.LoadDotenv()
	cfg := config.Load()
	slogx.Setup(cfg.LogLevel, false)

	// SIGINT/SIGTERM cancel the run; pacing waits and requests return early.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&scrapeCmd{cfg: cfg}, "")
	subcommands.Register(&runsCmd{cfg: cfg}, "")
	subcommands.Register(&exportCmd{cfg: cfg}, "")
	subcommands.Register(&idsCmd{cfg: cfg}, "")
	subcommands.Register(&serveCmd{cfg: cfg}, "")

	flag.Parse()
	status := subcommands.Execute(ctx)
	stop()
	os.Exit(int(status))
}

// exitWith logs err and converts its code to a process status.
func exitWith(msg string, err error) subcommands.ExitStatus {
	slog.Error(msg, "error", err)
	return subcommands.ExitStatus(apperror.ExitCode(apperror.CodeOf(err)))
}
