package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/google/subcommands"

	"github.com/ahmethakanbesel/eodscraper/internal/apperror"
	"github.com/ahmethakanbesel/eodscraper/internal/config"
	"github.com/ahmethakanbesel/eodscraper/internal/price"
	"github.com/ahmethakanbesel/eodscraper/internal/slogx"
)

type scrapeCmd struct {
	cfg config.Config

	debug   bool
	classes string
	resume  bool
	start   string
	source  string
}

func (*scrapeCmd) Name() string     { return "scrape" }
func (*scrapeCmd) Synopsis() string { return "download daily history for instruments" }
func (*scrapeCmd) Usage() string {
	return `scrape [-d] [-r] [-s YYYY-MM-DD] [-l class[,class]] [NAME.CODE ...]:
  Bring each instrument's CSV history up to date.
`
}

func (c *scrapeCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.debug, "d", false, "debug logging and parse diagnostics")
	f.StringVar(&c.classes, "l", "", "comma-separated instrument classes from the instrument sets file")
	f.BoolVar(&c.resume, "r", false, "resume from the last stored date instead of starting over")
	f.StringVar(&c.start, "s", "", "start date for instruments without history")
	f.StringVar(&c.source, "source", string(defaultSource), "quote source")
}

func (c *scrapeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	slogx.Setup(c.cfg.LogLevel, c.debug)

	if err := c.cfg.Validate(); err != nil {
		return exitWith("invalid configuration", apperror.Wrap(apperror.Config, "config", err))
	}

	opts, err := c.options()
	if err != nil {
		fmt.Fprintln(f.Output(), err)
		return subcommands.ExitUsageError
	}

	sets, err := c.instrumentSets()
	if err != nil {
		return exitWith("load instrument sets", err)
	}
	opts.Exclude = sets.Exclude

	codes := f.Args()
	if c.classes != "" {
		resolved, err := sets.Resolve(strings.Split(c.classes, ","))
		if err != nil {
			fmt.Fprintln(f.Output(), err)
			return subcommands.ExitUsageError
		}
		codes = append(codes, resolved...)
	}

	req := price.ScrapeRequest{Codes: codes}
	if err := req.Validate(); err != nil {
		fmt.Fprintln(f.Output(), err)
		f.Usage()
		return subcommands.ExitUsageError
	}

	app, cleanup, err := initScrapeApp(c.cfg, opts, sourceName(c.source))
	if err != nil {
		return exitWith("initialize scraper", err)
	}
	defer cleanup()

	if app.Jobs != nil {
		if err := app.Jobs.RecoverInterrupted(ctx); err != nil {
			slog.Warn("failed to recover interrupted runs", "error", err)
		}
	}

	insts := req.Instruments()
	slog.Info("starting run", "runID", app.Service.RunID(), "instruments", len(insts), "resume", opts.Resume)

	sum := app.Service.ScrapeAll(ctx, insts)
	if ctx.Err() != nil && sum.ExitCode() == apperror.ExitOK {
		return subcommands.ExitFailure
	}
	return subcommands.ExitStatus(sum.ExitCode())
}

func (c *scrapeCmd) options() (price.Options, error) {
	opts := price.Options{
		Resume:       c.resume,
		Debug:        c.debug,
		StartDate:    c.cfg.StartDate,
		MaxFailures:  c.cfg.MaxFailures,
		SuccessDelay: c.cfg.SuccessDelay,
		RetryDelay:   c.cfg.RetryDelay,
	}
	if c.start != "" {
		d, err := config.ParseDate(c.start)
		if err != nil {
			return opts, err
		}
		opts.StartDate = d
	}
	return opts, nil
}

// instrumentSets loads the sets file. It may be absent unless -l is used.
func (c *scrapeCmd) instrumentSets() (*config.InstrumentSets, error) {
	sets, err := config.LoadInstrumentSets(c.cfg.InstrumentsPath)
	if errors.Is(err, fs.ErrNotExist) && c.classes == "" {
		return &config.InstrumentSets{}, nil
	}
	if err != nil {
		return nil, apperror.Wrap(apperror.Config, "instrument sets", err)
	}
	return sets, nil
}
