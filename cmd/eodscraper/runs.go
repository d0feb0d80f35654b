package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/subcommands"

	"github.com/ahmethakanbesel/eodscraper/internal/config"
	"github.com/ahmethakanbesel/eodscraper/internal/job"
	"github.com/ahmethakanbesel/eodscraper/internal/quote"
)

type runsCmd struct {
	cfg config.Config

	runID  string
	limit  int
	asJSON bool
}

func (*runsCmd) Name() string     { return "runs" }
func (*runsCmd) Synopsis() string { return "list recent journal entries" }
func (*runsCmd) Usage() string {
	return `runs [-run id] [-n limit] [-json] [NAME]:
  Show the most recent instrument scrapes, newest first.
`
}

func (c *runsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.runID, "run", "", "only entries of this run id")
	f.IntVar(&c.limit, "n", 0, "maximum entries (default 50)")
	f.BoolVar(&c.asJSON, "json", false, "print JSON instead of a table")
}

func (c *runsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	req := job.ListJobsRequest{RunID: c.runID, Limit: c.limit}
	if f.NArg() > 0 {
		req.Instrument = f.Arg(0)
	}
	if err := req.Validate(); err != nil {
		fmt.Fprintln(f.Output(), err)
		return subcommands.ExitUsageError
	}

	jobs, cleanup, err := initJournal(c.cfg)
	if err != nil {
		return exitWith("open journal", err)
	}
	defer cleanup()

	list, err := jobs.List(ctx, req)
	if err != nil {
		return exitWith("list runs", err)
	}

	if c.asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(list); err != nil {
			return exitWith("encode runs", err)
		}
		return subcommands.ExitSuccess
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tRUN\tINSTRUMENT\tFROM\tTO\tSTATUS\tROWS\tERROR")
	for _, j := range list {
		fmt.Fprintf(tw, "%d\t%.8s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			j.ID, j.RunID, j.Instrument, day(j.StartDate), day(j.EndDate), j.Status, j.RecordsCount, j.ErrorCode)
	}
	if err := tw.Flush(); err != nil {
		return exitWith("write runs", err)
	}
	return subcommands.ExitSuccess
}

func day(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(quote.DateFormat)
}
