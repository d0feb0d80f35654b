package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"

	"github.com/google/subcommands"

	"github.com/ahmethakanbesel/eodscraper/internal/config"
)

type exportCmd struct {
	cfg config.Config

	out     string
	workers int
	source  string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "convert histories to Parquet" }
func (*exportCmd) Usage() string {
	return `export [-out dir] [-w workers] [NAME ...]:
  Write one .parquet file per instrument history. All histories without arguments.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.out, "out", "", "output directory (default EXPORT_DIR)")
	f.IntVar(&c.workers, "w", 0, "parallel conversions (default EXPORT_WORKERS)")
	f.StringVar(&c.source, "source", string(defaultSource), "quote source whose histories are exported")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	cfg := c.cfg
	if c.out != "" {
		cfg.ExportDir = c.out
	}
	if c.workers > 0 {
		cfg.ExportWorkers = c.workers
	}

	results, err := initExporter(cfg, sourceName(c.source)).Export(ctx, f.Args())
	if err != nil {
		return exitWith("export failed", err)
	}
	if len(results) == 0 {
		slog.Warn("no histories to export", "dir", cfg.DataDir)
		return subcommands.ExitSuccess
	}

	rows := 0
	for _, r := range results {
		rows += r.Rows
		fmt.Println(r.Target)
	}
	slog.Info("export finished", "files", len(results), "rows", rows, "dir", cfg.ExportDir)
	return subcommands.ExitSuccess
}
