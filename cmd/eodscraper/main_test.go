package main

import (
	"context"
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/subcommands"
	"github.com/stretchr/testify/require"

	"github.com/ahmethakanbesel/eodscraper/internal/apperror"
	"github.com/ahmethakanbesel/eodscraper/internal/config"
	"github.com/ahmethakanbesel/eodscraper/internal/quote"
	"github.com/ahmethakanbesel/eodscraper/internal/scraper"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Load()
	cfg.DataDir = filepath.Join(dir, "data")
	cfg.IDMapPath = filepath.Join(dir, "investingcom.ids")
	cfg.InstrumentsPath = filepath.Join(dir, "instruments.yaml")
	cfg.JournalPath = filepath.Join(dir, "journal.db")
	cfg.Timezone = "UTC"
	return cfg
}

func run(t *testing.T, cmd subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cmd.SetFlags(fs)
	require.NoError(t, fs.Parse(args))
	return cmd.Execute(context.Background(), fs)
}

func TestScrapeOptions(t *testing.T) {
	cfg := testConfig(t)
	c := &scrapeCmd{cfg: cfg, resume: true, debug: true, start: "2010-02-01"}

	opts, err := c.options()
	require.NoError(t, err)
	require.True(t, opts.Resume)
	require.True(t, opts.Debug)
	require.Equal(t, time.Date(2010, 2, 1, 0, 0, 0, 0, time.UTC), opts.StartDate)
	require.Equal(t, cfg.MaxFailures, opts.MaxFailures)

	c.start = "01/02/2010"
	_, err = c.options()
	require.ErrorContains(t, err, "want YYYY-MM-DD")
}

func TestScrapeMissingIDMap(t *testing.T) {
	cfg := testConfig(t)
	status := run(t, &scrapeCmd{cfg: cfg}, "MAYBANK.1155")
	require.Equal(t, subcommands.ExitStatus(apperror.ExitMissingIDMap), status)
}

func TestScrapeBadIDMap(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.IDMapPath, []byte("MAYBANK 41688\n"), 0o644))

	status := run(t, &scrapeCmd{cfg: cfg}, "MAYBANK.1155")
	require.Equal(t, subcommands.ExitStatus(apperror.ExitBadIDMap), status)
}

func TestScrapeUsageErrors(t *testing.T) {
	cfg := testConfig(t)

	require.Equal(t, subcommands.ExitUsageError, run(t, &scrapeCmd{cfg: cfg}))
	require.Equal(t, subcommands.ExitUsageError, run(t, &scrapeCmd{cfg: cfg}, "-s", "yesterday", "MAYBANK.1155"))

	require.NoError(t, os.WriteFile(cfg.InstrumentsPath, []byte("classes:\n  reits: [AXREIT.5106]\n"), 0o644))
	require.Equal(t, subcommands.ExitUsageError, run(t, &scrapeCmd{cfg: cfg}, "-l", "banks"))
}

func TestScrapeClassNeedsSetsFile(t *testing.T) {
	cfg := testConfig(t)
	status := run(t, &scrapeCmd{cfg: cfg}, "-l", "reits")
	require.Equal(t, subcommands.ExitStatus(apperror.ExitUsage), status)
}

func TestScrapeExcludedOnly(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.IDMapPath, []byte("MAYBANK=41688\n"), 0o644))
	require.NoError(t, os.WriteFile(cfg.InstrumentsPath, []byte("exclude: [MAYBANK]\n"), 0o644))

	status := run(t, &scrapeCmd{cfg: cfg}, "MAYBANK.1155")
	require.Equal(t, subcommands.ExitSuccess, status)

	require.Equal(t, subcommands.ExitSuccess, run(t, &runsCmd{cfg: cfg}, "-n", "5"))
}

func TestIDsCommand(t *testing.T) {
	cfg := testConfig(t)
	require.Equal(t, subcommands.ExitStatus(apperror.ExitMissingIDMap), run(t, &idsCmd{cfg: cfg}))

	require.NoError(t, os.WriteFile(cfg.IDMapPath, []byte("# klse\nMAYBANK=41688\n"), 0o644))
	require.Equal(t, subcommands.ExitSuccess, run(t, &idsCmd{cfg: cfg}, "maybank"))
	require.Equal(t, subcommands.ExitStatus(apperror.ExitUnmapped), run(t, &idsCmd{cfg: cfg}, "PCHEM"))
}

func TestRunsRejectsBadLimit(t *testing.T) {
	cfg := testConfig(t)
	require.Equal(t, subcommands.ExitUsageError, run(t, &runsCmd{cfg: cfg}, "-n", "5000"))
}

func TestExportCommand(t *testing.T) {
	cfg := testConfig(t)
	cfg.ExportDir = filepath.Join(t.TempDir(), "out")
	hist := filepath.Join(cfg.DataDir, string(defaultSource))
	require.NoError(t, os.MkdirAll(hist, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(hist, "MAYBANK.1155.csv"),
		[]byte("MAYBANK,2024-01-02,9.38,9.45,9.35,9.4,1200\n"), 0o644))

	require.Equal(t, subcommands.ExitSuccess, run(t, &exportCmd{cfg: cfg}))
	_, err := os.Stat(filepath.Join(cfg.ExportDir, "MAYBANK.1155.parquet"))
	require.NoError(t, err)
}

func TestProvideRegistry(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.IDMapPath, []byte("MAYBANK=41688\n"), 0o644))

	ids, err := provideIDMap(cfg)
	require.NoError(t, err)
	reg := provideRegistry(cfg, ids, provideHTTPClient(cfg), provideClassifier(cfg))
	require.Equal(t, []string{"investingcom"}, reg.Sources())

	_, err = provideScraper(reg, "yahoo")
	require.Error(t, err)
}

func TestScrapeWithoutJournal(t *testing.T) {
	cfg := testConfig(t)
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	cfg.JournalPath = filepath.Join(blocker, "journal.db")
	require.NoError(t, os.WriteFile(cfg.IDMapPath, []byte("MAYBANK=41688\n"), 0o644))
	require.NoError(t, os.WriteFile(cfg.InstrumentsPath, []byte("exclude: [MAYBANK]\n"), 0o644))

	require.Equal(t, subcommands.ExitSuccess, run(t, &scrapeCmd{cfg: cfg}, "MAYBANK.1155"))

	jobs, cleanup, err := provideOptionalJournal(cfg)
	require.NoError(t, err)
	cleanup()
	require.Nil(t, jobs)
	require.Nil(t, provideRunJournal(jobs))
}

func TestPlannerOptionsCutOffIndices(t *testing.T) {
	cfg := testConfig(t)
	cfg.EquityCutoffHour = 18
	cfg.ForexCutoffHour = 22
	cfg.ForexCutoffInverted = true

	morning := func() time.Time { return time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC) }
	opts := append(plannerOptions(cfg, time.UTC), scraper.WithClock(morning))
	p := scraper.NewPlanner(cfg.ChunkDays, opts...)

	today := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)
	require.Equal(t, yesterday, p.EffectiveEnd(quote.Equity, today))
	require.Equal(t, yesterday, p.EffectiveEnd(quote.Index, today))
	require.Equal(t, today, p.EffectiveEnd(quote.Forex, today))
}
