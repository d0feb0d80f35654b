package main

import (
	"log/slog"
	"path/filepath"
	"time"

	"github.com/ahmethakanbesel/eodscraper/internal/config"
	"github.com/ahmethakanbesel/eodscraper/internal/export"
	"github.com/ahmethakanbesel/eodscraper/internal/httpx"
	"github.com/ahmethakanbesel/eodscraper/internal/idmap"
	"github.com/ahmethakanbesel/eodscraper/internal/job"
	"github.com/ahmethakanbesel/eodscraper/internal/platform/sqlite"
	"github.com/ahmethakanbesel/eodscraper/internal/price"
	"github.com/ahmethakanbesel/eodscraper/internal/quote"
	"github.com/ahmethakanbesel/eodscraper/internal/repository/history"
	jobrepo "github.com/ahmethakanbesel/eodscraper/internal/repository/job"
	"github.com/ahmethakanbesel/eodscraper/internal/scraper"
	"github.com/ahmethakanbesel/eodscraper/internal/scraper/investing"
)

// sourceName selects the registered scraper a run uses.
type sourceName string

const defaultSource sourceName = "investingcom"

type scrapeApp struct {
	Service *price.Service
	Jobs    *job.Service
}

func provideIDMap(cfg config.Config) (*idmap.Map, error) {
	return idmap.Load(cfg.IDMapPath)
}

func provideClassifier(cfg config.Config) quote.Classifier {
	return quote.Classifier{ForexPrefix: cfg.ForexPrefix, IndexPrefix: cfg.IndexPrefix}
}

func providePlanner(cfg config.Config) (*scraper.Planner, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return scraper.NewPlanner(cfg.ChunkDays, plannerOptions(cfg, loc)...), nil
}

// plannerOptions gives forex its own cutoff and every other class, indices
// included, the equity one.
func plannerOptions(cfg config.Config, loc *time.Location) []scraper.PlannerOption {
	return []scraper.PlannerOption{
		scraper.WithLocation(loc),
		scraper.WithDefaultCutoff(scraper.Cutoff{Hour: cfg.EquityCutoffHour}),
		scraper.WithCutoff(quote.Forex, scraper.Cutoff{Hour: cfg.ForexCutoffHour, Inverted: cfg.ForexCutoffInverted}),
	}
}

func provideHTTPClient(cfg config.Config) *httpx.Client {
	return httpx.New(cfg.HTTPTimeout, cfg.UserAgent)
}

func provideRegistry(cfg config.Config, ids *idmap.Map, client *httpx.Client, classifier quote.Classifier) *scraper.Registry {
	reg := scraper.NewRegistry()
	reg.Register(investing.New(ids,
		investing.WithClient(client),
		investing.WithEndpoint(cfg.Endpoint),
		investing.WithClassifier(classifier),
	))
	return reg
}

func provideScraper(reg *scraper.Registry, src sourceName) (scraper.Scraper, error) {
	return reg.Get(string(src))
}

func provideHistory(cfg config.Config, src sourceName) *history.Repository {
	return history.NewRepository(filepath.Join(cfg.DataDir, string(src)))
}

func provideDB(cfg config.Config) (*sqlite.DB, func(), error) {
	db, err := sqlite.Open(cfg.JournalPath)
	if err != nil {
		return nil, nil, err
	}
	return db, func() { _ = db.Close() }, nil
}

// provideOptionalJournal opens the run journal for a scrape. When it cannot
// be opened the scrape runs unjournaled.
func provideOptionalJournal(cfg config.Config) (*job.Service, func(), error) {
	db, cleanup, err := provideDB(cfg)
	if err != nil {
		slog.Warn("run journal unavailable, continuing without it", "path", cfg.JournalPath, "error", err)
		return nil, func() {}, nil
	}
	return job.NewService(provideJobRepository(db)), cleanup, nil
}

// provideRunJournal keeps a missing journal a nil interface.
func provideRunJournal(jobs *job.Service) price.Journal {
	if jobs == nil {
		return nil
	}
	return jobs
}

func provideJobRepository(db *sqlite.DB) *jobrepo.Repository {
	return jobrepo.NewRepository(db.DB)
}

func provideExporter(cfg config.Config, hist *history.Repository) *export.Exporter {
	return export.New(hist, cfg.ExportDir, cfg.ExportWorkers)
}
