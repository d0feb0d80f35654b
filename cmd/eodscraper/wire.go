//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/ahmethakanbesel/eodscraper/internal/config"
	"github.com/ahmethakanbesel/eodscraper/internal/export"
	"github.com/ahmethakanbesel/eodscraper/internal/idmap"
	"github.com/ahmethakanbesel/eodscraper/internal/job"
	"github.com/ahmethakanbesel/eodscraper/internal/price"
	"github.com/ahmethakanbesel/eodscraper/internal/repository/history"
	jobrepo "github.com/ahmethakanbesel/eodscraper/internal/repository/job"
)

var journalSet = wire.NewSet(
	provideDB,
	provideJobRepository,
	wire.Bind(new(job.Repository), new(*jobrepo.Repository)),
	job.NewService,
)

// initScrapeApp builds the orchestrator graph for one run.
func initScrapeApp(cfg config.Config, opts price.Options, src sourceName) (*scrapeApp, func(), error) {
	wire.Build(
		provideOptionalJournal,
		provideRunJournal,
		provideIDMap,
		provideClassifier,
		providePlanner,
		provideHTTPClient,
		provideRegistry,
		provideScraper,
		provideHistory,
		wire.Bind(new(price.IDs), new(*idmap.Map)),
		wire.Bind(new(price.History), new(*history.Repository)),
		price.NewService,
		wire.Struct(new(scrapeApp), "*"),
	)
	return nil, nil, nil
}

func initJournal(cfg config.Config) (*job.Service, func(), error) {
	wire.Build(journalSet)
	return nil, nil, nil
}

func initExporter(cfg config.Config, src sourceName) *export.Exporter {
	wire.Build(provideHistory, provideExporter)
	return nil
}
