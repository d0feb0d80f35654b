package price

import (
	"context"
	"time"

	"github.com/ahmethakanbesel/eodscraper/internal/job"
	"github.com/ahmethakanbesel/eodscraper/internal/quote"
	"github.com/ahmethakanbesel/eodscraper/internal/scraper"
)

// History is the per-instrument CSV store.
type History interface {
	Path(inst quote.Instrument) string
	LastDate(path string) (time.Time, bool, error)
	WriteChunk(rows []quote.Row, tmpPath string) error
	Merge(tmpPath, path string) (int, error)
	Reset(path string) error
	Commit(staging, path string) error
	Cleanup(path string) (bool, error)
	WriteDiagnostics(path string, perr *scraper.ParseError) error
}

type Journal interface {
	Start(ctx context.Context, runID, source string, inst quote.Instrument, start, end time.Time) (*job.Job, error)
	Finish(ctx context.Context, j *job.Job, status job.Status, records int64, err error) error
}

type IDs interface {
	Lookup(name string) (string, error)
}
