// Package export converts instrument histories to Parquet files.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
	"golang.org/x/sync/errgroup"

	"github.com/ahmethakanbesel/eodscraper/internal/quote"
	"github.com/ahmethakanbesel/eodscraper/internal/repository/history"
)

// Bar is one history row as stored in Parquet.
type Bar struct {
	Instrument string  `parquet:"instrument,dict"`
	Date       string  `parquet:"date"`
	Open       float64 `parquet:"open"`
	High       float64 `parquet:"high"`
	Low        float64 `parquet:"low"`
	Close      float64 `parquet:"close"`
	Volume     float64 `parquet:"volume"`
	// VolumeText holds index volumes and other text that is not a share count.
	VolumeText string `parquet:"volume_text,optional"`
}

func barOf(r quote.Row) Bar {
	b := Bar{
		Instrument: r.Instrument,
		Date:       r.Date.Format(quote.DateFormat),
		Open:       r.Open.InexactFloat64(),
		High:       r.High.InexactFloat64(),
		Low:        r.Low.InexactFloat64(),
		Close:      r.Close.InexactFloat64(),
	}
	if r.Volume.Raw != "" {
		b.VolumeText = r.Volume.Raw
	} else {
		b.Volume = r.Volume.Shares.InexactFloat64()
	}
	return b
}

type Histories interface {
	List() ([]string, error)
}

// Result describes one exported file.
type Result struct {
	Source string
	Target string
	Rows   int
}

type Exporter struct {
	histories Histories
	outDir    string
	workers   int
}

func New(h Histories, outDir string, workers int) *Exporter {
	if workers <= 0 {
		workers = 1
	}
	return &Exporter{histories: h, outDir: outDir, workers: workers}
}

// Export writes one Parquet file per history. When names is non-empty only
// the matching instruments are exported. The first failure cancels the rest.
func (e *Exporter) Export(ctx context.Context, names []string) ([]Result, error) {
	paths, err := e.histories.List()
	if err != nil {
		return nil, err
	}
	paths = filter(paths, names)
	if len(paths) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(e.outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	results := make([]Result, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := e.exportFile(p)
			if err != nil {
				slog.Error("export failed", "path", p, "error", err)
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (e *Exporter) exportFile(path string) (Result, error) {
	rows, err := history.ReadRows(path)
	if err != nil {
		return Result{}, err
	}
	bars := make([]Bar, len(rows))
	for i, r := range rows {
		bars[i] = barOf(r)
	}

	target := filepath.Join(e.outDir, strings.TrimSuffix(filepath.Base(path), ".csv")+".parquet")
	if err := parquet.WriteFile(target, bars); err != nil {
		return Result{}, fmt.Errorf("write %s: %w", target, err)
	}
	slog.Debug("exported history", "path", path, "target", target, "rows", len(bars))
	return Result{Source: path, Target: target, Rows: len(bars)}, nil
}

// filter keeps the paths whose instrument name or NAME.CODE is listed.
func filter(paths, names []string) []string {
	if len(names) == 0 {
		return paths
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[strings.ToUpper(strings.TrimSpace(n))] = true
	}
	var out []string
	for _, p := range paths {
		inst := quote.ParseInstrument(strings.TrimSuffix(filepath.Base(p), ".csv"))
		if want[inst.Name] || want[inst.String()] {
			out = append(out, p)
		}
	}
	return out
}
