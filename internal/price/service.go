package price

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/ahmethakanbesel/eodscraper/internal/apperror"
	"github.com/ahmethakanbesel/eodscraper/internal/job"
	"github.com/ahmethakanbesel/eodscraper/internal/quote"
	"github.com/ahmethakanbesel/eodscraper/internal/repository/history"
	"github.com/ahmethakanbesel/eodscraper/internal/scraper"
)

// Options controls one scrape run.
type Options struct {
	// Resume continues from each history's last date instead of starting over.
	Resume bool
	// Debug writes unparseable payloads next to the history.
	Debug        bool
	StartDate    time.Time
	Exclude      []string
	MaxFailures  int
	SuccessDelay time.Duration
	RetryDelay   time.Duration
}

type Service struct {
	scraper    scraper.Scraper
	ids        IDs
	history    History
	journal    Journal
	planner    *scraper.Planner
	classifier quote.Classifier
	opts       Options
	runID      string
	sleep      func(ctx context.Context, d time.Duration) error
	delay      time.Duration
}

func NewService(sc scraper.Scraper, ids IDs, hist History, journal Journal, planner *scraper.Planner, classifier quote.Classifier, opts Options) *Service {
	if opts.MaxFailures <= 0 {
		opts.MaxFailures = 5
	}
	return &Service{
		scraper:    sc,
		ids:        ids,
		history:    hist,
		journal:    journal,
		planner:    planner,
		classifier: classifier,
		opts:       opts,
		runID:      uuid.NewString(),
		sleep:      sleepContext,
	}
}

// SetSleep replaces the pacing wait.
func (s *Service) SetSleep(fn func(ctx context.Context, d time.Duration) error) { s.sleep = fn }

func (s *Service) RunID() string { return s.runID }

// ScrapeAll scrapes each instrument in order. Failures stay local to their
// instrument; only cancellation stops the run early.
func (s *Service) ScrapeAll(ctx context.Context, insts []quote.Instrument) *Summary {
	sum := &Summary{RunID: s.runID}
	for i, inst := range insts {
		if ctx.Err() != nil {
			slog.Warn("run cancelled", "remaining", len(insts)-i)
			break
		}
		slog.Info("scraping instrument", "instrument", inst.String(), "progress", fmt.Sprintf("%d/%d", i+1, len(insts)))
		sum.add(s.ScrapeInstrument(ctx, inst))
	}
	slog.Info("run finished", "runID", s.runID,
		"done", sum.Count(StatusDone), "current", sum.Count(StatusCurrent),
		"excluded", sum.Count(StatusExcluded), "unmapped", sum.Count(StatusUnmapped),
		"failed", sum.Count(StatusFailed), "rows", sum.Rows())
	return sum
}

// ScrapeInstrument brings one instrument's history up to date window by window.
func (s *Service) ScrapeInstrument(ctx context.Context, inst quote.Instrument) Outcome {
	out := Outcome{Instrument: inst}

	if slices.Contains(s.opts.Exclude, inst.Name) || slices.Contains(s.opts.Exclude, inst.String()) {
		slog.Info("excluded", "instrument", inst.String())
		out.Status = StatusExcluded
		s.record(ctx, inst, time.Time{}, time.Time{}, &out)
		return out
	}

	if _, err := s.ids.Lookup(inst.Name); err != nil {
		slog.Warn("instrument not found", "instrument", inst.String(), "error", err)
		out.Status, out.Code, out.Err = StatusUnmapped, apperror.Unmapped, err
		s.record(ctx, inst, time.Time{}, time.Time{}, &out)
		return out
	}

	path := s.history.Path(inst)
	last, err := s.resumePoint(path)
	if err != nil {
		return s.fail(ctx, inst, time.Time{}, time.Time{}, &out, err)
	}

	class := s.classifier.Classify(inst.Name)
	end := s.planner.EffectiveEnd(class, s.planner.Today())
	if _, ok := s.planner.Next(last, end); !ok {
		slog.Info("already current", "instrument", inst.String(), "lastDate", last.Format(quote.DateFormat))
		out.Status = StatusCurrent
		s.record(ctx, inst, last, end, &out)
		return out
	}

	from := last.AddDate(0, 0, 1)
	slog.Info("scraping", "instrument", inst.String(), "class", class.String(),
		"from", from.Format(quote.DateFormat), "to", end.Format(quote.DateFormat),
		"windows", len(s.planner.Plan(last, end)))

	j := s.startJob(ctx, inst, from, end)
	if s.opts.Resume {
		err = s.scrapeWindows(ctx, inst, path, path, last, end, &out)
	} else {
		err = s.rebuild(ctx, inst, path, last, end, &out)
	}
	if err != nil {
		out.Status, out.Err = StatusFailed, err
		out.Code = apperror.CodeOf(err)
		slog.Error("instrument abandoned", "instrument", inst.String(), "rows", out.Rows, "error", err)
	} else {
		out.Status = StatusDone
		slog.Info("instrument done", "instrument", inst.String(), "windows", out.Windows, "rows", out.Rows)
	}
	s.finishJob(ctx, j, &out)
	return out
}

func (s *Service) resumePoint(path string) (time.Time, error) {
	removed, err := s.history.Cleanup(path)
	if err != nil {
		return time.Time{}, err
	}
	if removed {
		slog.Debug("removed stale chunks", "path", path)
	}

	before := s.opts.StartDate.AddDate(0, 0, -1)
	if !s.opts.Resume {
		return before, nil
	}

	last, ok, err := s.history.LastDate(path)
	if err != nil {
		return time.Time{}, err
	}
	if !ok {
		return before, nil
	}
	return last, nil
}

// rebuild scrapes into a staging file and only replaces path once every
// window succeeded. An abandoned rebuild leaves path as it was.
func (s *Service) rebuild(ctx context.Context, inst quote.Instrument, path string, last, end time.Time, out *Outcome) error {
	staging := history.StagingPath(path)
	if err := s.scrapeWindows(ctx, inst, staging, path, last, end, out); err != nil {
		if derr := s.history.Reset(staging); derr != nil {
			slog.Warn("discard staged history", "instrument", inst.String(), "error", derr)
		}
		out.Rows = 0
		return err
	}
	if err := s.history.Commit(staging, path); err != nil {
		return apperror.Wrap(apperror.Internal, "commit history", err)
	}
	return nil
}

// scrapeWindows appends each fetched window to dst. Diagnostics go next to path.
func (s *Service) scrapeWindows(ctx context.Context, inst quote.Instrument, dst, path string, last, end time.Time, out *Outcome) error {
	failures := 0
	for {
		w, ok := s.planner.Next(last, end)
		if !ok {
			return nil
		}

		if err := s.pace(ctx); err != nil {
			return apperror.Wrap(apperror.Internal, "scrape "+inst.String(), err)
		}

		rows, err := s.fetchWindow(ctx, inst, w)
		if ctx.Err() != nil {
			return apperror.Wrap(apperror.Internal, "scrape "+inst.String(), ctx.Err())
		}
		if err != nil {
			failures++
			code := classify(err)
			slog.Warn("window failed", "instrument", inst.String(), "window", w.String(),
				"attempt", failures, "kind", string(code), "error", err)

			var perr *scraper.ParseError
			if s.opts.Debug && errors.As(err, &perr) {
				if derr := s.history.WriteDiagnostics(path, perr); derr != nil {
					slog.Warn("write diagnostics", "instrument", inst.String(), "error", derr)
				}
			}
			s.delay = s.opts.RetryDelay
			if failures >= s.opts.MaxFailures {
				return apperror.Wrap(code, fmt.Sprintf("%s: %d consecutive failures at %s", inst, failures, w), err)
			}
			continue
		}

		failures = 0
		s.delay = s.opts.SuccessDelay
		out.Windows++

		if len(rows) > 0 {
			tmp := history.TempPath(dst)
			if err := s.history.WriteChunk(rows, tmp); err != nil {
				return apperror.Wrap(apperror.Internal, "write chunk", err)
			}
			n, err := s.history.Merge(tmp, dst)
			if err != nil {
				return apperror.Wrap(apperror.Internal, "merge chunk", err)
			}
			out.Rows += n
			slog.Info("window saved", "instrument", inst.String(), "window", w.String(), "rows", n)
		} else {
			slog.Info("no data for window", "instrument", inst.String(), "window", w.String())
		}

		if w.Final {
			return nil
		}
		last = w.Stop
	}
}

// fetchWindow returns no rows and no error when the window has no quotes.
func (s *Service) fetchWindow(ctx context.Context, inst quote.Instrument, w quote.Window) ([]quote.Row, error) {
	payload, err := s.scraper.Fetch(ctx, inst, w)
	if err != nil {
		return nil, err
	}
	rows, err := s.scraper.Normalize(payload, inst, w)
	if errors.Is(err, scraper.ErrNoData) {
		return nil, nil
	}
	return rows, err
}

// pace waits out the delay owed since the previous request.
func (s *Service) pace(ctx context.Context) error {
	d := s.delay
	s.delay = 0
	if d <= 0 {
		return nil
	}
	return s.sleep(ctx, d)
}

func (s *Service) fail(ctx context.Context, inst quote.Instrument, from, to time.Time, out *Outcome, err error) Outcome {
	out.Status, out.Err = StatusFailed, err
	out.Code = apperror.CodeOf(err)
	slog.Error("scrape failed", "instrument", inst.String(), "error", err)
	s.record(ctx, inst, from, to, out)
	return *out
}

// record writes a journal entry for an outcome decided without fetching.
func (s *Service) record(ctx context.Context, inst quote.Instrument, from, to time.Time, out *Outcome) {
	s.finishJob(ctx, s.startJob(ctx, inst, from, to), out)
}

func (s *Service) startJob(ctx context.Context, inst quote.Instrument, from, to time.Time) *job.Job {
	if s.journal == nil {
		return nil
	}
	j, err := s.journal.Start(ctx, s.runID, s.scraper.Source(), inst, from, to)
	if err != nil {
		slog.Warn("journal start", "instrument", inst.String(), "error", err)
		return nil
	}
	return j
}

func (s *Service) finishJob(ctx context.Context, j *job.Job, out *Outcome) {
	if j == nil {
		return
	}
	status := job.StatusCompleted
	switch out.Status {
	case StatusCurrent:
		status = job.StatusCurrent
	case StatusExcluded:
		status = job.StatusSkipped
	}
	// The journal outlives a cancelled run context.
	ctx = context.WithoutCancel(ctx)
	if err := s.journal.Finish(ctx, j, status, int64(out.Rows), out.Err); err != nil {
		slog.Warn("journal finish", "instrument", out.Instrument.String(), "error", err)
	}
}

func classify(err error) apperror.Code {
	var perr *scraper.ParseError
	var ferr *scraper.FetchError
	switch {
	case errors.As(err, &perr):
		return apperror.Parse
	case errors.As(err, &ferr):
		return apperror.Transport
	default:
		return apperror.CodeOf(err)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
