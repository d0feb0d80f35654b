package scraper

import (
	"time"

	"github.com/ahmethakanbesel/eodscraper/internal/quote"
)

// Cutoff decides from the local hour whether today's session may be requested.
type Cutoff struct {
	Hour int
	// Inverted keeps today only up to and including Hour instead of from Hour on.
	Inverted bool
}

func (c Cutoff) IncludesToday(hour int) bool {
	if c.Inverted {
		return hour <= c.Hour
	}
	return hour >= c.Hour
}

// Planner splits the span after a history's last date into request windows.
type Planner struct {
	chunkDays int
	loc       *time.Location
	now       func() time.Time
	cutoffs   map[quote.Class]Cutoff
	fallback  *Cutoff
}

type PlannerOption func(*Planner)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) PlannerOption {
	return func(p *Planner) { p.now = now }
}

func WithLocation(loc *time.Location) PlannerOption {
	return func(p *Planner) { p.loc = loc }
}

// WithCutoff sets the same-day cutoff for one asset class.
func WithCutoff(class quote.Class, c Cutoff) PlannerOption {
	return func(p *Planner) { p.cutoffs[class] = c }
}

// WithDefaultCutoff applies c to every class without its own cutoff. Without
// it such classes always include today.
func WithDefaultCutoff(c Cutoff) PlannerOption {
	return func(p *Planner) { p.fallback = &c }
}

func NewPlanner(chunkDays int, opts ...PlannerOption) *Planner {
	p := &Planner{
		chunkDays: chunkDays,
		loc:       time.UTC,
		now:       time.Now,
		cutoffs:   make(map[quote.Class]Cutoff),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Today is the current calendar date in the planner's location.
func (p *Planner) Today() time.Time {
	return quote.Day(p.now().In(p.loc))
}

// EffectiveEnd drops today from end while the class's session has not closed.
func (p *Planner) EffectiveEnd(class quote.Class, end time.Time) time.Time {
	end = quote.Day(end)
	if !end.Equal(p.Today()) {
		return end
	}
	c, ok := p.cutoffs[class]
	if !ok && p.fallback != nil {
		c, ok = *p.fallback, true
	}
	if !ok || c.IncludesToday(p.now().In(p.loc).Hour()) {
		return end
	}
	return end.AddDate(0, 0, -1)
}

// Next returns the window following last, or false when last has reached end.
// last is the final day already stored, so the window starts at last+1. A
// caller advances by passing the returned window's Stop back as last; Stop+1
// is then the next start and no day between windows is skipped.
// A window never spans more than chunkDays past its start; the one reaching
// end is marked Final.
func (p *Planner) Next(last, end time.Time) (quote.Window, bool) {
	last, end = quote.Day(last), quote.Day(end)
	if !last.Before(end) {
		return quote.Window{}, false
	}
	start := last.AddDate(0, 0, 1)
	if quote.DaysBetween(start, end) > p.chunkDays {
		return quote.Window{Start: start, Stop: start.AddDate(0, 0, p.chunkDays)}, true
	}
	return quote.Window{Start: start, Stop: end, Final: true}, true
}

// Plan lists every window between last and end.
func (p *Planner) Plan(last, end time.Time) []quote.Window {
	var windows []quote.Window
	for {
		w, ok := p.Next(last, end)
		if !ok {
			return windows
		}
		windows = append(windows, w)
		if w.Final {
			return windows
		}
		last = w.Stop
	}
}
