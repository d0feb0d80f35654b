package scraper

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/ahmethakanbesel/eodscraper/internal/quote"
)

// ErrNoData marks a window for which the provider has no quotes.
var ErrNoData = errors.New("no data for window")

// Scraper fetches one window of history for an instrument and turns the
// provider's payload into rows.
type Scraper interface {
	Source() string
	Fetch(ctx context.Context, inst quote.Instrument, w quote.Window) (string, error)
	Normalize(payload string, inst quote.Instrument, w quote.Window) ([]quote.Row, error)
}

// FetchError is a transport-level failure: the request never produced a
// usable 200 response.
type FetchError struct {
	Source     string
	Instrument string
	Window     quote.Window
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s returned HTTP %d for %s %s", e.Source, e.StatusCode, e.Instrument, e.Window)
	}
	return fmt.Sprintf("%s request for %s %s: %v", e.Source, e.Instrument, e.Window, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports a payload that could not be read as a quote table.
// Payload is kept for diagnostics.
type ParseError struct {
	Instrument string
	Window     quote.Window
	Payload    string
	Err        error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s %s: %v", e.Instrument, e.Window, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

type Registry struct {
	mu       sync.RWMutex
	scrapers map[string]Scraper
}

func NewRegistry() *Registry {
	return &Registry{
		scrapers: make(map[string]Scraper),
	}
}

func (r *Registry) Register(s Scraper) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scrapers[s.Source()] = s
}

func (r *Registry) Get(source string) (Scraper, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.scrapers[source]
	if !ok {
		return nil, fmt.Errorf("scraper not found for source: %s", source)
	}
	return s, nil
}

func (r *Registry) Sources() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sources := make([]string, 0, len(r.scrapers))
	for src := range r.scrapers {
		sources = append(sources, src)
	}
	sort.Strings(sources)
	return sources
}
