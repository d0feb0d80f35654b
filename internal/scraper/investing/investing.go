// Package investing scrapes daily history from the investing.com historical
// data endpoint.
//
// The endpoint is an AJAX form POST keyed by the provider's numeric instrument
// id. It answers with an HTML fragment whose first table holds the quotes,
// newest or oldest first depending on sort_ord, plus a summary table that is
// ignored.
package investing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/ahmethakanbesel/eodscraper/internal/quote"
	"github.com/ahmethakanbesel/eodscraper/internal/scraper"
)

const (
	source          = "investingcom"
	defaultEndpoint = "https://www.investing.com/instruments/HistoricalDataAjax"
	defaultReferer  = "https://www.investing.com/"
	requestDate     = "01/02/2006"
	smlID           = "300004"
)

// IDs resolves an instrument name to the provider's numeric id.
type IDs interface {
	Lookup(name string) (string, error)
}

type Scraper struct {
	client     HTTPClient
	ids        IDs
	endpoint   string
	referer    string
	classifier quote.Classifier
}

func New(ids IDs, opts ...Option) *Scraper {
	s := &Scraper{
		client:     http.DefaultClient,
		ids:        ids,
		endpoint:   defaultEndpoint,
		referer:    defaultReferer,
		classifier: quote.Classifier{ForexPrefix: "USD", IndexPrefix: "FTFBM"},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

type Option func(*Scraper)

func WithClient(c HTTPClient) Option {
	return func(s *Scraper) { s.client = c }
}

func WithEndpoint(url string) Option {
	return func(s *Scraper) { s.endpoint = url }
}

func WithReferer(url string) Option {
	return func(s *Scraper) { s.referer = url }
}

// WithClassifier sets the name prefixes that select forex and index volume rules.
func WithClassifier(c quote.Classifier) Option {
	return func(s *Scraper) { s.classifier = c }
}

func (s *Scraper) Source() string { return source }

// Fetch requests one window of daily quotes and returns the raw HTML payload.
// Unmapped instruments fail with the id map's error; everything else that
// prevents a 200 response is a *scraper.FetchError.
func (s *Scraper) Fetch(ctx context.Context, inst quote.Instrument, w quote.Window) (string, error) {
	id, err := s.ids.Lookup(inst.Name)
	if err != nil {
		return "", err
	}

	fetchErr := func(status int, err error) error {
		return &scraper.FetchError{Source: source, Instrument: inst.Name, Window: w, StatusCode: status, Err: err}
	}

	form := url.Values{}
	form.Set("curr_id", id)
	form.Set("smlID", smlID)
	form.Set("st_date", w.Start.Format(requestDate))
	form.Set("end_date", w.Stop.Format(requestDate))
	form.Set("interval_sec", "Daily")
	form.Set("sort_col", "date")
	form.Set("sort_ord", "ASC")
	form.Set("action", "historical_data")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fetchErr(0, err)
	}
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "text/html")
	req.Header.Set("Referer", s.referer)

	res, err := s.client.Do(req) //nolint:gosec // URL built from internal config
	if err != nil {
		return "", fetchErr(0, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, res.Body)
		return "", fetchErr(res.StatusCode, nil)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fetchErr(0, fmt.Errorf("read body: %w", err))
	}

	slog.Debug("retrieved investing data", "instrument", inst.Name, "id", id,
		"startDate", w.Start.Format(quote.DateFormat), "endDate", w.Stop.Format(quote.DateFormat), "bytes", len(body))
	return string(body), nil
}
