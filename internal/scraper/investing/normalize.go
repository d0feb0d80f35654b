package investing

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"github.com/ahmethakanbesel/eodscraper/internal/quote"
	"github.com/ahmethakanbesel/eodscraper/internal/scraper"
)

const (
	colDate   = "date"
	colPrice  = "price"
	colOpen   = "open"
	colHigh   = "high"
	colLow    = "low"
	colVolume = "vol."
)

var requiredColumns = []string{colDate, colPrice, colOpen, colHigh, colLow}

// Row dates appear in a few layouts depending on locale and page version.
var dateLayouts = []string{"Jan 02, 2006", "Jan 2, 2006", "01/02/2006", "2006-01-02", "02.01.2006"}

// minimumVolume stands in for "-" and "0" volumes before unit expansion.
const minimumVolume = "0.1K"

// Normalize turns a Fetch payload into rows sorted by date. A window with no
// quotes yields scraper.ErrNoData; a payload that cannot be read as a quote
// table yields a *scraper.ParseError carrying the payload.
func (s *Scraper) Normalize(payload string, inst quote.Instrument, w quote.Window) ([]quote.Row, error) {
	rows, err := parseTable(payload, inst.Name, s.classifier.Classify(inst.Name))
	if err != nil {
		if errors.Is(err, scraper.ErrNoData) {
			return nil, err
		}
		return nil, &scraper.ParseError{Instrument: inst.Name, Window: w, Payload: payload, Err: err}
	}
	return rows, nil
}

func parseTable(payload, name string, class quote.Class) ([]quote.Row, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("read html: %w", err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, errors.New("no table in payload")
	}

	cols := headerIndex(table)
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("missing column %q", c)
		}
	}

	var (
		rows    []quote.Row
		seen    = make(map[time.Time]bool)
		rowErr  error
		leading = true
	)
	table.Find("tr").EachWithBreak(func(i int, tr *goquery.Selection) bool {
		cells := tr.Find("td")
		if cells.Length() == 0 {
			return true
		}
		if leading {
			leading = false
			if _, ok := parseNumber(cellText(cells, cols[colPrice])); !ok {
				rowErr = scraper.ErrNoData
				return false
			}
		}

		row, err := parseRow(cells, cols, name, class)
		if err != nil {
			rowErr = fmt.Errorf("row %d: %w", i, err)
			return false
		}
		if seen[row.Date] {
			return true
		}
		seen[row.Date] = true
		rows = append(rows, row)
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}
	if len(rows) == 0 {
		return nil, scraper.ErrNoData
	}

	slices.SortStableFunc(rows, func(a, b quote.Row) int {
		return a.Date.Compare(b.Date)
	})
	return rows, nil
}

func headerIndex(table *goquery.Selection) map[string]int {
	cols := make(map[string]int)
	table.Find("tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		ths := tr.Find("th")
		if ths.Length() == 0 {
			return true
		}
		ths.Each(func(i int, th *goquery.Selection) {
			name := strings.ToLower(strings.TrimSpace(th.Text()))
			if _, dup := cols[name]; !dup {
				cols[name] = i
			}
		})
		return false
	})
	return cols
}

func parseRow(cells *goquery.Selection, cols map[string]int, name string, class quote.Class) (quote.Row, error) {
	date, err := parseDate(cells.Eq(cols[colDate]))
	if err != nil {
		return quote.Row{}, err
	}

	var prices [4]decimal.Decimal
	for i, c := range []string{colOpen, colHigh, colLow, colPrice} {
		text := cellText(cells, cols[c])
		d, ok := parseNumber(text)
		if !ok {
			return quote.Row{}, fmt.Errorf("%s: not a number: %q", c, text)
		}
		prices[i] = d
	}

	rawVolume := ""
	if idx, ok := cols[colVolume]; ok {
		rawVolume = cellText(cells, idx)
	}

	return quote.Row{
		Instrument: name,
		Date:       date,
		Open:       prices[0],
		High:       prices[1],
		Low:        prices[2],
		Close:      prices[3],
		Volume:     ParseVolume(rawVolume, class),
	}, nil
}

func parseDate(cell *goquery.Selection) (time.Time, error) {
	if v, ok := cell.Attr("data-real-value"); ok {
		if sec, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil && sec > 0 {
			return quote.Day(time.Unix(sec, 0).UTC()), nil
		}
	}
	text := strings.TrimSpace(cell.Text())
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", text)
}

func cellText(cells *goquery.Selection, idx int) string {
	if idx >= cells.Length() {
		return ""
	}
	return strings.TrimSpace(cells.Eq(idx).Text())
}

func parseNumber(s string) (decimal.Decimal, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParseVolume derives a row's volume from the source "Vol." text. Forex pairs
// have no volume and always get 0; index volumes are kept verbatim; other
// instruments expand K and M suffixes, treating "-" and "0" as 100 shares.
// Text that cannot be expanded is kept as is.
func ParseVolume(raw string, class quote.Class) quote.Volume {
	s := strings.TrimSpace(raw)
	switch class {
	case quote.Forex:
		return quote.Volume{Shares: decimal.Zero}
	case quote.Index:
		return quote.Volume{Raw: s}
	}
	if s == "" {
		return quote.Volume{}
	}
	if s == "-" || s == "0" {
		s = minimumVolume
	}
	if v, ok := quote.ExpandUnits(s); ok {
		return quote.Volume{Shares: v}
	}
	return quote.Volume{Raw: strings.TrimSpace(raw)}
}
