package quote

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const DateFormat = "2006-01-02"

// Instrument is a short name plus the optional exchange code that becomes
// part of its history file name, written NAME.CODE.
type Instrument struct {
	Name string
	Code string
}

func ParseInstrument(s string) Instrument {
	s = strings.ToUpper(strings.TrimSpace(s))
	name, code, _ := strings.Cut(s, ".")
	return Instrument{Name: name, Code: code}
}

func (i Instrument) String() string {
	if i.Code == "" {
		return i.Name
	}
	return i.Name + "." + i.Code
}

type Class int

const (
	Equity Class = iota
	Forex
	Index
)

func (c Class) String() string {
	switch c {
	case Forex:
		return "forex"
	case Index:
		return "index"
	default:
		return "equity"
	}
}

// Classifier assigns an asset class from the instrument name prefix.
type Classifier struct {
	ForexPrefix string
	IndexPrefix string
}

func (c Classifier) Classify(name string) Class {
	switch {
	case c.ForexPrefix != "" && strings.HasPrefix(name, c.ForexPrefix):
		return Forex
	case c.IndexPrefix != "" && strings.HasPrefix(name, c.IndexPrefix):
		return Index
	default:
		return Equity
	}
}

// Window is an inclusive span of calendar dates requested in one fetch.
type Window struct {
	Start time.Time
	Stop  time.Time
	// Final is set on the window that reaches the target end date.
	Final bool
}

// Resume is the first day not covered by w. It is the start of the next
// window, not the cursor handed back to Planner.Next, which takes w.Stop.
func (w Window) Resume() time.Time {
	return w.Stop.AddDate(0, 0, 1)
}

func (w Window) Days() int {
	return DaysBetween(w.Start, w.Stop) + 1
}

func (w Window) String() string {
	return w.Start.Format(DateFormat) + ".." + w.Stop.Format(DateFormat)
}

// Day truncates t to its calendar date in t's location, expressed in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func DaysBetween(from, to time.Time) int {
	return int(Day(to).Sub(Day(from)).Hours() / 24)
}

// Row is one normalized end-of-day quote.
type Row struct {
	Instrument string
	Date       time.Time
	Open       decimal.Decimal
	High       decimal.Decimal
	Low        decimal.Decimal
	Close      decimal.Decimal
	Volume     Volume
}

// Volume holds a derived share count, or the source text when it is kept
// verbatim or could not be expanded.
type Volume struct {
	Shares decimal.Decimal
	Raw    string
}

func (v Volume) String() string {
	if v.Raw != "" {
		return v.Raw
	}
	return v.Shares.String()
}
