package quote

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Columns is the on-disk column order. History files carry no header.
var Columns = []string{"Commodity", "Date", "Open", "High", "Low", "Close", "Volume"}

func (r Row) Record() []string {
	return []string{
		r.Instrument,
		r.Date.Format(DateFormat),
		r.Open.String(),
		r.High.String(),
		r.Low.String(),
		r.Close.String(),
		r.Volume.String(),
	}
}

func ParseRecord(rec []string) (Row, error) {
	if len(rec) != len(Columns) {
		return Row{}, fmt.Errorf("record has %d fields, want %d", len(rec), len(Columns))
	}

	date, err := time.Parse(DateFormat, strings.TrimSpace(rec[1]))
	if err != nil {
		return Row{}, fmt.Errorf("parse date %q: %w", rec[1], err)
	}

	var prices [4]decimal.Decimal
	for i := range prices {
		d, err := decimal.NewFromString(strings.TrimSpace(rec[2+i]))
		if err != nil {
			return Row{}, fmt.Errorf("parse %s %q: %w", Columns[2+i], rec[2+i], err)
		}
		prices[i] = d
	}

	vol := Volume{Raw: rec[6]}
	if d, err := decimal.NewFromString(strings.TrimSpace(rec[6])); err == nil {
		vol = Volume{Shares: d}
	}

	return Row{
		Instrument: rec[0],
		Date:       date,
		Open:       prices[0],
		High:       prices[1],
		Low:        prices[2],
		Close:      prices[3],
		Volume:     vol,
	}, nil
}
