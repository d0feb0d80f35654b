package price

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ahmethakanbesel/eodscraper/internal/apperror"
	"github.com/ahmethakanbesel/eodscraper/internal/quote"
)

type ScrapeRequest struct {
	Codes []string
}

func (r ScrapeRequest) Validate() *apperror.AppError {
	if len(r.Codes) == 0 {
		return apperror.New(apperror.Config, "no instruments selected")
	}
	for _, c := range r.Codes {
		inst := quote.ParseInstrument(c)
		if inst.Name == "" {
			return apperror.New(apperror.Config, fmt.Sprintf("invalid instrument %q", c))
		}
		if strings.ContainsAny(inst.String(), `/\ `) {
			return apperror.New(apperror.Config, fmt.Sprintf("invalid instrument %q", c))
		}
	}
	return nil
}

// Instruments returns the requested instruments sorted by name without duplicates.
func (r ScrapeRequest) Instruments() []quote.Instrument {
	seen := make(map[quote.Instrument]bool, len(r.Codes))
	out := make([]quote.Instrument, 0, len(r.Codes))
	for _, c := range r.Codes {
		inst := quote.ParseInstrument(c)
		if seen[inst] {
			continue
		}
		seen[inst] = true
		out = append(out, inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
