package price

import (
	"github.com/ahmethakanbesel/eodscraper/internal/apperror"
	"github.com/ahmethakanbesel/eodscraper/internal/quote"
)

type Status string

const (
	StatusDone     Status = "done"
	StatusCurrent  Status = "current"
	StatusExcluded Status = "excluded"
	StatusUnmapped Status = "unmapped"
	StatusFailed   Status = "failed"
)

// Outcome is the result of scraping one instrument.
type Outcome struct {
	Instrument quote.Instrument
	Status     Status
	Windows    int
	Rows       int
	Code       apperror.Code
	Err        error
}

// Summary collects the outcomes of one run.
type Summary struct {
	RunID    string
	Outcomes []Outcome
	Worst    apperror.Code
}

func (s *Summary) add(o Outcome) {
	s.Outcomes = append(s.Outcomes, o)
	s.Worst = apperror.Worst(s.Worst, o.Code)
}

func (s *Summary) Count(status Status) int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

func (s *Summary) Rows() int {
	n := 0
	for _, o := range s.Outcomes {
		n += o.Rows
	}
	return n
}

// ExitCode reports the worst failure class seen in the run.
func (s *Summary) ExitCode() int {
	return apperror.ExitCode(s.Worst)
}
