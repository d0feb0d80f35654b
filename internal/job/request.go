package job

import (
	"strings"

	"github.com/ahmethakanbesel/eodscraper/internal/apperror"
)

const (
	defaultListLimit = 50
	maxListLimit     = 1000
)

type GetJobRequest struct {
	ID int64
}

func (r GetJobRequest) Validate() *apperror.AppError {
	if r.ID <= 0 {
		return apperror.New(apperror.Config, "invalid job id")
	}
	return nil
}

type ListJobsRequest struct {
	RunID      string
	Instrument string
	Limit      int
}

func (r ListJobsRequest) Validate() *apperror.AppError {
	if r.Limit < 0 || r.Limit > maxListLimit {
		return apperror.New(apperror.Config, "limit must be between 0 and 1000")
	}
	return nil
}

func (r ListJobsRequest) filter() Filter {
	f := Filter{
		RunID:      strings.TrimSpace(r.RunID),
		Instrument: strings.ToUpper(strings.TrimSpace(r.Instrument)),
		Limit:      r.Limit,
	}
	if f.Limit == 0 {
		f.Limit = defaultListLimit
	}
	return f
}
