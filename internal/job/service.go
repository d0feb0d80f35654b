package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/ahmethakanbesel/eodscraper/internal/apperror"
	"github.com/ahmethakanbesel/eodscraper/internal/quote"
)

const interruptedReason = "interrupted before completion"

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RecoverInterrupted fails entries left running by a process that died.
func (s *Service) RecoverInterrupted(ctx context.Context) error {
	n, err := s.repo.FailRunning(ctx, interruptedReason)
	if err != nil {
		return err
	}
	if n > 0 {
		slog.Info("marked interrupted runs as failed", "count", n)
	}
	return nil
}

// Start records that inst is being scraped from start to end.
func (s *Service) Start(ctx context.Context, runID, source string, inst quote.Instrument, start, end time.Time) (*Job, error) {
	j := &Job{
		RunID:      runID,
		Source:     source,
		Instrument: inst.String(),
		StartDate:  start,
		EndDate:    end,
		Status:     StatusRunning,
	}
	if err := s.repo.Create(ctx, j); err != nil {
		return nil, err
	}
	return j, nil
}

// Finish closes j with status, the rows appended and the error if any.
func (s *Service) Finish(ctx context.Context, j *Job, status Status, records int64, err error) error {
	j.Status = status
	j.RecordsCount = records
	if err != nil {
		j.Status = StatusFailed
		j.Error = err.Error()
		j.ErrorCode = string(apperror.CodeOf(err))
	}
	return s.repo.Update(ctx, j)
}

func (s *Service) Get(ctx context.Context, req GetJobRequest) (*Job, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, req.ID)
}

func (s *Service) List(ctx context.Context, req ListJobsRequest) ([]Job, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, req.filter())
}
