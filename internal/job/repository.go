package job

import "context"

type Repository interface {
	Create(ctx context.Context, j *Job) error
	Update(ctx context.Context, j *Job) error
	Get(ctx context.Context, id int64) (*Job, error)
	List(ctx context.Context, f Filter) ([]Job, error)
	FailRunning(ctx context.Context, reason string) (int64, error)
}

type Filter struct {
	RunID      string
	Instrument string
	Limit      int
}
