package job

import "time"

type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusCurrent   Status = "current"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Job is one journal entry: a single instrument's scrape within a run.
type Job struct {
	ID           int64     `json:"id"`
	RunID        string    `json:"runId"`
	Source       string    `json:"source"`
	Instrument   string    `json:"instrument"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	Status       Status    `json:"status"`
	Error        string    `json:"error,omitempty"`
	ErrorCode    string    `json:"errorCode,omitempty"`
	RecordsCount int64     `json:"recordsCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
