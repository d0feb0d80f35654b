package job

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ahmethakanbesel/eodscraper/internal/apperror"
	domain "github.com/ahmethakanbesel/eodscraper/internal/job"
)

const dateFormat = "2006-01-02"

const selectColumns = `SELECT id, run_id, source, instrument, start_date, end_date,
		status, error, error_code, records_count, created_at, updated_at
		FROM jobs`

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, j *domain.Job) error {
	const query = `INSERT INTO jobs (run_id, source, instrument, start_date, end_date, status)
		VALUES (?, ?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query,
		j.RunID, j.Source, j.Instrument,
		formatDate(j.StartDate), formatDate(j.EndDate),
		string(j.Status),
	)
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}

	j.ID, _ = res.LastInsertId()
	j.CreatedAt = time.Now().UTC()
	j.UpdatedAt = j.CreatedAt
	return nil
}

func (r *Repository) Update(ctx context.Context, j *domain.Job) error {
	const query = `UPDATE jobs SET status = ?, error = ?, error_code = ?, records_count = ?,
		start_date = ?, end_date = ?,
		updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		WHERE id = ?`

	_, err := r.db.ExecContext(ctx, query,
		string(j.Status), nullString(j.Error), nullString(j.ErrorCode), j.RecordsCount,
		formatDate(j.StartDate), formatDate(j.EndDate),
		j.ID,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	j.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *Repository) Get(ctx context.Context, id int64) (*domain.Job, error) {
	j, err := scanJob(r.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.New(apperror.NotFound, "job not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return j, nil
}

func (r *Repository) List(ctx context.Context, f domain.Filter) ([]domain.Job, error) {
	query := selectColumns + ` WHERE 1=1`

	var args []any
	if f.RunID != "" {
		query += " AND run_id = ?"
		args = append(args, f.RunID)
	}
	if f.Instrument != "" {
		query += " AND instrument = ?"
		args = append(args, f.Instrument)
	}
	query += " ORDER BY id DESC LIMIT ?"
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var jobs []domain.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, *j)
	}

	return jobs, rows.Err()
}

func (r *Repository) FailRunning(ctx context.Context, reason string) (int64, error) {
	const query = `UPDATE jobs SET status = 'failed', error = ?,
		updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		WHERE status = 'running'`

	res, err := r.db.ExecContext(ctx, query, reason)
	if err != nil {
		return 0, fmt.Errorf("fail running jobs: %w", err)
	}

	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(s scanner) (*domain.Job, error) {
	j := &domain.Job{}
	var startStr, endStr, status, createdStr, updatedStr string
	var dbErr, dbCode sql.NullString

	if err := s.Scan(
		&j.ID, &j.RunID, &j.Source, &j.Instrument,
		&startStr, &endStr, &status, &dbErr, &dbCode,
		&j.RecordsCount, &createdStr, &updatedStr,
	); err != nil {
		return nil, err
	}

	j.Status = domain.Status(status)
	j.Error = dbErr.String
	j.ErrorCode = dbCode.String
	j.StartDate, _ = time.Parse(dateFormat, startStr)
	j.EndDate, _ = time.Parse(dateFormat, endStr)
	j.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
	j.UpdatedAt, _ = time.Parse(time.RFC3339, updatedStr)
	return j, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateFormat)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
