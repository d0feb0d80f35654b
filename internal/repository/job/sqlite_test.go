package job

import (
	"context"
	"testing"
	"time"

	domain "github.com/ahmethakanbesel/eodscraper/internal/job"
	"github.com/ahmethakanbesel/eodscraper/internal/platform/sqlite"
)

func setupTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newJob(runID, instrument string) *domain.Job {
	return &domain.Job{
		RunID:      runID,
		Source:     "investingcom",
		Instrument: instrument,
		StartDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		Status:     domain.StatusRunning,
	}
}

func TestCreate_And_Get(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db.DB)
	ctx := context.Background()

	j := newJob("run-1", "MAYBANK.1155")
	if err := repo.Create(ctx, j); err != nil {
		t.Fatalf("create: %v", err)
	}
	if j.ID == 0 {
		t.Fatal("expected non-zero ID")
	}

	got, err := repo.Get(ctx, j.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Instrument != "MAYBANK.1155" {
		t.Errorf("expected MAYBANK.1155, got %s", got.Instrument)
	}
	if got.Status != domain.StatusRunning {
		t.Errorf("expected running, got %s", got.Status)
	}
	if !got.StartDate.Equal(j.StartDate) {
		t.Errorf("start date = %v, want %v", got.StartDate, j.StartDate)
	}
	if got.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}
}

func TestGet_NotFound(t *testing.T) {
	repo := NewRepository(setupTestDB(t).DB)
	if _, err := repo.Get(context.Background(), 999); err == nil {
		t.Fatal("expected error for missing job")
	}
}

func TestUpdate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db.DB)
	ctx := context.Background()

	j := newJob("run-1", "PCHEM.5183")
	if err := repo.Create(ctx, j); err != nil {
		t.Fatal(err)
	}

	j.Status = domain.StatusFailed
	j.Error = "investingcom returned HTTP 503 for PCHEM"
	j.ErrorCode = "TRANSPORT"
	j.RecordsCount = 12
	if err := repo.Update(ctx, j); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.Get(ctx, j.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != domain.StatusFailed || got.ErrorCode != "TRANSPORT" || got.RecordsCount != 12 {
		t.Errorf("unexpected job after update: %+v", got)
	}
	if got.Error != j.Error {
		t.Errorf("error = %q, want %q", got.Error, j.Error)
	}
}

func TestList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db.DB)
	ctx := context.Background()

	for _, j := range []*domain.Job{
		newJob("run-1", "MAYBANK.1155"),
		newJob("run-1", "PCHEM.5183"),
		newJob("run-2", "MAYBANK.1155"),
	} {
		if err := repo.Create(ctx, j); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name    string
		filter  domain.Filter
		wantLen int
		firstID int64
	}{
		{"all newest first", domain.Filter{}, 3, 3},
		{"by run", domain.Filter{RunID: "run-1"}, 2, 2},
		{"by instrument", domain.Filter{Instrument: "MAYBANK.1155"}, 2, 3},
		{"limited", domain.Filter{Limit: 1}, 1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs, err := repo.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(jobs) != tt.wantLen {
				t.Fatalf("len = %d, want %d", len(jobs), tt.wantLen)
			}
			if jobs[0].ID != tt.firstID {
				t.Errorf("first id = %d, want %d", jobs[0].ID, tt.firstID)
			}
		})
	}
}

func TestFailRunning(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db.DB)
	ctx := context.Background()

	running := newJob("run-1", "MAYBANK.1155")
	done := newJob("run-1", "PCHEM.5183")
	for _, j := range []*domain.Job{running, done} {
		if err := repo.Create(ctx, j); err != nil {
			t.Fatal(err)
		}
	}
	done.Status = domain.StatusCompleted
	if err := repo.Update(ctx, done); err != nil {
		t.Fatal(err)
	}

	n, err := repo.FailRunning(ctx, "interrupted")
	if err != nil {
		t.Fatalf("fail running: %v", err)
	}
	if n != 1 {
		t.Errorf("affected = %d, want 1", n)
	}

	got, _ := repo.Get(ctx, running.ID)
	if got.Status != domain.StatusFailed || got.Error != "interrupted" {
		t.Errorf("unexpected job: %+v", got)
	}
	got, _ = repo.Get(ctx, done.ID)
	if got.Status != domain.StatusCompleted {
		t.Errorf("completed job changed to %s", got.Status)
	}
}
