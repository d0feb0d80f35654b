package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ahmethakanbesel/eodscraper/internal/apperror"
	"github.com/ahmethakanbesel/eodscraper/internal/job"
	"github.com/ahmethakanbesel/eodscraper/internal/repository/history"
	"github.com/ahmethakanbesel/eodscraper/internal/server"
)

type fakeJournal struct {
	mu      sync.Mutex
	jobs    []job.Job
	lastReq job.ListJobsRequest
}

func (f *fakeJournal) last() job.ListJobsRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastReq
}

func (f *fakeJournal) Get(_ context.Context, req job.GetJobRequest) (*job.Job, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	for i := range f.jobs {
		if f.jobs[i].ID == req.ID {
			return &f.jobs[i], nil
		}
	}
	return nil, apperror.New(apperror.NotFound, "job not found")
}

func (f *fakeJournal) List(_ context.Context, req job.ListJobsRequest) ([]job.Job, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.lastReq = req
	f.mu.Unlock()
	return f.jobs, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *fakeJournal) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "MAYBANK.1155.csv"), []byte(
		"MAYBANK,2024-01-02,9.38,9.45,9.35,9.4,1200\n"+
			"MAYBANK,2024-01-03,9.4,9.44,9.39,9.42,100\n"+
			"MAYBANK,2024-01-04,9.42,9.5,9.4,9.48,3400000\n"), 0o644))

	journal := &fakeJournal{jobs: []job.Job{
		{ID: 1, RunID: "r1", Source: "investingcom", Instrument: "MAYBANK.1155", Status: job.StatusCompleted, RecordsCount: 3},
	}}
	srv := httptest.NewServer(server.NewHandler(history.NewRepository(dir), journal))
	t.Cleanup(srv.Close)
	return srv, journal
}

func getJSON(t *testing.T, url string, wantStatus int, out any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, wantStatus, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	var body server.APIResponse[map[string]string]
	getJSON(t, srv.URL+"/health", http.StatusOK, &body)
	require.Equal(t, "ok", body.Data["status"])
}

func TestListHistories(t *testing.T) {
	srv, _ := newTestServer(t)
	var body server.APIResponse[[]map[string]string]
	getJSON(t, srv.URL+"/api/v1/histories", http.StatusOK, &body)
	require.Len(t, body.Data, 1)
	require.Equal(t, "MAYBANK.1155", body.Data[0]["instrument"])
	require.Equal(t, "2024-01-04", body.Data[0]["lastDate"])
}

func TestGetHistory(t *testing.T) {
	srv, _ := newTestServer(t)

	var body server.APIResponse[[]map[string]any]
	getJSON(t, srv.URL+"/api/v1/histories/MAYBANK.1155?from=2024-01-03", http.StatusOK, &body)
	require.Len(t, body.Data, 2)
	require.Equal(t, "2024-01-03", body.Data[0]["date"])
	require.Equal(t, "9.42", body.Data[0]["close"])
	require.Equal(t, "100", body.Data[0]["volume"])

	getJSON(t, srv.URL+"/api/v1/histories/maybank.1155?to=2024-01-02", http.StatusOK, &body)
	require.Len(t, body.Data, 1)

	getJSON(t, srv.URL+"/api/v1/histories/PCHEM.5183", http.StatusNotFound, nil)
	getJSON(t, srv.URL+"/api/v1/histories/MAYBANK.1155?from=yesterday", http.StatusBadRequest, nil)
}

func TestGetHistoryCSV(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/v1/histories/MAYBANK.1155?format=csv")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	require.Len(t, lines, 4)
	require.Equal(t, "Commodity,Date,Open,High,Low,Close,Volume", lines[0])
	require.Equal(t, "MAYBANK,2024-01-04,9.42,9.5,9.4,9.48,3400000", lines[3])
}

func TestRuns(t *testing.T) {
	srv, journal := newTestServer(t)

	var list server.APIResponse[[]job.Job]
	getJSON(t, srv.URL+"/api/v1/runs?instrument=maybank&limit=10", http.StatusOK, &list)
	require.Len(t, list.Data, 1)
	require.Equal(t, "maybank", journal.last().Instrument)
	require.Equal(t, 10, journal.last().Limit)

	getJSON(t, srv.URL+"/api/v1/runs?limit=abc", http.StatusBadRequest, nil)
	getJSON(t, srv.URL+"/api/v1/runs?limit=5000", http.StatusBadRequest, nil)

	var one server.APIResponse[job.Job]
	getJSON(t, srv.URL+"/api/v1/runs/1", http.StatusOK, &one)
	require.Equal(t, "MAYBANK.1155", one.Data.Instrument)

	getJSON(t, srv.URL+"/api/v1/runs/99", http.StatusNotFound, nil)
	getJSON(t, srv.URL+"/api/v1/runs/0", http.StatusBadRequest, nil)
	getJSON(t, srv.URL+"/api/v1/runs/x", http.StatusBadRequest, nil)
}
