package server

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ahmethakanbesel/eodscraper/internal/job"
	"github.com/ahmethakanbesel/eodscraper/internal/quote"
	"github.com/ahmethakanbesel/eodscraper/internal/repository/history"
)

// Histories is the read side of the history store.
type Histories interface {
	List() ([]string, error)
	Path(inst quote.Instrument) string
	LastDate(path string) (time.Time, bool, error)
}

type Journal interface {
	Get(ctx context.Context, req job.GetJobRequest) (*job.Job, error)
	List(ctx context.Context, req job.ListJobsRequest) ([]job.Job, error)
}

type historyInfo struct {
	Instrument string `json:"instrument"`
	LastDate   string `json:"lastDate,omitempty"`
}

type rowJSON struct {
	Date   string          `json:"date"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume string          `json:"volume"`
}

type handler struct {
	hist Histories
	jobs Journal
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) listHistories(w http.ResponseWriter, _ *http.Request) {
	paths, err := h.hist.List()
	if err != nil {
		writeAppError(w, err)
		return
	}

	out := make([]historyInfo, 0, len(paths))
	for _, p := range paths {
		info := historyInfo{Instrument: strings.TrimSuffix(filepath.Base(p), ".csv")}
		last, ok, err := h.hist.LastDate(p)
		if err != nil {
			writeAppError(w, err)
			return
		}
		if ok {
			info.LastDate = last.Format(quote.DateFormat)
		}
		out = append(out, info)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) getHistory(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("instrument")
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		writeError(w, http.StatusBadRequest, "invalid instrument")
		return
	}
	inst := quote.ParseInstrument(name)
	if inst.Name == "" {
		writeError(w, http.StatusBadRequest, "invalid instrument")
		return
	}

	from, err := parseDateParam(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from, expected YYYY-MM-DD")
		return
	}
	to, err := parseDateParam(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to, expected YYYY-MM-DD")
		return
	}

	rows, err := history.ReadRows(h.hist.Path(inst))
	if errors.Is(err, fs.ErrNotExist) {
		writeError(w, http.StatusNotFound, "no history for "+inst.String())
		return
	}
	if err != nil {
		writeAppError(w, err)
		return
	}
	rows = between(rows, from, to)

	if r.URL.Query().Get("format") == "csv" {
		writeCSV(w, inst.String(), rows)
		return
	}

	out := make([]rowJSON, len(rows))
	for i, row := range rows {
		out[i] = rowJSON{
			Date:   row.Date.Format(quote.DateFormat),
			Open:   row.Open,
			High:   row.High,
			Low:    row.Low,
			Close:  row.Close,
			Volume: row.Volume.String(),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) getRun(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid run entry id")
		return
	}

	j, err := h.jobs.Get(r.Context(), job.GetJobRequest{ID: id})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, j)
}

func (h *handler) listRuns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := job.ListJobsRequest{
		RunID:      q.Get("run"),
		Instrument: q.Get("instrument"),
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		req.Limit = n
	}

	jobs, err := h.jobs.List(r.Context(), req)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

func parseDateParam(r *http.Request, key string) (time.Time, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return time.Time{}, nil
	}
	return time.Parse(quote.DateFormat, v)
}

// between keeps rows within [from, to]; zero bounds are open.
func between(rows []quote.Row, from, to time.Time) []quote.Row {
	if from.IsZero() && to.IsZero() {
		return rows
	}
	out := rows[:0:0]
	for _, r := range rows {
		if !from.IsZero() && r.Date.Before(from) {
			continue
		}
		if !to.IsZero() && r.Date.After(to) {
			continue
		}
		out = append(out, r)
	}
	return out
}
