package history

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ahmethakanbesel/eodscraper/internal/quote"
	"github.com/ahmethakanbesel/eodscraper/internal/scraper"
)

const (
	tmpSuffix     = "tmp"
	stagingSuffix = ".new"
	diagSuffix    = ".err"
	tailBlock  = 4096
)

// Repository keeps one header-less CSV history per instrument under dir.
// Chunks are written to a temp file next to the history and appended to it
// on merge.
type Repository struct {
	dir string
}

func NewRepository(dir string) *Repository {
	return &Repository{dir: dir}
}

func (r *Repository) Dir() string { return r.dir }

func (r *Repository) Path(inst quote.Instrument) string {
	return filepath.Join(r.dir, inst.String()+".csv")
}

func TempPath(path string) string { return path + tmpSuffix }

// StagingPath is where a run that starts over builds a replacement for path.
func StagingPath(path string) string { return path + stagingSuffix }

// WriteChunk replaces tmpPath with rows. No rows is a no-op.
func (r *Repository) WriteChunk(rows []quote.Row, tmpPath string) error {
	if len(rows) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(tmpPath), 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}

	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create chunk: %w", err)
	}
	if err := writeRows(f, rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("write chunk: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close chunk: %w", err)
	}
	return nil
}

// Merge appends the rows of tmpPath that are newer than the history's last
// date, then removes tmpPath. It returns the number of rows appended.
func (r *Repository) Merge(tmpPath, path string) (int, error) {
	chunk, err := ReadRows(tmpPath)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read chunk: %w", err)
	}

	last, ok, err := r.LastDate(path)
	if err != nil {
		return 0, err
	}
	fresh := chunk[:0]
	for _, row := range chunk {
		if ok && !row.Date.After(last) {
			continue
		}
		fresh = append(fresh, row)
	}
	sort.SliceStable(fresh, func(i, j int) bool { return fresh[i].Date.Before(fresh[j].Date) })

	if len(fresh) > 0 {
		if err := appendRows(path, fresh); err != nil {
			return 0, err
		}
	}
	if err := os.Remove(tmpPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return len(fresh), fmt.Errorf("remove chunk: %w", err)
	}
	return len(fresh), nil
}

// LastDate reads the date of the last row in path. A missing or empty file
// reports false.
func (r *Repository) LastDate(path string) (time.Time, bool, error) {
	line, err := lastLine(path)
	if errors.Is(err, fs.ErrNotExist) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read last line: %w", err)
	}
	if line == "" {
		return time.Time{}, false, nil
	}

	rec, err := csv.NewReader(strings.NewReader(line)).Read()
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse last line of %s: %w", path, err)
	}
	if len(rec) < 2 {
		return time.Time{}, false, fmt.Errorf("parse last line of %s: %d fields", path, len(rec))
	}
	t, err := time.Parse(quote.DateFormat, strings.TrimSpace(rec[1]))
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse last date of %s: %w", path, err)
	}
	return t, true, nil
}

// Reset removes the history and any leftover chunk so a scrape starts over.
func (r *Repository) Reset(path string) error {
	for _, p := range []string{path, TempPath(path)} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("reset history: %w", err)
		}
	}
	return nil
}

// Commit replaces path with the history built at staging. A missing staging
// file means the rebuilt history is empty.
func (r *Repository) Commit(staging, path string) error {
	err := os.Rename(staging, path)
	if errors.Is(err, fs.ErrNotExist) {
		err = os.Remove(path)
		if errors.Is(err, fs.ErrNotExist) {
			err = nil
		}
	}
	if err != nil {
		return fmt.Errorf("commit history: %w", err)
	}
	return nil
}

// Cleanup removes chunks and staged histories left behind by an interrupted run.
func (r *Repository) Cleanup(path string) (bool, error) {
	staging := StagingPath(path)
	removed := false
	for _, p := range []string{TempPath(path), staging, TempPath(staging)} {
		err := os.Remove(p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return removed, fmt.Errorf("remove stale chunk: %w", err)
		}
		removed = true
	}
	return removed, nil
}

// WriteDiagnostics appends a payload that failed to parse to path's .err file.
func (r *Repository) WriteDiagnostics(path string, perr *scraper.ParseError) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	f, err := os.OpenFile(path+diagSuffix, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open diagnostics: %w", err)
	}
	_, werr := fmt.Fprintf(f, "## %s %s %s: %v\n%s\n", time.Now().UTC().Format(time.RFC3339), perr.Instrument, perr.Window, perr.Err, perr.Payload)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return fmt.Errorf("write diagnostics: %w", werr)
	}
	return nil
}

// List returns the history files under the repository directory.
func (r *Repository) List() ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(r.dir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("list histories: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

func ReadRows(path string) ([]quote.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = len(quote.Columns)
	var rows []quote.Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		row, err := quote.ParseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		rows = append(rows, row)
	}
}

func appendRows(path string, rows []quote.Row) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	if err := writeRows(f, rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("append history: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("sync history: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close history: %w", err)
	}
	return nil
}

func writeRows(w io.Writer, rows []quote.Row) error {
	cw := csv.NewWriter(w)
	for _, row := range rows {
		if err := cw.Write(row.Record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// lastLine returns the final non-empty line of path.
func lastLine(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	size := info.Size()

	var buf []byte
	for offset := size; offset > 0; {
		n := int64(tailBlock)
		if offset < n {
			n = offset
		}
		offset -= n
		block := make([]byte, n)
		if _, err := f.ReadAt(block, offset); err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		buf = append(block, buf...)

		trimmed := bytes.TrimRight(buf, "\r\n")
		if i := bytes.LastIndexByte(trimmed, '\n'); i >= 0 {
			return strings.TrimSpace(string(trimmed[i+1:])), nil
		}
		if offset == 0 {
			return strings.TrimSpace(string(trimmed)), nil
		}
	}
	return "", nil
}
