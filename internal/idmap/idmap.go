// Package idmap loads the NAME=ID file that maps instrument short names to
// the provider's numeric identifiers.
package idmap

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/ahmethakanbesel/eodscraper/internal/apperror"
)

// Map is immutable once loaded.
type Map struct {
	ids map[string]string
}

func Load(path string) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperror.Wrap(apperror.MissingIDMap, "missing idmap "+path, err)
		}
		return nil, apperror.Wrap(apperror.MissingIDMap, "open idmap "+path, err)
	}
	defer func() { _ = f.Close() }()
	return Parse(f)
}

func Parse(r io.Reader) (*Map, error) {
	ids := make(map[string]string)
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		name, id, ok := strings.Cut(text, "=")
		name = strings.ToUpper(strings.TrimSpace(name))
		id = strings.TrimSpace(id)
		if !ok || name == "" {
			return nil, apperror.New(apperror.BadIDMap, fmt.Sprintf("idmap line %d: want NAME=ID, got %q", line, text))
		}
		if _, err := strconv.ParseUint(id, 10, 64); err != nil {
			return nil, apperror.New(apperror.BadIDMap, fmt.Sprintf("idmap line %d: id for %s is not numeric: %q", line, name, id))
		}
		ids[name] = id
	}
	if err := sc.Err(); err != nil {
		return nil, apperror.Wrap(apperror.BadIDMap, "read idmap", err)
	}
	return &Map{ids: ids}, nil
}

// Lookup returns the provider ID for name or an Unmapped error.
func (m *Map) Lookup(name string) (string, error) {
	id, ok := m.ids[strings.ToUpper(name)]
	if !ok {
		return "", apperror.New(apperror.Unmapped, "no id mapping for "+name)
	}
	return id, nil
}

func (m *Map) Len() int { return len(m.ids) }
