package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// InstrumentSets holds the named instrument lists selectable with -l and the
// codes that are never scraped.
type InstrumentSets struct {
	Classes map[string][]string `yaml:"classes"`
	Exclude []string            `yaml:"exclude"`
}

func LoadInstrumentSets(path string) (*InstrumentSets, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open instrument sets: %w", err)
	}
	defer func() { _ = f.Close() }()
	return LoadInstrumentSetsFromReader(f)
}

func LoadInstrumentSetsFromReader(r io.Reader) (*InstrumentSets, error) {
	var sets InstrumentSets
	if err := yaml.NewDecoder(r).Decode(&sets); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unmarshal instrument sets: %w", err)
	}
	sets.normalise()
	if err := sets.Validate(); err != nil {
		return nil, err
	}
	return &sets, nil
}

func (s *InstrumentSets) normalise() {
	classes := make(map[string][]string, len(s.Classes))
	for name, codes := range s.Classes {
		classes[strings.ToLower(strings.TrimSpace(name))] = normaliseCodes(codes)
	}
	s.Classes = classes
	s.Exclude = normaliseCodes(s.Exclude)
}

func (s *InstrumentSets) Validate() error {
	for name, codes := range s.Classes {
		if name == "" {
			return fmt.Errorf("instrument sets: class with empty name")
		}
		if len(codes) == 0 {
			return fmt.Errorf("instrument sets: class %q has no instruments", name)
		}
	}
	return nil
}

// Resolve expands class names into a sorted, de-duplicated code list.
func (s *InstrumentSets) Resolve(classes []string) ([]string, error) {
	var codes []string
	for _, c := range classes {
		name := strings.ToLower(strings.TrimSpace(c))
		list, ok := s.Classes[name]
		if !ok {
			return nil, fmt.Errorf("unknown instrument class %q", c)
		}
		codes = append(codes, list...)
	}
	codes = normaliseCodes(codes)
	sort.Strings(codes)
	return codes, nil
}

func (s *InstrumentSets) Excluded(name string) bool {
	return slices.Contains(s.Exclude, strings.ToUpper(strings.TrimSpace(name)))
}

func normaliseCodes(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, c := range in {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
