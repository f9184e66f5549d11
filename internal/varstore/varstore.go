// Package varstore implements the ifexpr.VariableStore interface over
// a YAML-described variable fixture, the same way the rest of this
// module loads its static fixtures (internal/config).
package varstore

import (
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Fixture is the on-disk shape of a variable fixture file.
type Fixture struct {
	Variables map[string]string `yaml:"variables"`
	Env       map[string]string `yaml:"env"`
}

// Store is an in-memory VariableStore seeded from a Fixture, with
// mutable regex-capture state (CMAKE_MATCH_0..N) as its sole process-
// wide mutable surface.
type Store struct {
	values map[string]string
	env    map[string]string
	match  []string
}

// New returns an empty Store.
func New() *Store {
	return &Store{values: map[string]string{}, env: map[string]string{}}
}

// Load reads a YAML fixture file and returns a seeded Store.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	s := New()
	for k, v := range f.Variables {
		s.values[k] = v
	}
	for k, v := range f.Env {
		s.env[k] = v
	}
	return s, nil
}

// Set assigns a variable, as the surface language's set()/unset()
// commands would.
func (s *Store) Set(name, value string) { s.values[name] = value }

// Unset removes a variable.
func (s *Store) Unset(name string) { delete(s.values, name) }

// Get implements ifexpr.VariableStore.
func (s *Store) Get(name string) (string, bool) {
	v, ok := s.values[name]
	return v, ok
}

// IsDefined implements ifexpr.VariableStore.
func (s *Store) IsDefined(name string) bool {
	_, ok := s.values[name]
	return ok
}

// GetEnv implements ifexpr.VariableStore.
func (s *Store) GetEnv(name string) (string, bool) {
	v, ok := s.env[name]
	return v, ok
}

// ClearMatches implements ifexpr.VariableStore. It also deletes every
// CMAKE_MATCH_N key the previous match wrote into values, so a match
// with fewer capture groups doesn't leave a stale higher-index group
// resolvable.
func (s *Store) ClearMatches() {
	for i := range s.match {
		delete(s.values, matchName(i))
	}
	s.match = nil
}

// StoreMatches implements ifexpr.VariableStore. CMAKE_MATCH_0 holds
// the whole match and CMAKE_MATCH_1.. hold the capture groups, mirroring
// the surface language's regex-match variables.
func (s *Store) StoreMatches(whole string, groups []string) {
	s.match = append([]string{whole}, groups...)
	for i, v := range s.match {
		s.values[matchName(i)] = v
	}
}

func matchName(i int) string {
	return "CMAKE_MATCH_" + strconv.Itoa(i)
}

// Match returns the capture groups stored by the most recent
// successful MATCHES evaluation, group 0 first.
func (s *Store) Match() []string {
	return append([]string{}, s.match...)
}

// Dump renders the current variable table, sorted by name, one
// NAME=value line per variable.
func (s *Store) Dump() string {
	names := make([]string, 0, len(s.values))
	for name := range s.values {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	for _, name := range names {
		b.WriteString(name)
		b.WriteString("=")
		b.WriteString(s.values[name])
		b.WriteString("\n")
	}
	return b.String()
}
