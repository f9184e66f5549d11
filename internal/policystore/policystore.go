// Package policystore implements a Mangle-backed ifexpr.PolicyStore:
// policy statuses and the known-policy set are declared as facts in a
// .mg file and loaded into a Mangle fact store, the same way the
// engine this package is adapted from treats any other domain of
// ground facts.
package policystore

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/google/mangle/ast"
	"github.com/google/mangle/factstore"
	"github.com/google/mangle/parse"

	"github.com/outpost-build/condeval/internal/ifexpr"
	"github.com/outpost-build/condeval/internal/logging"
)

var statusSym = ast.PredicateSym{Symbol: "policy_status", Arity: 2}
var knownSym = ast.PredicateSym{Symbol: "known_policy", Arity: 1}
var warningTextSym = ast.PredicateSym{Symbol: "policy_warning_text", Arity: 2}

var statusByName = map[string]ifexpr.PolicyStatus{
	"/old":               ifexpr.PolicyOld,
	"/new":               ifexpr.PolicyNew,
	"/warn":              ifexpr.PolicyWarn,
	"/required_if_used":  ifexpr.PolicyRequiredIfUsed,
	"/required_always":   ifexpr.PolicyRequiredAlways,
}

// Store is a Mangle fact store exposing policy lookups plus the
// per-source-location "already warned" memo the evaluator needs, kept
// inside the policy store rather than scattered across callers.
type Store struct {
	mu     sync.RWMutex
	store  factstore.FactStoreWithRemove
	path   string
	defs   Defaults

	warnedMu sync.Mutex
	warned   map[string]bool

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// Defaults are used for a policy that has no explicit fact in the
// loaded file.
type Defaults struct {
	AutoDeref    ifexpr.PolicyStatus
	QuotedDemote ifexpr.PolicyStatus
}

// New loads facts from path and returns a Store. An empty path loads
// no facts; all lookups then fall back to defs.
func New(path string, defs Defaults) (*Store, error) {
	s := &Store{
		store:  factstore.NewSimpleInMemoryStore(),
		path:   path,
		defs:   defs,
		warned: map[string]bool{},
	}
	if path != "" {
		if err := s.reload(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Watch starts an fsnotify watch on the facts file, reloading it on
// every write. Call Close to stop watching.
func (s *Store) Watch() error {
	if s.path == "" {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("policystore: starting watcher: %w", err)
	}
	if err := w.Add(s.path); err != nil {
		w.Close()
		return fmt.Errorf("policystore: watching %s: %w", s.path, err)
	}
	s.watcher = w
	s.done = make(chan struct{})
	go s.watchLoop()
	return nil
}

func (s *Store) watchLoop() {
	log := logging.Get(logging.CategoryPolicy)
	for {
		select {
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := s.reload(); err != nil {
				log.Warn("reload of %s failed: %v", s.path, err)
			} else {
				log.Info("reloaded policy facts from %s", s.path)
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			log.Warn("watcher error: %v", err)
		case <-s.done:
			return
		}
	}
}

// Close stops the background watch, if any.
func (s *Store) Close() error {
	if s.watcher == nil {
		return nil
	}
	close(s.done)
	return s.watcher.Close()
}

func (s *Store) reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("policystore: reading %s: %w", s.path, err)
	}
	unit, err := parse.Unit(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("policystore: parsing %s: %w", s.path, err)
	}

	next := factstore.NewSimpleInMemoryStore()
	for _, clause := range unit.Clauses {
		if clause.Premises != nil {
			continue // only ground facts are consumed; rules are not part of this domain
		}
		next.Add(clause.Head)
	}

	s.mu.Lock()
	s.store = next
	s.mu.Unlock()
	return nil
}

// Status implements ifexpr.PolicyStore.
func (s *Store) Status(policyID string) ifexpr.PolicyStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	name := nameConstant(policyID)
	var found *ifexpr.PolicyStatus
	s.store.GetFacts(ast.NewQuery(statusSym), func(atom ast.Atom) error {
		if found != nil || len(atom.Args) != 2 {
			return nil
		}
		if c, ok := atom.Args[0].(ast.Constant); ok && c.Symbol == name {
			if status, ok := atom.Args[1].(ast.Constant); ok {
				if st, known := statusByName[status.Symbol]; known {
					found = &st
				}
			}
		}
		return nil
	})
	if found != nil {
		return *found
	}
	return s.defaultFor(policyID)
}

func (s *Store) defaultFor(policyID string) ifexpr.PolicyStatus {
	switch policyID {
	case "policy-auto-deref":
		return s.defs.AutoDeref
	case "policy-quoted-demote":
		return s.defs.QuotedDemote
	default:
		return ifexpr.PolicyNew
	}
}

// PolicyExists implements ifexpr.PolicyStore.
func (s *Store) PolicyExists(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := nameConstant(name)
	exists := false
	s.store.GetFacts(ast.NewQuery(knownSym), func(atom ast.Atom) error {
		if exists || len(atom.Args) != 1 {
			return nil
		}
		if c, ok := atom.Args[0].(ast.Constant); ok && c.Symbol == want {
			exists = true
		}
		return nil
	})
	return exists
}

// WarningText implements ifexpr.PolicyStore.
func (s *Store) WarningText(policyID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	name := nameConstant(policyID)
	var text string
	s.store.GetFacts(ast.NewQuery(warningTextSym), func(atom ast.Atom) error {
		if text != "" || len(atom.Args) != 2 {
			return nil
		}
		if c, ok := atom.Args[0].(ast.Constant); ok && c.Symbol == name {
			if msg, ok := atom.Args[1].(ast.Constant); ok {
				text = msg.Symbol
			}
		}
		return nil
	})
	if text != "" {
		return text
	}
	return fmt.Sprintf("Compatibility with %s is dropping from a future release; see policy documentation.", policyID)
}

// HasWarnedHere implements ifexpr.PolicyStore.
func (s *Store) HasWarnedHere(location string) bool {
	s.warnedMu.Lock()
	defer s.warnedMu.Unlock()
	return s.warned[location]
}

// MarkWarnedHere implements ifexpr.PolicyStore.
func (s *Store) MarkWarnedHere(location string) {
	s.warnedMu.Lock()
	defer s.warnedMu.Unlock()
	s.warned[location] = true
}

// nameConstant maps a bare policy identifier to the /name-constant
// spelling Mangle facts use (hyphens become underscores since Mangle
// names are identifier-like).
func nameConstant(id string) string {
	return "/" + strings.ReplaceAll(id, "-", "_")
}
