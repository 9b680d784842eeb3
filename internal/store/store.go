// Package store holds per-session table state: the current working table,
// the original snapshot it can be reset to, the data-source provenance, and
// the session's theme selection.
//
// Sessions are created lazily on first reference and live for the process
// lifetime. The store's map is safe for concurrent use across sessions;
// within one session, calls are expected to arrive serially (one
// conversation turn at a time) and no per-session mutual exclusion is added
// beyond the map lock.
package store

import (
	"errors"
	"sync"

	"github.com/haasonsaas/chartd/internal/tabular"
	"github.com/haasonsaas/chartd/internal/themes"
)

// ErrNoOriginal is returned by Reset when no data was ever loaded.
var ErrNoOriginal = errors.New("no original data to reset to")

// DataSource records where a session's table was fetched from. It is
// cleared whenever inline data replaces fetched data.
type DataSource struct {
	Type    string `json:"type"`
	SheetID string `json:"sheet_id,omitempty"`
	GID     string `json:"gid,omitempty"`
}

// SessionState is the mutable state of one session.
type SessionState struct {
	current    *tabular.Table
	original   *tabular.Table
	dataSource *DataSource
	theme      string
}

// Store maps session keys to their state.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*SessionState
}

// New creates an empty store.
func New() *Store {
	return &Store{sessions: make(map[string]*SessionState)}
}

// session returns the state for id, creating it on first reference.
// Callers must hold mu.
func (s *Store) session(id string) *SessionState {
	st, ok := s.sessions[id]
	if !ok {
		st = &SessionState{theme: themes.DefaultName}
		s.sessions[id] = st
	}
	return st
}

// Load replaces both the current and original tables with independent
// copies built from the records. Empty records clear the session to the
// no-data state. Loading always discards any prior transformation history.
func (s *Store) Load(id string, records []tabular.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.session(id)
	tbl := tabular.FromRecords(records)
	if tbl == nil {
		st.current = nil
		st.original = nil
		return
	}
	st.current = tbl
	st.original = tbl.Clone()
}

// LoadTable is Load for an already-built table, used by the sheet adapter.
func (s *Store) LoadTable(id string, tbl *tabular.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.session(id)
	if tbl == nil || tbl.NumRows() == 0 {
		st.current = nil
		st.original = nil
		return
	}
	st.current = tbl.Clone()
	st.original = tbl.Clone()
}

// Current returns the session's working table, or nil when no data is
// loaded. The returned table must be treated as immutable; transforms build
// a replacement and call SetCurrent.
func (s *Store) Current(id string) *tabular.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.sessions[id]
	if !ok {
		return nil
	}
	return st.current
}

// SetCurrent atomically replaces the session's working table.
func (s *Store) SetCurrent(id string, tbl *tabular.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session(id).current = tbl
}

// Reset restores the working table to a deep copy of the original snapshot.
func (s *Store) Reset(id string) (*tabular.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.session(id)
	if st.original == nil {
		return nil, ErrNoOriginal
	}
	st.current = st.original.Clone()
	return st.current, nil
}

// SetDataSource records provenance for the session's data; nil clears it.
func (s *Store) SetDataSource(id string, src *DataSource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session(id).dataSource = src
}

// DataSourceFor returns the session's provenance record, or nil.
func (s *Store) DataSourceFor(id string) *DataSource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.sessions[id]
	if !ok || st.dataSource == nil {
		return nil
	}
	cp := *st.dataSource
	return &cp
}

// Theme returns the session's theme name, defaulting without creating the
// session.
func (s *Store) Theme(id string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.sessions[id]
	if !ok {
		return themes.DefaultName
	}
	return st.theme
}

// SetTheme selects the session's chart theme.
func (s *Store) SetTheme(id, name string) error {
	if !themes.Valid(name) {
		return errors.New("unknown theme: " + name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session(id).theme = name
	return nil
}

// Remove drops a session's state. Returns true when it existed.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	return ok
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
