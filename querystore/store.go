// Copyright (C) 2023 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package querystore holds named query definitions.
// A statement that selects from a stored query by name
// can have the query's command substituted for it when
// the statement is rendered.
package querystore

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Store resolves stored queries by name.
type Store interface {
	// Resolve returns the command of the query
	// called name and whether escape processing
	// applies to it. ok is false if there is no
	// such query.
	Resolve(name string) (command string, escapeProcessing bool, ok bool, err error)
}

// Query is one stored query definition.
type Query struct {
	// Name is the name statements use to
	// refer to the query, as if it were a table.
	Name string `json:"name"`
	// Command is the SQL text of the query.
	Command string `json:"command"`
	// EscapeProcessing indicates that Command is
	// written in the parser's SQL dialect, so it
	// can be parsed and rendered like the statement
	// that refers to it. Otherwise Command is
	// substituted verbatim.
	EscapeProcessing bool `json:"escape_processing,omitempty"`
}

// ErrInvalid is returned for query
// definitions without a name or command.
var ErrInvalid = errors.New("querystore: invalid query definition")

func (q *Query) validate() error {
	if q.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalid)
	}
	if q.Command == "" {
		return fmt.Errorf("%w: query %q has no command", ErrInvalid, q.Name)
	}
	return nil
}

// Map is an in-memory Store.
// It is safe for concurrent use.
type Map struct {
	lock    sync.RWMutex
	queries map[string]Query
}

// NewMap returns a Map holding qs.
// Later definitions replace earlier
// ones with the same name.
func NewMap(qs ...Query) (*Map, error) {
	m := &Map{queries: make(map[string]Query, len(qs))}
	for i := range qs {
		if err := m.Put(qs[i]); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Put adds or replaces q.
func (m *Map) Put(q Query) error {
	if err := q.validate(); err != nil {
		return err
	}
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.queries == nil {
		m.queries = make(map[string]Query)
	}
	m.queries[q.Name] = q
	return nil
}

// Delete removes the query called name
// and returns whether it was present.
func (m *Map) Delete(name string) bool {
	m.lock.Lock()
	defer m.lock.Unlock()
	_, ok := m.queries[name]
	delete(m.queries, name)
	return ok
}

// Names returns the names of the
// stored queries in sorted order.
func (m *Map) Names() []string {
	m.lock.RLock()
	defer m.lock.RUnlock()
	names := maps.Keys(m.queries)
	slices.Sort(names)
	return names
}

// Queries returns the stored queries
// sorted by name.
func (m *Map) Queries() []Query {
	names := m.Names()
	m.lock.RLock()
	defer m.lock.RUnlock()
	out := make([]Query, 0, len(names))
	for _, name := range names {
		if q, ok := m.queries[name]; ok {
			out = append(out, q)
		}
	}
	return out
}

// Len returns the number of stored queries.
func (m *Map) Len() int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return len(m.queries)
}

// Resolve implements Store.
func (m *Map) Resolve(name string) (string, bool, bool, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	q, ok := m.queries[name]
	if !ok {
		return "", false, false, nil
	}
	return q.Command, q.EscapeProcessing, true, nil
}
