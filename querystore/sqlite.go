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

package querystore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// SQLite is a Store kept in a SQLite database.
// Every query is identified by a random UUID
// that survives updates of its definition.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite creates or opens the
// query database at path.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("querystore: opening %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("querystore: connecting to %s: %w", path, err)
	}
	// SQLite has a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	for _, stmt := range []string{"PRAGMA busy_timeout = 5000", schemaSQL} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("querystore: preparing %s: %w", path, err)
		}
	}
	return &SQLite{db: db}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

type execer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func put(ctx context.Context, db execer, q *Query) (string, error) {
	if err := q.validate(); err != nil {
		return "", err
	}
	var id string
	err := db.QueryRowContext(ctx, `
		INSERT INTO queries (id, name, command, escape_processing)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			command = excluded.command,
			escape_processing = excluded.escape_processing
		RETURNING id`,
		uuid.NewString(), q.Name, q.Command, q.EscapeProcessing).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("querystore: storing %q: %w", q.Name, err)
	}
	return id, nil
}

// Put adds or replaces q and returns its id.
func (s *SQLite) Put(ctx context.Context, q Query) (string, error) {
	return put(ctx, s.db, &q)
}

// Import stores every query of m
// in a single transaction.
func (s *SQLite) Import(ctx context.Context, m *Map) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, q := range m.Queries() {
		if _, err := put(ctx, tx, &q); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Delete removes the query called name
// and returns whether it was present.
func (s *SQLite) Delete(ctx context.Context, name string) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM queries WHERE name = ?", name)
	if err != nil {
		return false, fmt.Errorf("querystore: deleting %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ID returns the id of the query called name.
func (s *SQLite) ID(ctx context.Context, name string) (uuid.UUID, error) {
	var id string
	err := s.db.QueryRowContext(ctx, "SELECT id FROM queries WHERE name = ?", name).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("querystore: query %q: %w", name, err)
	}
	return uuid.Parse(id)
}

// Names returns the names of the
// stored queries in sorted order.
func (s *SQLite) Names(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM queries ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// ResolveContext is Resolve with a context.
func (s *SQLite) ResolveContext(ctx context.Context, name string) (string, bool, bool, error) {
	var (
		command string
		escape  bool
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT command, escape_processing FROM queries WHERE name = ?", name).Scan(&command, &escape)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, false, nil
	}
	if err != nil {
		return "", false, false, fmt.Errorf("querystore: resolving %q: %w", name, err)
	}
	return command, escape, true, nil
}

// Resolve implements Store.
func (s *SQLite) Resolve(name string) (string, bool, bool, error) {
	return s.ResolveContext(context.Background(), name)
}
