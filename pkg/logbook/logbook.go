// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package logbook keeps titled measurement results in a SQLite database.
package logbook

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Thermoquad/scopereader/pkg/scopemeter"
)

// Entry is one stored result
type Entry struct {
	ID         int64
	RecordedAt time.Time
	Operation  string
	scopemeter.Result
}

// Store is a logbook database. It opens lazily on first use.
type Store struct {
	path string

	db     *sql.DB
	dbOnce sync.Once
	dbErr  error

	closeOnce sync.Once
	closeErr  error
}

// New returns a store backed by the SQLite file at path
func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) getDB() (*sql.DB, error) {
	s.dbOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.path, "_journal_mode=WAL&_synchronous=NORMAL"))
		if err != nil {
			s.dbErr = fmt.Errorf("opening database: %w", err)
			return
		}

		if _, err = db.Exec(initSchemaSQL); err != nil {
			_ = db.Close()
			s.dbErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		s.db = db
	})

	return s.db, s.dbErr
}

// Record stores a result under its title and returns the new entry id
func (s *Store) Record(ctx context.Context, op scopemeter.Operator, r scopemeter.Result) (id int64, err error) {
	if r.Title == "" {
		return 0, fmt.Errorf("result has no title")
	}

	db, err := s.getDB()
	if err != nil {
		return 0, err
	}

	stmt, err := db.PrepareContext(ctx, insertResultSQL)
	if err != nil {
		return 0, fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	source := sql.NullString{String: r.Source, Valid: r.Source != ""}
	result, err := stmt.ExecContext(ctx,
		time.Now().UTC(), r.Title, op.String(), r.Value, r.Precision, r.Unit, source)
	if err != nil {
		return 0, fmt.Errorf("inserting result: %w", err)
	}

	id, err = result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting result ID: %w", err)
	}
	return id, nil
}

// List returns every stored entry, oldest first
func (s *Store) List(ctx context.Context) (entries []Entry, err error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, selectResultsSQL)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var e Entry
		var source sql.NullString
		if err = rows.Scan(&e.ID, &e.RecordedAt, &e.Title, &e.Operation,
			&e.Value, &e.Precision, &e.Unit, &source); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		e.Source = source.String
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating results: %w", err)
	}
	return entries, nil
}

// Close releases the database
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		if s.db != nil {
			s.closeErr = s.db.Close()
			s.db = nil
		}
	})
	return s.closeErr
}

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}
