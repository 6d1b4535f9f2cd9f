// Copyright 2026 The Fidelity Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package runlog persists fidelity comparison runs in a SQLite
// database, so repeated evaluations of a generator can be compared
// over time.
package runlog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/tracelab/fidelity/kpi"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id         TEXT PRIMARY KEY,
	real_path      TEXT NOT NULL,
	generated_path TEXT NOT NULL,
	binning        TEXT NOT NULL,
	error_frac     REAL NOT NULL,
	quality_json   TEXT NOT NULL,
	distance       REAL NOT NULL,
	created_at     TEXT NOT NULL
);
`

// A Run is one completed comparison: where the datasets came from,
// the binning they were scored over, and the three metric results.
// Only complete runs are recorded; a failed metric fails the whole
// run and nothing is stored.
type Run struct {
	ID            string
	RealPath      string
	GeneratedPath string
	Binning       string
	ErrorFrac     float64
	Quality       kpi.QualityReport
	Distance      float64
	CreatedAt     time.Time
}

// A Store records comparison runs in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) a run-log database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append records a completed run. A zero ID and CreatedAt are filled
// in; the stored run is returned.
func (s *Store) Append(run Run) (Run, error) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	qualityJSON, err := json.Marshal(run.Quality)
	if err != nil {
		return Run{}, fmt.Errorf("marshal quality: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO runs (run_id, real_path, generated_path, binning, error_frac, quality_json, distance, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.RealPath, run.GeneratedPath, run.Binning,
		run.ErrorFrac, string(qualityJSON), run.Distance,
		run.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// Get retrieves a run by ID.
func (s *Store) Get(id string) (Run, error) {
	row := s.db.QueryRow(
		`SELECT run_id, real_path, generated_path, binning, error_frac, quality_json, distance, created_at
		 FROM runs WHERE run_id = ?`, id,
	)
	run, err := scanRun(row)
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return run, nil
}

// List returns the most recent runs, newest first.
func (s *Store) List(limit int) ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT run_id, real_path, generated_path, binning, error_frac, quality_json, distance, created_at
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var run Run
	var qualityJSON, createdStr string
	err := row.Scan(&run.ID, &run.RealPath, &run.GeneratedPath, &run.Binning,
		&run.ErrorFrac, &qualityJSON, &run.Distance, &createdStr)
	if err != nil {
		return Run{}, err
	}
	if err := json.Unmarshal([]byte(qualityJSON), &run.Quality); err != nil {
		return Run{}, fmt.Errorf("unmarshal quality: %w", err)
	}
	run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdStr)
	if err != nil {
		return Run{}, fmt.Errorf("parse created_at: %w", err)
	}
	return run, nil
}
