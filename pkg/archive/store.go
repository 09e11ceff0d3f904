// Package archive keeps a SQLite history of simulator sessions and the
// steps played in them.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/picogrid/algorithm-simulations/pkg/trace"
)

// FileName is the archive database inside the settings directory
const FileName = "runs.db"

// timeLayout sorts lexically in start order
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var (
	ErrRunNotFound  = errors.New("run not found")
	ErrAmbiguousRun = errors.New("run id prefix matches more than one run")
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	simulator  TEXT NOT NULL,
	started_at TEXT NOT NULL,
	controls   TEXT NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS steps (
	run_id  TEXT NOT NULL,
	seq     INTEGER NOT NULL,
	type    TEXT NOT NULL,
	message TEXT NOT NULL,
	stats   TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
`

// Run is one simulator session
type Run struct {
	ID        string
	Simulator string
	StartedAt time.Time
	Controls  map[string]string
	// Steps is the number of recorded steps, filled by queries
	Steps int
}

// Store persists runs to a SQLite database
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the archive at dsn
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("archive: open: %w", err)
	}

	// a single connection keeps in-memory databases shared
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("archive: create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// StartRun records a new session
func (s *Store) StartRun(ctx context.Context, run Run) error {
	controls := run.Controls
	if controls == nil {
		controls = map[string]string{}
	}
	controlsJSON, err := json.Marshal(controls)
	if err != nil {
		return fmt.Errorf("archive: marshal controls: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, simulator, started_at, controls) VALUES (?, ?, ?, ?)`,
		run.ID,
		run.Simulator,
		run.StartedAt.UTC().Format(timeLayout),
		string(controlsJSON),
	)
	if err != nil {
		return fmt.Errorf("archive: start run: %w", err)
	}
	return nil
}

// AppendStep stores a played step under rec.Session. Replaying the same
// step number overwrites the earlier row.
func (s *Store) AppendStep(ctx context.Context, rec trace.Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO steps (run_id, seq, type, message, stats) VALUES (?, ?, ?, ?, ?)`,
		rec.Session, rec.Step, rec.Type, rec.Message, rec.Stats,
	)
	if err != nil {
		return fmt.Errorf("archive: append step: %w", err)
	}
	return nil
}

const runColumns = `SELECT r.id, r.simulator, r.started_at, r.controls,
	(SELECT COUNT(*) FROM steps s WHERE s.run_id = r.id)
	FROM runs r`

// Runs returns the most recent runs first. limit <= 0 returns all.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	query := runColumns + ` ORDER BY r.started_at DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("archive: list runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// FindRun returns the run whose id starts with prefix
func (s *Store) FindRun(ctx context.Context, prefix string) (Run, error) {
	if prefix == "" {
		return Run{}, ErrRunNotFound
	}

	rows, err := s.db.QueryContext(ctx,
		runColumns+` WHERE substr(r.id, 1, ?) = ? LIMIT 2`, len(prefix), prefix)
	if err != nil {
		return Run{}, fmt.Errorf("archive: find run: %w", err)
	}
	defer rows.Close()

	runs, err := scanRuns(rows)
	if err != nil {
		return Run{}, err
	}
	switch len(runs) {
	case 0:
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, prefix)
	case 1:
		return runs[0], nil
	default:
		return Run{}, fmt.Errorf("%w: %s", ErrAmbiguousRun, prefix)
	}
}

// Steps returns the recorded steps of a run in order
func (s *Store) Steps(ctx context.Context, run Run) ([]trace.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, type, message, stats FROM steps WHERE run_id = ? ORDER BY seq ASC`, run.ID)
	if err != nil {
		return nil, fmt.Errorf("archive: list steps: %w", err)
	}
	defer rows.Close()

	var records []trace.Record
	for rows.Next() {
		rec := trace.Record{Session: run.ID, Simulator: run.Simulator}
		if err := rows.Scan(&rec.Step, &rec.Type, &rec.Message, &rec.Stats); err != nil {
			return nil, fmt.Errorf("archive: scan step: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteBefore removes runs started before cutoff, with their steps, and
// returns how many runs were removed
func (s *Store) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("archive: prune: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	ts := cutoff.UTC().Format(timeLayout)
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM steps WHERE run_id IN (SELECT id FROM runs WHERE started_at < ?)`, ts); err != nil {
		return 0, fmt.Errorf("archive: prune steps: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, ts)
	if err != nil {
		return 0, fmt.Errorf("archive: prune runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("archive: prune runs: %w", err)
	}
	return n, tx.Commit()
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

func scanRuns(rows *sql.Rows) ([]Run, error) {
	var runs []Run
	for rows.Next() {
		var (
			run          Run
			startedAt    string
			controlsJSON string
		)
		if err := rows.Scan(&run.ID, &run.Simulator, &startedAt, &controlsJSON, &run.Steps); err != nil {
			return nil, fmt.Errorf("archive: scan run: %w", err)
		}

		t, err := time.Parse(timeLayout, startedAt)
		if err != nil {
			return nil, fmt.Errorf("archive: parse start time of %s: %w", run.ID, err)
		}
		run.StartedAt = t

		if err := json.Unmarshal([]byte(controlsJSON), &run.Controls); err != nil {
			return nil, fmt.Errorf("archive: unmarshal controls of %s: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
