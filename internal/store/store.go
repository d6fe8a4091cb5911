// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists assembled series in a local SQLite database so a
// run can be inspected or exported later without hitting the catalog again.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/kriete/station-series/pkg/types"
)

// DefaultPath is used when StoreConfig.Path is empty.
const DefaultPath = "data/series.db"

// timeLayout is fixed-width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrRunNotFound is returned by LoadRun for an unknown id.
var ErrRunNotFound = errors.New("run not found")

// Run is the stored header of one pipeline run.
type Run struct {
	ID        string               `json:"id" yaml:"id"`
	CreatedAt time.Time            `json:"created_at" yaml:"created_at"`
	Metadata  types.SeriesMetadata `json:"metadata" yaml:"metadata"`
	Samples   int                  `json:"samples" yaml:"samples"`
}

// StoredRun is a run together with its samples.
type StoredRun struct {
	Run
	Series types.AssembledSeries
}

// Store wraps the series database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at path, creating parent directories
// and the schema as needed.
func Open(cfg types.StoreConfig) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			stations TEXT,
			variable TEXT NOT NULL,
			units TEXT,
			title TEXT,
			qc INTEGER NOT NULL,
			samples INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS samples (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			time REAL,
			value REAL,
			status INTEGER NOT NULL,
			source_index INTEGER NOT NULL,
			PRIMARY KEY (run_id, seq)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SaveRun stores meta and series under a fresh run id in one transaction.
// NaN times and values are stored as NULL.
func (s *Store) SaveRun(ctx context.Context, meta types.SeriesMetadata, series types.AssembledSeries) (Run, error) {
	run := Run{
		ID:        uuid.NewString(),
		CreatedAt: s.now().UTC(),
		Metadata:  meta,
		Samples:   series.Len(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stationsJSON, _ := json.Marshal(meta.Stations)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, stations, variable, units, title, qc, samples)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.Format(timeLayout), string(stationsJSON),
		meta.Variable, meta.Units, meta.Title, meta.QC, run.Samples,
	)
	if err != nil {
		return Run{}, fmt.Errorf("inserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO samples (run_id, seq, time, value, status, source_index) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return Run{}, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i := range series.Time {
		if _, err := stmt.ExecContext(ctx, run.ID, i, nullable(series.Time[i]), nullable(series.Value[i]), int(series.Status[i]), series.Index[i]); err != nil {
			return Run{}, fmt.Errorf("inserting sample %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("committing run: %w", err)
	}
	return run, nil
}

// ListRuns returns every stored run header, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, stations, variable, units, title, qc, samples
		 FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// LoadRun returns the run with the given id and its samples in stored
// order.
func (s *Store) LoadRun(ctx context.Context, id string) (StoredRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, stations, variable, units, title, qc, samples
		 FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return StoredRun{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return StoredRun{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT time, value, status, source_index FROM samples WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return StoredRun{}, fmt.Errorf("querying samples: %w", err)
	}
	defer rows.Close()

	series := types.AssembledSeries{
		Time:   make([]float64, 0, run.Samples),
		Value:  make([]float64, 0, run.Samples),
		Status: make([]types.SampleStatus, 0, run.Samples),
		Index:  make([]int, 0, run.Samples),
	}
	for rows.Next() {
		var (
			t, v   sql.NullFloat64
			status int
			index  int
		)
		if err := rows.Scan(&t, &v, &status, &index); err != nil {
			return StoredRun{}, fmt.Errorf("scanning sample: %w", err)
		}
		series.Time = append(series.Time, fromNullable(t))
		series.Value = append(series.Value, fromNullable(v))
		series.Status = append(series.Status, types.SampleStatus(status))
		series.Index = append(series.Index, index)
	}
	if err := rows.Err(); err != nil {
		return StoredRun{}, fmt.Errorf("reading samples: %w", err)
	}
	return StoredRun{Run: run, Series: series}, nil
}

func nullable(f float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: f, Valid: !math.IsNaN(f)}
}

func fromNullable(n sql.NullFloat64) float64 {
	if !n.Valid {
		return math.NaN()
	}
	return n.Float64
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		r            Run
		created      string
		stationsJSON sql.NullString
		units, title sql.NullString
	)
	err := sc.Scan(&r.ID, &created, &stationsJSON, &r.Metadata.Variable, &units, &title, &r.Metadata.QC, &r.Samples)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scanning run: %w", err)
	}
	r.CreatedAt, err = time.Parse(timeLayout, created)
	if err != nil {
		return Run{}, fmt.Errorf("parsing created_at of run %s: %w", r.ID, err)
	}
	if stationsJSON.Valid && stationsJSON.String != "" {
		if err := json.Unmarshal([]byte(stationsJSON.String), &r.Metadata.Stations); err != nil {
			return Run{}, fmt.Errorf("decoding stations of run %s: %w", r.ID, err)
		}
	}
	r.Metadata.Units = units.String
	r.Metadata.Title = title.String
	return r, nil
}
