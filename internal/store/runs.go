// Package store indexes finished runs in SQLite so they can be listed and
// filtered without reading every run directory.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/san-kum/gwbsim/internal/storage"
)

// IndexFile is the database name inside the data directory.
const IndexFile = "runs.db"

// timeLayout sorts lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned for a run id that is not indexed.
var ErrNotFound = errors.New("gwb: run not indexed")

type RunIndex struct {
	db *sql.DB
}

// Open opens or creates the index at path.
func Open(ctx context.Context, path string) (*RunIndex, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open run index: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := InitSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &RunIndex{db: db}, nil
}

func (x *RunIndex) Close() error { return x.db.Close() }

// Entry is one indexed run.
type Entry struct {
	ID          string
	Tag         string
	CreatedAt   time.Time
	Mode        string
	SFH         string
	Catalog     string
	Systems     int
	Binned      int
	Elapsed     float64
	ZBins       int
	FBins       int
	OmegaBulk   float64
	OmegaBirth  float64
	OmegaMerger float64
	NTotal      float64
	Diagnostics map[string]int64
}

func (e Entry) OmegaTotal() float64 { return e.OmegaBulk + e.OmegaBirth + e.OmegaMerger }

// Record indexes a saved run, replacing any previous entry with its id.
func (x *RunIndex) Record(ctx context.Context, meta storage.RunMetadata) error {
	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var nTotal float64
	for _, t := range meta.Totals {
		nTotal += t.N
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, meta.ID); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, tag, created_at, mode, sfh, catalog, systems, binned, elapsed,
		                  z_bins, f_bins, omega_bulk, omega_birth, omega_merger, n_total)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.ID, meta.Tag, meta.Timestamp.UTC().Format(timeLayout), meta.Mode, meta.SFH, meta.Catalog,
		meta.Systems, meta.Binned, meta.Elapsed, meta.ZBins, meta.FBins,
		meta.Totals["bulk"].Omega, meta.Totals["birth"].Omega, meta.Totals["merger"].Omega, nTotal)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", meta.ID, err)
	}

	for name, count := range meta.Diagnostics {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_diagnostics (run_id, name, count) VALUES (?, ?, ?)`,
			meta.ID, name, count); err != nil {
			return fmt.Errorf("failed to insert diagnostic %s: %w", name, err)
		}
	}
	return tx.Commit()
}

// Filter narrows List. Zero values match everything.
type Filter struct {
	SFH   string
	Tag   string
	Limit int
}

// List returns matching runs, newest first.
func (x *RunIndex) List(ctx context.Context, f Filter) ([]Entry, error) {
	query := `SELECT id, tag, created_at, mode, sfh, catalog, systems, binned, elapsed,
	                 z_bins, f_bins, omega_bulk, omega_birth, omega_merger, n_total
	          FROM runs WHERE (? = '' OR sfh = ?) AND (? = '' OR tag = ?)
	          ORDER BY created_at DESC, id`
	args := []any{f.SFH, f.SFH, f.Tag, f.Tag}
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := x.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Diagnostics, err = x.diagnostics(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (x *RunIndex) Get(ctx context.Context, id string) (*Entry, error) {
	row := x.db.QueryRowContext(ctx, `
		SELECT id, tag, created_at, mode, sfh, catalog, systems, binned, elapsed,
		       z_bins, f_bins, omega_bulk, omega_birth, omega_merger, n_total
		FROM runs WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if e.Diagnostics, err = x.diagnostics(ctx, id); err != nil {
		return nil, err
	}
	return &e, nil
}

func (x *RunIndex) Delete(ctx context.Context, id string) error {
	res, err := x.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (Entry, error) {
	var e Entry
	var created string
	err := s.Scan(&e.ID, &e.Tag, &created, &e.Mode, &e.SFH, &e.Catalog, &e.Systems, &e.Binned, &e.Elapsed,
		&e.ZBins, &e.FBins, &e.OmegaBulk, &e.OmegaBirth, &e.OmegaMerger, &e.NTotal)
	if err != nil {
		return e, err
	}
	if e.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return e, fmt.Errorf("run %s: bad timestamp %q: %w", e.ID, created, err)
	}
	return e, nil
}

func (x *RunIndex) diagnostics(ctx context.Context, id string) (map[string]int64, error) {
	rows, err := x.db.QueryContext(ctx, `SELECT name, count FROM run_diagnostics WHERE run_id = ?`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var name string
		var count int64
		if err := rows.Scan(&name, &count); err != nil {
			return nil, err
		}
		out[name] = count
	}
	return out, rows.Err()
}

// Rebuild indexes every run directory found in st.
func (x *RunIndex) Rebuild(ctx context.Context, st *storage.Store) (int, error) {
	runs, err := st.List()
	if err != nil {
		return 0, err
	}
	for _, meta := range runs {
		if err := x.Record(ctx, meta); err != nil {
			return 0, err
		}
	}
	return len(runs), nil
}
