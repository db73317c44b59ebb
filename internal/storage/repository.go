// Package storage is the local SQLite mirror of the document store.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"tyotilasto/internal/core"
)

// ErrNoReport is returned by LatestReport on an empty reports table.
var ErrNoReport = errors.New("no report stored")

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

// NewSQLiteRepository opens (creating if needed) the database at dbPath and
// applies pending migrations.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, queries: New(db)}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ListObservations returns up to limit rows for the pair, newest first.
func (r *SQLiteRepository) ListObservations(ctx context.Context, region, indicator string, limit int) ([]Observation, error) {
	rows, err := r.queries.ListObservations(ctx, ListObservationsParams{
		Region:    region,
		Indicator: indicator,
		Limit:     int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("list observations %s/%s: %w", region, indicator, err)
	}
	return rows, nil
}

// LatestReport returns the newest stored report or ErrNoReport.
func (r *SQLiteRepository) LatestReport(ctx context.Context) (Report, error) {
	rep, err := r.queries.LatestReport(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return Report{}, ErrNoReport
	}
	if err != nil {
		return Report{}, fmt.Errorf("latest report: %w", err)
	}
	return rep, nil
}

// SaveSeries upserts a series for one pair in a single transaction.
// Periods are normalized so that text ordering is chronological.
func (r *SQLiteRepository) SaveSeries(ctx context.Context, region, indicator string, series core.Series) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	for _, o := range series {
		p, err := core.ParsePeriod(o.Period)
		if err != nil {
			return fmt.Errorf("save %s/%s: %w", region, indicator, err)
		}
		row := Observation{Region: region, Indicator: indicator, Period: p.String()}
		if err := o.Validate(); err == nil {
			row.Value = sql.NullFloat64{Float64: o.Value, Valid: true}
		}
		if err := q.UpsertObservation(ctx, row); err != nil {
			return fmt.Errorf("upsert %s/%s %s: %w", region, indicator, p, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	slog.DebugContext(ctx, "Series mirrored to SQLite",
		"region", region, "indicator", indicator, "observations", len(series))
	return nil
}

// SaveReport stores a report under its normalized period.
func (r *SQLiteRepository) SaveReport(ctx context.Context, rep core.Report) error {
	p, err := core.ParsePeriod(rep.Period)
	if err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	if err := r.queries.UpsertReport(ctx, Report{Period: p.String(), Text: rep.Text}); err != nil {
		return fmt.Errorf("save report %s: %w", p, err)
	}
	return nil
}

// CountObservations returns the number of mirrored rows.
func (r *SQLiteRepository) CountObservations(ctx context.Context) (int64, error) {
	n, err := r.queries.CountObservations(ctx)
	if err != nil {
		return 0, fmt.Errorf("count observations: %w", err)
	}
	return n, nil
}
