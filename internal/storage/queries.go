package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Observation struct {
	Region    string
	Indicator string
	Period    string
	Value     sql.NullFloat64
}

type Report struct {
	Period string
	Text   string
}

const listObservations = `
SELECT region, indicator, period, value
FROM observations
WHERE region = ? AND indicator = ?
ORDER BY period DESC
LIMIT ?`

type ListObservationsParams struct {
	Region    string
	Indicator string
	Limit     int64
}

func (q *Queries) ListObservations(ctx context.Context, arg ListObservationsParams) ([]Observation, error) {
	rows, err := q.db.QueryContext(ctx, listObservations, arg.Region, arg.Indicator, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Observation
	for rows.Next() {
		var i Observation
		if err := rows.Scan(&i.Region, &i.Indicator, &i.Period, &i.Value); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertObservation = `
INSERT INTO observations (region, indicator, period, value)
VALUES (?, ?, ?, ?)
ON CONFLICT (region, indicator, period) DO UPDATE SET
    value = excluded.value,
    updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')`

func (q *Queries) UpsertObservation(ctx context.Context, arg Observation) error {
	_, err := q.db.ExecContext(ctx, upsertObservation, arg.Region, arg.Indicator, arg.Period, arg.Value)
	return err
}

const latestReport = `
SELECT period, text
FROM reports
ORDER BY period DESC
LIMIT 1`

func (q *Queries) LatestReport(ctx context.Context) (Report, error) {
	row := q.db.QueryRowContext(ctx, latestReport)
	var i Report
	err := row.Scan(&i.Period, &i.Text)
	return i, err
}

const upsertReport = `
INSERT INTO reports (period, text)
VALUES (?, ?)
ON CONFLICT (period) DO UPDATE SET
    text = excluded.text,
    updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')`

func (q *Queries) UpsertReport(ctx context.Context, arg Report) error {
	_, err := q.db.ExecContext(ctx, upsertReport, arg.Period, arg.Text)
	return err
}

const countObservations = `SELECT COUNT(*) FROM observations`

func (q *Queries) CountObservations(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countObservations)
	var n int64
	err := row.Scan(&n)
	return n, err
}
