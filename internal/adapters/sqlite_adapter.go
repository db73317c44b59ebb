// Package adapters maps local infrastructure onto the docstore ports.
package adapters

import (
	"context"
	"errors"
	"math"

	"tyotilasto/internal/core"
	"tyotilasto/internal/docstore"
	"tyotilasto/internal/storage"
)

// SQLiteAdapter serves series and reports from the SQLite mirror.
type SQLiteAdapter struct {
	storage *storage.SQLiteRepository
}

var _ docstore.Store = (*SQLiteAdapter)(nil)

func NewSQLiteAdapter(storage *storage.SQLiteRepository) *SQLiteAdapter {
	return &SQLiteAdapter{storage: storage}
}

// FetchSeries implements docstore.SeriesFetcher. NULL values come back as
// NaN so that validation rejects the series.
func (a *SQLiteAdapter) FetchSeries(ctx context.Context, region, indicator string, limit int) (core.Series, error) {
	rows, err := a.storage.ListObservations(ctx, region, indicator, limit)
	if err != nil {
		return nil, err
	}
	series := make(core.Series, 0, len(rows))
	for _, r := range rows {
		v := math.NaN()
		if r.Value.Valid {
			v = r.Value.Float64
		}
		series = append(series, core.Observation{Period: r.Period, Value: v})
	}
	return series, nil
}

// LatestReport implements docstore.ReportFetcher.
func (a *SQLiteAdapter) LatestReport(ctx context.Context) (core.Report, bool, error) {
	r, err := a.storage.LatestReport(ctx)
	if errors.Is(err, storage.ErrNoReport) {
		return core.Report{}, false, nil
	}
	if err != nil {
		return core.Report{}, false, err
	}
	return core.Report{Period: r.Period, Text: r.Text}, true, nil
}

// Mirror copies every catalog pair and the latest report from src into the
// SQLite mirror. It returns the number of observations written.
func (a *SQLiteAdapter) Mirror(ctx context.Context, src docstore.Store, pairs [][2]string, limit int) (int, error) {
	written := 0
	for _, p := range pairs {
		series, err := src.FetchSeries(ctx, p[0], p[1], limit)
		if err != nil && !errors.Is(err, core.ErrMalformedObservation) {
			return written, err
		}
		if len(series) == 0 {
			continue
		}
		if err := a.storage.SaveSeries(ctx, p[0], p[1], series); err != nil {
			return written, err
		}
		written += len(series)
	}

	r, ok, err := src.LatestReport(ctx)
	if err != nil && !errors.Is(err, docstore.ErrNotFound) {
		return written, err
	}
	if ok {
		if err := a.storage.SaveReport(ctx, r); err != nil {
			return written, err
		}
	}
	return written, nil
}

// Ping reports whether the mirror database is reachable.
func (a *SQLiteAdapter) Ping(ctx context.Context) error {
	return a.storage.Ping(ctx)
}
