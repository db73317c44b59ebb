// Package docstore defines the read ports of the remote document store that
// holds monthly unemployment observations and narrative reports.
package docstore

import (
	"context"
	"errors"

	"tyotilasto/internal/core"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("document not found")

// Ports for outbound adapters.
type (
	SeriesFetcher interface {
		// FetchSeries returns up to limit observations for the pair, newest first.
		// An empty series with a nil error means the store has no data for it.
		FetchSeries(ctx context.Context, region, indicator string, limit int) (core.Series, error)
	}

	ReportFetcher interface {
		// LatestReport returns the newest monthly report. The bool is false
		// when no report exists.
		LatestReport(ctx context.Context) (core.Report, bool, error)
	}

	// Store is implemented by every backend.
	Store interface {
		SeriesFetcher
		ReportFetcher
	}
)
