// Package firestore reads monthly unemployment summaries and reports from
// Cloud Firestore through its REST API.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	fsapi "google.golang.org/api/firestore/v1"
	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"

	"tyotilasto/internal/catalog"
	"tyotilasto/internal/core"
	"tyotilasto/internal/docstore"
)

const (
	DefaultDatabase         = "(default)"
	DefaultSeriesCollection = "unemployment_general_summary"
	DefaultReportCollection = "monthly_reports"

	fieldYearMonth = "year_month"
	fieldRegions   = "regions"
	fieldReport    = "report"
)

// Config selects the project, database and collections to read.
type Config struct {
	ProjectID        string
	Database         string
	SeriesCollection string
	ReportCollection string

	// CredentialsJSON is a service account key. Leave empty together with
	// Endpoint set to talk to an emulator without authentication.
	CredentialsJSON []byte
	Endpoint        string
	HTTPClient      *http.Client
}

type Client struct {
	svc              *fsapi.Service
	parent           string
	seriesCollection string
	reportCollection string
	catalog          *catalog.Catalog
}

var (
	_ docstore.SeriesFetcher = (*Client)(nil)
	_ docstore.ReportFetcher = (*Client)(nil)
)

// New creates a Firestore client. cat resolves indicator codes to the
// labels used as document keys.
func New(ctx context.Context, cfg Config, cat *catalog.Catalog) (*Client, error) {
	if strings.TrimSpace(cfg.ProjectID) == "" {
		return nil, errors.New("missing firestore project id")
	}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.SeriesCollection == "" {
		cfg.SeriesCollection = DefaultSeriesCollection
	}
	if cfg.ReportCollection == "" {
		cfg.ReportCollection = DefaultReportCollection
	}
	if cat == nil {
		cat = catalog.Default()
	}

	var opts []goption.ClientOption
	switch {
	case len(cfg.CredentialsJSON) > 0:
		opts = append(opts,
			goption.WithCredentialsJSON(cfg.CredentialsJSON),
			goption.WithScopes(fsapi.DatastoreScope))
	case cfg.Endpoint != "":
		opts = append(opts, goption.WithoutAuthentication())
	default:
		return nil, errors.New("missing firestore credentials")
	}
	if cfg.Endpoint != "" {
		opts = append(opts, goption.WithEndpoint(cfg.Endpoint))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, goption.WithHTTPClient(cfg.HTTPClient))
	}

	svc, err := fsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create firestore service: %w", err)
	}

	slog.InfoContext(ctx, "Firestore client created",
		"project", cfg.ProjectID,
		"database", cfg.Database,
		"series_collection", cfg.SeriesCollection)

	return &Client{
		svc:              svc,
		parent:           fmt.Sprintf("projects/%s/databases/%s/documents", cfg.ProjectID, cfg.Database),
		seriesCollection: cfg.SeriesCollection,
		reportCollection: cfg.ReportCollection,
		catalog:          cat,
	}, nil
}

// FetchSeries reads the newest limit monthly documents and extracts the
// value at regions.<region>.<indicator>. Months lacking the pair are gaps.
func (c *Client) FetchSeries(ctx context.Context, region, indicator string, limit int) (core.Series, error) {
	if limit <= 0 {
		return nil, nil
	}
	docs, err := c.latest(ctx, c.seriesCollection, limit)
	if err != nil {
		return nil, err
	}
	keys := c.indicatorKeys(indicator)
	series := make(core.Series, 0, len(docs))
	for _, doc := range docs {
		obs, ok, err := decodeObservation(doc, region, keys)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", docID(doc), err)
		}
		if ok {
			series = append(series, obs)
		}
	}
	return series, nil
}

// LatestReport returns the newest document of the report collection.
func (c *Client) LatestReport(ctx context.Context) (core.Report, bool, error) {
	docs, err := c.latest(ctx, c.reportCollection, 1)
	if err != nil {
		return core.Report{}, false, err
	}
	if len(docs) == 0 {
		return core.Report{}, false, nil
	}
	r, ok := decodeReport(docs[0])
	return r, ok, nil
}

func (c *Client) latest(ctx context.Context, collection string, limit int) ([]*fsapi.Document, error) {
	resp, err := c.svc.Projects.Databases.Documents.
		List(c.parent, collection).
		OrderBy(fieldYearMonth + " desc").
		PageSize(int64(limit)).
		Context(ctx).
		Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
			return nil, fmt.Errorf("list %s: %w", collection, docstore.ErrNotFound)
		}
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	return resp.Documents, nil
}

// indicatorKeys returns the document keys an indicator may be stored under,
// label first.
func (c *Client) indicatorKeys(code string) []string {
	if ind, ok := c.catalog.Indicator(code); ok && ind.Label != "" && ind.Label != code {
		return []string{ind.Label, code}
	}
	return []string{code}
}
