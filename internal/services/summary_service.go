package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"tyotilasto/internal/cache"
	"tyotilasto/internal/catalog"
	"tyotilasto/internal/core"
	"tyotilasto/internal/docstore"
	applog "tyotilasto/internal/log"
	"tyotilasto/internal/metrics"
)

// SeriesLimit is how many observations are read per pair: the current month
// plus twelve earlier ones for the year-over-year comparison.
const SeriesLimit = 13

const summaryCacheKey = "summary"

// SummaryOptions tunes the fan-out.
type SummaryOptions struct {
	Concurrency  int           // parallel reads, default 8
	FetchTimeout time.Duration // per read, default 10s
	CacheTTL     time.Duration // CachedSummary lifetime, default 5m
	BuildTimeout time.Duration // shared build started by CachedSummary, default 1m
	YearStrategy YearStrategy
}

// SummaryService builds the dashboard summary from the document store.
type SummaryService struct {
	fetcher    docstore.SeriesFetcher
	catalog    *catalog.Catalog
	aggregator *Aggregator
	opts       SummaryOptions
	metrics    *metrics.Metrics
	logger     *applog.Logger

	cache *cache.LRUCache[core.Summary]
	group singleflight.Group

	// fillMu orders cache fills against Refresh. gen is bumped on every
	// Refresh; a build started under an older gen never fills the cache.
	fillMu sync.Mutex
	gen    uint64

	now func() time.Time
}

// NewSummaryService wires a builder. m and logger may be nil.
func NewSummaryService(fetcher docstore.SeriesFetcher, cat *catalog.Catalog, opts SummaryOptions, m *metrics.Metrics, logger *applog.Logger) *SummaryService {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 10 * time.Second
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.BuildTimeout <= 0 {
		opts.BuildTimeout = time.Minute
	}
	if logger == nil {
		logger = applog.New(applog.Config{})
	}
	return &SummaryService{
		fetcher:    fetcher,
		catalog:    cat,
		aggregator: NewAggregator(opts.YearStrategy),
		opts:       opts,
		metrics:    m,
		logger:     logger.WithComponent(applog.ComponentSummary),
		cache:      cache.NewLRUCache[core.Summary](1, opts.CacheTTL),
		now:        time.Now,
	}
}

// Cache exposes the summary cache so it can be registered for cleanup.
func (s *SummaryService) Cache() *cache.LRUCache[core.Summary] { return s.cache }

// Build reads every catalog pair and aggregates it. A pair that cannot be
// read or is malformed is omitted and listed in Summary.Failures; it never
// aborts the others. Build only fails when ctx is cancelled.
func (s *SummaryService) Build(ctx context.Context) (core.Summary, error) {
	start := s.now()
	summary := core.NewSummary(start)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)

	pairs := s.catalog.Pairs()
	for _, pair := range pairs {
		region, indicator := pair[0], pair[1]
		g.Go(func() error {
			is, ok, failure := s.buildPair(gctx, region, indicator)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case failure != nil:
				summary.Failures = append(summary.Failures, *failure)
			case ok:
				summary.Put(region, indicator, is)
			}
			return nil
		})
	}
	_ = g.Wait()

	// Report failures in catalog order regardless of completion order.
	slices.SortFunc(summary.Failures, func(a, b core.PairFailure) int {
		return slices.Index(pairs, [2]string{a.Region, a.Indicator}) - slices.Index(pairs, [2]string{b.Region, b.Indicator})
	})

	if err := ctx.Err(); err != nil {
		return summary, fmt.Errorf("build summary: %w", err)
	}

	s.metrics.ObserveBuild(s.now().Sub(start))
	s.logger.InfoContext(ctx, "Summary built",
		applog.FieldPairs, summary.Len(),
		applog.FieldFailures, len(summary.Failures),
		applog.FieldDuration, s.now().Sub(start).Milliseconds())
	return summary, nil
}

func (s *SummaryService) buildPair(ctx context.Context, region, indicator string) (core.IndicatorSummary, bool, *core.PairFailure) {
	readCtx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
	defer cancel()

	start := time.Now()
	series, err := s.fetcher.FetchSeries(readCtx, region, indicator, SeriesLimit)
	if err != nil {
		kind := core.FailureFetch
		switch {
		case errors.Is(err, core.ErrMalformedObservation):
			kind = core.FailureMalformed
		case errors.Is(err, context.DeadlineExceeded) || errors.Is(readCtx.Err(), context.DeadlineExceeded):
			kind = core.FailureTimeout
		}
		s.metrics.ObserveFetch(region, "error", time.Since(start))
		return core.IndicatorSummary{}, false, s.fail(ctx, region, indicator, kind, err)
	}
	s.metrics.ObserveFetch(region, "ok", time.Since(start))

	if err := series.Validate(); err != nil {
		return core.IndicatorSummary{}, false, s.fail(ctx, region, indicator, core.FailureMalformed, err)
	}

	is, ok := s.aggregator.Aggregate(series)
	if !ok {
		s.logger.DebugContext(ctx, "No data for pair", applog.NewFields().WithPair(region, indicator)...)
	}
	return is, ok, nil
}

func (s *SummaryService) fail(ctx context.Context, region, indicator string, kind core.FailureKind, err error) *core.PairFailure {
	s.metrics.PairFailed(string(kind))
	s.logger.WarnContext(ctx, "Failed to summarize pair",
		applog.NewFields().
			WithPair(region, indicator).
			With(applog.FieldFailure, string(kind)).
			WithError(err)...)
	return &core.PairFailure{Region: region, Indicator: indicator, Kind: kind, Err: err}
}

// CachedSummary returns the cached summary or builds a new one. Concurrent
// callers on a cold cache share a single build. The build is detached from
// the caller's cancellation, so a caller that gives up only stops waiting.
func (s *SummaryService) CachedSummary(ctx context.Context) (core.Summary, error) {
	if sum, ok := s.cache.Get(summaryCacheKey); ok {
		s.metrics.CacheHit()
		return sum, nil
	}
	s.metrics.CacheMiss()

	ch := s.group.DoChan(summaryCacheKey, func() (any, error) {
		if sum, ok := s.cache.Get(summaryCacheKey); ok {
			return sum, nil
		}
		s.fillMu.Lock()
		gen := s.gen
		s.fillMu.Unlock()

		buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.BuildTimeout)
		defer cancel()
		sum, err := s.Build(buildCtx)
		if err != nil {
			return core.Summary{}, err
		}
		// Do not pin an all-failed build for a whole TTL, nor one that a
		// Refresh has superseded.
		s.fillMu.Lock()
		if (!sum.IsEmpty() || len(sum.Failures) == 0) && s.gen == gen {
			s.cache.Set(summaryCacheKey, sum)
		}
		s.fillMu.Unlock()
		return sum, nil
	})

	select {
	case <-ctx.Done():
		return core.Summary{}, fmt.Errorf("cached summary: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return core.Summary{}, res.Err
		}
		return res.Val.(core.Summary), nil
	}
}

// Invalidate drops the cached summary.
func (s *SummaryService) Invalidate() {
	s.cache.Clear()
}

// Refresh drops the cache and rebuilds it. A build already in flight is not
// joined: it may have read data older than the event behind this refresh.
func (s *SummaryService) Refresh(ctx context.Context) (core.Summary, error) {
	s.fillMu.Lock()
	s.gen++
	s.Invalidate()
	s.fillMu.Unlock()
	s.group.Forget(summaryCacheKey)
	return s.CachedSummary(ctx)
}

// OrderedRegion is one dashboard row group in catalog order.
type OrderedRegion struct {
	Name       string
	Code       string
	Indicators []OrderedIndicator
}

// OrderedIndicator is an indicator row. Present is false for omitted pairs.
type OrderedIndicator struct {
	Code    string
	Label   string
	Present bool
	Failed  bool
	Summary core.IndicatorSummary
}

// Ordered lays summary out in catalog order. Regions with neither data nor
// failures are skipped.
func (s *SummaryService) Ordered(summary core.Summary) []OrderedRegion {
	return OrderSummary(s.catalog, summary)
}

// OrderSummary lays summary out in the order of cat.
func OrderSummary(cat *catalog.Catalog, summary core.Summary) []OrderedRegion {
	failed := make(map[[2]string]bool, len(summary.Failures))
	for _, f := range summary.Failures {
		failed[[2]string{f.Region, f.Indicator}] = true
	}

	var out []OrderedRegion
	for _, r := range cat.Regions {
		row := OrderedRegion{Name: r.Name, Code: r.Code}
		hasData := false
		for _, ind := range cat.Indicators {
			is, ok := summary.Get(r.Name, ind.Code)
			isFailed := failed[[2]string{r.Name, ind.Code}]
			if ok || isFailed {
				hasData = true
			}
			row.Indicators = append(row.Indicators, OrderedIndicator{
				Code:    ind.Code,
				Label:   cat.Label(ind.Code),
				Present: ok,
				Failed:  isFailed,
				Summary: is,
			})
		}
		if hasData {
			out = append(out, row)
		}
	}
	return out
}
