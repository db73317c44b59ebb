// Package memory is an in-process document store seeded from fixture files.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"tyotilasto/internal/core"
	"tyotilasto/internal/docstore"
)

const (
	ObservationsFile = "observations.json"
	ReportFile       = "report.txt"
)

type pairKey struct{ region, indicator string }

type Store struct {
	mu     sync.RWMutex
	series map[pairKey]core.Series
	report *core.Report
}

var (
	_ docstore.SeriesFetcher = (*Store)(nil)
	_ docstore.ReportFetcher = (*Store)(nil)
)

func New() *Store {
	return &Store{series: make(map[pairKey]core.Series)}
}

// fixture is the on-disk layout of observations.json.
type fixture struct {
	Series []struct {
		Region       string `json:"region"`
		Indicator    string `json:"indicator"`
		Observations []struct {
			Period string   `json:"period"`
			Value  *float64 `json:"value"`
		} `json:"observations"`
	} `json:"series"`
}

// NewFromDir seeds a store from base/observations.json and base/report.txt.
// Missing files leave the store empty; unreadable ones are errors.
func NewFromDir(base string) (*Store, error) {
	s := New()

	data, err := os.ReadFile(filepath.Join(base, ObservationsFile))
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", ObservationsFile, err)
	default:
		if err := s.load(data); err != nil {
			return nil, fmt.Errorf("%s: %w", ObservationsFile, err)
		}
	}

	text, err := os.ReadFile(filepath.Join(base, ReportFile))
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", ReportFile, err)
	default:
		s.SetReport(core.Report{Period: s.newestPeriod(), Text: string(text)})
	}
	return s, nil
}

func (s *Store) load(data []byte) error {
	var fx fixture
	if err := json.Unmarshal(data, &fx); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	for _, sr := range fx.Series {
		obs := make([]core.Observation, 0, len(sr.Observations))
		for _, o := range sr.Observations {
			v := core.Observation{Period: o.Period}
			if o.Value == nil {
				// Kept so that reads surface it as malformed.
				v.Value = math.NaN()
			} else {
				v.Value = *o.Value
			}
			obs = append(obs, v)
		}
		s.Put(sr.Region, sr.Indicator, obs...)
	}
	return nil
}

// Put adds observations for a pair, replacing any with the same period.
// The stored series is kept newest first.
func (s *Store) Put(region, indicator string, obs ...core.Observation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{region, indicator}
	merged := append(core.Series(nil), s.series[key]...)
	for _, o := range obs {
		merged = slices.DeleteFunc(merged, func(e core.Observation) bool {
			return samePeriod(e.Period, o.Period)
		})
		merged = append(merged, o)
	}
	slices.SortStableFunc(merged, func(a, b core.Observation) int {
		cmp, err := core.ComparePeriods(b.Period, a.Period)
		if err != nil {
			return strings.Compare(b.Period, a.Period)
		}
		return cmp
	})
	s.series[key] = merged
}

// SetReport replaces the stored report.
func (s *Store) SetReport(r core.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.report = &r
}

// FetchSeries returns up to limit observations, newest first.
func (s *Store) FetchSeries(ctx context.Context, region, indicator string, limit int) (core.Series, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.series[pairKey{region, indicator}]
	if limit < len(stored) {
		stored = stored[:max(limit, 0)]
	}
	return append(core.Series(nil), stored...), nil
}

func (s *Store) LatestReport(ctx context.Context) (core.Report, bool, error) {
	if err := ctx.Err(); err != nil {
		return core.Report{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.report == nil {
		return core.Report{}, false, nil
	}
	return *s.report, true, nil
}

func (s *Store) newestPeriod() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	newest := ""
	for _, series := range s.series {
		if len(series) == 0 {
			continue
		}
		p := series[0].Period
		if newest == "" {
			newest = p
			continue
		}
		if cmp, err := core.ComparePeriods(p, newest); err == nil && cmp > 0 {
			newest = p
		}
	}
	return newest
}

func samePeriod(a, b string) bool {
	cmp, err := core.ComparePeriods(a, b)
	if err != nil {
		return a == b
	}
	return cmp == 0
}
