package core

import "time"

// IndicatorSummary is the latest value of one indicator with its trend arrows.
type IndicatorSummary struct {
	Value      float64
	MonthTrend Trend
	YearTrend  Trend

	// Informational, for display only.
	Period        string
	PreviousMonth *Observation
	PreviousYear  *Observation
}

// RegionSummary maps indicator code to its summary.
type RegionSummary map[string]IndicatorSummary

// FailureKind tells a fetch error apart from a malformed series.
type FailureKind string

const (
	FailureFetch     FailureKind = "fetch_error"
	FailureTimeout   FailureKind = "timeout"
	FailureMalformed FailureKind = "malformed"
)

// PairFailure records a region/indicator pair that could not be computed.
type PairFailure struct {
	Region    string
	Indicator string
	Kind      FailureKind
	Err       error
}

// Summary is the render-ready result of one build.
type Summary struct {
	Regions     map[string]RegionSummary
	Failures    []PairFailure
	GeneratedAt time.Time
}

// NewSummary returns an empty summary stamped with now.
func NewSummary(now time.Time) Summary {
	return Summary{Regions: make(map[string]RegionSummary), GeneratedAt: now}
}

// Put stores an indicator summary under its region.
func (s *Summary) Put(region, indicator string, is IndicatorSummary) {
	if s.Regions == nil {
		s.Regions = make(map[string]RegionSummary)
	}
	rs, ok := s.Regions[region]
	if !ok {
		rs = make(RegionSummary)
		s.Regions[region] = rs
	}
	rs[indicator] = is
}

// Get returns the summary for a region/indicator pair.
func (s Summary) Get(region, indicator string) (IndicatorSummary, bool) {
	rs, ok := s.Regions[region]
	if !ok {
		return IndicatorSummary{}, false
	}
	is, ok := rs[indicator]
	return is, ok
}

// Len counts the computed pairs across all regions.
func (s Summary) Len() int {
	n := 0
	for _, rs := range s.Regions {
		n += len(rs)
	}
	return n
}

// IsEmpty is true when no pair could be computed.
func (s Summary) IsEmpty() bool {
	return s.Len() == 0
}

// Report is the latest monthly narrative.
type Report struct {
	Period string
	Text   string
}
