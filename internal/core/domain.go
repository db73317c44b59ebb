package core

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

const (
	TrendNeutral Trend = iota
	TrendUp
	TrendDown
)

type (
	// Trend classifies how an unemployment figure moved between two periods.
	// Polarity is inverted: a falling value is an improvement and reads as Up.
	Trend int

	// Observation is a single periodic measurement for one region/indicator pair.
	Observation struct {
		Period string  // e.g. "2025M07" or "2025-07"
		Value  float64 // NaN marks a missing value
	}

	// Series holds observations for one region/indicator pair, newest first.
	Series []Observation
)

var (
	ErrMalformedObservation = errors.New("malformed observation")
	ErrUnorderedSeries      = errors.New("series is not strictly newest-first")
)

func (t Trend) String() string {
	switch t {
	case TrendUp:
		return "up"
	case TrendDown:
		return "down"
	default:
		return "neutral"
	}
}

// MarshalText renders the trend as "up", "down" or "neutral".
func (t Trend) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// ParseTrend is the inverse of Trend.String.
func ParseTrend(s string) (Trend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return TrendUp, nil
	case "down":
		return TrendDown, nil
	case "neutral", "":
		return TrendNeutral, nil
	}
	return TrendNeutral, fmt.Errorf("unknown trend %q", s)
}

// Validate reports whether the observation carries both a period and a finite value.
func (o Observation) Validate() error {
	if strings.TrimSpace(o.Period) == "" {
		return fmt.Errorf("%w: missing period", ErrMalformedObservation)
	}
	if math.IsNaN(o.Value) || math.IsInf(o.Value, 0) {
		return fmt.Errorf("%w: missing value for period %s", ErrMalformedObservation, o.Period)
	}
	return nil
}

// Validate checks every observation and the newest-first ordering.
// A single bad entry rejects the whole series.
func (s Series) Validate() error {
	for i, o := range s {
		if err := o.Validate(); err != nil {
			return fmt.Errorf("observation %d: %w", i, err)
		}
		if i == 0 {
			continue
		}
		prev := s[i-1]
		cmp, err := ComparePeriods(prev.Period, o.Period)
		if err != nil {
			return fmt.Errorf("observation %d: %w", i, err)
		}
		if cmp <= 0 {
			return fmt.Errorf("%w: %s before %s", ErrUnorderedSeries, prev.Period, o.Period)
		}
	}
	return nil
}

// Latest returns the newest observation, if any.
func (s Series) Latest() (Observation, bool) {
	if len(s) == 0 {
		return Observation{}, false
	}
	return s[0], true
}

// At returns the observation at index i, if present.
func (s Series) At(i int) (Observation, bool) {
	if i < 0 || i >= len(s) {
		return Observation{}, false
	}
	return s[i], true
}
