// Package services provides business logic and orchestration services.
//
// This file implements the Strategy Pattern for locating the observation a
// year-over-year trend is compared against. Series from the store are not
// guaranteed to be gap free, so the lookup is pluggable.

package services

import (
	"fmt"
	"strings"

	"tyotilasto/internal/core"
)

// Year strategy names accepted by TREND_YEAR_MATCH.
const (
	YearMatchPosition = "position"
	YearMatchCalendar = "calendar"
)

// YearStrategy resolves the "same month last year" observation of a series.
type YearStrategy interface {
	// PreviousYear returns the comparison observation for series[0], if any.
	PreviousYear(series core.Series) (core.Observation, bool)
}

// PositionalYearStrategy assumes one observation per month and takes index 12.
type PositionalYearStrategy struct{}

func (PositionalYearStrategy) PreviousYear(series core.Series) (core.Observation, bool) {
	return series.At(12)
}

// CalendarYearStrategy searches for the observation whose period is exactly
// twelve months before the current one, tolerating gaps in the series.
type CalendarYearStrategy struct{}

func (CalendarYearStrategy) PreviousYear(series core.Series) (core.Observation, bool) {
	current, ok := series.Latest()
	if !ok {
		return core.Observation{}, false
	}
	p, err := core.ParsePeriod(current.Period)
	if err != nil {
		return core.Observation{}, false
	}
	target := p.YearBefore()
	for _, o := range series[1:] {
		op, err := core.ParsePeriod(o.Period)
		if err != nil {
			continue
		}
		switch op.Compare(target) {
		case 0:
			return o, true
		case -1:
			// Newest first: everything after this is older still.
			return core.Observation{}, false
		}
	}
	return core.Observation{}, false
}

// yearStrategies is fixed at init and only read afterwards.
var yearStrategies = map[string]YearStrategy{
	YearMatchPosition: PositionalYearStrategy{},
	YearMatchCalendar: CalendarYearStrategy{},
}

// GetYearStrategy returns the strategy registered under name.
// An empty name selects the positional strategy.
func GetYearStrategy(name string) (YearStrategy, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = YearMatchPosition
	}
	s, ok := yearStrategies[name]
	if !ok {
		return nil, fmt.Errorf("unknown year match strategy: %s", name)
	}
	return s, nil
}
