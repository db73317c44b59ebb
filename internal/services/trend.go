package services

import "tyotilasto/internal/core"

// Aggregator turns a newest-first series into an IndicatorSummary.
// It performs no I/O and is safe for concurrent use.
type Aggregator struct {
	year YearStrategy
}

// NewAggregator returns an aggregator using the given year strategy.
// A nil strategy falls back to PositionalYearStrategy.
func NewAggregator(year YearStrategy) *Aggregator {
	if year == nil {
		year = PositionalYearStrategy{}
	}
	return &Aggregator{year: year}
}

var defaultAggregator = NewAggregator(nil)

// Aggregate summarizes series with the positional year strategy.
// It returns false when the series is empty.
func Aggregate(series core.Series) (core.IndicatorSummary, bool) {
	return defaultAggregator.Aggregate(series)
}

// Aggregate summarizes series. It returns false when the series is empty.
func (a *Aggregator) Aggregate(series core.Series) (core.IndicatorSummary, bool) {
	current, ok := series.Latest()
	if !ok {
		return core.IndicatorSummary{}, false
	}

	summary := core.IndicatorSummary{
		Value:  current.Value,
		Period: current.Period,
	}

	if prev, ok := series.At(1); ok {
		summary.MonthTrend = classify(current, &prev)
		summary.PreviousMonth = &prev
	}
	if prev, ok := a.year.PreviousYear(series); ok {
		summary.YearTrend = classify(current, &prev)
		summary.PreviousYear = &prev
	}
	return summary, true
}

// classify compares current against previous with inverted polarity:
// fewer unemployed is an improvement.
func classify(current core.Observation, previous *core.Observation) core.Trend {
	if previous == nil {
		return core.TrendNeutral
	}
	switch {
	case current.Value > previous.Value:
		return core.TrendDown
	case current.Value < previous.Value:
		return core.TrendUp
	default:
		return core.TrendNeutral
	}
}
