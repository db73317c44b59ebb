package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tyotilasto/internal/core"
	"tyotilasto/internal/services"
)

func TestPrintSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printSummary(&buf, core.NewSummary(time.Now()), nil))
	assert.Equal(t, "Dataa ei löytynyt.\n", buf.String())
}

func TestPrintSummaryRows(t *testing.T) {
	sum := core.NewSummary(time.Now())
	sum.Put("Helsinki", "TOTAL", core.IndicatorSummary{Value: 41234, Period: "2025M07", MonthTrend: core.TrendUp})
	sum.Failures = []core.PairFailure{{Region: "Helsinki", Indicator: "YOUTH", Kind: core.FailureTimeout}}

	rows := []services.OrderedRegion{{
		Name: "Helsinki",
		Indicators: []services.OrderedIndicator{
			{Code: "TOTAL", Label: "Yhteensä", Present: true, Summary: sum.Regions["Helsinki"]["TOTAL"]},
			{Code: "YOUTH", Label: "Alle 25", Failed: true},
			{Code: "LONG", Label: "Pitkäaikaiset"},
		},
	}}

	var buf bytes.Buffer
	require.NoError(t, printSummary(&buf, sum, rows))
	out := buf.String()
	assert.Contains(t, out, "Helsinki")
	assert.Contains(t, out, "41 234")
	assert.Contains(t, out, "up")
	assert.Contains(t, out, "virhe")
	assert.NotContains(t, out, "Pitkäaikaiset")
	assert.Contains(t, out, "1 pairs, 1 failures")
}
