// Package format renders numbers for the dashboard and the CLI.
package format

import (
	"math"

	"github.com/dustin/go-humanize"
)

const (
	wholeFormat   = "# ###."
	decimalFormat = "# ###,#"
)

// Number renders v the Finnish way: an ASCII space groups thousands and a
// comma separates the single decimal. Whole numbers print without decimals.
func Number(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "–"
	}
	// Round here so humanize's truncation never sees 1234.7999...
	v = math.Round(v*10) / 10
	if v == math.Trunc(v) {
		return humanize.FormatFloat(wholeFormat, v)
	}
	return humanize.FormatFloat(decimalFormat, v)
}
