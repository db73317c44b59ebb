package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Period is a calendar month used as an ordinal key for observations.
type Period struct {
	Year  int
	Month int // 1-12
}

// ParsePeriod accepts "2025M07" (StatFin), "2025-07" and "202507".
func ParsePeriod(value string) (Period, error) {
	v := strings.ToUpper(strings.TrimSpace(value))
	var yearStr, monthStr string
	switch {
	case len(v) == 7 && v[4] == 'M':
		yearStr, monthStr = v[:4], v[5:]
	case len(v) == 7 && v[4] == '-':
		yearStr, monthStr = v[:4], v[5:]
	case len(v) == 6 && isDigits(v):
		yearStr, monthStr = v[:4], v[4:]
	default:
		return Period{}, fmt.Errorf("%w: invalid period %q", ErrMalformedObservation, value)
	}
	year, errYear := strconv.Atoi(yearStr)
	month, errMonth := strconv.Atoi(monthStr)
	if errYear != nil || errMonth != nil || month < 1 || month > 12 {
		return Period{}, fmt.Errorf("%w: invalid period %q", ErrMalformedObservation, value)
	}
	return Period{Year: year, Month: month}, nil
}

// String renders the period in StatFin form, e.g. "2025M07".
func (p Period) String() string {
	return fmt.Sprintf("%04dM%02d", p.Year, p.Month)
}

// Label renders the period as "2025-07".
func (p Period) Label() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// YearBefore returns the same month one year earlier.
func (p Period) YearBefore() Period {
	return Period{Year: p.Year - 1, Month: p.Month}
}

// MonthBefore returns the preceding calendar month.
func (p Period) MonthBefore() Period {
	if p.Month == 1 {
		return Period{Year: p.Year - 1, Month: 12}
	}
	return Period{Year: p.Year, Month: p.Month - 1}
}

func (p Period) key() int {
	return p.Year*100 + p.Month
}

// Compare returns -1, 0 or 1.
func (p Period) Compare(other Period) int {
	switch a, b := p.key(), other.key(); {
	case a > b:
		return 1
	case a < b:
		return -1
	default:
		return 0
	}
}

// ComparePeriods parses and compares two period keys regardless of their notation.
func ComparePeriods(a, b string) (int, error) {
	pa, err := ParsePeriod(a)
	if err != nil {
		return 0, err
	}
	pb, err := ParsePeriod(b)
	if err != nil {
		return 0, err
	}
	return pa.Compare(pb), nil
}

func isDigits(value string) bool {
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
