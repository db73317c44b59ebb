package format

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1 000"},
		{12345, "12 345"},
		{1234567, "1 234 567"},
		{-4321, "-4 321"},
		{12.5, "12,5"},
		{1234.75, "1 234,8"},
		{1234.8, "1 234,8"},
		{99.96, "100"},
		{math.NaN(), "–"},
		{math.Inf(1), "–"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Number(tt.in), "Number(%v)", tt.in)
	}
}

func TestNumberUsesASCIISpace(t *testing.T) {
	assert.NotContains(t, Number(12345), "\u00a0")
	assert.NotContains(t, Number(12345), "\u202f")
}
