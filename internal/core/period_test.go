package core

import "testing"

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in      string
		want    Period
		wantErr bool
	}{
		{in: "2025M07", want: Period{2025, 7}},
		{in: "2025m12", want: Period{2025, 12}},
		{in: "2025-01", want: Period{2025, 1}},
		{in: "202503", want: Period{2025, 3}},
		{in: " 2024M02 ", want: Period{2024, 2}},
		{in: "2025M13", wantErr: true},
		{in: "2025M00", wantErr: true},
		{in: "2025", wantErr: true},
		{in: "", wantErr: true},
		{in: "abcdMef", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePeriod(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParsePeriod(%q) expected error, got %v", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePeriod(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParsePeriod(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestPeriodArithmetic(t *testing.T) {
	p := Period{Year: 2025, Month: 1}
	if got := p.MonthBefore(); got != (Period{2024, 12}) {
		t.Errorf("MonthBefore = %v", got)
	}
	if got := p.YearBefore(); got != (Period{2024, 1}) {
		t.Errorf("YearBefore = %v", got)
	}
	if p.String() != "2025M01" || p.Label() != "2025-01" {
		t.Errorf("formatting: %s %s", p.String(), p.Label())
	}
}

func TestComparePeriods(t *testing.T) {
	cmp, err := ComparePeriods("2025M07", "2025-06")
	if err != nil || cmp != 1 {
		t.Fatalf("got %d, %v", cmp, err)
	}
	cmp, err = ComparePeriods("2024M12", "202501")
	if err != nil || cmp != -1 {
		t.Fatalf("got %d, %v", cmp, err)
	}
	cmp, err = ComparePeriods("2025M07", "2025-07")
	if err != nil || cmp != 0 {
		t.Fatalf("got %d, %v", cmp, err)
	}
	if _, err := ComparePeriods("x", "2025M01"); err == nil {
		t.Fatalf("expected parse error")
	}
}
