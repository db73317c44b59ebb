package adapters

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"tyotilasto/internal/core"
	"tyotilasto/internal/docstore/memory"
	"tyotilasto/internal/storage"
)

func newAdapter(t *testing.T) *SQLiteAdapter {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "mirror.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return NewSQLiteAdapter(repo)
}

func TestMirrorAndRead(t *testing.T) {
	src := memory.New()
	src.Put("Helsinki", "TYOTTOMATLOPUSSA",
		core.Observation{Period: "2025M07", Value: 41000},
		core.Observation{Period: "2025M06", Value: 42000},
	)
	src.Put("Vantaa", "TYOTTOMAT20", core.Observation{Period: "2025M07", Value: math.NaN()})
	src.SetReport(core.Report{Period: "2025M07", Text: "Työttömyys laski."})

	a := newAdapter(t)
	pairs := [][2]string{
		{"Helsinki", "TYOTTOMATLOPUSSA"},
		{"Vantaa", "TYOTTOMAT20"},
		{"Espoo", "TYOTTOMATLOPUSSA"},
	}
	n, err := a.Mirror(context.Background(), src, pairs, 13)
	if err != nil {
		t.Fatalf("Mirror: %v", err)
	}
	if n != 3 {
		t.Fatalf("Mirror wrote %d observations, want 3", n)
	}

	series, err := a.FetchSeries(context.Background(), "Helsinki", "TYOTTOMATLOPUSSA", 13)
	if err != nil {
		t.Fatalf("FetchSeries: %v", err)
	}
	if len(series) != 2 || series[0].Value != 41000 || series[0].Period != "2025M07" {
		t.Fatalf("unexpected series: %+v", series)
	}

	bad, _ := a.FetchSeries(context.Background(), "Vantaa", "TYOTTOMAT20", 13)
	if err := bad.Validate(); !errors.Is(err, core.ErrMalformedObservation) {
		t.Fatalf("NULL should read back as malformed, got %v", err)
	}

	r, ok, err := a.LatestReport(context.Background())
	if err != nil || !ok || r.Text != "Työttömyys laski." {
		t.Fatalf("LatestReport = %+v, %v, %v", r, ok, err)
	}
}

func TestLatestReportEmpty(t *testing.T) {
	a := newAdapter(t)
	if _, ok, err := a.LatestReport(context.Background()); ok || err != nil {
		t.Fatalf("empty mirror = %v, %v", ok, err)
	}
}
