package storage

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"tyotilasto/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "mirror", "tyotilasto.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSaveAndListObservations(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	err := repo.SaveSeries(ctx, "Helsinki", "TYOTTOMATLOPUSSA", core.Series{
		{Period: "2024-12", Value: 39000},
		{Period: "2025M07", Value: 41000},
		{Period: "202501", Value: 40000},
	})
	if err != nil {
		t.Fatalf("SaveSeries: %v", err)
	}

	rows, err := repo.ListObservations(ctx, "Helsinki", "TYOTTOMATLOPUSSA", 13)
	if err != nil {
		t.Fatalf("ListObservations: %v", err)
	}
	wantPeriods := []string{"2025M07", "2025M01", "2024M12"}
	if len(rows) != len(wantPeriods) {
		t.Fatalf("got %d rows", len(rows))
	}
	for i, p := range wantPeriods {
		if rows[i].Period != p {
			t.Errorf("row %d period = %s, want %s", i, rows[i].Period, p)
		}
	}

	// Upsert replaces the value for an existing period.
	if err := repo.SaveSeries(ctx, "Helsinki", "TYOTTOMATLOPUSSA", core.Series{{Period: "2025M07", Value: 41500}}); err != nil {
		t.Fatalf("SaveSeries upsert: %v", err)
	}
	rows, _ = repo.ListObservations(ctx, "Helsinki", "TYOTTOMATLOPUSSA", 1)
	if len(rows) != 1 || rows[0].Value.Float64 != 41500 {
		t.Fatalf("upsert not applied: %+v", rows)
	}

	n, err := repo.CountObservations(ctx)
	if err != nil || n != 3 {
		t.Fatalf("CountObservations = %d, %v", n, err)
	}
}

func TestSaveSeriesKeepsMissingValuesAsNull(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.SaveSeries(ctx, "Espoo", "TYOTTOMAT20", core.Series{{Period: "2025M07", Value: math.NaN()}}); err != nil {
		t.Fatalf("SaveSeries: %v", err)
	}
	rows, _ := repo.ListObservations(ctx, "Espoo", "TYOTTOMAT20", 13)
	if len(rows) != 1 || rows[0].Value.Valid {
		t.Fatalf("expected NULL value, got %+v", rows)
	}

	if err := repo.SaveSeries(ctx, "Espoo", "TYOTTOMAT20", core.Series{{Period: "soon", Value: 1}}); err == nil {
		t.Fatalf("expected error for bad period")
	}
}

func TestReports(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.LatestReport(ctx); !errors.Is(err, ErrNoReport) {
		t.Fatalf("expected ErrNoReport, got %v", err)
	}
	for _, r := range []core.Report{
		{Period: "2025M06", Text: "kesäkuu"},
		{Period: "2025-07", Text: "heinäkuu"},
	} {
		if err := repo.SaveReport(ctx, r); err != nil {
			t.Fatalf("SaveReport: %v", err)
		}
	}
	got, err := repo.LatestReport(ctx)
	if err != nil || got.Period != "2025M07" || got.Text != "heinäkuu" {
		t.Fatalf("LatestReport = %+v, %v", got, err)
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")
	for i := 0; i < 2; i++ {
		repo, err := NewSQLiteRepository(path)
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		repo.Close()
	}
}
