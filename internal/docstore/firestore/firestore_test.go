package firestore

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tyotilasto/internal/catalog"
	"tyotilasto/internal/core"
	"tyotilasto/internal/docstore"
)

const totalLabel = "Työttömät työnhakijat yhteensä"

func summaryDoc(period string, helsinki int) string {
	return fmt.Sprintf(`{
		"name": "projects/demo/databases/(default)/documents/unemployment_general_summary/%[1]s",
		"fields": {
			"year_month": {"stringValue": "%[1]s"},
			"regions": {"mapValue": {"fields": {
				"Helsinki": {"mapValue": {"fields": {"%[2]s": {"integerValue": "%[3]d"}}}}
			}}}
		}
	}`, period, totalLabel, helsinki)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), Config{
		ProjectID:  "demo",
		Endpoint:   srv.URL + "/",
		HTTPClient: srv.Client(),
	}, catalog.Default())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestFetchSeries(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/projects/demo/databases/(default)/documents/unemployment_general_summary") {
			http.NotFound(w, r)
			return
		}
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"documents": [%s, %s, %s]}`,
			summaryDoc("2025M07", 41000), summaryDoc("2025M06", 42000), summaryDoc("2025M05", 40000))
	})

	series, err := c.FetchSeries(context.Background(), "Helsinki", "TYOTTOMATLOPUSSA", 13)
	if err != nil {
		t.Fatalf("FetchSeries: %v", err)
	}
	want := core.Series{
		{Period: "2025M07", Value: 41000},
		{Period: "2025M06", Value: 42000},
		{Period: "2025M05", Value: 40000},
	}
	if len(series) != len(want) {
		t.Fatalf("got %d observations, want %d", len(series), len(want))
	}
	for i := range want {
		if series[i] != want[i] {
			t.Errorf("observation %d = %+v, want %+v", i, series[i], want[i])
		}
	}
	if !strings.Contains(gotQuery, "pageSize=13") || !strings.Contains(gotQuery, "orderBy=year_month") {
		t.Errorf("unexpected query: %s", gotQuery)
	}

	// Region without data in any document is an empty series, not an error.
	series, err = c.FetchSeries(context.Background(), "Espoo", "TYOTTOMATLOPUSSA", 13)
	if err != nil || len(series) != 0 {
		t.Fatalf("Espoo = %v, %v", series, err)
	}
}

func TestFetchSeriesTransportError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"code": 503, "message": "unavailable"}}`, http.StatusServiceUnavailable)
	})
	if _, err := c.FetchSeries(context.Background(), "Helsinki", "TYOTTOMATLOPUSSA", 13); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLatestReport(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/monthly_reports"):
			if r.URL.Query().Get("pageSize") != "1" {
				t.Errorf("pageSize = %q", r.URL.Query().Get("pageSize"))
			}
			fmt.Fprint(w, `{"documents": [{
				"name": "projects/demo/databases/(default)/documents/monthly_reports/2025M07",
				"fields": {"year_month": {"stringValue": "2025M07"}, "report": {"stringValue": "Työttömyys laski.\nHyvä uutinen."}}
			}]}`)
		default:
			http.NotFound(w, r)
		}
	})

	r, ok, err := c.LatestReport(context.Background())
	if err != nil || !ok {
		t.Fatalf("LatestReport = %v, %v", ok, err)
	}
	if r.Period != "2025M07" || !strings.Contains(r.Text, "\n") {
		t.Fatalf("unexpected report: %+v", r)
	}
}

func TestLatestReportEmptyAndMissing(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	})
	if _, ok, err := c.LatestReport(context.Background()); ok || err != nil {
		t.Fatalf("empty collection = %v, %v", ok, err)
	}

	c = newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error": {"code": 404, "message": "database not found"}}`)
	})
	_, _, err := c.LatestReport(context.Background())
	if !errors.Is(err, docstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNewRequiresProjectAndCredentials(t *testing.T) {
	if _, err := New(context.Background(), Config{}, nil); err == nil {
		t.Fatalf("expected error without project id")
	}
	if _, err := New(context.Background(), Config{ProjectID: "demo"}, nil); err == nil {
		t.Fatalf("expected error without credentials")
	}
}

func TestCredentialsLoad(t *testing.T) {
	key := `{"type": "service_account", "project_id": "tyotilasto-demo"}`

	dir := t.TempDir()
	path := filepath.Join(dir, "sa.json")
	if err := os.WriteFile(path, []byte(key), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		creds   Credentials
		wantErr error
	}{
		{name: "inline", creds: Credentials{JSON: key}},
		{name: "file", creds: Credentials{File: path}},
		{name: "base64", creds: Credentials{Base64JSON: base64.StdEncoding.EncodeToString([]byte(key))}},
		{name: "inline wins", creds: Credentials{JSON: key, File: "/does/not/exist"}},
		{name: "none", creds: Credentials{}, wantErr: ErrNoCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := tt.creds.Load()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("got %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if ProjectID(b) != "tyotilasto-demo" {
				t.Fatalf("ProjectID = %q", ProjectID(b))
			}
		})
	}

	if _, err := (Credentials{Base64JSON: "!!!"}).Load(); err == nil {
		t.Fatalf("expected base64 error")
	}
	if _, err := (Credentials{JSON: "not json"}).Load(); err == nil {
		t.Fatalf("expected json error")
	}
}
