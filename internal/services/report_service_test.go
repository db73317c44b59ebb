package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tyotilasto/internal/core"
	"tyotilasto/internal/docstore"
)

type fakeReports struct {
	report core.Report
	ok     bool
	err    error
}

func (f fakeReports) LatestReport(context.Context) (core.Report, bool, error) {
	return f.report, f.ok, f.err
}

func TestReportLatest(t *testing.T) {
	tests := []struct {
		name    string
		fetcher fakeReports
		wantOK  bool
		wantErr bool
	}{
		{"found", fakeReports{report: core.Report{Period: "2025M07", Text: "Työttömyys laski."}, ok: true}, true, false},
		{"absent", fakeReports{}, false, false},
		{"not found sentinel", fakeReports{err: docstore.ErrNotFound}, false, false},
		{"blank text", fakeReports{report: core.Report{Text: "  \n"}, ok: true}, false, false},
		{"transport error", fakeReports{err: errors.New("unavailable")}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewReportService(tt.fetcher, 0, nil)
			r, ok, err := svc.Latest(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, "2025M07", r.Period)
			}
		})
	}
}

func TestParagraphs(t *testing.T) {
	text := "Otsikko\r\nEnsimmäinen rivi\n\n\n  Toinen kappale  \nJatkuu\n\n"
	got := Paragraphs(text)
	assert.Equal(t, [][]string{
		{"Otsikko", "Ensimmäinen rivi"},
		{"Toinen kappale", "Jatkuu"},
	}, got)

	assert.Empty(t, Paragraphs(""))
	assert.Empty(t, Paragraphs(" \n \n"))
}
