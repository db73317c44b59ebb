package http

import (
	"net/http"
	"time"

	"tyotilasto/internal/core"
	"tyotilasto/internal/services"
)

type (
	observationJSON struct {
		Period string  `json:"period"`
		Value  float64 `json:"value"`
	}

	indicatorJSON struct {
		Code          string           `json:"code"`
		Label         string           `json:"label"`
		Value         float64          `json:"value"`
		Period        string           `json:"period,omitempty"`
		MonthTrend    core.Trend       `json:"month_trend"`
		YearTrend     core.Trend       `json:"year_trend"`
		PreviousMonth *observationJSON `json:"previous_month,omitempty"`
		PreviousYear  *observationJSON `json:"previous_year,omitempty"`
	}

	regionJSON struct {
		Name       string          `json:"name"`
		Code       string          `json:"code,omitempty"`
		Indicators []indicatorJSON `json:"indicators"`
	}

	failureJSON struct {
		Region    string `json:"region"`
		Indicator string `json:"indicator"`
		Kind      string `json:"kind"`
	}

	// SummaryJSON is the /api/summary body and the tilastoctl --json output.
	SummaryJSON struct {
		GeneratedAt time.Time     `json:"generated_at"`
		Regions     []regionJSON  `json:"regions"`
		Failures    []failureJSON `json:"failures"`
	}

	reportJSON struct {
		Period     string     `json:"period"`
		Text       string     `json:"text"`
		Paragraphs [][]string `json:"paragraphs"`
	}

	errorJSON struct {
		Error string `json:"error"`
	}
)

func toObservationJSON(o *core.Observation) *observationJSON {
	if o == nil {
		return nil
	}
	return &observationJSON{Period: o.Period, Value: o.Value}
}

// NewSummaryJSON lays sum out in catalog order. Absent pairs are omitted;
// failed pairs appear only under failures.
func NewSummaryJSON(sum core.Summary, rows []services.OrderedRegion) SummaryJSON {
	out := SummaryJSON{
		GeneratedAt: sum.GeneratedAt,
		Regions:     make([]regionJSON, 0, len(rows)),
		Failures:    make([]failureJSON, 0, len(sum.Failures)),
	}
	for _, row := range rows {
		region := regionJSON{Name: row.Name, Code: row.Code, Indicators: []indicatorJSON{}}
		for _, ind := range row.Indicators {
			if !ind.Present {
				continue
			}
			region.Indicators = append(region.Indicators, indicatorJSON{
				Code:          ind.Code,
				Label:         ind.Label,
				Value:         ind.Summary.Value,
				Period:        ind.Summary.Period,
				MonthTrend:    ind.Summary.MonthTrend,
				YearTrend:     ind.Summary.YearTrend,
				PreviousMonth: toObservationJSON(ind.Summary.PreviousMonth),
				PreviousYear:  toObservationJSON(ind.Summary.PreviousYear),
			})
		}
		out.Regions = append(out.Regions, region)
	}
	for _, f := range sum.Failures {
		out.Failures = append(out.Failures, failureJSON{Region: f.Region, Indicator: f.Indicator, Kind: string(f.Kind)})
	}
	return out
}

func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.summaries.CachedSummary(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorJSON{Error: "summary unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, NewSummaryJSON(sum, s.summaries.Ordered(sum)))
}

func (s *Server) handleAPIReport(w http.ResponseWriter, r *http.Request) {
	report, ok, err := s.reports.Latest(r.Context())
	switch {
	case err != nil:
		writeJSON(w, http.StatusBadGateway, errorJSON{Error: "report unavailable"})
	case !ok:
		writeJSON(w, http.StatusNotFound, errorJSON{Error: "report not found"})
	default:
		writeJSON(w, http.StatusOK, reportJSON{
			Period:     report.Period,
			Text:       report.Text,
			Paragraphs: services.Paragraphs(report.Text),
		})
	}
}
