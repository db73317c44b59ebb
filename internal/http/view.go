package http

import (
	"fmt"
	"html/template"
	"time"

	"tyotilasto/internal/core"
	"tyotilasto/internal/format"
	"tyotilasto/internal/news"
	"tyotilasto/internal/services"
)

// Fallback texts shown in place of a panel.
const (
	msgNoData       = "Dataa ei löytynyt."
	msgLoadFailed   = "Datan lataus epäonnistui."
	msgNoReport     = "Raporttia ei löytynyt."
	msgReportFailed = "Raportin lataus epäonnistui."
	msgNoNews       = "Uutisia ei löytynyt."
	msgNewsFailed   = "Uutisten lataus epäonnistui."
)

type summaryView struct {
	Regions     []services.OrderedRegion
	Message     string
	Failures    int
	GeneratedAt time.Time
}

// newSummaryView picks the fallback: an empty summary with failures is a
// load error, one without is simply no data.
func newSummaryView(sum core.Summary, rows []services.OrderedRegion, err error) summaryView {
	switch {
	case err != nil:
		return summaryView{Message: msgLoadFailed}
	case sum.IsEmpty() && len(sum.Failures) > 0:
		return summaryView{Message: msgLoadFailed, Failures: len(sum.Failures), GeneratedAt: sum.GeneratedAt}
	case sum.IsEmpty():
		return summaryView{Message: msgNoData, GeneratedAt: sum.GeneratedAt}
	}
	return summaryView{Regions: rows, Failures: len(sum.Failures), GeneratedAt: sum.GeneratedAt}
}

type reportView struct {
	Period     string
	Paragraphs [][]string
	Message    string
}

func newReportView(r core.Report, ok bool, err error) reportView {
	switch {
	case err != nil:
		return reportView{Message: msgReportFailed}
	case !ok:
		return reportView{Message: msgNoReport}
	}
	return reportView{Period: r.Period, Paragraphs: services.Paragraphs(r.Text)}
}

type newsView struct {
	Articles []news.Article
	Message  string
}

func newNewsView(articles []news.Article, err error) newsView {
	switch {
	case err != nil:
		return newsView{Message: msgNewsFailed}
	case len(articles) == 0:
		return newsView{Message: msgNoNews}
	}
	return newsView{Articles: articles}
}

type indexView struct {
	Summary summaryView
	Report  reportView
	HasNews bool
	Year    int
}

var templateFuncs = template.FuncMap{
	"arrow":      arrow,
	"trendClass": trendClass,
	"trendTitle": trendTitle,
	"number":     format.Number,
	"period":     periodLabel,
	"datetime":   formatDateTime,
}

func arrow(t core.Trend) string {
	switch t {
	case core.TrendUp:
		return "▲"
	case core.TrendDown:
		return "▼"
	}
	return ""
}

func trendClass(t core.Trend) string {
	switch t {
	case core.TrendUp:
		return "arrow-up"
	case core.TrendDown:
		return "arrow-down"
	}
	return "arrow-neutral"
}

func trendTitle(t core.Trend) string {
	switch t {
	case core.TrendUp:
		return "Parantunut"
	case core.TrendDown:
		return "Heikentynyt"
	}
	return "Ennallaan"
}

// periodLabel shows "2025M07" as "07/2025"; unparsable keys pass through.
func periodLabel(s string) string {
	p, err := core.ParsePeriod(s)
	if err != nil {
		return s
	}
	return fmt.Sprintf("%02d/%04d", p.Month, p.Year)
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2.1.2006 klo 15.04")
}
