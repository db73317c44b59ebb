package http

import (
	"bytes"
	"context"
	"net/http"
	"sort"
	"time"

	applog "tyotilasto/internal/log"
)

const readyTimeout = 5 * time.Second

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	})
}

// handleReady runs every registered check under a shared timeout.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	status, httpStatus := "ready", http.StatusOK
	checks := make(map[string]string, len(s.checks)+1)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := s.checks[name](ctx); err != nil {
			checks[name] = "failed: " + err.Error()
			status, httpStatus = "not_ready", http.StatusServiceUnavailable
			applog.FromContext(ctx).WarnContext(ctx, "Readiness check failed", "check", name, applog.FieldError, err)
			continue
		}
		checks[name] = "ok"
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s.templates == nil {
		applog.FromContext(ctx).ErrorContext(ctx, "Templates not loaded", applog.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	view := indexView{
		Summary: s.summaryView(ctx),
		Report:  s.reportView(ctx),
		HasNews: s.news != nil,
		Year:    time.Now().Year(),
	}
	s.render(w, r, "index.html", view, nil)
}

func (s *Server) handleSummaryPartial(w http.ResponseWriter, r *http.Request) {
	view := s.summaryView(r.Context())
	s.render(w, r, "summary", view, func(b *HTMXResponseBuilder) {
		if !view.GeneratedAt.IsZero() {
			b.TriggerSummaryUpdated(view.GeneratedAt)
		}
	})
}

func (s *Server) handleReportPartial(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "report", s.reportView(r.Context()), nil)
}

func (s *Server) handleNewsPartial(w http.ResponseWriter, r *http.Request) {
	if s.news == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	articles, err := s.news.Latest(r.Context())
	s.render(w, r, "news", newNewsView(articles, err), nil)
}

func (s *Server) summaryView(ctx context.Context) summaryView {
	sum, err := s.summaries.CachedSummary(ctx)
	if err != nil {
		applog.FromContext(ctx).ErrorContext(ctx, "Failed to build summary",
			applog.NewFields().WithOperation(applog.OpBuild).WithError(err)...)
		return newSummaryView(sum, nil, err)
	}
	return newSummaryView(sum, s.summaries.Ordered(sum), nil)
}

func (s *Server) reportView(ctx context.Context) reportView {
	report, ok, err := s.reports.Latest(ctx)
	if err != nil {
		applog.FromContext(ctx).ErrorContext(ctx, "Failed to load report", applog.FieldError, err)
	}
	return newReportView(report, ok, err)
}

// render executes a template into memory and writes it through the builder.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any, decorate func(*HTMXResponseBuilder)) {
	ctx := r.Context()
	if s.templates == nil {
		ErrorResponse(http.StatusInternalServerError, "templates not loaded").Write(w)
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		applog.FromContext(ctx).ErrorContext(ctx, "Template execution failed",
			applog.NewFields().
				WithComponent(applog.ComponentTemplate).
				WithOperation(applog.OpRender).
				With("template", name).
				WithError(err)...)
		ErrorResponse(http.StatusInternalServerError, msgLoadFailed).Write(w)
		return
	}

	b := NewHTMXResponse().Header("Cache-Control", "no-store").BodyHTML(buf.Bytes())
	if decorate != nil {
		decorate(b)
	}
	b.Write(w)
}
