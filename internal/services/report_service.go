package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tyotilasto/internal/core"
	"tyotilasto/internal/docstore"
	applog "tyotilasto/internal/log"
)

// ReportService serves the latest monthly narrative.
type ReportService struct {
	fetcher docstore.ReportFetcher
	timeout time.Duration
	logger  *applog.Logger
}

func NewReportService(fetcher docstore.ReportFetcher, timeout time.Duration, logger *applog.Logger) *ReportService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = applog.New(applog.Config{})
	}
	return &ReportService{
		fetcher: fetcher,
		timeout: timeout,
		logger:  logger.WithComponent(applog.ComponentReport),
	}
}

// Latest returns the newest report. ok is false when the store holds none.
func (s *ReportService) Latest(ctx context.Context) (core.Report, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	r, ok, err := s.fetcher.LatestReport(ctx)
	if errors.Is(err, docstore.ErrNotFound) {
		return core.Report{}, false, nil
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to fetch latest report", applog.FieldError, err)
		return core.Report{}, false, fmt.Errorf("latest report: %w", err)
	}
	if !ok || strings.TrimSpace(r.Text) == "" {
		return core.Report{}, false, nil
	}
	return r, true, nil
}

// Paragraphs splits report text on blank lines, then each paragraph into its
// lines. Surrounding whitespace is trimmed and empty paragraphs dropped.
func Paragraphs(text string) [][]string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var (
		out [][]string
		cur []string
	)
	flush := func() {
		if len(cur) > 0 {
			out = append(out, cur)
			cur = nil
		}
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}
		cur = append(cur, line)
	}
	flush()
	return out
}
