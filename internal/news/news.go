// Package news reads a labour-market RSS feed for the dashboard news panel.
package news

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"tyotilasto/internal/cache"
	applog "tyotilasto/internal/log"
)

const (
	DefaultLimit    = 10
	DefaultCacheTTL = 15 * time.Minute
	DefaultTimeout  = 10 * time.Second

	articlesKey = "articles"
)

// Article is one feed entry with an HTML-free summary.
type Article struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Source      string    `json:"source"`
	Summary     string    `json:"summary,omitempty"`
	PublishedAt time.Time `json:"published_at,omitzero"`
}

type Options struct {
	Limit      int
	CacheTTL   time.Duration
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Feed fetches and caches one RSS or Atom feed.
type Feed struct {
	url     string
	limit   int
	timeout time.Duration
	parser  *gofeed.Parser
	cache   *cache.LRUCache[[]Article]
	logger  *applog.Logger
}

// NewFeed creates a feed reader for url. logger may be nil.
func NewFeed(url string, opts Options, logger *applog.Logger) *Feed {
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = applog.New(applog.Config{})
	}

	parser := gofeed.NewParser()
	parser.UserAgent = "tyotilasto/1.0"
	if opts.HTTPClient != nil {
		parser.Client = opts.HTTPClient
	}

	return &Feed{
		url:     url,
		limit:   opts.Limit,
		timeout: opts.Timeout,
		parser:  parser,
		cache:   cache.NewLRUCache[[]Article](1, opts.CacheTTL),
		logger:  logger.WithComponent(applog.ComponentNews),
	}
}

// Cache exposes the article cache for periodic cleanup.
func (f *Feed) Cache() *cache.LRUCache[[]Article] { return f.cache }

// Latest returns up to limit articles, newest first.
func (f *Feed) Latest(ctx context.Context) ([]Article, error) {
	if cached, ok := f.cache.Get(articlesKey); ok {
		return cached, nil
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	feed, err := f.parser.ParseURLWithContext(f.url, ctx)
	if err != nil {
		f.logger.WarnContext(ctx, "Failed to fetch news feed", "url", f.url, applog.FieldError, err)
		return nil, fmt.Errorf("parse feed %s: %w", f.url, err)
	}

	articles := toArticles(feed)
	if len(articles) > f.limit {
		articles = articles[:f.limit]
	}
	f.cache.Set(articlesKey, articles)

	f.logger.DebugContext(ctx, "News feed refreshed", "articles", len(articles))
	return articles, nil
}

func toArticles(feed *gofeed.Feed) []Article {
	articles := make([]Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		// Entries without an absolute link are not clickable.
		if !strings.HasPrefix(item.Link, "http") {
			continue
		}
		a := Article{
			Title:   strings.TrimSpace(item.Title),
			Link:    item.Link,
			Source:  feed.Title,
			Summary: cleanHTML(item.Description),
		}
		if item.Author != nil && item.Author.Name != "" {
			a.Source = item.Author.Name
		}
		switch {
		case item.PublishedParsed != nil:
			a.PublishedAt = *item.PublishedParsed
		case item.UpdatedParsed != nil:
			a.PublishedAt = *item.UpdatedParsed
		}
		articles = append(articles, a)
	}

	slices.SortStableFunc(articles, func(a, b Article) int {
		return b.PublishedAt.Compare(a.PublishedAt)
	})
	return articles
}

// cleanHTML strips tags from a feed description.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
