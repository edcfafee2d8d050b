// Package news scrapes headlines from the partner news page.
package news

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/m3rciful/shopbot/core/logger"
)

// DefaultURL is the news index scraped when none is configured.
const DefaultURL = "https://espanarusa.com/ru/news/index"

const (
	selItem  = "div.er-fresh-container div.er-fresh"
	selTitle = "div.er-item-title"
)

// Item is one headline with an absolute link.
type Item struct {
	Title string
	URL   string
}

// Fetcher retrieves the news page once per call.
type Fetcher struct {
	URL     string
	Timeout time.Duration
	Client  *http.Client
}

// NewFetcher applies defaults for an empty URL or timeout.
func NewFetcher(pageURL string, timeout time.Duration) *Fetcher {
	if strings.TrimSpace(pageURL) == "" {
		pageURL = DefaultURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Fetcher{URL: pageURL, Timeout: timeout, Client: &http.Client{}}
}

// Fetch returns every headline on the page. Failures are logged and yield no items.
func (f *Fetcher) Fetch(ctx context.Context) []Item {
	start := time.Now()
	items, err := f.fetch(ctx)
	if err != nil {
		logger.LogEvent(ctx, logger.NEWS, slog.LevelWarn, "news.fetch",
			slog.String("status", "fail"),
			slog.String("url", f.URL),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.Duration("duration", logger.RoundMS(time.Since(start))),
		)
		return nil
	}
	logger.LogEvent(ctx, logger.NEWS, slog.LevelDebug, "news.fetch",
		slog.String("status", "ok"),
		slog.String("url", f.URL),
		slog.Int("items", len(items)),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return items
}

func (f *Fetcher) fetch(ctx context.Context) ([]Item, error) {
	base, err := url.Parse(f.URL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get: status %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return Parse(doc, base), nil
}

// Parse extracts headlines from a news index document. Entries without a
// title or link are skipped; links are resolved against base.
func Parse(doc *goquery.Document, base *url.URL) []Item {
	var items []Item
	doc.Find(selItem).Each(func(_ int, s *goquery.Selection) {
		title := strings.Join(strings.Fields(s.Find(selTitle).First().Text()), " ")
		href, ok := s.Find("a[href]").First().Attr("href")
		if title == "" || !ok || strings.TrimSpace(href) == "" {
			return
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		items = append(items, Item{Title: title, URL: base.ResolveReference(ref).String()})
	})
	return items
}
