package content

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sony/gobreaker"

	"CredScore/internal/config"
	"CredScore/internal/ports"
)

var looseDateExpr = regexp.MustCompile(`(19\d{2}|20\d{2})[-/.](\d{1,2})[-/.](\d{1,2})`)

// dateSelectors are tried in order; the first parsable candidate wins.
var dateSelectors = []string{
	`meta[name="date"]`,
	`meta[property="article:published_time"]`,
	`meta[name="pubdate"]`,
	"time",
}

// Fetcher downloads a page once and extracts the enrichment payload:
// visible paragraph text and a best-effort publication date. A circuit
// breaker keeps a misbehaving remote from being hammered on every request.
type Fetcher struct {
	client    *http.Client
	userAgent string
	breaker   *gobreaker.CircuitBreaker
}

var _ ports.ContentFetcher = (*Fetcher)(nil)

// NewFetcher wires an HTTP client bounded by the configured per-fetch timeout.
func NewFetcher(cfg config.FetchConfig, client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout()}
	}

	settings := gobreaker.Settings{
		Name:        "content-fetch",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}

	return &Fetcher{
		client:    client,
		userAgent: cfg.UserAgent,
		breaker:   gobreaker.NewCircuitBreaker(settings),
	}
}

// Fetch performs a single GET and parses the document. Any failure is
// returned as an error; callers degrade to URL-only features.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (ports.PageContent, error) {
	result, err := f.breaker.Execute(func() (interface{}, error) {
		return f.fetch(ctx, pageURL)
	})
	if err != nil {
		return ports.PageContent{}, err
	}
	return result.(ports.PageContent), nil
}

func (f *Fetcher) fetch(ctx context.Context, pageURL string) (ports.PageContent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return ports.PageContent{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return ports.PageContent{}, fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ports.PageContent{}, fmt.Errorf("page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return ports.PageContent{}, fmt.Errorf("parse document: %w", err)
	}

	return ports.PageContent{
		Text:        paragraphText(doc),
		PublishedAt: publicationDate(doc),
	}, nil
}

func paragraphText(doc *goquery.Document) string {
	var parts []string
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		text := strings.TrimSpace(p.Text())
		if text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, " ")
}

func publicationDate(doc *goquery.Document) *time.Time {
	for _, selector := range dateSelectors {
		var found *time.Time
		doc.Find(selector).EachWithBreak(func(_ int, el *goquery.Selection) bool {
			candidate, exists := el.Attr("content")
			if !exists || candidate == "" {
				candidate = strings.TrimSpace(el.Text())
			}
			if candidate == "" {
				if dt, ok := el.Attr("datetime"); ok {
					candidate = dt
				}
			}
			if candidate == "" {
				return true
			}
			if parsed, ok := parseDate(candidate); ok {
				found = &parsed
				return false
			}
			return true
		})
		if found != nil {
			return found
		}
	}
	return nil
}

// parseDate tries ISO-8601 layouts first, then a loose date-like regex.
func parseDate(candidate string) (time.Time, bool) {
	candidate = strings.TrimSpace(candidate)
	trimmed := strings.TrimSuffix(candidate, "Z")
	if idx := strings.Index(trimmed, "+"); idx > 0 {
		trimmed = trimmed[:idx]
	}

	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed, true
		}
		if parsed, err := time.Parse(layout, candidate); err == nil {
			return parsed, true
		}
	}

	if m := looseDateExpr.FindStringSubmatch(candidate); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
		}
	}

	return time.Time{}, false
}
