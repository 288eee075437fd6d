package content

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"CredScore/internal/config"
)

func testFetchConfig() config.FetchConfig {
	return config.FetchConfig{TimeoutSeconds: 2, UserAgent: "CredScore/test"}
}

func TestFetchExtractsTextAndDate(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`
			<html><head>
			  <meta property="article:published_time" content="2020-06-15T10:30:00Z">
			</head><body>
			  <p>First paragraph with a citation [1].</p>
			  <p>Second paragraph mentions doi twice: doi doi.</p>
			  <script>ignored()</script>
			</body></html>`))
	}))
	defer server.Close()

	f := NewFetcher(testFetchConfig(), server.Client())
	got, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	if !strings.Contains(got.Text, "First paragraph") || !strings.Contains(got.Text, "Second paragraph") {
		t.Fatalf("unexpected text: %q", got.Text)
	}
	if got.PublishedAt == nil {
		t.Fatal("expected publication date")
	}
	want := time.Date(2020, time.June, 15, 10, 30, 0, 0, time.UTC)
	if !got.PublishedAt.Equal(want) {
		t.Fatalf("unexpected date: %v", got.PublishedAt)
	}
}

func TestFetchLooseDateFallback(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`
			<html><head><meta name="date" content="Published 2021/03/07 edition"></head>
			<body><p>body</p></body></html>`))
	}))
	defer server.Close()

	f := NewFetcher(testFetchConfig(), server.Client())
	got, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	if got.PublishedAt == nil {
		t.Fatal("expected loose-format date")
	}
	if got.PublishedAt.Year() != 2021 || got.PublishedAt.Month() != time.March || got.PublishedAt.Day() != 7 {
		t.Fatalf("unexpected date: %v", got.PublishedAt)
	}
}

func TestFetchNon2xxFails(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer server.Close()

	f := NewFetcher(testFetchConfig(), server.Client())
	if _, err := f.Fetch(context.Background(), server.URL); err == nil {
		t.Fatal("expected error for non-2xx status")
	}
}

func TestFetchMissingDateIsNil(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p>No date anywhere.</p></body></html>`))
	}))
	defer server.Close()

	f := NewFetcher(testFetchConfig(), server.Client())
	got, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if got.PublishedAt != nil {
		t.Fatalf("expected nil date, got %v", got.PublishedAt)
	}
}
