package feature

import (
	"context"
	"errors"
	"testing"
	"time"

	"CredScore/internal/config"
	"CredScore/internal/domain"
	"CredScore/internal/ports"
	"CredScore/internal/rules"
)

type stubFetcher struct {
	content ports.PageContent
	err     error
	calls   int
}

func (s *stubFetcher) Fetch(ctx context.Context, url string) (ports.PageContent, error) {
	s.calls++
	return s.content, s.err
}

func testEvaluator() *rules.Evaluator {
	return rules.NewEvaluator(config.RulesConfig{
		ReputableDomains:  []string{"who.int", "nature.com"},
		InstitutionalTLDs: []string{"gov", "edu", "ac", "int"},
		BlogPlatforms:     []string{"medium.com", "wordpress", "substack"},
		TrackingPrefixes:  []string{"utm_", "fbclid", "gclid"},
	})
}

func TestExtractURLOnly(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{}
	ex := NewExtractor(testEvaluator(), fetcher, nil)

	fv := ex.Extract(context.Background(), "https://who.int/news/item/x", false)

	if fetcher.calls != 0 {
		t.Fatalf("fetcher must not be called when fetchContent is false")
	}
	if got := fv.Get("https"); got != 1 {
		t.Fatalf("https = %v", got)
	}
	if got := fv.Get("reputable"); got != 1 {
		t.Fatalf("reputable = %v", got)
	}
	if got := fv.Get("has_content"); got != 0 {
		t.Fatalf("has_content = %v", got)
	}
	if !domain.IsUnknown(fv.Get("days_since")) {
		t.Fatalf("days_since should be unknown without content, got %v", fv.Get("days_since"))
	}
	if got := fv.Get("rule_score"); got <= 0 {
		t.Fatalf("rule_score = %v", got)
	}
}

func TestExtractWithContent(t *testing.T) {
	t.Parallel()

	published := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	fetcher := &stubFetcher{content: ports.PageContent{
		Text:        "Study results [1] [2]. See references and the journal volume. The doi is listed.",
		PublishedAt: &published,
	}}

	ex := NewExtractor(testEvaluator(), fetcher, nil)
	ex.now = func() time.Time {
		return time.Date(2020, time.January, 31, 0, 0, 0, 0, time.UTC)
	}

	fv := ex.Extract(context.Background(), "https://nature.com/articles/x", true)

	if got := fv.Get("refs_brackets"); got != 2 {
		t.Fatalf("refs_brackets = %v", got)
	}
	if got := fv.Get("doi_mentions"); got != 1 {
		t.Fatalf("doi_mentions = %v", got)
	}
	if got := fv.Get("ref_keywords"); got < 3 {
		t.Fatalf("ref_keywords = %v", got)
	}
	if got := fv.Get("days_since"); got != 30 {
		t.Fatalf("days_since = %v", got)
	}
	if got := fv.Get("has_content"); got != 1 {
		t.Fatalf("has_content = %v", got)
	}
	if got := fv.Get("avg_chars_per_word"); got <= 0 {
		t.Fatalf("avg_chars_per_word = %v", got)
	}
}

func TestExtractDegradesOnFetchFailure(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{err: errors.New("connection refused")}
	ex := NewExtractor(testEvaluator(), fetcher, nil)

	fv := ex.Extract(context.Background(), "https://nature.com/articles/x", true)

	if fetcher.calls != 1 {
		t.Fatalf("expected one fetch attempt, got %d", fetcher.calls)
	}
	if got := fv.Get("has_content"); got != 0 {
		t.Fatalf("has_content = %v after failed fetch", got)
	}
	if !domain.IsUnknown(fv.Get("days_since")) {
		t.Fatalf("days_since should stay unknown after failed fetch")
	}
}

func TestExtractOrderMatchesNames(t *testing.T) {
	t.Parallel()

	ex := NewExtractor(testEvaluator(), nil, nil)
	fv := ex.Extract(context.Background(), "https://who.int/x", false)

	if len(fv.Names) != len(Names) {
		t.Fatalf("expected %d features, got %d", len(Names), len(fv.Names))
	}
	for i, name := range Names {
		if fv.Names[i] != name {
			t.Fatalf("feature %d: expected %s, got %s", i, name, fv.Names[i])
		}
	}
}

func TestReindexIsTotal(t *testing.T) {
	t.Parallel()

	ex := NewExtractor(testEvaluator(), nil, nil)
	fv := ex.Extract(context.Background(), "https://who.int/x", false)

	frozen := append([]string{"unseen_feature"}, Names[:4]...)
	row := fv.Reindex(frozen)

	if len(row) != len(frozen) {
		t.Fatalf("row length %d, want %d", len(row), len(frozen))
	}
	if row[0] != 0 {
		t.Fatalf("absent feature should default to 0, got %v", row[0])
	}
	if row[1] != fv.Get("rule_score") {
		t.Fatalf("rule_score misaligned: %v", row[1])
	}
}
