package rules

import (
	"strings"
	"testing"

	"CredScore/internal/config"
)

func defaultTables() config.RulesConfig {
	return config.RulesConfig{
		ReputableDomains: []string{
			"nih.gov", "ncbi.nlm.nih.gov", "cdc.gov", "who.int", "nature.com",
			"webmd.com",
		},
		InstitutionalTLDs: []string{"gov", "edu", "ac", "int"},
		BlogPlatforms:     []string{"medium.com", "wordpress", "substack"},
		TrackingPrefixes:  []string{"utm_", "fbclid", "gclid"},
	}
}

func TestEvaluateReputableInstitutional(t *testing.T) {
	t.Parallel()

	ev := NewEvaluator(defaultTables())
	res := ev.Evaluate("https://who.int/news/item/x")

	if res.Score < 0.80 {
		t.Fatalf("expected stacked signals to reach 0.80, got %.2f (%s)", res.Score, res.Explanation)
	}
	if !strings.Contains(res.Explanation, "HTTPS") {
		t.Fatalf("missing HTTPS note: %s", res.Explanation)
	}
	if !strings.Contains(res.Explanation, "reputable domain 'who.int'") {
		t.Fatalf("missing reputable note: %s", res.Explanation)
	}
}

func TestEvaluateInformalBlog(t *testing.T) {
	t.Parallel()

	ev := NewEvaluator(defaultTables())
	res := ev.Evaluate("http://example.com/blog/opinion")

	if res.Score >= 0.30 {
		t.Fatalf("expected blog penalty to pull below base, got %.2f", res.Score)
	}
	if !strings.Contains(res.Explanation, "'blog'") {
		t.Fatalf("missing blog note: %s", res.Explanation)
	}
}

func TestEvaluateInvalidInput(t *testing.T) {
	t.Parallel()

	ev := NewEvaluator(defaultTables())

	for _, raw := range []string{"", "   "} {
		res := ev.Evaluate(raw)
		if res.Score != 0.0 {
			t.Fatalf("expected zero score for %q, got %.2f", raw, res.Score)
		}
		if !strings.Contains(res.Explanation, "Invalid input") {
			t.Fatalf("expected diagnostic explanation, got %s", res.Explanation)
		}
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	t.Parallel()

	ev := NewEvaluator(defaultTables())
	first := ev.Evaluate("https://doi.org/10.1038/s41586-020-2649-2")

	for i := 0; i < 10; i++ {
		again := ev.Evaluate("https://doi.org/10.1038/s41586-020-2649-2")
		if again != first {
			t.Fatalf("evaluation not deterministic: %+v vs %+v", again, first)
		}
	}

	if !strings.Contains(first.Explanation, "DOI-like identifier") {
		t.Fatalf("missing DOI note: %s", first.Explanation)
	}
}

func TestEvaluateBounds(t *testing.T) {
	t.Parallel()

	ev := NewEvaluator(defaultTables())
	urls := []string{
		"https://who.int/x",
		"http://a.co",
		"https://blog.medium.com/blog/post?utm_source=feed",
		"not a url at all",
		"://%%%",
		"ftp://archive.example.org/file",
	}

	for _, u := range urls {
		res := ev.Evaluate(u)
		if res.Score < 0.0 || res.Score > 1.0 {
			t.Fatalf("score out of bounds for %q: %.4f", u, res.Score)
		}
		if res.Explanation == "" {
			t.Fatalf("empty explanation for %q", u)
		}
	}
}

func TestEvaluateMonotonicity(t *testing.T) {
	t.Parallel()

	ev := NewEvaluator(defaultTables())

	neutral := ev.Evaluate("https://somesite.org/article")
	reputable := ev.Evaluate("https://news.who.int/article")
	if reputable.Score < neutral.Score {
		t.Fatalf("reputable suffix decreased score: %.2f -> %.2f", neutral.Score, reputable.Score)
	}

	clean := ev.Evaluate("https://somesite.org/article")
	tracked := ev.Evaluate("https://somesite.org/article?utm_source=mail")
	if tracked.Score > clean.Score {
		t.Fatalf("tracking param increased score: %.2f -> %.2f", clean.Score, tracked.Score)
	}
}

func TestEvaluateTrackingCountsOnce(t *testing.T) {
	t.Parallel()

	ev := NewEvaluator(defaultTables())
	one := ev.Evaluate("https://somesite.org/a?utm_source=x")
	many := ev.Evaluate("https://somesite.org/a?utm_source=x&fbclid=y&gclid=z")

	if one.Score != many.Score {
		t.Fatalf("tracking penalty should apply once: %.2f vs %.2f", one.Score, many.Score)
	}
}

func TestEvaluateShortHost(t *testing.T) {
	t.Parallel()

	ev := NewEvaluator(defaultTables())
	res := ev.Evaluate("https://a.co/x")
	if !strings.Contains(res.Explanation, "short") {
		t.Fatalf("missing short-host note: %s", res.Explanation)
	}
}
