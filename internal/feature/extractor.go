package feature

import (
	"context"
	"log/slog"
	"regexp"
	"time"

	"CredScore/internal/domain"
	"CredScore/internal/ports"
	"CredScore/internal/rules"
)

// Names is the fixed, ordered feature set. The list is frozen onto a model
// at training time; serving-time vectors are reindexed onto that copy.
var Names = []string{
	"rule_score",
	"https",
	"inst_tld",
	"reputable",
	"doi_in_path",
	"blog_flag",
	"tracking_flag",
	"short_host",
	"refs_brackets",
	"doi_mentions",
	"ref_keywords",
	"avg_words_per_sent",
	"avg_chars_per_word",
	"n_words",
	"days_since",
	"has_content",
}

var (
	bracketRefExpr = regexp.MustCompile(`\[\d+\]`)
	doiMentionExpr = regexp.MustCompile(`(?i)\bdoi\b`)
	refKeywordExpr = regexp.MustCompile(`(?i)\b(references?|citations?|journal|volume|issue|pmid)\b`)
	sentenceExpr   = regexp.MustCompile(`[.!?]+`)
	wordExpr       = regexp.MustCompile(`\b[a-zA-Z]{2,}\b`)
)

// Extractor turns a URL (and, optionally, fetched page content) into a
// fixed-width feature vector. The rule evaluator's score is wrapped as one
// feature among the structural and content-derived ones.
type Extractor struct {
	rules   *rules.Evaluator
	fetcher ports.ContentFetcher
	logger  *slog.Logger
	now     func() time.Time
}

// NewExtractor wires the rule evaluator and an optional content fetcher.
func NewExtractor(ev *rules.Evaluator, fetcher ports.ContentFetcher, logger *slog.Logger) *Extractor {
	return &Extractor{
		rules:   ev,
		fetcher: fetcher,
		logger:  logger,
		now:     time.Now,
	}
}

// Extract computes the feature vector. When fetchContent is true the page is
// fetched once with a bounded timeout; on any failure the vector silently
// degrades to URL-only features. Unavailable numeric features are recorded
// as unknown, never as zero.
func (e *Extractor) Extract(ctx context.Context, rawURL string, fetchContent bool) domain.FeatureVector {
	ruleScore := e.rules.Evaluate(rawURL).Score
	signals := e.rules.Signals(rawURL)

	var page ports.PageContent
	if fetchContent && e.fetcher != nil {
		fetched, err := e.fetcher.Fetch(ctx, rawURL)
		if err != nil {
			e.debug("content fetch degraded", "url", rawURL, "error", err)
		} else {
			page = fetched
		}
	}

	fv := domain.NewFeatureVector()
	fv.Set("rule_score", ruleScore)
	fv.Set("https", boolFeature(signals.HTTPS))
	fv.Set("inst_tld", boolFeature(signals.InstitutionalTLD))
	fv.Set("reputable", boolFeature(signals.Reputable))
	fv.Set("doi_in_path", boolFeature(signals.DOIInPath))
	fv.Set("blog_flag", boolFeature(signals.Blog))
	fv.Set("tracking_flag", boolFeature(signals.Tracking))
	fv.Set("short_host", boolFeature(signals.ShortHost))

	text := page.Text
	fv.Set("refs_brackets", float64(len(bracketRefExpr.FindAllString(text, -1))))
	fv.Set("doi_mentions", float64(len(doiMentionExpr.FindAllString(text, -1))))
	fv.Set("ref_keywords", float64(len(refKeywordExpr.FindAllString(text, -1))))

	avgWPS, avgCPW, nWords := readability(text)
	fv.Set("avg_words_per_sent", avgWPS)
	fv.Set("avg_chars_per_word", avgCPW)
	fv.Set("n_words", float64(nWords))

	if page.PublishedAt != nil {
		days := e.now().UTC().Sub(page.PublishedAt.UTC()).Hours() / 24
		if days < 0 {
			days = 0
		}
		fv.Set("days_since", float64(int(days)))
	} else {
		fv.Set("days_since", domain.Unknown)
	}

	fv.Set("has_content", boolFeature(text != ""))

	return fv
}

// readability computes average words per sentence and characters per word
// over visible paragraph text. Empty text yields zeros.
func readability(text string) (avgWPS, avgCPW float64, nWords int) {
	if text == "" {
		return 0, 0, 0
	}

	sentences := 0
	for _, s := range sentenceExpr.Split(text, -1) {
		if len(s) > 0 && wordExpr.MatchString(s) {
			sentences++
		}
	}
	if sentences == 0 {
		sentences = 1
	}

	words := wordExpr.FindAllString(text, -1)
	nWords = len(words)

	totalChars := 0
	for _, w := range words {
		totalChars += len(w)
	}

	avgWPS = float64(nWords) / float64(sentences)
	if nWords > 0 {
		avgCPW = float64(totalChars) / float64(nWords)
	}
	return avgWPS, avgCPW, nWords
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func (e *Extractor) debug(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}
