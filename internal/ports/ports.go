package ports

import (
	"context"
	"time"

	"CredScore/internal/domain"
)

// PageContent is the best-effort enrichment payload for one URL.
type PageContent struct {
	// Text is the visible paragraph text extracted from the page.
	Text string
	// PublishedAt is the publication date when one was found.
	PublishedAt *time.Time
}

// ContentFetcher performs a single bounded-time page fetch. Implementations
// return an error on any failure (non-2xx, timeout, connection error); the
// caller degrades to URL-only features rather than propagating it.
type ContentFetcher interface {
	Fetch(ctx context.Context, url string) (PageContent, error)
}

// ProbabilityEstimator produces a credibility probability for an aligned,
// imputed feature row.
type ProbabilityEstimator interface {
	PredictProba(row []float64) float64
}

// FeedbackRepository persists user-submitted labels and feeds retraining.
// Writes are append-only; the scoring path never reads them.
type FeedbackRepository interface {
	Append(ctx context.Context, example domain.LabeledExample) error
	ListExamples(ctx context.Context, limit int) ([]domain.LabeledExample, error)
}

// Scheduler controls when background jobs (periodic retraining) execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
