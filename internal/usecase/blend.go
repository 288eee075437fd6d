package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"CredScore/internal/domain"
	"CredScore/internal/feature"
	"CredScore/internal/model"
	"CredScore/internal/rules"
)

const topAttributionCount = 5

// Blender combines the rule score and a model probability into one final
// score via a weighted convex combination and explains what drove it.
type Blender struct {
	rules     *rules.Evaluator
	extractor *feature.Extractor
	logger    *slog.Logger
}

// NewBlender wires the rule evaluator and feature extractor.
func NewBlender(ev *rules.Evaluator, extractor *feature.Extractor, logger *slog.Logger) *Blender {
	return &Blender{rules: ev, extractor: extractor, logger: logger}
}

// Blend scores a URL with alpha trust in the model and (1-alpha) in the
// rules. Attribution always reads the fallback estimator's coefficients so
// explanations stay stable regardless of which estimator produced the
// probability.
func (b *Blender) Blend(ctx context.Context, url string, alpha float64, trained *model.TrainedModel, fetchContent bool) domain.ScoredURL {
	ruleResult := b.rules.Evaluate(url)

	fv := b.extractor.Extract(ctx, url, fetchContent)
	probability := trained.Probability(fv)

	final := domain.Clamp01(alpha*probability + (1-alpha)*ruleResult.Score)

	explanation := fmt.Sprintf(
		"Blended %.2f*model + %.2f*rules. Rule=%.2f, Model=%.2f. Top model contributions: %s. Rules rationale: %s",
		alpha, 1-alpha, ruleResult.Score, probability,
		formatAttributions(trained.TopAttributions(fv, topAttributionCount)),
		ruleResult.Explanation,
	)

	return domain.ScoredURL{
		URL:         url,
		Score:       domain.Round(final, 3),
		Explanation: explanation,
	}
}

func formatAttributions(attrs []model.Attribution) string {
	if len(attrs) == 0 {
		return "n/a"
	}
	parts := make([]string, len(attrs))
	for i, attr := range attrs {
		parts[i] = fmt.Sprintf("%s(%+.2f)", attr.Name, attr.Contribution)
	}
	return strings.Join(parts, "; ")
}
