package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"CredScore/internal/domain"
	"CredScore/internal/feature"
	"CredScore/internal/model"
	"CredScore/internal/rules"
)

const (
	tierRich      = "rich"
	tierStandard  = "standard"
	tierRulesOnly = "rules_only"
)

// ScoreRequest carries one serving-time scoring call. Alpha and Deadline
// are validated at the boundary before the request enters the pipeline.
type ScoreRequest struct {
	URL          string
	Alpha        float64
	FetchContent bool
	Deadline     time.Duration
}

// OrchestratorDeps wires the orchestrator's collaborators.
type OrchestratorDeps struct {
	Rules     *rules.Evaluator
	Extractor *feature.Extractor
	Blender   *Blender
	Rich      *model.NeuralScorer
	Logger    *slog.Logger
}

// Orchestrator is the serving-time entry point. It attempts the richest
// available scoring path under a deadline and steps down through simpler,
// more robust paths on timeout or failure, always returning a bounded score.
type Orchestrator struct {
	rules     *rules.Evaluator
	extractor *feature.Extractor
	blender   *Blender
	rich      *model.NeuralScorer
	trained   atomic.Pointer[model.TrainedModel]
	logger    *slog.Logger
}

// NewOrchestrator builds the orchestrator. Rich may be nil: a missing
// artifact disables tier 1 without disabling anything else.
func NewOrchestrator(deps OrchestratorDeps) *Orchestrator {
	return &Orchestrator{
		rules:     deps.Rules,
		extractor: deps.Extractor,
		blender:   deps.Blender,
		rich:      deps.Rich,
		logger:    deps.Logger,
	}
}

// PublishModel atomically replaces the shared model; in-flight requests
// keep the instance they already loaded.
func (o *Orchestrator) PublishModel(m *model.TrainedModel) {
	o.trained.Store(m)
	retrainTotal.Inc()
}

// Model returns the currently published model, or nil before first publish.
func (o *Orchestrator) Model() *model.TrainedModel {
	return o.trained.Load()
}

// Score runs the tiered attempt. It never returns an error and never
// panics: every failure path resolves to the rules-only tier.
func (o *Orchestrator) Score(ctx context.Context, req ScoreRequest) domain.Rating {
	started := time.Now()
	defer func() {
		scoreLatency.Observe(time.Since(started).Seconds())
	}()

	if req.Deadline <= 0 {
		return o.rulesOnly(req.URL, fmt.Errorf("scoring deadline elapsed"))
	}

	ctx, cancel := context.WithTimeout(ctx, req.Deadline)
	defer cancel()

	type attemptResult struct {
		rating domain.Rating
		err    error
	}
	resultCh := make(chan attemptResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resultCh <- attemptResult{err: fmt.Errorf("scoring panic: %v", r)}
			}
		}()
		rating, err := o.attempt(ctx, req)
		resultCh <- attemptResult{rating: rating, err: err}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			return o.rulesOnly(req.URL, res.err)
		}
		return res.rating
	case <-ctx.Done():
		// The in-flight attempt is abandoned; only its result is discarded.
		return o.rulesOnly(req.URL, fmt.Errorf("scoring deadline elapsed"))
	}
}

// attempt runs tier 1 when the rich artifact is loaded, tier 2 otherwise.
func (o *Orchestrator) attempt(ctx context.Context, req ScoreRequest) (domain.Rating, error) {
	if o.rich != nil {
		return o.richTier(ctx, req)
	}
	return o.standardTier(ctx, req)
}

func (o *Orchestrator) richTier(ctx context.Context, req ScoreRequest) (domain.Rating, error) {
	ruleResult := o.rules.Evaluate(req.URL)
	fv := o.extractor.Extract(ctx, req.URL, req.FetchContent)

	probability := o.rich.Probability(fv)
	final := domain.Round(domain.Clamp01(req.Alpha*probability+(1-req.Alpha)*ruleResult.Score), 3)

	scoreRequestsTotal.WithLabelValues(tierRich).Inc()
	return domain.Rating{
		URL:   req.URL,
		Score: final,
		Stars: domain.StarsFromScore(final),
		Explanation: fmt.Sprintf("Network+Rules blend (alpha=%.2f). Rule=%.2f, Network=%.2f.",
			req.Alpha, ruleResult.Score, probability),
	}, nil
}

func (o *Orchestrator) standardTier(ctx context.Context, req ScoreRequest) (domain.Rating, error) {
	trained := o.trained.Load()
	if trained == nil {
		return domain.Rating{}, fmt.Errorf("no trained model loaded")
	}

	scored := o.blender.Blend(ctx, req.URL, req.Alpha, trained, req.FetchContent)

	scoreRequestsTotal.WithLabelValues(tierStandard).Inc()
	return domain.Rating{
		URL:         scored.URL,
		Score:       scored.Score,
		Stars:       domain.StarsFromScore(scored.Score),
		Explanation: scored.Explanation,
	}, nil
}

// rulesOnly is the total last-resort tier: a pure function of the URL.
func (o *Orchestrator) rulesOnly(url string, cause error) domain.Rating {
	scored := o.rules.Evaluate(url)

	o.warn("fell back to rules-only tier", "url", url, "cause", cause)
	scoreRequestsTotal.WithLabelValues(tierRulesOnly).Inc()

	return domain.Rating{
		URL:         url,
		Score:       scored.Score,
		Stars:       domain.StarsFromScore(scored.Score),
		Explanation: fmt.Sprintf("Fallback to rules due to: %v. %s", cause, scored.Explanation),
	}
}

func (o *Orchestrator) warn(msg string, args ...any) {
	if o.logger != nil {
		o.logger.Warn(msg, args...)
	}
}
