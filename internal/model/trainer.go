package model

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sort"

	"CredScore/internal/domain"
	"CredScore/internal/feature"
	"CredScore/internal/ports"
)

// TrainedModel owns the fitted imputer, the frozen feature name list, an
// optional calibrated estimator, and the always-present fallback estimator.
// It is immutable after construction; retraining builds a new instance.
type TrainedModel struct {
	Imputer    ConstantImputer
	Features   []string
	Calibrated *CalibratedClassifier
	Fallback   *LogisticRegression
}

// Probability aligns the vector onto the frozen feature list, imputes it,
// and asks the calibrated estimator when present, the fallback otherwise.
func (m *TrainedModel) Probability(fv domain.FeatureVector) float64 {
	row := m.Imputer.Transform(fv.Reindex(m.Features))
	return m.estimator().PredictProba(row)
}

func (m *TrainedModel) estimator() ports.ProbabilityEstimator {
	if m.Calibrated != nil {
		return m.Calibrated
	}
	return m.Fallback
}

// Attribution is one feature's signed contribution to the linear decision.
type Attribution struct {
	Name         string
	Contribution float64
}

// TopAttributions ranks features by absolute contribution (value times the
// fallback estimator's weight). Purely descriptive; it never feeds back
// into the score.
func (m *TrainedModel) TopAttributions(fv domain.FeatureVector, n int) []Attribution {
	row := m.Imputer.Transform(fv.Reindex(m.Features))

	attrs := make([]Attribution, 0, len(m.Features))
	for i, name := range m.Features {
		weight := 0.0
		if i < len(m.Fallback.Weights) {
			weight = m.Fallback.Weights[i]
		}
		attrs = append(attrs, Attribution{Name: name, Contribution: row[i] * weight})
	}

	sort.SliceStable(attrs, func(a, b int) bool {
		return math.Abs(attrs[a].Contribution) > math.Abs(attrs[b].Contribution)
	})

	if n < len(attrs) {
		attrs = attrs[:n]
	}
	return attrs
}

// Trainer fits TrainedModel instances from labeled examples.
type Trainer struct {
	extractor    *feature.Extractor
	desiredFolds int
	seed         int64
	fetchContent bool
	logger       *slog.Logger
}

// NewTrainer wires the feature extractor and training parameters.
func NewTrainer(extractor *feature.Extractor, desiredFolds int, seed int64, fetchContent bool, logger *slog.Logger) *Trainer {
	if desiredFolds <= 0 {
		desiredFolds = 3
	}
	return &Trainer{
		extractor:    extractor,
		desiredFolds: desiredFolds,
		seed:         seed,
		fetchContent: fetchContent,
		logger:       logger,
	}
}

// Train extracts features, fits the imputer, splits a stratified holdout,
// fits the fallback classifier, and calibrates when the minority class in
// the train partition supports at least two folds. Small imbalanced inputs
// degrade to an uncalibrated model instead of failing.
func (t *Trainer) Train(ctx context.Context, examples []domain.LabeledExample) (*TrainedModel, error) {
	if len(examples) == 0 {
		return nil, fmt.Errorf("no labeled examples")
	}

	vectors := make([]domain.FeatureVector, len(examples))
	labels := make([]int, len(examples))
	for i, ex := range examples {
		vectors[i] = t.extractor.Extract(ctx, ex.URL, t.fetchContent)
		labels[i] = ex.Label
	}

	names := append([]string(nil), feature.Names...)
	imputer := ConstantImputer{Fill: 0}

	rows := make([][]float64, len(vectors))
	for i, fv := range vectors {
		rows[i] = imputer.Transform(fv.Reindex(names))
	}

	rng := rand.New(rand.NewSource(t.seed))
	trainIdx, _ := stratifiedSplit(labels, 0.2, rng)

	trainX := make([][]float64, 0, len(trainIdx))
	trainY := make([]int, 0, len(trainIdx))
	for _, i := range trainIdx {
		trainX = append(trainX, rows[i])
		trainY = append(trainY, labels[i])
	}

	fallback := FitLogistic(trainX, trainY)

	var calibrated *CalibratedClassifier
	if folds := PickFolds(trainY, t.desiredFolds); folds >= 2 {
		calibrated = FitCalibrated(trainX, trainY, folds, rng)
		t.debug("calibration fitted", "folds", folds, "train_rows", len(trainY))
	} else {
		t.debug("calibration skipped", "reason", "minority class below 2", "train_rows", len(trainY))
	}

	return &TrainedModel{
		Imputer:    imputer,
		Features:   names,
		Calibrated: calibrated,
		Fallback:   fallback,
	}, nil
}

// TrainRich fits the nonlinear pipeline and its temperature calibration:
// the network trains on the stratified train partition and the temperature
// is fitted on holdout logits. The resulting scorer serves the rich tier
// once persisted via SaveArtifacts.
func (t *Trainer) TrainRich(ctx context.Context, examples []domain.LabeledExample) (*NeuralScorer, error) {
	if len(examples) == 0 {
		return nil, fmt.Errorf("no labeled examples")
	}

	names := append([]string(nil), feature.Names...)
	rows := make([][]float64, len(examples))
	labels := make([]int, len(examples))
	for i, ex := range examples {
		rows[i] = t.extractor.Extract(ctx, ex.URL, t.fetchContent).Reindex(names)
		labels[i] = ex.Label
	}

	rng := rand.New(rand.NewSource(t.seed))
	trainIdx, holdoutIdx := stratifiedSplit(labels, 0.2, rng)
	if len(holdoutIdx) == 0 {
		holdoutIdx = trainIdx
	}

	trainX := make([][]float64, 0, len(trainIdx))
	trainY := make([]int, 0, len(trainIdx))
	for _, i := range trainIdx {
		trainX = append(trainX, rows[i])
		trainY = append(trainY, labels[i])
	}

	pipeline := TrainNetwork(trainX, trainY, NetworkConfig{Seed: t.seed})

	logits := make([]float64, 0, len(holdoutIdx))
	holdY := make([]int, 0, len(holdoutIdx))
	for _, i := range holdoutIdx {
		logits = append(logits, pipeline.Decision(rows[i]))
		holdY = append(holdY, labels[i])
	}

	return &NeuralScorer{
		Pipeline:    pipeline,
		Temperature: FitTemperature(logits, holdY),
		Features:    names,
	}, nil
}

// stratifiedSplit partitions indices into train and holdout sets, drawing
// the holdout fraction per class so label ratios survive the split.
func stratifiedSplit(y []int, holdoutFrac float64, rng *rand.Rand) (train, holdout []int) {
	for _, class := range []int{0, 1} {
		var idx []int
		for i, label := range y {
			if label == class {
				idx = append(idx, i)
			}
		}
		rng.Shuffle(len(idx), func(a, b int) { idx[a], idx[b] = idx[b], idx[a] })

		nHold := int(float64(len(idx)) * holdoutFrac)
		holdout = append(holdout, idx[:nHold]...)
		train = append(train, idx[nHold:]...)
	}
	sort.Ints(train)
	sort.Ints(holdout)
	return train, holdout
}

func (t *Trainer) debug(msg string, args ...any) {
	if t.logger != nil {
		t.logger.Debug(msg, args...)
	}
}
