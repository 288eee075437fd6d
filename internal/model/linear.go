package model

import (
	"math"

	"CredScore/internal/domain"
)

const (
	lrIterations   = 600
	lrLearningRate = 0.3
	lrL2           = 0.01
)

// ConstantImputer replaces unknown feature values with a fixed fill value.
// The same instance fitted at training time is reused at serving time.
type ConstantImputer struct {
	Fill float64 `json:"fill"`
}

// Transform returns a copy of the row with unknown values filled.
func (im ConstantImputer) Transform(row []float64) []float64 {
	out := make([]float64, len(row))
	for i, v := range row {
		if domain.IsUnknown(v) {
			out[i] = im.Fill
		} else {
			out[i] = v
		}
	}
	return out
}

// LogisticRegression is a baseline linear probabilistic classifier. It is
// always retained on a trained model: it guarantees an estimator exists when
// calibration is infeasible and supplies stable per-feature attribution
// weights.
type LogisticRegression struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

// FitLogistic trains by full-batch gradient descent on the regularized log
// loss. Zero initialization keeps the fit deterministic.
func FitLogistic(X [][]float64, y []int) *LogisticRegression {
	if len(X) == 0 {
		return &LogisticRegression{}
	}

	n := len(X)
	d := len(X[0])
	weights := make([]float64, d)
	bias := 0.0

	gradW := make([]float64, d)
	for iter := 0; iter < lrIterations; iter++ {
		for j := range gradW {
			gradW[j] = 0
		}
		gradB := 0.0

		for i, row := range X {
			p := sigmoid(dot(weights, row) + bias)
			diff := p - float64(y[i])
			for j, v := range row {
				gradW[j] += diff * v
			}
			gradB += diff
		}

		scale := lrLearningRate / float64(n)
		for j := range weights {
			weights[j] -= scale * (gradW[j] + lrL2*weights[j])
		}
		bias -= scale * gradB
	}

	return &LogisticRegression{Weights: weights, Bias: bias}
}

// Decision returns the linear margin w·x + b.
func (m *LogisticRegression) Decision(row []float64) float64 {
	return dot(m.Weights, row) + m.Bias
}

// PredictProba returns the positive-class probability.
func (m *LogisticRegression) PredictProba(row []float64) float64 {
	return sigmoid(m.Decision(row))
}

func dot(a, b []float64) float64 {
	sum := 0.0
	limit := len(a)
	if len(b) < limit {
		limit = len(b)
	}
	for i := 0; i < limit; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

// clampProb keeps probabilities away from exact 0/1 before taking logs.
func clampProb(p float64) float64 {
	const eps = 1e-6
	return math.Min(1-eps, math.Max(eps, p))
}
