package model

import (
	"math"
	"math/rand"

	"CredScore/internal/domain"
)

// DenseLayer is one fully connected layer; Weights[out][in].
type DenseLayer struct {
	Weights [][]float64 `json:"weights"`
	Bias    []float64   `json:"bias"`
}

// NeuralPipeline is the richer trained artifact: constant imputation,
// per-feature scaling, and a small feed-forward network producing a single
// credibility logit.
type NeuralPipeline struct {
	Fill   float64      `json:"fill"`
	Scale  []float64    `json:"scale"`
	Hidden []DenseLayer `json:"hidden"`
	Output DenseLayer   `json:"output"`
}

// Decision runs the pipeline on a raw (possibly unknown-bearing) row and
// returns the output logit.
func (n *NeuralPipeline) Decision(row []float64) float64 {
	x := make([]float64, len(row))
	for i, v := range row {
		if domain.IsUnknown(v) {
			v = n.Fill
		}
		if i < len(n.Scale) && n.Scale[i] != 0 {
			v /= n.Scale[i]
		}
		x[i] = v
	}

	for _, layer := range n.Hidden {
		x = layer.forward(x, true)
	}
	out := n.Output.forward(x, false)
	return out[0]
}

func (l DenseLayer) forward(x []float64, relu bool) []float64 {
	out := make([]float64, len(l.Weights))
	for o, weights := range l.Weights {
		sum := l.Bias[o]
		for i, w := range weights {
			if i < len(x) {
				sum += w * x[i]
			}
		}
		if relu && sum < 0 {
			sum = 0
		}
		out[o] = sum
	}
	return out
}

// TemperatureScaler calibrates a logit by dividing it by a fitted
// temperature before the sigmoid.
type TemperatureScaler struct {
	T float64 `json:"t"`
}

// PredictProba maps a logit to a calibrated probability.
func (ts TemperatureScaler) PredictProba(logit float64) float64 {
	t := ts.T
	if t <= 0 {
		t = 1
	}
	return sigmoid(logit / t)
}

// FitTemperature picks T by a 1-D line search over [0.5, 3.0] minimizing
// the negative log likelihood; robust for small holdout sets.
func FitTemperature(logits []float64, y []int) TemperatureScaler {
	bestT, bestNLL := 1.0, math.Inf(1)
	for step := 0; step <= 50; step++ {
		t := 0.5 + float64(step)*0.05
		nll := 0.0
		for i, logit := range logits {
			p := clampProb(sigmoid(logit / t))
			if y[i] == 1 {
				nll -= math.Log(p)
			} else {
				nll -= math.Log(1 - p)
			}
		}
		if nll < bestNLL {
			bestNLL = nll
			bestT = t
		}
	}
	return TemperatureScaler{T: bestT}
}

// NeuralScorer bundles the pipeline, its temperature calibration, and the
// frozen feature list it was trained against.
type NeuralScorer struct {
	Pipeline    *NeuralPipeline
	Temperature TemperatureScaler
	Features    []string
}

// Probability aligns the vector onto the scorer's feature list and returns
// the temperature-calibrated probability.
func (s *NeuralScorer) Probability(fv domain.FeatureVector) float64 {
	row := fv.Reindex(s.Features)
	return s.Temperature.PredictProba(s.Pipeline.Decision(row))
}

// NetworkConfig parameterizes rich-tier training.
type NetworkConfig struct {
	Hidden       []int
	Epochs       int
	LearningRate float64
	Seed         int64
}

func (c NetworkConfig) withDefaults() NetworkConfig {
	if len(c.Hidden) == 0 {
		c.Hidden = []int{16, 8}
	}
	if c.Epochs <= 0 {
		c.Epochs = 800
	}
	if c.LearningRate <= 0 {
		c.LearningRate = 0.05
	}
	if c.Seed == 0 {
		c.Seed = 42
	}
	return c
}

// TrainNetwork fits the feed-forward pipeline by full-batch backpropagation
// on the binary cross entropy. Rows may contain unknown values; the fitted
// scaler and fill are baked into the pipeline.
func TrainNetwork(X [][]float64, y []int, cfg NetworkConfig) *NeuralPipeline {
	cfg = cfg.withDefaults()
	if len(X) == 0 {
		return &NeuralPipeline{}
	}

	d := len(X[0])
	pipe := &NeuralPipeline{Fill: 0, Scale: fitScale(X)}

	// Impute and scale the training matrix once.
	scaled := make([][]float64, len(X))
	for i, row := range X {
		s := make([]float64, d)
		for j, v := range row {
			if domain.IsUnknown(v) {
				v = pipe.Fill
			}
			if pipe.Scale[j] != 0 {
				v /= pipe.Scale[j]
			}
			s[j] = v
		}
		scaled[i] = s
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	sizes := append([]int{d}, cfg.Hidden...)
	layers := make([]DenseLayer, len(cfg.Hidden))
	for l := range layers {
		layers[l] = randomLayer(sizes[l], sizes[l+1], rng)
	}
	output := randomLayer(sizes[len(sizes)-1], 1, rng)

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		gradLayers := make([]DenseLayer, len(layers))
		for l := range layers {
			gradLayers[l] = zeroLayer(len(layers[l].Weights[0]), len(layers[l].Weights))
		}
		gradOutput := zeroLayer(len(output.Weights[0]), 1)

		for i, x := range scaled {
			// Forward pass, keeping activations per layer.
			acts := make([][]float64, len(layers)+1)
			acts[0] = x
			for l, layer := range layers {
				acts[l+1] = layer.forward(acts[l], true)
			}
			logit := output.forward(acts[len(layers)], false)[0]
			p := sigmoid(logit)

			// Backward pass.
			delta := p - float64(y[i])
			for j, a := range acts[len(layers)] {
				gradOutput.Weights[0][j] += delta * a
			}
			gradOutput.Bias[0] += delta

			upstream := make([]float64, len(acts[len(layers)]))
			for j := range upstream {
				upstream[j] = delta * output.Weights[0][j]
			}

			for l := len(layers) - 1; l >= 0; l-- {
				local := make([]float64, len(layers[l].Weights))
				for o := range layers[l].Weights {
					if acts[l+1][o] > 0 {
						local[o] = upstream[o]
					}
				}
				for o, weights := range layers[l].Weights {
					for j := range weights {
						gradLayers[l].Weights[o][j] += local[o] * acts[l][j]
					}
					gradLayers[l].Bias[o] += local[o]
				}
				next := make([]float64, len(acts[l]))
				for j := range next {
					for o := range layers[l].Weights {
						next[j] += local[o] * layers[l].Weights[o][j]
					}
				}
				upstream = next
			}
		}

		step := cfg.LearningRate / float64(len(scaled))
		for l := range layers {
			applyGradient(&layers[l], gradLayers[l], step)
		}
		applyGradient(&output, gradOutput, step)
	}

	pipe.Hidden = layers
	pipe.Output = output
	return pipe
}

func fitScale(X [][]float64) []float64 {
	d := len(X[0])
	scale := make([]float64, d)
	for j := 0; j < d; j++ {
		sum, sumSq, n := 0.0, 0.0, 0.0
		for _, row := range X {
			v := row[j]
			if domain.IsUnknown(v) {
				v = 0
			}
			sum += v
			sumSq += v * v
			n++
		}
		mean := sum / n
		variance := sumSq/n - mean*mean
		if variance < 0 {
			variance = 0
		}
		std := math.Sqrt(variance)
		if std == 0 {
			std = 1
		}
		scale[j] = std
	}
	return scale
}

func randomLayer(in, out int, rng *rand.Rand) DenseLayer {
	layer := DenseLayer{
		Weights: make([][]float64, out),
		Bias:    make([]float64, out),
	}
	scale := math.Sqrt(2.0 / float64(in))
	for o := range layer.Weights {
		layer.Weights[o] = make([]float64, in)
		for j := range layer.Weights[o] {
			layer.Weights[o][j] = rng.NormFloat64() * scale
		}
	}
	return layer
}

func zeroLayer(in, out int) DenseLayer {
	layer := DenseLayer{
		Weights: make([][]float64, out),
		Bias:    make([]float64, out),
	}
	for o := range layer.Weights {
		layer.Weights[o] = make([]float64, in)
	}
	return layer
}

func applyGradient(layer *DenseLayer, grad DenseLayer, step float64) {
	for o := range layer.Weights {
		for j := range layer.Weights[o] {
			layer.Weights[o][j] -= step * grad.Weights[o][j]
		}
		layer.Bias[o] -= step * grad.Bias[o]
	}
}
