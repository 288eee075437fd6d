package domain

import "math"

// ScoredURL is the output contract shared by every scoring path.
// Score is always clamped to [0,1] before it leaves a component.
type ScoredURL struct {
	URL         string  `json:"url"`
	Score       float64 `json:"score"`
	Explanation string  `json:"explanation"`
}

// Rating is the serving-time result: a scored URL quantized into star buckets.
type Rating struct {
	URL         string  `json:"url"`
	Score       float64 `json:"score"`
	Stars       int     `json:"stars"`
	Explanation string  `json:"explanation"`
}

// LabeledExample is a single ground-truth row; Label 1 means "credible".
type LabeledExample struct {
	URL   string `json:"url" yaml:"url"`
	Label int    `json:"label" yaml:"label"`
}

// Clamp01 bounds a score into [0,1].
func Clamp01(v float64) float64 {
	if v > 1.0 {
		return 1.0
	}
	if v < 0.0 {
		return 0.0
	}
	return v
}

// Round rounds to the given number of decimal places for presentation stability.
func Round(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}

// StarsFromScore maps a [0,1] score onto the fixed five-bucket scale.
// Thresholds: 0.35 / 0.50 / 0.65 / 0.80.
func StarsFromScore(score float64) int {
	switch {
	case score >= 0.80:
		return 5
	case score >= 0.65:
		return 4
	case score >= 0.50:
		return 3
	case score >= 0.35:
		return 2
	default:
		return 1
	}
}
