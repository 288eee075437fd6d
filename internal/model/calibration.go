package model

import (
	"math"
	"math/rand"
)

const (
	plattIterations   = 300
	plattLearningRate = 0.1
)

// CalibratedClassifier post-processes a linear classifier's margin into a
// calibrated probability via a fitted sigmoid (Platt scaling):
//
//	p = 1 / (1 + exp(A*f + B))
//
// where f is the base model's decision margin.
type CalibratedClassifier struct {
	Base  *LogisticRegression `json:"base"`
	A     float64             `json:"a"`
	B     float64             `json:"b"`
	Folds int                 `json:"folds"`
}

// PredictProba returns the calibrated positive-class probability.
func (c *CalibratedClassifier) PredictProba(row []float64) float64 {
	f := c.Base.Decision(row)
	return 1.0 / (1.0 + math.Exp(c.A*f+c.B))
}

// FitCalibrated fits sigmoid calibration from out-of-fold decision margins
// over stratified folds, then refits the base model on the full partition.
// folds must already be chosen safely by the caller (see PickFolds).
func FitCalibrated(X [][]float64, y []int, folds int, rng *rand.Rand) *CalibratedClassifier {
	assignments := stratifiedFolds(y, folds, rng)

	margins := make([]float64, 0, len(y))
	labels := make([]int, 0, len(y))
	for k := 0; k < folds; k++ {
		trainX := make([][]float64, 0, len(y))
		trainY := make([]int, 0, len(y))
		for i := range X {
			if assignments[i] != k {
				trainX = append(trainX, X[i])
				trainY = append(trainY, y[i])
			}
		}
		foldModel := FitLogistic(trainX, trainY)
		for i := range X {
			if assignments[i] == k {
				margins = append(margins, foldModel.Decision(X[i]))
				labels = append(labels, y[i])
			}
		}
	}

	a, b := fitPlatt(margins, labels)
	return &CalibratedClassifier{
		Base:  FitLogistic(X, y),
		A:     a,
		B:     b,
		Folds: folds,
	}
}

// PickFolds chooses a safe cross-validation fold count given class counts.
// Returns 0 when the minority class is too small to calibrate at all.
func PickFolds(y []int, desired int) int {
	minority := minorityCount(y)
	if minority < 2 {
		return 0
	}
	folds := desired
	if folds < 2 {
		folds = 2
	}
	if folds > minority {
		folds = minority
	}
	return folds
}

func minorityCount(y []int) int {
	pos, neg := 0, 0
	for _, label := range y {
		if label == 1 {
			pos++
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return 0
	}
	if pos < neg {
		return pos
	}
	return neg
}

// stratifiedFolds assigns each example a fold index, distributing every
// class round-robin so each fold sees both labels where possible.
func stratifiedFolds(y []int, folds int, rng *rand.Rand) []int {
	assignment := make([]int, len(y))
	for _, class := range []int{0, 1} {
		var idx []int
		for i, label := range y {
			if label == class {
				idx = append(idx, i)
			}
		}
		rng.Shuffle(len(idx), func(a, b int) { idx[a], idx[b] = idx[b], idx[a] })
		for pos, i := range idx {
			assignment[i] = pos % folds
		}
	}
	return assignment
}

// fitPlatt fits the sigmoid parameters by gradient descent on the negative
// log likelihood, using Platt's smoothed targets against overfitting on
// small calibration sets.
func fitPlatt(margins []float64, y []int) (a, b float64) {
	nPos, nNeg := 0, 0
	for _, label := range y {
		if label == 1 {
			nPos++
		} else {
			nNeg++
		}
	}

	tPos := (float64(nPos) + 1.0) / (float64(nPos) + 2.0)
	tNeg := 1.0 / (float64(nNeg) + 2.0)

	a = 0.0
	b = math.Log((float64(nNeg) + 1.0) / (float64(nPos) + 1.0))

	n := float64(len(margins))
	if n == 0 {
		return a, b
	}

	for iter := 0; iter < plattIterations; iter++ {
		gradA, gradB := 0.0, 0.0
		for i, f := range margins {
			target := tNeg
			if y[i] == 1 {
				target = tPos
			}
			p := 1.0 / (1.0 + math.Exp(a*f+b))
			// d(loss)/d(a*f+b) = target - p for p = sigmoid(-(a*f+b))
			diff := target - p
			gradA += diff * f
			gradB += diff
		}
		a -= plattLearningRate * gradA / n
		b -= plattLearningRate * gradB / n
	}

	return a, b
}
