package domain

import "math"

// Unknown marks a feature whose value could not be observed (e.g. no
// publication date found). It is distinct from a populated zero so the
// imputer can treat absence uniformly at training and serving time.
var Unknown = math.NaN()

// IsUnknown reports whether a feature value is the unknown marker.
func IsUnknown(v float64) bool {
	return math.IsNaN(v)
}

// FeatureVector is an ordered mapping from feature names to numeric values.
type FeatureVector struct {
	Names  []string
	Values map[string]float64
}

// NewFeatureVector builds an empty vector preserving insertion order.
func NewFeatureVector() FeatureVector {
	return FeatureVector{Values: map[string]float64{}}
}

// Set records a feature value, keeping first-insertion order.
func (f *FeatureVector) Set(name string, value float64) {
	if _, ok := f.Values[name]; !ok {
		f.Names = append(f.Names, name)
	}
	f.Values[name] = value
}

// Get returns the value for a name, or Unknown if the name is absent.
func (f FeatureVector) Get(name string) float64 {
	if v, ok := f.Values[name]; ok {
		return v
	}
	return Unknown
}

// Reindex aligns the vector onto a frozen feature name list. Names absent
// from the vector default to 0; extra names are dropped. The operation is
// total: it succeeds for any vector and any name list.
func (f FeatureVector) Reindex(names []string) []float64 {
	row := make([]float64, len(names))
	for i, name := range names {
		if v, ok := f.Values[name]; ok {
			row[i] = v
		}
	}
	return row
}
