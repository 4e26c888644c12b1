package classifier

import (
	"github.com/vijay-prabhu/feedrank/internal/features"
)

// Model is a fitted linear classifier over the hashed feature space.
// Positive decision values mean "relevant".
type Model struct {
	weights    []float64
	Iterations int // solver epochs used
	Examples   int // training examples including the anchor
}

// Decision returns the raw decision value w·v
func (m *Model) Decision(v features.Vector) float64 {
	var sum float64
	for _, f := range v {
		if f.Index > 0 && f.Index < len(m.weights) {
			sum += m.weights[f.Index] * f.Value
		}
	}
	return sum
}

// Weight returns the learned weight for a feature index
func (m *Model) Weight(index int) float64 {
	if index <= 0 || index >= len(m.weights) {
		return 0
	}
	return m.weights[index]
}

// Score hashes a title and returns its decision value
func (m *Model) Score(title string) (float64, error) {
	v, err := features.HashTitle(title)
	if err != nil {
		return 0, err
	}
	return m.Decision(v), nil
}
