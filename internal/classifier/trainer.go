// Package classifier fits the linear relevance model from the training corpus.
//
// The solver is an L2-regularized, L2-loss linear SVM trained by dual
// coordinate descent with shrinking (Hsieh et al., ICML 2008). Every fit starts
// from scratch; given the same examples and Params it produces the same model.
package classifier

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/rs/zerolog"

	"github.com/vijay-prabhu/feedrank/internal/corpus"
	"github.com/vijay-prabhu/feedrank/internal/features"
)

var (
	// ErrInsufficientTrainingData is returned when the corpus holds no feedback yet
	ErrInsufficientTrainingData = errors.New("unable to rank: no read or removed items to learn from yet")
	// ErrSolver is returned when training input or output is malformed
	ErrSolver = errors.New("classifier training failed")
)

// Params configures the solver
type Params struct {
	Cost          float64 // penalty C for both classes
	Epsilon       float64 // stopping tolerance on the projected gradient
	MaxIterations int     // epoch cap
	Seed          uint64  // seeds the per-epoch permutation
}

// DefaultParams mirrors the classic LIBLINEAR defaults
func DefaultParams() Params {
	return Params{
		Cost:          1.0,
		Epsilon:       0.1,
		MaxIterations: 1000,
		Seed:          1,
	}
}

// Trainer fits models from corpus snapshots
type Trainer struct {
	params Params
	logger zerolog.Logger
}

// NewTrainer creates a Trainer. Zero-valued params fall back to defaults.
func NewTrainer(params Params, logger zerolog.Logger) *Trainer {
	def := DefaultParams()
	if params.Cost <= 0 {
		params.Cost = def.Cost
	}
	if params.Epsilon <= 0 {
		params.Epsilon = def.Epsilon
	}
	if params.MaxIterations <= 0 {
		params.MaxIterations = def.MaxIterations
	}
	return &Trainer{
		params: params,
		logger: logger.With().Str("component", "trainer").Logger(),
	}
}

// anchor is the synthetic negative appended to every training run so the
// solver always sees the negative class
func anchor() corpus.Example {
	return corpus.Example{
		Label:  corpus.Negative,
		Vector: features.Vector{{Index: features.BiasIndex, Value: 1.0}},
	}
}

// Fit trains a fresh model on the examples plus the anchor
func (t *Trainer) Fit(examples []corpus.Example) (*Model, error) {
	if len(examples) == 0 {
		return nil, ErrInsufficientTrainingData
	}

	xs := make([]features.Vector, 0, len(examples)+1)
	ys := make([]float64, 0, len(examples)+1)
	for i, ex := range append(examples[:len(examples):len(examples)], anchor()) {
		if ex.Label != corpus.Positive && ex.Label != corpus.Negative {
			return nil, fmt.Errorf("%w: example %d has label %d", ErrSolver, i, ex.Label)
		}
		if !ex.Vector.Valid() {
			return nil, fmt.Errorf("%w: example %d has a malformed feature vector", ErrSolver, i)
		}
		xs = append(xs, ex.Vector)
		ys = append(ys, float64(ex.Label))
	}

	w, iter := t.solve(xs, ys)

	for i, v := range w {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: non-finite weight at feature %d", ErrSolver, i)
		}
	}

	t.logger.Debug().
		Int("examples", len(xs)).
		Int("iterations", iter).
		Msg("model trained")

	return &Model{weights: w, Iterations: iter, Examples: len(xs)}, nil
}

// solve runs dual coordinate descent and returns the primal weights
func (t *Trainer) solve(xs []features.Vector, ys []float64) ([]float64, int) {
	l := len(xs)
	w := make([]float64, features.NumFeatures+1)
	alpha := make([]float64, l)

	// L2 loss: no upper bound on alpha, diagonal shift of 1/(2C)
	diag := 0.5 / t.params.Cost

	qd := make([]float64, l)
	index := make([]int, l)
	for i := range xs {
		qd[i] = diag + xs[i].SquaredNorm()
		index[i] = i
	}

	rng := rand.New(rand.NewPCG(t.params.Seed, t.params.Seed^0x9E3779B97F4A7C15))

	activeSize := l
	pgMaxOld := math.Inf(1)

	iter := 0
	for iter < t.params.MaxIterations {
		pgMaxNew := math.Inf(-1)
		pgMinNew := math.Inf(1)

		for i := 0; i < activeSize; i++ {
			j := i + rng.IntN(activeSize-i)
			index[i], index[j] = index[j], index[i]
		}

		for s := 0; s < activeSize; s++ {
			i := index[s]
			yi := ys[i]

			g := yi*dot(w, xs[i]) - 1 + alpha[i]*diag

			pg := 0.0
			if alpha[i] == 0 {
				if g > pgMaxOld {
					// shrink: this variable is likely to stay at the bound
					activeSize--
					index[s], index[activeSize] = index[activeSize], index[s]
					s--
					continue
				}
				if g < 0 {
					pg = g
				}
			} else {
				pg = g
			}

			pgMaxNew = max(pgMaxNew, pg)
			pgMinNew = min(pgMinNew, pg)

			if math.Abs(pg) > 1e-12 {
				old := alpha[i]
				alpha[i] = math.Max(alpha[i]-g/qd[i], 0)
				d := (alpha[i] - old) * yi
				for _, f := range xs[i] {
					w[f.Index] += d * f.Value
				}
			}
		}

		iter++

		if pgMaxNew-pgMinNew <= t.params.Epsilon {
			if activeSize == l {
				break
			}
			// converged on the shrunk set; recheck everything once
			activeSize = l
			pgMaxOld = math.Inf(1)
			continue
		}

		pgMaxOld = pgMaxNew
		if pgMaxOld <= 0 {
			pgMaxOld = math.Inf(1)
		}
	}

	if iter >= t.params.MaxIterations {
		t.logger.Debug().Int("max_iterations", t.params.MaxIterations).
			Msg("solver reached iteration cap before converging")
	}

	return w, iter
}

func dot(w []float64, v features.Vector) float64 {
	var sum float64
	for _, f := range v {
		sum += w[f.Index] * f.Value
	}
	return sum
}
