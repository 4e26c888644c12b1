// Package ranker orders candidate items by the personalized relevance model.
package ranker

import (
	"fmt"
	"slices"

	"github.com/rs/zerolog"

	"github.com/vijay-prabhu/feedrank/internal/classifier"
	"github.com/vijay-prabhu/feedrank/internal/corpus"
	"github.com/vijay-prabhu/feedrank/internal/features"
)

// Candidate is anything with a guid and a title that can be ranked
type Candidate interface {
	RankGUID() string
	RankTitle() string
}

// Scored pairs a candidate with its decision value and 1-based rank
type Scored[T Candidate] struct {
	Item  T       `json:"item"`
	Score float64 `json:"score"`
	Rank  int     `json:"rank"`
}

// Ranker retrains the model on every request and ranks candidates with it
type Ranker struct {
	trainer *classifier.Trainer
	logger  zerolog.Logger
}

// New creates a Ranker
func New(trainer *classifier.Trainer, logger zerolog.Logger) *Ranker {
	return &Ranker{
		trainer: trainer,
		logger:  logger.With().Str("component", "ranker").Logger(),
	}
}

// Score returns one decision value per item, in input order
func Score[T Candidate](model *classifier.Model, items []T) ([]float64, error) {
	scores := make([]float64, len(items))
	for i, item := range items {
		v, err := features.HashTitle(item.RankTitle())
		if err != nil {
			return nil, fmt.Errorf("failed to score item %s: %w", item.RankGUID(), err)
		}
		scores[i] = model.Decision(v)
	}
	return scores, nil
}

// Order sorts items by descending score and keeps the first n.
// A negative n keeps everything. Equal scores keep their input order.
// scores[i] belongs to items[i]; when the lengths differ only the paired
// prefix is ranked.
func Order[T Candidate](items []T, scores []float64, n int) []Scored[T] {
	ranked := make([]Scored[T], min(len(items), len(scores)))
	for i := range ranked {
		ranked[i] = Scored[T]{Item: items[i], Score: scores[i]}
	}

	slices.SortStableFunc(ranked, func(a, b Scored[T]) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	if n >= 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// TopN fits a model on the examples and returns the n most relevant items
func TopN[T Candidate](r *Ranker, examples []corpus.Example, items []T, n int) ([]Scored[T], error) {
	model, err := r.trainer.Fit(examples)
	if err != nil {
		return nil, err
	}

	scores, err := Score(model, items)
	if err != nil {
		return nil, err
	}

	ranked := Order(items, scores, n)

	r.logger.Debug().
		Int("candidates", len(items)).
		Int("returned", len(ranked)).
		Int("examples", len(examples)).
		Msg("items ranked")

	return ranked, nil
}
