// Package corpus keeps the user's accumulated feedback as labeled feature
// vectors and persists it between sessions.
package corpus

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog"

	"github.com/vijay-prabhu/feedrank/internal/features"
)

// Label marks an example as relevant or not
type Label int

const (
	Positive Label = 1
	Negative Label = -1
)

// String returns a human-readable label name
func (l Label) String() string {
	switch l {
	case Positive:
		return "positive"
	case Negative:
		return "negative"
	default:
		return fmt.Sprintf("label(%d)", int(l))
	}
}

var (
	// ErrLocked is returned when another process owns the corpus file
	ErrLocked = errors.New("training corpus is locked by another process")
	// ErrClosed is returned when the corpus is used after Close
	ErrClosed = errors.New("training corpus is closed")
)

// Example is one labeled training vector
type Example struct {
	Label  Label
	Vector features.Vector
}

// Stats summarizes the corpus content
type Stats struct {
	Path     string `json:"path,omitempty"`
	Total    int    `json:"total"`
	Positive int    `json:"positive"`
	Negative int    `json:"negative"`
}

// Corpus is the append-only training set. It is not safe for concurrent use.
type Corpus struct {
	path   string
	lock   *flock.Flock
	logger zerolog.Logger

	labels  []Label
	vectors []features.Vector
	closed  bool
}

// New returns an empty in-memory corpus that is never persisted
func New() *Corpus {
	return &Corpus{logger: zerolog.Nop()}
}

// AddPositive records a title the user read
func (c *Corpus) AddPositive(title string) error {
	return c.add(Positive, title)
}

// AddNegative records a title the user discarded
func (c *Corpus) AddNegative(title string) error {
	return c.add(Negative, title)
}

func (c *Corpus) add(label Label, title string) error {
	if c.closed {
		return ErrClosed
	}

	v, err := features.HashTitle(title)
	if err != nil {
		return fmt.Errorf("failed to hash title %q: %w", title, err)
	}

	c.labels = append(c.labels, label)
	c.vectors = append(c.vectors, v)

	c.logger.Debug().
		Stringer("label", label).
		Int("features", len(v)).
		Int("size", len(c.labels)).
		Msg("corpus example added")
	return nil
}

// Len returns the number of real examples
func (c *Corpus) Len() int {
	return len(c.labels)
}

// Snapshot returns the examples in insertion order. The outer slice is a
// copy; vectors are shared and must not be modified.
func (c *Corpus) Snapshot() []Example {
	out := make([]Example, len(c.labels))
	for i := range c.labels {
		out[i] = Example{Label: c.labels[i], Vector: c.vectors[i]}
	}
	return out
}

// Stats counts examples by label
func (c *Corpus) Stats() Stats {
	s := Stats{Path: c.path, Total: len(c.labels)}
	for _, l := range c.labels {
		if l == Positive {
			s.Positive++
		} else {
			s.Negative++
		}
	}
	return s
}

// Path returns the backing file, empty for in-memory corpora
func (c *Corpus) Path() string {
	return c.path
}
