// Package features turns item titles into hashed n-gram feature vectors.
//
// The hash is 64-bit FNV-1a over a tagged byte encoding of each key, reduced
// modulo NumFeatures and shifted to 1-based indices. Stored training vectors
// depend on it, so the encoding must never change.
package features

import (
	"errors"
	"hash/fnv"
	"strings"
)

// ErrEmptyTitle is returned when a title contains no tokens
var ErrEmptyTitle = errors.New("title has no tokens")

const (
	beginToken = "[BEGIN]"
	endToken   = "[END]"

	// keySep separates the parts of a hashed key. It is an ASCII control
	// character, so it survives lowercasing and never appears inside a token.
	keySep = 0x1F
)

// HashTitle converts a title into its sparse feature vector
func HashTitle(title string) (Vector, error) {
	tokens := Tokenize(title)
	if len(tokens) == 0 {
		return nil, ErrEmptyTitle
	}

	weight := 1.0 / float64(len(tokens))
	slots := make(map[int]float64, 2*len(tokens)+2)

	add := func(idx int) {
		// the bias slot is fixed at 1.0; colliding features are dropped
		if idx == BiasIndex {
			return
		}
		slots[idx] += weight
	}

	prev := beginToken
	for _, tok := range tokens {
		add(BigramIndex(prev, tok))
		add(UnigramIndex(tok))
		prev = tok
	}
	add(BigramIndex(prev, endToken))

	slots[BiasIndex] = 1.0
	return fromMap(slots), nil
}

// Tokenize lowercases the title, isolates CJK code points and splits on whitespace
func Tokenize(title string) []string {
	return strings.Fields(normalize(title))
}

// normalize lowercases s and pads every CJK code point with spaces
func normalize(s string) string {
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isCJK(r) {
			b.WriteByte(' ')
			b.WriteRune(r)
			b.WriteByte(' ')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// isCJK covers CJK radicals through the unified ideographs block
func isCJK(r rune) bool {
	return r >= 0x2E80 && r <= 0x9FFF
}

// UnigramIndex returns the feature index for a single token
func UnigramIndex(token string) int {
	h := fnv.New64a()
	h.Write([]byte{'u', keySep})
	h.Write([]byte(token))
	return reduce(h.Sum64())
}

// BigramIndex returns the feature index for an ordered token pair
func BigramIndex(prev, cur string) int {
	h := fnv.New64a()
	h.Write([]byte{'b', keySep})
	h.Write([]byte(prev))
	h.Write([]byte{keySep})
	h.Write([]byte(cur))
	return reduce(h.Sum64())
}

func reduce(sum uint64) int {
	return int(sum%NumFeatures) + 1
}
