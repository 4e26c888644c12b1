package features

import "sort"

// NumFeatures is the size of the hashed feature space. Indices are 1-based.
const NumFeatures = 65536

// BiasIndex is the feature slot reserved for the bias term
const BiasIndex = 1

// Feature is a single non-zero entry of a sparse vector
type Feature struct {
	Index int     `json:"i"`
	Value float64 `json:"v"`
}

// Vector is a sparse feature vector sorted by ascending index
type Vector []Feature

// fromMap builds a sorted Vector from accumulated slot weights
func fromMap(m map[int]float64) Vector {
	v := make(Vector, 0, len(m))
	for idx, val := range m {
		v = append(v, Feature{Index: idx, Value: val})
	}
	sort.Slice(v, func(i, j int) bool { return v[i].Index < v[j].Index })
	return v
}

// Get returns the weight stored at index, or 0 if absent
func (v Vector) Get(index int) float64 {
	i := sort.Search(len(v), func(i int) bool { return v[i].Index >= index })
	if i < len(v) && v[i].Index == index {
		return v[i].Value
	}
	return 0
}

// Clone returns a copy that shares no memory with v
func (v Vector) Clone() Vector {
	if v == nil {
		return nil
	}
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// Equal reports whether both vectors hold bit-identical entries
func (v Vector) Equal(other Vector) bool {
	if len(v) != len(other) {
		return false
	}
	for i := range v {
		if v[i] != other[i] {
			return false
		}
	}
	return true
}

// SquaredNorm returns the dot product of v with itself
func (v Vector) SquaredNorm() float64 {
	var sum float64
	for _, f := range v {
		sum += f.Value * f.Value
	}
	return sum
}

// Valid reports whether every index lies in [1, NumFeatures], indices are
// strictly increasing and the bias is present
func (v Vector) Valid() bool {
	if len(v) == 0 || v[0].Index != BiasIndex {
		return false
	}
	prev := 0
	for _, f := range v {
		if f.Index <= prev || f.Index > NumFeatures {
			return false
		}
		prev = f.Index
	}
	return true
}
