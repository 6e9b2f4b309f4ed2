package weighted

import (
	"cmp"
	"fmt"
	"math/rand/v2"
	"slices"
)

// Weighted pairs a value with its probability weight.
type Weighted[T any] struct {
	Value  T       `json:"value" yaml:"value" mapstructure:"value"`
	Weight float64 `json:"weight" yaml:"weight" mapstructure:"weight"`
}

// New creates a weighted item.
func New[T any](value T, weight float64) Weighted[T] {
	return Weighted[T]{Value: value, Weight: weight}
}

// SetWeight replaces the item weight.
func (w *Weighted[T]) SetWeight(weight float64) {
	w.Weight = weight
}

func (w Weighted[T]) String() string {
	return fmt.Sprintf("%.2f%% %v", w.Weight*100, w.Value)
}

// Descending orders heavier items first.
func Descending[T any](a, b Weighted[T]) int {
	return cmp.Compare(b.Weight, a.Weight)
}

// Sort orders items by weight, heaviest first. Equal weights keep their relative order.
func Sort[T any](items []Weighted[T]) {
	slices.SortStableFunc(items, Descending[T])
}

// Total returns the sum of all weights.
func Total[T any](items []Weighted[T]) float64 {
	var sum float64
	for _, it := range items {
		sum += it.Weight
	}
	return sum
}

// RandomIndex draws an index with probability proportional to its weight.
// Returns -1 when the collection is empty or carries no weight.
func RandomIndex[T any](items []Weighted[T], r *rand.Rand) int {
	total := Total(items)
	if len(items) == 0 || total <= 0 {
		return -1
	}

	var roll float64
	if r != nil {
		roll = r.Float64() * total
	} else {
		roll = rand.Float64() * total
	}

	var acc float64
	for i, it := range items {
		if it.Weight <= 0 {
			continue
		}
		acc += it.Weight
		if roll < acc {
			return i
		}
	}

	// Rounding may leave roll == total; fall back to the last weighted item.
	for i := len(items) - 1; i >= 0; i-- {
		if items[i].Weight > 0 {
			return i
		}
	}
	return -1
}

// Random draws a value. The boolean is false when no draw is possible.
func Random[T any](items []Weighted[T], r *rand.Rand) (T, bool) {
	i := RandomIndex(items, r)
	if i < 0 {
		var zero T
		return zero, false
	}
	return items[i].Value, true
}
