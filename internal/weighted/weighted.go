package weighted

import (
	"errors"

	"github.com/pixil98/go-survivors/internal/rng"
)

var (
	ErrEmpty    = errors.New("no eligible candidates")
	ErrNoWeight = errors.New("total weight is not positive")
)

// Select draws one item with probability proportional to its weight.
// Negative weights count as zero and zero weight items are never returned.
func Select[T any](src rng.Source, items []T, weight func(T) float64) (T, error) {
	var zero T
	if len(items) == 0 {
		return zero, ErrEmpty
	}

	total := 0.0
	last := -1
	for i, it := range items {
		if w := weight(it); w > 0 {
			total += w
			last = i
		}
	}
	if total <= 0 {
		return zero, ErrNoWeight
	}

	draw := src.Float64() * total
	cumulative := 0.0
	for _, it := range items {
		w := weight(it)
		if w <= 0 {
			continue
		}
		cumulative += w
		if draw < cumulative {
			return it, nil
		}
	}

	// Rounding can leave the draw unconsumed.
	return items[last], nil
}

// SelectWhere filters items with keep before calling Select.
func SelectWhere[T any](src rng.Source, items []T, keep func(T) bool, weight func(T) float64) (T, error) {
	eligible := make([]T, 0, len(items))
	for _, it := range items {
		if keep(it) {
			eligible = append(eligible, it)
		}
	}
	return Select(src, eligible, weight)
}
