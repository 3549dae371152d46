package geometry

import "sort"

// Entity is the capability shared by boxes and lines: a vertical midpoint to
// order by and a way to stamp the resulting rank.
type Entity[T any] interface {
	Midpoint() float64
	WithIndex(i int) T
}

// Sort returns the entities ordered top-to-bottom by midpoint with Index set
// densely from 1. Entities with equal midpoints keep their input order.
// The input slice is left untouched; an empty input yields an empty slice.
func Sort[T Entity[T]](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Midpoint() < out[j].Midpoint()
	})

	for i := range out {
		out[i] = out[i].WithIndex(i + 1)
	}
	return out
}

// SortBoxes orders boxes top-to-bottom and reassigns their indices.
func SortBoxes(boxes []BBox) []BBox {
	return Sort(boxes)
}

// SortLines orders lines top-to-bottom and reassigns their indices.
func SortLines(lines []Line) []Line {
	return Sort(lines)
}
