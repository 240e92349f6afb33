// Package similarity compares embedding vectors.
package similarity

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Cosine returns the cosine similarity of a and b in [-1, 1].
// A zero-norm operand yields 0. Panics if the lengths differ.
func Cosine(a, b []float64) float64 {
	na := floats.Norm(a, 2)
	nb := floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	cs := floats.Dot(a, b) / (na * nb)
	return math.Max(-1, math.Min(1, cs))
}

// Euclidean returns the L2 distance between a and b. Panics if the lengths differ.
func Euclidean(a, b []float64) float64 {
	return floats.Distance(a, b, 2)
}
