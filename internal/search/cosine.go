// Package search ranks stored chunks against a query embedding by
// brute-force cosine similarity.
package search

import "math"

// Cosine computes cosine similarity between two vectors, accumulating
// in float64. It returns 0.0 when either vector has zero norm or the
// lengths differ, never NaN.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
