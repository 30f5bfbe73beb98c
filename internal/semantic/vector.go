// Package semantic compares texts through dense embeddings.
package semantic

import (
	"math"
)

// Cosine returns the cosine similarity of a and b in [-1, 1]. It is 0 when
// either vector has zero norm or the dimensions differ.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}

	denominator := math.Sqrt(na) * math.Sqrt(nb)
	if denominator == 0 || math.IsNaN(denominator) || math.IsInf(denominator, 0) {
		return 0
	}

	sim := dot / denominator
	if math.IsNaN(sim) {
		return 0
	}
	return math.Max(-1, math.Min(1, sim))
}

// Clamp01 maps a similarity into [0, 1]; non-finite values become 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

// MeanPool averages vectors of equal dimension. Vectors of a different
// dimension than the first one are ignored.
func MeanPool(vectors [][]float64) []float64 {
	weights := make([]float64, len(vectors))
	for i := range weights {
		weights[i] = 1
	}
	return weightedSum(vectors, weights)
}

// AttentionPool weights every vector by its clamped similarity to query,
// normalizes the weights to sum to 1 and returns the weighted sum together
// with the weights. When no vector resembles the query the weights are
// uniform, which is the mean pool.
func AttentionPool(query []float64, vectors [][]float64) ([]float64, []float64) {
	if len(vectors) == 0 {
		return nil, nil
	}

	weights := make([]float64, len(vectors))
	var total float64
	for i, v := range vectors {
		weights[i] = Clamp01(Cosine(query, v))
		total += weights[i]
	}

	if total == 0 {
		for i := range weights {
			weights[i] = 1
		}
		total = float64(len(weights))
	}

	for i := range weights {
		weights[i] /= total
	}

	return weightedSum(vectors, weights), weights
}

func weightedSum(vectors [][]float64, weights []float64) []float64 {
	if len(vectors) == 0 {
		return nil
	}

	dim := len(vectors[0])
	out := make([]float64, dim)
	var total float64
	for i, v := range vectors {
		if len(v) != dim {
			continue
		}
		for j := range v {
			out[j] += v[j] * weights[i]
		}
		total += weights[i]
	}

	if total == 0 {
		return out
	}
	for j := range out {
		out[j] /= total
	}
	return out
}
