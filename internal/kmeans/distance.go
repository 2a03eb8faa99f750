package kmeans

import "math"

// Distance returns the Euclidean distance between two feature vectors.
// Vectors must be the same length; Run validates dimensions on entry so
// the hot loop can skip the check.
func Distance(u, v []int) float64 {
	sum := 0.0
	for i := range u {
		d := float64(u[i] - v[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
