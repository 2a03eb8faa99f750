// Package kmeans implements centroid-based clustering of integer feature
// vectors with Euclidean distance and a fixed iteration budget.
package kmeans

import (
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

var (
	// ErrEmptyInput reports that there is nothing to cluster.
	ErrEmptyInput = eris.New("kmeans: empty input")

	// ErrDimensionMismatch reports feature vectors of inconsistent length.
	// This is an integration bug, not a data condition.
	ErrDimensionMismatch = eris.New("kmeans: inconsistent vector dimensions")
)

// Observer receives the distortion after each iteration's update phase,
// computed against that iteration's assignment. Diagnostic only; it never
// influences the iteration itself.
type Observer func(iteration int, distortion float64)

// Result is the final state of a clustering run. Assignments is indexed
// like the input points and refers into Centroids, which may hold fewer
// centroids than the run started with: a centroid that finishes an
// iteration with no assigned points is dropped.
type Result struct {
	Assignments []int
	Centroids   [][]int
	Distortion  float64
}

// Run clusters points for a fixed number of iterations, starting from the
// given centroids. Each iteration fully reassigns every point to its
// nearest centroid (ties to the lowest centroid index) and then replaces
// the centroid set wholesale with the component-wise rounded means. There
// is no early exit: the iteration count bounds the runtime.
func Run(points [][]int, centroids [][]int, iterations int, observer Observer) (*Result, error) {
	if len(points) == 0 {
		return nil, eris.Wrap(ErrEmptyInput, "no points")
	}
	if len(centroids) == 0 {
		return nil, eris.Wrap(ErrEmptyInput, "no centroids")
	}
	if iterations < 1 {
		return nil, eris.Errorf("kmeans: iterations must be positive, got %d", iterations)
	}

	dim := len(points[0])
	for i, p := range points {
		if len(p) != dim {
			return nil, eris.Wrapf(ErrDimensionMismatch, "point %d has %d components, want %d", i, len(p), dim)
		}
	}
	for i, c := range centroids {
		if len(c) != dim {
			return nil, eris.Wrapf(ErrDimensionMismatch, "centroid %d has %d components, want %d", i, len(c), dim)
		}
	}

	log := zap.L().With(zap.String("component", "kmeans"))
	log.Info("clustering started",
		zap.Int("points", len(points)),
		zap.Int("centroids", len(centroids)),
		zap.Int("dimensions", dim),
		zap.Int("iterations", iterations),
	)

	var assignments []int
	var distortion float64
	for iter := 0; iter < iterations; iter++ {
		assignments = assignPoints(points, centroids)

		next, remap := recomputeCentroids(points, assignments, len(centroids), dim)
		if len(next) < len(centroids) {
			log.Debug("dropped empty centroids",
				zap.Int("iteration", iter),
				zap.Int("before", len(centroids)),
				zap.Int("after", len(next)),
			)
		}
		centroids = next

		// Every assigned index survives the compaction, so the previous
		// assignment stays valid against the new centroid set.
		for i, a := range assignments {
			assignments[i] = remap[a]
		}

		distortion = MeanSquaredDistance(points, centroids, assignments)
		if observer != nil {
			observer(iter, distortion)
		}
	}

	log.Info("clustering finished",
		zap.Int("clusters", len(centroids)),
		zap.Float64("distortion", distortion),
	)
	return &Result{Assignments: assignments, Centroids: centroids, Distortion: distortion}, nil
}

// assignPoints maps every point to the index of its nearest centroid.
// The first centroid achieving the minimum wins, which keeps assignment
// deterministic under ties.
func assignPoints(points [][]int, centroids [][]int) []int {
	assignments := make([]int, len(points))
	for i, p := range points {
		best := 0
		bestDist := math.MaxFloat64
		for c, centroid := range centroids {
			if d := Distance(p, centroid); d < bestDist {
				best = c
				bestDist = d
			}
		}
		assignments[i] = best
	}
	return assignments
}

// recomputeCentroids replaces each centroid with the component-wise
// rounded mean of its assigned points. Centroids with no assigned points
// are dropped; remap translates old centroid indices to positions in the
// compacted result (-1 for dropped centroids, which by construction no
// assignment references).
func recomputeCentroids(points [][]int, assignments []int, k, dim int) (centroids [][]int, remap []int) {
	sums := make([][]int, k)
	counts := make([]int, k)
	for i := range sums {
		sums[i] = make([]int, dim)
	}
	for i, p := range points {
		c := assignments[i]
		counts[c]++
		for j, v := range p {
			sums[c][j] += v
		}
	}

	remap = make([]int, k)
	for c := 0; c < k; c++ {
		if counts[c] == 0 {
			remap[c] = -1
			continue
		}
		centroid := make([]int, dim)
		for j, sum := range sums[c] {
			centroid[j] = int(math.Round(float64(sum) / float64(counts[c])))
		}
		remap[c] = len(centroids)
		centroids = append(centroids, centroid)
	}
	return centroids, remap
}

// MeanSquaredDistance is the distortion metric: the mean squared distance
// from each point to its assigned centroid. It is non-increasing over a
// run, up to integer rounding of the centroids.
func MeanSquaredDistance(points [][]int, centroids [][]int, assignments []int) float64 {
	total := 0.0
	for i, p := range points {
		d := Distance(p, centroids[assignments[i]])
		total += d * d
	}
	return total / float64(len(points))
}
