package kmeans

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistance(t *testing.T) {
	assert.Equal(t, 5.0, Distance([]int{3, 4}, []int{0, 0}))
	assert.Equal(t, 5.0, Distance([]int{0, 0}, []int{3, 4}))
}

func TestDistanceIdentity(t *testing.T) {
	v := []int{1522, 610, -40, 0}
	assert.Equal(t, 0.0, Distance(v, v))
}

func TestAssignPoints(t *testing.T) {
	points := [][]int{{0, 1}, {3, 1}, {6, 1}}
	centroids := [][]int{{0, 0}, {3, 4}, {6, 0}}

	assert.Equal(t, []int{0, 1, 2}, assignPoints(points, centroids))
}

func TestAssignPointsTieBreaksFirst(t *testing.T) {
	// Equidistant from both centroids: the lower index wins.
	points := [][]int{{1, 0}}
	centroids := [][]int{{0, 0}, {2, 0}}

	assert.Equal(t, []int{0}, assignPoints(points, centroids))
}

func TestRecomputeCentroids(t *testing.T) {
	points := [][]int{{0, 1}, {3, 3}, {6, 1}}
	assignments := []int{0, 1, 0}

	centroids, remap := recomputeCentroids(points, assignments, 2, 2)
	assert.Equal(t, [][]int{{3, 1}, {3, 3}}, centroids)
	assert.Equal(t, []int{0, 1}, remap)
}

func TestRecomputeCentroidsDropsEmpty(t *testing.T) {
	points := [][]int{{0, 0}, {2, 0}}
	assignments := []int{0, 2} // centroid 1 gets nothing

	centroids, remap := recomputeCentroids(points, assignments, 3, 2)
	require.Len(t, centroids, 2)
	assert.Equal(t, []int{0, -1, 1}, remap)
	assert.Equal(t, []int{0, 0}, centroids[0])
	assert.Equal(t, []int{2, 0}, centroids[1])
}

func TestRunConverges(t *testing.T) {
	// Two well-separated groups; any sane start finds them.
	points := [][]int{
		{0, 0}, {1, 0}, {0, 1},
		{100, 100}, {101, 100}, {100, 101},
	}
	centroids := [][]int{{10, 10}, {90, 90}}

	result, err := Run(points, centroids, 10, nil)
	require.NoError(t, err)
	require.Len(t, result.Assignments, 6)

	low := result.Assignments[0]
	high := result.Assignments[3]
	assert.NotEqual(t, low, high)
	for _, a := range result.Assignments[:3] {
		assert.Equal(t, low, a)
	}
	for _, a := range result.Assignments[3:] {
		assert.Equal(t, high, a)
	}
}

func TestRunNearestCentroidInvariant(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	points := randomPoints(rng, 40, 4)
	centroids := SeedCentroids(rng, 5, 800)
	for i := range centroids {
		centroids[i] = centroids[i][:4]
	}

	result, err := Run(points, centroids, 20, nil)
	require.NoError(t, err)

	for i, p := range points {
		assigned := Distance(p, result.Centroids[result.Assignments[i]])
		for _, c := range result.Centroids {
			assert.LessOrEqual(t, assigned, Distance(p, c)+1e-9)
		}
	}
}

func TestRunDropsEmptyClusters(t *testing.T) {
	points := [][]int{{0, 0}, {1, 1}}
	// The third centroid is so remote it never attracts a point.
	centroids := [][]int{{0, 0}, {1, 1}, {100000, 100000}}

	result, err := Run(points, centroids, 3, nil)
	require.NoError(t, err)
	assert.Len(t, result.Centroids, 2)
	for _, a := range result.Assignments {
		assert.Less(t, a, len(result.Centroids))
	}
}

func TestRunDistortionNonIncreasing(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 42))
	points := randomPoints(rng, 60, 6)
	centroids := make([][]int, 4)
	for i := range centroids {
		centroids[i] = randomPoints(rng, 1, 6)[0]
	}

	var distortions []float64
	_, err := Run(points, centroids, 25, func(_ int, d float64) {
		distortions = append(distortions, d)
	})
	require.NoError(t, err)
	require.Len(t, distortions, 25)

	// Integer rounding of centroids can nudge the metric near convergence,
	// so allow a small proportional slack.
	for i := 1; i < len(distortions); i++ {
		assert.LessOrEqual(t, distortions[i], distortions[i-1]*1.01,
			"iteration %d: %f -> %f", i, distortions[i-1], distortions[i])
	}
}

func TestRunDeterministicForFixedSeed(t *testing.T) {
	points := randomPoints(rand.New(rand.NewPCG(1, 1)), 50, 24)

	run := func() []int {
		rng := rand.New(rand.NewPCG(99, 99))
		result, err := Run(points, SeedCentroids(rng, 6, 800), 15, nil)
		require.NoError(t, err)
		return result.Assignments
	}

	assert.Equal(t, run(), run())
}

func TestRunEmptyPoints(t *testing.T) {
	_, err := Run(nil, [][]int{{0, 0}}, 5, nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestRunNoCentroids(t *testing.T) {
	_, err := Run([][]int{{0, 0}}, nil, 5, nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestRunDimensionMismatch(t *testing.T) {
	_, err := Run([][]int{{0, 0}, {1, 2, 3}}, [][]int{{0, 0}}, 5, nil)
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = Run([][]int{{0, 0}}, [][]int{{0, 0, 0}}, 5, nil)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestRunBadIterations(t *testing.T) {
	_, err := Run([][]int{{0, 0}}, [][]int{{0, 0}}, 0, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "iterations")
}

func TestMeanSquaredDistance(t *testing.T) {
	points := [][]int{{3, 4}, {0, 0}}
	centroids := [][]int{{0, 0}}
	assignments := []int{0, 0}

	// (25 + 0) / 2
	assert.InDelta(t, 12.5, MeanSquaredDistance(points, centroids, assignments), 1e-9)
}

func randomPoints(rng *rand.Rand, n, dim int) [][]int {
	points := make([][]int, n)
	for i := range points {
		p := make([]int, dim)
		for j := range p {
			p[j] = rng.IntN(2000) - 1000
		}
		points[i] = p
	}
	return points
}
