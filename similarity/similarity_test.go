package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allMethods = []Method{
	Cosine, Euclidean, Manhattan, DotProduct, Pearson, Spearman, Jaccard, Hamming,
}

func TestScoreSymmetry(t *testing.T) {
	pairs := [][2][]float32{
		{{1, 2, 3}, {4, 5, 6}},
		{{0.1, -0.4, 0.9}, {0.3, 0.3, -0.2}},
		{{1, 0, 1, 0}, {0, 1, 1, 0}},
		{{-1, -2, -3}, {-3, -2, -1}},
	}

	for _, m := range allMethods {
		for _, p := range pairs {
			assert.InDelta(t, Score(p[0], p[1], m), Score(p[1], p[0], m), 1e-12,
				"method %s should be symmetric", m)
		}
	}
}

func TestScoreSelfCosine(t *testing.T) {
	vectors := [][]float32{
		{1, 2, 3},
		{0.001, 0.002, -0.003},
		{5},
	}

	for _, v := range vectors {
		assert.InDelta(t, 1.0, Score(v, v, Cosine), 1e-9)
	}
}

func TestScoreLengthMismatch(t *testing.T) {
	for _, m := range allMethods {
		assert.Zero(t, Score([]float32{1, 2}, []float32{1, 2, 3}, m))
		assert.Zero(t, Score(nil, []float32{1}, m))
		assert.Zero(t, Score(nil, nil, m))
	}
}

func TestCosineZeroNorm(t *testing.T) {
	assert.Zero(t, CosineScore([]float32{0, 0, 0}, []float32{1, 2, 3}))
	assert.Zero(t, CosineScore([]float32{1, 2, 3}, []float32{0, 0, 0}))
}

func TestDotProductAliasesCosine(t *testing.T) {
	a := []float32{0.3, -0.7, 0.2, 0.5}
	b := []float32{0.1, 0.9, -0.4, 0.2}

	assert.Equal(t, Score(a, b, Cosine), Score(a, b, DotProduct))
}

func TestEuclideanBounds(t *testing.T) {
	a := []float32{1, 2, 3}

	assert.InDelta(t, 1.0, EuclideanScore(a, a), 1e-12)

	s := EuclideanScore(a, []float32{100, 200, 300})
	assert.Greater(t, s, 0.0)
	assert.Less(t, s, 1.0)
}

func TestManhattanKnownValue(t *testing.T) {
	// L1 distance 3 -> 1/(1+3)
	assert.InDelta(t, 0.25, ManhattanScore([]float32{0, 0, 0}, []float32{1, 1, 1}), 1e-12)
}

func TestPearsonZeroVariance(t *testing.T) {
	assert.Zero(t, PearsonScore([]float32{2, 2, 2}, []float32{1, 2, 3}))
	assert.Zero(t, PearsonScore([]float32{1, 2, 3}, []float32{5, 5, 5}))
}

func TestPearsonPerfectCorrelation(t *testing.T) {
	assert.InDelta(t, 1.0, PearsonScore([]float32{1, 2, 3}, []float32{10, 20, 30}), 1e-9)
	assert.InDelta(t, -1.0, PearsonScore([]float32{1, 2, 3}, []float32{3, 2, 1}), 1e-9)
}

func TestSpearmanMonotone(t *testing.T) {
	// Monotone but nonlinear: rank correlation is exactly 1.
	a := []float32{1, 2, 3, 4}
	b := []float32{1, 10, 100, 1000}

	assert.InDelta(t, 1.0, SpearmanScore(a, b), 1e-9)
}

func TestSpearmanDegenerateRanks(t *testing.T) {
	assert.Zero(t, SpearmanScore([]float32{7, 7, 7}, []float32{1, 2, 3}))
}

func TestJaccard(t *testing.T) {
	// intersection 1, union 3
	assert.InDelta(t, 1.0/3.0, JaccardScore([]float32{1, 1, 0, 0}, []float32{1, 0, 1, 0}), 1e-12)
	assert.Zero(t, JaccardScore([]float32{0, 0}, []float32{0, 0}))
	assert.Zero(t, JaccardScore([]float32{-1, -2}, []float32{-3, -4}))
}

func TestHamming(t *testing.T) {
	// 2 mismatches out of 4
	assert.InDelta(t, 0.5, HammingScore([]float32{1, 1, 0, 0}, []float32{1, 0, 1, 0}), 1e-12)
	assert.InDelta(t, 1.0, HammingScore([]float32{1, 0, 1}, []float32{2, -1, 3}), 1e-12)
}

func TestParse(t *testing.T) {
	m, err := Parse("")
	require.NoError(t, err)
	assert.Equal(t, Cosine, m)

	m, err = Parse("  Spearman ")
	require.NoError(t, err)
	assert.Equal(t, Spearman, m)

	_, err = Parse("chebyshev")
	assert.Error(t, err)
}
