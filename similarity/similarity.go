package similarity

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Method selects how two embedding vectors are compared. Different corpora
// behave differently under different metrics, so the caller picks the active
// method per request and cosine is the default.
type Method string

const (
	Cosine     Method = "cosine"
	Euclidean  Method = "euclidean"
	Manhattan  Method = "manhattan"
	DotProduct Method = "dot_product"
	Pearson    Method = "pearson"
	Spearman   Method = "spearman"
	Jaccard    Method = "jaccard"
	Hamming    Method = "hamming"
)

// Parse returns the Method named by s, defaulting to Cosine for an empty
// string. Unknown names are an error so that a typo in config surfaces at
// wiring time instead of silently scoring everything 0.
func Parse(s string) (Method, error) {
	switch Method(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return Cosine, nil
	case Cosine:
		return Cosine, nil
	case Euclidean:
		return Euclidean, nil
	case Manhattan:
		return Manhattan, nil
	case DotProduct:
		return DotProduct, nil
	case Pearson:
		return Pearson, nil
	case Spearman:
		return Spearman, nil
	case Jaccard:
		return Jaccard, nil
	case Hamming:
		return Hamming, nil
	default:
		return "", fmt.Errorf("unknown similarity method: %q", s)
	}
}

// Score computes the similarity of a and b under m. Vectors of unequal
// length score 0.0 rather than erroring: callers already filter malformed
// records and a sentinel keeps retrieval loops branch-free. Unknown methods
// fall back to cosine.
func Score(a, b []float32, m Method) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	switch m {
	case Euclidean:
		return EuclideanScore(a, b)
	case Manhattan:
		return ManhattanScore(a, b)
	case Pearson:
		return PearsonScore(a, b)
	case Spearman:
		return SpearmanScore(a, b)
	case Jaccard:
		return JaccardScore(a, b)
	case Hamming:
		return HammingScore(a, b)
	case Cosine, DotProduct:
		return CosineScore(a, b)
	default:
		return CosineScore(a, b)
	}
}

// CosineScore is dot(a,b) / (|a|*|b|), 0.0 if either norm is zero.
// DotProduct is an alias for this in the retrieval contract: embeddings are
// compared under the same normalization either way.
func CosineScore(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// EuclideanScore maps L2 distance into (0,1] via 1/(1+d).
func EuclideanScore(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}

	return 1.0 / (1.0 + math.Sqrt(sum))
}

// ManhattanScore maps L1 distance into (0,1] via 1/(1+d).
func ManhattanScore(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	var sum float64
	for i := range a {
		sum += math.Abs(float64(a[i]) - float64(b[i]))
	}

	return 1.0 / (1.0 + sum)
}

// PearsonScore is the Pearson correlation coefficient of the two vectors
// treated as samples. Zero variance on either side scores 0.0.
func PearsonScore(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	n := float64(len(a))

	var meanA, meanB float64
	for i := range a {
		meanA += float64(a[i])
		meanB += float64(b[i])
	}
	meanA /= n
	meanB /= n

	var cov, varA, varB float64
	for i := range a {
		da := float64(a[i]) - meanA
		db := float64(b[i]) - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}

	if varA == 0 || varB == 0 {
		return 0.0
	}

	return cov / (math.Sqrt(varA) * math.Sqrt(varB))
}

// SpearmanScore is the Pearson correlation of the two vectors' ranks, with
// ties assigned their average rank. Degenerate ranks score 0.0.
func SpearmanScore(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	return PearsonScore(rank(a), rank(b))
}

// JaccardScore binarizes both vectors by > 0 and returns
// |intersection| / |union|, 0.0 when the union is empty.
func JaccardScore(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	var inter, union float64
	for i := range a {
		x := a[i] > 0
		y := b[i] > 0
		if x && y {
			inter++
		}
		if x || y {
			union++
		}
	}

	if union == 0 {
		return 0.0
	}

	return inter / union
}

// HammingScore binarizes both vectors by > 0 and returns one minus the
// mismatch rate.
func HammingScore(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	var mismatch float64
	for i := range a {
		if (a[i] > 0) != (b[i] > 0) {
			mismatch++
		}
	}

	return 1.0 - mismatch/float64(len(a))
}

// rank converts values to average ranks (1-based) as float32s.
func rank(v []float32) []float32 {
	idx := make([]int, len(v))
	for i := range idx {
		idx[i] = i
	}

	sort.SliceStable(idx, func(i, j int) bool {
		return v[idx[i]] < v[idx[j]]
	})

	ranks := make([]float32, len(v))

	i := 0
	for i < len(idx) {
		j := i
		for j+1 < len(idx) && v[idx[j+1]] == v[idx[i]] {
			j++
		}
		// average rank for the tie group [i, j]
		avg := float32(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}

	return ranks
}
