package model

import (
	"math"
	"math/rand"
	"sort"
)

// Forest is a fitted isolation forest. Isolation forests flag points that
// take unusually few random axis-aligned splits to isolate: anomalies sit in
// sparse regions and end up close to the root of each tree.
//
// Scores follow the usual convention for decision functions: Decision
// returns the raw decision value shifted by the contamination offset fitted
// on the training set, so values below zero are outliers and lower values
// are more anomalous.
type Forest struct {
	trees      []*isoNode
	sampleSize int
	offset     float64
}

// isoNode is one node of an isolation tree. Leaves have nil children and
// carry the number of training samples that reached them.
type isoNode struct {
	feature int
	split   float64
	left    *isoNode
	right   *isoNode
	size    int
}

// fitForest builds trees isolation trees over random subsamples of X of the
// given size and fixes the decision offset at the contamination quantile of
// the training scores. rng drives subsampling and split selection, so a
// fixed seed yields a bit-identical forest.
func fitForest(X [][]float64, trees, sampleSize int, contamination float64, rng *rand.Rand) *Forest {
	n := len(X)
	psi := sampleSize
	if psi > n {
		psi = n
	}
	heightLimit := int(math.Ceil(math.Log2(float64(psi) + 1)))

	f := &Forest{
		trees:      make([]*isoNode, trees),
		sampleSize: psi,
	}

	sample := make([][]float64, psi)
	for t := 0; t < trees; t++ {
		perm := rng.Perm(n)
		for i := 0; i < psi; i++ {
			sample[i] = X[perm[i]]
		}
		f.trees[t] = buildTree(sample, 0, heightLimit, rng)
	}

	// Fit the decision offset so roughly the expected anomaly fraction of
	// the training set falls below zero.
	scores := make([]float64, n)
	for i, x := range X {
		scores[i] = f.scoreSample(x)
	}
	f.offset = quantile(scores, contamination)

	return f
}

// buildTree recursively partitions sample until it is isolated, uniform, or
// the depth limit is reached. sample is reordered in place.
func buildTree(sample [][]float64, depth, limit int, rng *rand.Rand) *isoNode {
	if depth >= limit || len(sample) <= 1 {
		return &isoNode{size: len(sample)}
	}

	feature, lo, hi, ok := pickSplitFeature(sample, rng)
	if !ok {
		// Every remaining point is identical; no split can separate them.
		return &isoNode{size: len(sample)}
	}
	split := lo + rng.Float64()*(hi-lo)

	// Partition in place: rows with feature < split go left.
	mid := 0
	for i, row := range sample {
		if row[feature] < split {
			sample[i], sample[mid] = sample[mid], sample[i]
			mid++
		}
	}

	left := make([][]float64, mid)
	copy(left, sample[:mid])
	right := make([][]float64, len(sample)-mid)
	copy(right, sample[mid:])

	return &isoNode{
		feature: feature,
		split:   split,
		left:    buildTree(left, depth+1, limit, rng),
		right:   buildTree(right, depth+1, limit, rng),
	}
}

// pickSplitFeature chooses uniformly among the features that still vary
// within sample, returning the feature index and its value range. ok is
// false when no feature varies.
func pickSplitFeature(sample [][]float64, rng *rand.Rand) (feature int, lo, hi float64, ok bool) {
	width := len(sample[0])
	candidates := make([]int, 0, width)
	for f := 0; f < width; f++ {
		mn, mx := sample[0][f], sample[0][f]
		for _, row := range sample[1:] {
			if row[f] < mn {
				mn = row[f]
			}
			if row[f] > mx {
				mx = row[f]
			}
		}
		if mx > mn {
			candidates = append(candidates, f)
		}
	}
	if len(candidates) == 0 {
		return 0, 0, 0, false
	}

	feature = candidates[rng.Intn(len(candidates))]
	lo, hi = sample[0][feature], sample[0][feature]
	for _, row := range sample[1:] {
		if row[feature] < lo {
			lo = row[feature]
		}
		if row[feature] > hi {
			hi = row[feature]
		}
	}
	return feature, lo, hi, true
}

// Decision returns the decision value for x: scoreSample minus the fitted
// contamination offset. Negative means outlier; lower is more anomalous.
func (f *Forest) Decision(x []float64) float64 {
	return f.scoreSample(x) - f.offset
}

// scoreSample returns the negated anomaly score in [-1, 0): -1 for a point
// isolated immediately, approaching 0 for deeply buried points.
func (f *Forest) scoreSample(x []float64) float64 {
	var total float64
	for _, tree := range f.trees {
		total += pathLength(tree, x, 0)
	}
	mean := total / float64(len(f.trees))
	return -math.Pow(2, -mean/avgPathLength(f.sampleSize))
}

// pathLength walks x down a tree; at a leaf the expected residual depth of
// an unbuilt subtree of the leaf's size is added.
func pathLength(node *isoNode, x []float64, depth int) float64 {
	if node.left == nil {
		return float64(depth) + avgPathLength(node.size)
	}
	if x[node.feature] < node.split {
		return pathLength(node.left, x, depth+1)
	}
	return pathLength(node.right, x, depth+1)
}

// avgPathLength is c(n), the average path length of an unsuccessful BST
// search among n points, used to normalize isolation depths.
func avgPathLength(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	default:
		fn := float64(n)
		const eulerGamma = 0.5772156649015329
		h := math.Log(fn-1) + eulerGamma
		return 2*h - 2*(fn-1)/fn
	}
}

// quantile returns the q-quantile of vals using the nearest-rank method.
// vals is copied, not modified.
func quantile(vals []float64, q float64) float64 {
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	idx := int(math.Floor(q * float64(len(sorted))))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return sorted[idx]
}
