// Package forest implements a small random-forest classifier over integer
// features: bootstrap-sampled CART trees with Gini splits, averaged class
// probabilities, and a multi-output wrapper that fits one forest per target.
package forest

import (
	"errors"
	"math"
	"math/rand"
	"sort"
)

// Defaults mirror the settings the trainer uses when none are given.
const (
	DefaultTrees = 100
	DefaultSeed  = 42
)

var (
	// ErrEmptyDataset is returned when fitting without samples.
	ErrEmptyDataset = errors.New("empty dataset")
	// ErrShapeMismatch is returned when features and targets disagree in length.
	ErrShapeMismatch = errors.New("features and targets have different lengths")
)

// Options configures a forest.
type Options struct {
	Trees           int
	Seed            int64
	MaxDepth        int // 0 means unlimited
	MinSamplesSplit int
}

func (o Options) withDefaults() Options {
	if o.Trees <= 0 {
		o.Trees = DefaultTrees
	}
	if o.MinSamplesSplit < 2 {
		o.MinSamplesSplit = 2
	}
	return o
}

// Classifier is a fitted random forest for one integer target.
type Classifier struct {
	classes []int
	trees   []*node
}

type node struct {
	feature   int
	threshold float64
	left      *node
	right     *node
	dist      []float64
}

func (n *node) leaf() bool {
	return n.left == nil
}

// Fit trains a forest on rows X with labels y.
func Fit(X [][]int, y []int, opts Options) (*Classifier, error) {
	if len(X) == 0 {
		return nil, ErrEmptyDataset
	}
	if len(X) != len(y) {
		return nil, ErrShapeMismatch
	}
	opts = opts.withDefaults()

	classes := distinct(y)
	classIdx := make(map[int]int, len(classes))
	for i, c := range classes {
		classIdx[c] = i
	}
	labels := make([]int, len(y))
	for i, v := range y {
		labels[i] = classIdx[v]
	}

	b := builder{
		X:        X,
		labels:   labels,
		nClasses: len(classes),
		nFeat:    len(X[0]),
		opts:     opts,
	}
	c := &Classifier{classes: classes, trees: make([]*node, 0, opts.Trees)}
	for t := 0; t < opts.Trees; t++ {
		b.rng = rand.New(rand.NewSource(opts.Seed + int64(t)))
		sample := make([]int, len(X))
		for i := range sample {
			sample[i] = b.rng.Intn(len(X))
		}
		c.trees = append(c.trees, b.grow(sample, 0))
	}
	return c, nil
}

// Classes returns the sorted class labels seen during training.
func (c *Classifier) Classes() []int {
	return append([]int(nil), c.classes...)
}

// PredictProba returns the averaged class probabilities for x, aligned with
// Classes.
func (c *Classifier) PredictProba(x []int) []float64 {
	out := make([]float64, len(c.classes))
	for _, tree := range c.trees {
		n := tree
		for !n.leaf() {
			if float64(x[n.feature]) <= n.threshold {
				n = n.left
			} else {
				n = n.right
			}
		}
		for i, p := range n.dist {
			out[i] += p
		}
	}
	for i := range out {
		out[i] /= float64(len(c.trees))
	}
	return out
}

// Predict returns the most probable class for x. Ties go to the smaller label.
func (c *Classifier) Predict(x []int) int {
	proba := c.PredictProba(x)
	best := 0
	for i := 1; i < len(proba); i++ {
		if proba[i] > proba[best] {
			best = i
		}
	}
	return c.classes[best]
}

type builder struct {
	X        [][]int
	labels   []int
	nClasses int
	nFeat    int
	opts     Options
	rng      *rand.Rand
}

func (b *builder) grow(idx []int, depth int) *node {
	counts := b.counts(idx)
	parent := gini(counts, len(idx))
	if parent == 0 || len(idx) < b.opts.MinSamplesSplit || (b.opts.MaxDepth > 0 && depth >= b.opts.MaxDepth) {
		return b.leafNode(counts, len(idx))
	}

	feature, threshold, score, ok := b.bestSplit(idx)
	if !ok || score >= parent-1e-12 {
		return b.leafNode(counts, len(idx))
	}
	left := make([]int, 0, len(idx))
	right := make([]int, 0, len(idx))
	for _, i := range idx {
		if float64(b.X[i][feature]) <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return &node{
		feature:   feature,
		threshold: threshold,
		left:      b.grow(left, depth+1),
		right:     b.grow(right, depth+1),
	}
}

// bestSplit tries a random subset of ceil(sqrt(d)) features first and falls
// back to the remaining ones when none of them separates the samples.
func (b *builder) bestSplit(idx []int) (int, float64, float64, bool) {
	maxFeatures := int(math.Ceil(math.Sqrt(float64(b.nFeat))))
	order := b.rng.Perm(b.nFeat)

	bestFeature, bestThreshold, bestScore, found := 0, 0.0, math.Inf(1), false
	for visited, f := range order {
		if visited >= maxFeatures && found {
			break
		}
		threshold, score, ok := b.splitOn(idx, f)
		if ok && score < bestScore {
			bestFeature, bestThreshold, bestScore, found = f, threshold, score, true
		}
	}
	return bestFeature, bestThreshold, bestScore, found
}

func (b *builder) splitOn(idx []int, f int) (float64, float64, bool) {
	sorted := append([]int(nil), idx...)
	sort.Slice(sorted, func(i, j int) bool {
		return b.X[sorted[i]][f] < b.X[sorted[j]][f]
	})
	left := make([]int, b.nClasses)
	right := b.counts(sorted)
	n := len(sorted)

	bestThreshold, bestScore, ok := 0.0, math.Inf(1), false
	for i := 0; i < n-1; i++ {
		label := b.labels[sorted[i]]
		left[label]++
		right[label]--
		cur, next := b.X[sorted[i]][f], b.X[sorted[i+1]][f]
		if cur == next {
			continue
		}
		nl, nr := i+1, n-i-1
		score := (float64(nl)*gini(left, nl) + float64(nr)*gini(right, nr)) / float64(n)
		if score < bestScore {
			bestThreshold = (float64(cur) + float64(next)) / 2
			bestScore = score
			ok = true
		}
	}
	return bestThreshold, bestScore, ok
}

func (b *builder) counts(idx []int) []int {
	counts := make([]int, b.nClasses)
	for _, i := range idx {
		counts[b.labels[i]]++
	}
	return counts
}

func (b *builder) leafNode(counts []int, total int) *node {
	dist := make([]float64, len(counts))
	if total > 0 {
		for i, c := range counts {
			dist[i] = float64(c) / float64(total)
		}
	}
	return &node{dist: dist}
}

func gini(counts []int, total int) float64 {
	if total == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range counts {
		p := float64(c) / float64(total)
		sum += p * p
	}
	return 1 - sum
}

func distinct(values []int) []int {
	seen := map[int]struct{}{}
	out := make([]int, 0)
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}
