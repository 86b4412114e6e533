package model

import (
	"math"
	"sort"

	"github.com/huangsam/podium/schema"
)

// builder grows one tree against the current gradients. Hessians are all 1 under squared error.
type builder struct {
	X           [][]float64
	grad        []float64
	params      schema.ModelParams
	constraints []int
}

type split struct {
	feature   int
	threshold float64
	gain      float64
	left      []int
	right     []int
	wLeft     float64
	wRight    float64
}

// grow builds the subtree over idx with leaf weights bounded to [lower, upper].
func (b *builder) grow(idx []int, depth int, lower, upper float64) *node {
	G, H := b.sums(idx)
	w := b.weight(G, H, lower, upper)
	if depth >= b.params.MaxDepth || len(idx) < 2 {
		return &node{value: w}
	}

	best, ok := b.bestSplit(idx, G, H, w, lower, upper)
	if !ok {
		return &node{value: w}
	}

	leftLower, leftUpper := lower, upper
	rightLower, rightUpper := lower, upper
	mid := (best.wLeft + best.wRight) / 2
	switch b.constraint(best.feature) {
	case Increasing:
		leftUpper = math.Min(upper, mid)
		rightLower = math.Max(lower, mid)
	case Decreasing:
		leftLower = math.Max(lower, mid)
		rightUpper = math.Min(upper, mid)
	}

	return &node{
		feature:   best.feature,
		threshold: best.threshold,
		left:      b.grow(best.left, depth+1, leftLower, leftUpper),
		right:     b.grow(best.right, depth+1, rightLower, rightUpper),
	}
}

// bestSplit scans every feature for the highest positive gain split that keeps the constraint.
// Ties keep the first split found, scanning features and then thresholds in ascending order.
func (b *builder) bestSplit(idx []int, G, H, w, lower, upper float64) (split, bool) {
	var best split
	found := false
	parent := b.objective(G, H, w)

	sorted := make([]int, len(idx))
	for f := range b.X[idx[0]] {
		copy(sorted, idx)
		sort.SliceStable(sorted, func(a, c int) bool {
			return b.X[sorted[a]][f] < b.X[sorted[c]][f]
		})

		var GL, HL float64
		for k := 0; k < len(sorted)-1; k++ {
			GL += b.grad[sorted[k]]
			HL++
			lo, hi := b.X[sorted[k]][f], b.X[sorted[k+1]][f]
			if lo == hi {
				continue
			}
			GR, HR := G-GL, H-HL
			if HL < b.params.MinChildWeight || HR < b.params.MinChildWeight {
				continue
			}

			wL := b.weight(GL, HL, lower, upper)
			wR := b.weight(GR, HR, lower, upper)
			if c := b.constraint(f); c != Free && float64(c)*(wL-wR) > 0 {
				continue
			}
			gain := b.objective(GL, HL, wL) + b.objective(GR, HR, wR) - parent
			if gain <= 0 || (found && gain <= best.gain) {
				continue
			}
			best = split{
				feature:   f,
				threshold: (lo + hi) / 2,
				gain:      gain,
				wLeft:     wL,
				wRight:    wR,
			}
			best.left = append([]int(nil), sorted[:k+1]...)
			best.right = append([]int(nil), sorted[k+1:]...)
			found = true
		}
	}
	return best, found
}

func (b *builder) sums(idx []int) (G, H float64) {
	for _, i := range idx {
		G += b.grad[i]
	}
	return G, float64(len(idx))
}

// weight is the regularized optimal leaf value clamped to the bounds.
func (b *builder) weight(G, H, lower, upper float64) float64 {
	w := -G / (H + b.params.Lambda)
	return math.Max(lower, math.Min(upper, w))
}

// objective is the loss reduction of a leaf holding weight w.
// It equals G²/(H+λ) when w is the unconstrained optimum.
func (b *builder) objective(G, H, w float64) float64 {
	return -(2*G*w + (H+b.params.Lambda)*w*w)
}

func (b *builder) constraint(feature int) int {
	if feature < len(b.constraints) {
		return b.constraints[feature]
	}
	return Free
}
