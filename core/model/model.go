// Package model implements gradient-boosted regression trees with monotone constraints.
//
// Trees are fit to squared-error gradients. A split is kept only when its
// child weights respect the constraint of the split feature, and every
// descendant leaf is bounded by the midpoint of those weights, so each tree
// and therefore the ensemble is monotone in every constrained feature.
package model

import (
	"math"

	"github.com/huangsam/podium/schema"
	"gonum.org/v1/gonum/stat"
)

// Monotone constraint directions.
const (
	Increasing = 1
	Decreasing = -1
	Free       = 0
)

// RaceConstraints are the directions for qualifying time, team score and grid position.
var RaceConstraints = []int{Increasing, Decreasing, Increasing}

// Regressor is a boosted ensemble of regression trees.
type Regressor struct {
	params      schema.ModelParams
	constraints []int
	baseScore   float64
	trees       []*node
	width       int
}

// node is a split when left and right are set, a leaf otherwise.
type node struct {
	feature     int
	threshold   float64
	left, right *node
	value       float64
}

// New creates an untrained Regressor. Constraints may be nil for an unconstrained model.
func New(params schema.ModelParams, constraints []int) *Regressor {
	return &Regressor{params: params, constraints: append([]int(nil), constraints...)}
}

// BaseScore is the constant the ensemble starts from, the mean training target.
func (r *Regressor) BaseScore() float64 { return r.baseScore }

// Trees returns the number of fitted trees.
func (r *Regressor) Trees() int { return len(r.trees) }

// Fit trains the ensemble on rows X with targets y.
func (r *Regressor) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return schema.NewDataError("no training rows")
	}
	if len(X) != len(y) {
		return schema.NewDataError("%d training rows but %d targets", len(X), len(y))
	}
	width := len(X[0])
	if len(r.constraints) > 0 && len(r.constraints) != width {
		return schema.NewDataError("%d constraints for %d features", len(r.constraints), width)
	}
	if err := checkRows(X, width); err != nil {
		return err
	}
	for i, v := range y {
		if !finite(v) {
			return schema.NewDataError("target of row %d is not finite", i)
		}
	}

	r.width = width
	r.baseScore = stat.Mean(y, nil)
	r.trees = r.trees[:0]

	pred := make([]float64, len(y))
	for i := range pred {
		pred[i] = r.baseScore
	}
	grad := make([]float64, len(y))
	idx := make([]int, len(y))
	for i := range idx {
		idx[i] = i
	}

	b := builder{X: X, grad: grad, params: r.params, constraints: r.constraints}
	for range r.params.Estimators {
		for i := range grad {
			grad[i] = pred[i] - y[i]
		}
		tree := b.grow(idx, 0, math.Inf(-1), math.Inf(1))
		r.trees = append(r.trees, tree)
		for i, row := range X {
			pred[i] += r.params.LearningRate * tree.predict(row)
		}
	}
	return nil
}

// Predict returns one prediction per row.
func (r *Regressor) Predict(X [][]float64) ([]float64, error) {
	if r.width == 0 {
		return nil, schema.NewDataError("model is not fitted")
	}
	if err := checkRows(X, r.width); err != nil {
		return nil, err
	}
	out := make([]float64, len(X))
	for i, row := range X {
		out[i] = r.predictRow(row)
	}
	return out, nil
}

func (r *Regressor) predictRow(row []float64) float64 {
	sum := r.baseScore
	for _, tree := range r.trees {
		sum += r.params.LearningRate * tree.predict(row)
	}
	return sum
}

func (n *node) predict(row []float64) float64 {
	for n.left != nil {
		if row[n.feature] < n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

func checkRows(X [][]float64, width int) error {
	for i, row := range X {
		if len(row) != width {
			return schema.NewDataError("row %d has %d features, want %d", i, len(row), width)
		}
		for j, v := range row {
			if !finite(v) {
				return schema.NewDataError("feature %d of row %d is not finite", j, i)
			}
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
