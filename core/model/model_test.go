package model

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/huangsam/podium/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastParams() schema.ModelParams {
	return schema.ModelParams{Estimators: 200, LearningRate: 0.1, MaxDepth: 3, Lambda: 1, MinChildWeight: 1}
}

// raceLikeData mimics entrants: slower qualifying, weaker team and worse grid mean slower laps, plus noise.
func raceLikeData(n int, seed uint64) ([][]float64, []float64) {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	X := make([][]float64, n)
	y := make([]float64, n)
	for i := range X {
		quali := 79 + rng.Float64()*2
		team := rng.Float64()
		grid := float64(rng.IntN(20) + 1)
		X[i] = []float64{quali, team, grid}
		y[i] = 85 + 1.5*(quali-79) - 0.8*team + 0.05*grid + rng.NormFloat64()*0.6
	}
	return X, y
}

func TestFitReducesError(t *testing.T) {
	X, y := raceLikeData(40, 7)
	m := New(fastParams(), RaceConstraints)
	require.NoError(t, m.Fit(X, y))
	assert.Equal(t, 200, m.Trees())

	pred, err := m.Predict(X)
	require.NoError(t, err)

	var base, fitted float64
	for i := range y {
		base += (y[i] - m.BaseScore()) * (y[i] - m.BaseScore())
		fitted += (y[i] - pred[i]) * (y[i] - pred[i])
	}
	assert.Less(t, fitted, base/2)
}

func TestMonotoneConstraintsHold(t *testing.T) {
	for _, seed := range []uint64{1, 2, 3} {
		X, y := raceLikeData(60, seed)
		m := New(fastParams(), RaceConstraints)
		require.NoError(t, m.Fit(X, y))

		rng := rand.New(rand.NewPCG(seed, 99))
		for range 200 {
			base := []float64{79 + rng.Float64()*2, rng.Float64(), float64(rng.IntN(20) + 1)}
			for f, dir := range RaceConstraints {
				lower := append([]float64(nil), base...)
				higher := append([]float64(nil), base...)
				higher[f] += rng.Float64() * 2
				pred, err := m.Predict([][]float64{lower, higher})
				require.NoError(t, err)
				diff := float64(dir) * (pred[1] - pred[0])
				assert.GreaterOrEqual(t, diff, -1e-9, "feature %d violates its constraint at %v", f, base)
			}
		}
	}
}

func TestConstraintBlocksOppositeTrend(t *testing.T) {
	// Target falls as the feature rises, but the feature may only push predictions up
	X := [][]float64{{1}, {2}, {3}, {4}, {5}, {6}}
	y := []float64{6, 5, 4, 3, 2, 1}

	m := New(fastParams(), []int{Increasing})
	require.NoError(t, m.Fit(X, y))
	pred, err := m.Predict(X)
	require.NoError(t, err)
	for i := 1; i < len(pred); i++ {
		assert.GreaterOrEqual(t, pred[i], pred[i-1]-1e-12)
	}
	assert.InDelta(t, 3.5, pred[0], 1e-9, "no split is allowed so the model stays at the mean")

	free := New(fastParams(), nil)
	require.NoError(t, free.Fit(X, y))
	pred, err = free.Predict(X)
	require.NoError(t, err)
	assert.Greater(t, pred[0], pred[5])
}

func TestFitStepFunction(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}, {10}, {11}, {12}}
	y := []float64{0, 0, 0, 10, 10, 10}
	m := New(schema.ModelParams{Estimators: 300, LearningRate: 0.1, MaxDepth: 1, Lambda: 0, MinChildWeight: 1}, []int{Increasing})
	require.NoError(t, m.Fit(X, y))

	pred, err := m.Predict([][]float64{{0}, {6.4}, {6.6}, {100}})
	require.NoError(t, err)
	assert.InDelta(t, 0, pred[0], 1e-6)
	assert.InDelta(t, 0, pred[1], 1e-6, "threshold sits at the midpoint 6.5")
	assert.InDelta(t, 10, pred[2], 1e-6)
	assert.InDelta(t, 10, pred[3], 1e-6)
}

func TestZeroEstimatorsPredictsMean(t *testing.T) {
	X, y := raceLikeData(10, 3)
	params := fastParams()
	params.Estimators = 0
	m := New(params, RaceConstraints)
	require.NoError(t, m.Fit(X, y))
	pred, err := m.Predict(X[:2])
	require.NoError(t, err)
	assert.Equal(t, m.BaseScore(), pred[0])
	assert.Equal(t, m.BaseScore(), pred[1])
}

func TestFitIsDeterministic(t *testing.T) {
	X, y := raceLikeData(30, 11)
	a := New(fastParams(), RaceConstraints)
	b := New(fastParams(), RaceConstraints)
	require.NoError(t, a.Fit(X, y))
	require.NoError(t, b.Fit(X, y))
	pa, _ := a.Predict(X)
	pb, _ := b.Predict(X)
	assert.Equal(t, pa, pb)
}

func TestFitRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		X    [][]float64
		y    []float64
	}{
		{"empty", nil, nil},
		{"length mismatch", [][]float64{{1, 2, 3}}, []float64{1, 2}},
		{"ragged", [][]float64{{1, 2, 3}, {1, 2}}, []float64{1, 2}},
		{"nan feature", [][]float64{{1, math.NaN(), 3}}, []float64{1}},
		{"inf target", [][]float64{{1, 2, 3}}, []float64{math.Inf(1)}},
		{"constraint width", [][]float64{{1, 2}}, []float64{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(fastParams(), RaceConstraints).Fit(tt.X, tt.y)
			var dataErr *schema.DataError
			assert.True(t, errors.As(err, &dataErr), "got %v", err)
		})
	}
}

func TestPredictRejectsBadInput(t *testing.T) {
	m := New(fastParams(), RaceConstraints)
	_, err := m.Predict([][]float64{{1, 2, 3}})
	assert.ErrorContains(t, err, "not fitted")

	X, y := raceLikeData(10, 5)
	require.NoError(t, m.Fit(X, y))
	_, err = m.Predict([][]float64{{1, math.Inf(-1), 3}})
	var dataErr *schema.DataError
	assert.ErrorAs(t, err, &dataErr)
}
