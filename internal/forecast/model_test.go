package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinearModelFitsExactLine(t *testing.T) {
	// y = 2x + 1
	x := [][]float64{{0}, {1}, {2}, {3}}
	y := []float64{1, 3, 5, 7}

	var m LinearModel
	require.NoError(t, m.Fit(x, y))

	assert.InDelta(t, 1, m.Intercept, 1e-9)
	require.Len(t, m.Weights, 1)
	assert.InDelta(t, 2, m.Weights[0], 1e-9)

	prediction, err := m.Predict([]float64{10})
	require.NoError(t, err)
	assert.InDelta(t, 21, prediction, 1e-9)
}

func TestLinearModelTwoFeatures(t *testing.T) {
	// y = 3a - b + 5
	x := [][]float64{
		{1, 0},
		{0, 1},
		{1, 1},
		{2, 1},
		{2, 3},
	}
	y := make([]float64, len(x))
	for i, row := range x {
		y[i] = 3*row[0] - row[1] + 5
	}

	var m LinearModel
	require.NoError(t, m.Fit(x, y))

	assert.InDelta(t, 5, m.Intercept, 1e-9)
	assert.InDelta(t, 3, m.Weights[0], 1e-9)
	assert.InDelta(t, -1, m.Weights[1], 1e-9)
}

func TestLinearModelErrors(t *testing.T) {
	var m LinearModel
	assert.Error(t, m.Fit(nil, nil))
	assert.Error(t, m.Fit([][]float64{{1}}, []float64{1, 2}))

	// Duplicate feature columns make XᵀX singular.
	x := [][]float64{
		{1, 1},
		{2, 2},
		{3, 3},
	}
	assert.Error(t, m.Fit(x, []float64{1, 2, 3}))
}

func TestLinearModelPredictDimensionMismatch(t *testing.T) {
	var m LinearModel
	require.NoError(t, m.Fit([][]float64{{0}, {1}, {2}}, []float64{0, 1, 2}))

	_, err := m.Predict([]float64{1, 2})
	assert.Error(t, err)
}
