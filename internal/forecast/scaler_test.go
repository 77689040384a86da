package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardScalerFitTransform(t *testing.T) {
	rows := [][]float64{
		{1, 10},
		{3, 10},
	}

	var scaler StandardScaler
	require.NoError(t, scaler.Fit(rows))

	assert.Equal(t, []float64{2, 10}, scaler.Means)
	// First column has std 1; the constant second column keeps a divisor
	// of 1 so transforms stay finite.
	assert.Equal(t, []float64{1, 1}, scaler.Stds)

	scaled, err := scaler.Transform([]float64{3, 10})
	require.NoError(t, err)
	assert.InDelta(t, 1, scaled[0], 1e-9)
	assert.InDelta(t, 0, scaled[1], 1e-9)
}

func TestStandardScalerTransformAll(t *testing.T) {
	rows := [][]float64{{0}, {2}, {4}}

	var scaler StandardScaler
	require.NoError(t, scaler.Fit(rows))

	scaled, err := scaler.TransformAll(rows)
	require.NoError(t, err)
	require.Len(t, scaled, 3)
	assert.InDelta(t, 0, scaled[1][0], 1e-9)
	assert.InDelta(t, -scaled[2][0], scaled[0][0], 1e-9)
}

func TestStandardScalerErrors(t *testing.T) {
	var scaler StandardScaler
	assert.Error(t, scaler.Fit(nil))
	assert.Error(t, scaler.Fit([][]float64{{1, 2}, {1}}))

	require.NoError(t, scaler.Fit([][]float64{{1, 2}}))
	_, err := scaler.Transform([]float64{1})
	assert.Error(t, err)
}
