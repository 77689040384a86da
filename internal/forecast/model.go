package forecast

import (
	"fmt"
	"math"
)

// LinearModel is an ordinary least-squares linear regression over
// standardized features.
type LinearModel struct {
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
}

// Fit solves the least-squares problem for rows X and labels y via the
// normal equations, with an intercept term. The system is tiny (one row and
// column per feature plus the intercept), so Gaussian elimination with
// partial pivoting is plenty.
func (m *LinearModel) Fit(x [][]float64, y []float64) error {
	if len(x) == 0 || len(x) != len(y) {
		return fmt.Errorf("regression: need matching non-empty rows and labels, got %d rows %d labels", len(x), len(y))
	}
	features := len(x[0])
	dim := features + 1 // intercept column first

	// Build A = Xᵀ·X and b = Xᵀ·y over the intercept-augmented design matrix.
	a := make([][]float64, dim)
	for i := range a {
		a[i] = make([]float64, dim)
	}
	b := make([]float64, dim)

	for i, row := range x {
		if len(row) != features {
			return fmt.Errorf("regression: ragged row, want %d features got %d", features, len(row))
		}
		augmented := make([]float64, dim)
		augmented[0] = 1
		copy(augmented[1:], row)

		for p := 0; p < dim; p++ {
			for q := 0; q < dim; q++ {
				a[p][q] += augmented[p] * augmented[q]
			}
			b[p] += augmented[p] * y[i]
		}
	}

	solution, err := solveLinearSystem(a, b)
	if err != nil {
		return fmt.Errorf("regression: %w", err)
	}
	m.Intercept = solution[0]
	m.Weights = solution[1:]
	return nil
}

// Predict evaluates the fitted model on one (already standardized) row.
func (m *LinearModel) Predict(row []float64) (float64, error) {
	if len(row) != len(m.Weights) {
		return 0, fmt.Errorf("regression: want %d features got %d", len(m.Weights), len(row))
	}
	prediction := m.Intercept
	for j, w := range m.Weights {
		prediction += w * row[j]
	}
	return prediction, nil
}

// solveLinearSystem solves a·x = b by Gaussian elimination with partial
// pivoting. a and b are modified in place.
func solveLinearSystem(a [][]float64, b []float64) ([]float64, error) {
	n := len(a)
	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return nil, fmt.Errorf("singular system at column %d", col)
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		for row := col + 1; row < n; row++ {
			factor := a[row][col] / a[col][col]
			for k := col; k < n; k++ {
				a[row][k] -= factor * a[col][k]
			}
			b[row] -= factor * b[col]
		}
	}

	x := make([]float64, n)
	for row := n - 1; row >= 0; row-- {
		sum := b[row]
		for k := row + 1; k < n; k++ {
			sum -= a[row][k] * x[k]
		}
		x[row] = sum / a[row][row]
	}
	return x, nil
}
