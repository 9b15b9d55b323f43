package dataprocessing

import (
	"math"

	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/errors"
	"github.com/jonathanmorenozapico-source/Tsv-Project/pkg/contracts/domain"
)

// MinCorrelationDocuments is the fewest documents a correlation matrix makes sense for
const MinCorrelationDocuments = 2

// Correlate computes the Pearson coefficient between every pair of matrix columns
func Correlate(m *domain.GroupIntensityMatrix) *domain.CorrelationMatrix {
	n := len(m.Columns)
	out := &domain.CorrelationMatrix{
		Labels: append([]string(nil), m.Columns...),
		Values: make([][]float64, n),
	}
	columns := make([][]float64, n)
	for i := range m.Columns {
		columns[i] = m.Column(i)
		out.Values[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			r := PearsonCorrelation(columns[i], columns[j])
			out.Values[i][j] = r
			out.Values[j][i] = r
		}
	}
	return out
}

// CorrelateDocuments is Correlate with a guard against too few columns
func CorrelateDocuments(m *domain.GroupIntensityMatrix) (*domain.CorrelationMatrix, error) {
	if len(m.Columns) < MinCorrelationDocuments {
		return nil, errors.ErrTooFewDocuments
	}
	return Correlate(m), nil
}

// PearsonCorrelation returns NaN when the coefficient is undefined: fewer
// than two points or a constant series.
func PearsonCorrelation(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return math.NaN()
	}
	n := float64(len(x))

	var meanX, meanY float64
	for i := range x {
		meanX += x[i]
		meanY += y[i]
	}
	meanX /= n
	meanY /= n

	var cov, varX, varY float64
	for i := range x {
		dx := x[i] - meanX
		dy := y[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}

	den := math.Sqrt(varX * varY)
	if den == 0 {
		return math.NaN()
	}
	r := cov / den
	// clamp rounding drift
	return math.Max(-1, math.Min(1, r))
}
