package dataprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/errors"
	"github.com/jonathanmorenozapico-source/Tsv-Project/pkg/contracts/domain"
)

func TestPearsonCorrelation(t *testing.T) {
	tests := []struct {
		name string
		x, y []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1},
		{"scaled", []float64{1, 2, 3}, []float64{10, 20, 30}, 1},
		{"inverse", []float64{1, 2, 3}, []float64{3, 2, 1}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, PearsonCorrelation(tt.x, tt.y), 1e-12)
		})
	}

	assert.True(t, math.IsNaN(PearsonCorrelation([]float64{5, 5, 5}, []float64{1, 2, 3})))
	assert.True(t, math.IsNaN(PearsonCorrelation([]float64{1}, []float64{1})))
	assert.True(t, math.IsNaN(PearsonCorrelation([]float64{1, 2}, []float64{1})))
}

func TestCorrelate(t *testing.T) {
	matrix := &domain.GroupIntensityMatrix{
		Columns: []string{"a", "b", "c"},
		Groups:  []string{"G1", "G2", "G3"},
		Values:  [][]float64{{1, 2, 4}, {2, 4, 4}, {3, 6, 4}},
	}

	corr := Correlate(matrix)
	require.Len(t, corr.Values, 3)
	assert.Equal(t, []string{"a", "b", "c"}, corr.Labels)
	assert.InDelta(t, 1.0, corr.Values[0][0], 1e-12)
	assert.InDelta(t, 1.0, corr.Values[1][0], 1e-12)
	assert.InDelta(t, 1.0, corr.Values[0][1], 1e-12)
	assert.True(t, math.IsNaN(corr.Values[2][0]))
	assert.True(t, math.IsNaN(corr.Values[2][2]))
	assert.InDelta(t, 1.0, corr.MeanOffDiagonal(), 1e-12)
}

func TestCorrelateDocuments(t *testing.T) {
	_, err := CorrelateDocuments(&domain.GroupIntensityMatrix{Columns: []string{"only"}})
	assert.ErrorIs(t, err, errors.ErrTooFewDocuments)
}
