package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/errors"
	"github.com/jonathanmorenozapico-source/Tsv-Project/pkg/contracts/domain"
)

func TestMetricNames(t *testing.T) {
	assert.Equal(t, []string{
		"Count",
		"Total Intensity",
		"Average Score",
		"Best Score",
		"Best q-value",
		"Average Angle",
		"Best Angle",
		"Charge States",
		"Associated Proteins",
	}, MetricNames())
}

func TestLookupStrategy(t *testing.T) {
	s, err := LookupStrategy(MetricBestQValue)
	require.NoError(t, err)
	assert.Equal(t, SourceCandidates, s.Source)
	assert.Equal(t, CandidateList{"q_value", "peptide_q-value"}, s.Candidates)
	assert.True(t, s.Numeric)

	_, err = LookupStrategy("Conteo")
	var unknown *errors.UnknownMetricError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "Conteo", unknown.Metric)
	assert.Equal(t, MetricNames(), unknown.Valid)
	assert.ErrorIs(t, err, errors.ErrUnknownMetric)
}

func TestAggregationStrategy_Reduce(t *testing.T) {
	tests := []struct {
		metric string
		cells  []string
		want   domain.Value
	}{
		{MetricCount, []string{"", "x", "NA"}, domain.Number(3)},
		{MetricTotalIntensity, []string{"10", "abc", "5.5"}, domain.Number(15.5)},
		{MetricAverageScore, []string{"10", "bad", "20"}, domain.Number(10)},
		{MetricBestScore, []string{"-5", "-2", "x"}, domain.Number(0)},
		{MetricBestQValue, []string{"0.05", "0.01", "0.2"}, domain.Number(0.01)},
		{MetricBestAngle, []string{"0.3", "0.9"}, domain.Number(0.9)},
		{MetricChargeStates, []string{"3", "2", "10", "2", ""}, domain.Text("2, 3, 10")},
		{MetricChargeStates, []string{"b", "a", "2"}, domain.Text("2, a, b")},
		{MetricChargeStates, []string{"2", "2.0", "3.0", "NaN", "3"}, domain.Text("2, 3")},
		{MetricChargeStates, []string{"2.5", "2", "2.50"}, domain.Text("2, 2.5")},
		{MetricAssociatedProteins, []string{"P2;P1", " P1 ;P3", "", ";"}, domain.Text("P1;P2;P3")},
	}

	for _, tt := range tests {
		t.Run(tt.metric, func(t *testing.T) {
			s, err := LookupStrategy(tt.metric)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Reduce(tt.cells))
		})
	}
}

func TestAggregationStrategy_Empty(t *testing.T) {
	numeric, _ := LookupStrategy(MetricCount)
	text, _ := LookupStrategy(MetricChargeStates)

	assert.Equal(t, domain.Number(0), numeric.Empty())
	assert.Equal(t, domain.Text(""), text.Empty())
}

func TestStrategies_Catalog(t *testing.T) {
	all := Strategies()
	require.Len(t, all, len(MetricNames()))

	all[0].Metric = "mutated"
	assert.Equal(t, MetricCount, Strategies()[0].Metric)

	tests := []struct {
		metric  string
		columns []string
		reduce  string
	}{
		{metric: MetricCount, columns: []string{}, reduce: "count"},
		{metric: MetricTotalIntensity, columns: []string{"<last column>"}, reduce: "sum"},
		{metric: MetricBestQValue, columns: []string{"q_value", "peptide_q-value"}, reduce: "min"},
		{metric: MetricAssociatedProteins, columns: []string{"proteins"}, reduce: "split_union"},
	}
	for _, tt := range tests {
		t.Run(tt.metric, func(t *testing.T) {
			s, err := LookupStrategy(tt.metric)
			require.NoError(t, err)
			assert.Equal(t, tt.columns, s.SourceColumns())
			assert.Equal(t, tt.reduce, s.Reduction.String())
		})
	}
}
