package dataprocessing

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/errors"
	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/shared/testutil"
	"github.com/jonathanmorenozapico-source/Tsv-Project/pkg/contracts/domain"
)

func mustParse(t *testing.T, name, content string) *RawTable {
	t.Helper()
	table, err := ParseReader(name, strings.NewReader(content), '\t')
	require.NoError(t, err)
	return table
}

func TestAggregator_Aggregate(t *testing.T) {
	table := mustParse(t, "repeated.tsv", testutil.SampleRepeated)
	agg := NewAggregator(nil)

	tests := []struct {
		metric string
		aak    domain.Value
		ccr    domain.Value
		source string
	}{
		{MetricCount, domain.Number(3), domain.Number(1), ""},
		{MetricTotalIntensity, domain.Number(600), domain.Number(50), "intensity"},
		{MetricBestScore, domain.Number(30), domain.Number(5), "score"},
		{MetricBestQValue, domain.Number(0.01), domain.Number(0.5), "q_value"},
		{MetricBestAngle, domain.Number(0.8), domain.Number(0.1), "spectral_angle"},
		{MetricChargeStates, domain.Text("2, 3"), domain.Text("4"), "charge"},
		{MetricAssociatedProteins, domain.Text("P1;P2"), domain.Text("P3"), "proteins"},
	}

	for _, tt := range tests {
		t.Run(tt.metric, func(t *testing.T) {
			summary, err := agg.Aggregate(table, "Peptide", tt.metric)
			require.NoError(t, err)

			assert.Equal(t, "peptide", summary.KeyColumn)
			assert.Equal(t, tt.source, summary.SourceColumn)
			assert.Equal(t, tt.metric, summary.Label)
			assert.Equal(t, []string{"AAK", "CCR"}, summary.Entities)
			assert.Equal(t, tt.aak, summary.Values["AAK"])
			assert.Equal(t, tt.ccr, summary.Values["CCR"])
		})
	}
}

func TestAggregator_Means(t *testing.T) {
	table := mustParse(t, "repeated.tsv", testutil.SampleRepeated)
	agg := NewAggregator(nil)

	score, err := agg.Aggregate(table, "Peptide", MetricAverageScore)
	require.NoError(t, err)
	// the unparseable score counts as 0
	assert.InDelta(t, 40.0/3, score.Values["AAK"].Number, 1e-9)

	angle, err := agg.Aggregate(table, "Peptide", MetricAverageAngle)
	require.NoError(t, err)
	assert.InDelta(t, 0.7, angle.Values["AAK"].Number, 1e-9)
}

func TestAggregator_DropsRowsWithoutKey(t *testing.T) {
	table := mustParse(t, "gaps.tsv", testutil.Doc(
		[]string{"Peptide", "Intensity"},
		[]string{"PEP1", "1"},
		[]string{"", "5"},
		[]string{"NA", "7"},
		[]string{"PEP1", "2"},
	))

	summary, err := NewAggregator(nil).Aggregate(table, "Peptide", MetricTotalIntensity)
	require.NoError(t, err)
	assert.Equal(t, []string{"PEP1"}, summary.Entities)
	assert.Equal(t, domain.Number(3), summary.Values["PEP1"])
}

func TestAggregator_TrimsEntityKeys(t *testing.T) {
	table := mustParse(t, "padded.tsv", testutil.Doc(
		[]string{" Peptide ", "Proteins", "Intensity"},
		[]string{"PEP1 ", "PROT_A", "1"},
		[]string{" PEP1", "PROT_B ", "2"},
	))

	summary, err := NewAggregator(nil).Aggregate(table, "Peptide", MetricTotalIntensity)
	require.NoError(t, err)
	assert.Equal(t, "Peptide", summary.KeyColumn)
	assert.Equal(t, []string{"PEP1"}, summary.Entities)
	assert.Equal(t, domain.Number(3), summary.Values["PEP1"])

	groups, ok := ExtractGroups(table, summary.KeyColumn).Lookup("PEP1")
	require.True(t, ok)
	assert.Equal(t, "PROT_A;PROT_B", groups)
}

func TestAggregator_Errors(t *testing.T) {
	agg := NewAggregator(nil)

	t.Run("unknown metric", func(t *testing.T) {
		_, err := agg.Aggregate(mustParse(t, "a.tsv", testutil.SampleRun1), "Peptide", "Nope")
		assert.ErrorIs(t, err, errors.ErrUnknownMetric)
	})

	t.Run("metric column missing names file and candidates", func(t *testing.T) {
		_, err := agg.Aggregate(mustParse(t, "run1.tsv", testutil.SampleRun1), "Peptide", MetricBestQValue)

		var metricErr *errors.MetricColumnNotFoundError
		require.ErrorAs(t, err, &metricErr)
		assert.Equal(t, "run1.tsv", metricErr.File)
		assert.Equal(t, []string{"q_value", "peptide_q-value"}, metricErr.Candidates)

		file, ok := errors.FailedFile(err)
		assert.True(t, ok)
		assert.Equal(t, "run1.tsv", file)
	})

	t.Run("file without columns", func(t *testing.T) {
		_, err := agg.Aggregate(NewRawTable("empty.tsv", nil, nil), "Peptide", MetricCount)
		assert.ErrorIs(t, err, errors.ErrSchemaResolution)
	})
}

func TestAggregator_AggregateFile(t *testing.T) {
	path := testutil.WriteDocument(t, t.TempDir(), "run1.tsv", testutil.SampleRun1)

	summary, err := NewAggregator(nil).AggregateFile(context.Background(), path, "Peptide", MetricTotalIntensity)
	require.NoError(t, err)
	summary.Relabel("Run1")

	assert.Equal(t, "Run1", summary.Label)
	v, ok := summary.Value("PEP2")
	require.True(t, ok)
	assert.Equal(t, 2000.0, v.Number)

	_, err = NewAggregator(nil).AggregateFile(context.Background(), path+".missing", "Peptide", MetricCount)
	file, ok := errors.FailedFile(err)
	assert.True(t, ok)
	assert.Equal(t, "run1.tsv.missing", file)
}
