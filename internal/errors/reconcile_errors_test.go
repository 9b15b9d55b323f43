package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileErrors_Messages(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		want     string
	}{
		{
			name:     "schema resolution",
			err:      &SchemaResolutionError{File: "empty.tsv", Role: "entity key", Candidates: []string{"Peptide", "peptide"}},
			sentinel: ErrSchemaResolution,
			want:     "could not find a valid entity key column (tried: Peptide, peptide and the first column) in empty.tsv: file has no columns",
		},
		{
			name:     "metric column",
			err:      &MetricColumnNotFoundError{File: "a.tsv", Metric: "Best q-value", Candidates: []string{"q_value", "peptide_q-value"}},
			sentinel: ErrMetricColumnMissing,
			want:     "for metric 'Best q-value', none of the expected columns (q_value, peptide_q-value) were found in a.tsv",
		},
		{
			name:     "unknown metric",
			err:      &UnknownMetricError{Metric: "Conteo", Valid: []string{"Count", "Total Intensity"}},
			sentinel: ErrUnknownMetric,
			want:     "unknown metric: 'Conteo'. Valid metrics are: Count, Total Intensity",
		},
		{
			name:     "argument count",
			err:      &ArgumentCountError{Files: 3, Labels: 2},
			sentinel: ErrArgumentCount,
			want:     "the number of files (3) must match the number of column labels (2)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.True(t, errors.Is(tt.err, tt.sentinel))
			assert.True(t, errors.Is(WrapFile("x.tsv", "", tt.err), tt.sentinel))
		})
	}
}

func TestWrapFile(t *testing.T) {
	assert.Nil(t, WrapFile("a.tsv", "load", nil))

	cause := fmt.Errorf("unexpected EOF")
	err := WrapFile("a.tsv", "load", cause)
	assert.Equal(t, "error processing file a.tsv (load): unexpected EOF", err.Error())
	assert.ErrorIs(t, err, cause)

	again := WrapFile("b.tsv", "merge", err)
	file, ok := FailedFile(again)
	require.True(t, ok)
	assert.Equal(t, "a.tsv", file)

	_, ok = FailedFile(cause)
	assert.False(t, ok)
}

func TestReconcileErrorToProblem(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantFile   string
	}{
		{"unknown metric", &UnknownMetricError{Metric: "x"}, http.StatusBadRequest, TypeUnknownMetric, ""},
		{"argument count", &ArgumentCountError{Files: 1}, http.StatusBadRequest, TypeArgumentCount, ""},
		{"schema", WrapFile("e.tsv", "", &SchemaResolutionError{File: "e.tsv"}), http.StatusUnprocessableEntity, TypeSchemaResolution, "e.tsv"},
		{"metric column", WrapFile("m.tsv", "", &MetricColumnNotFoundError{File: "m.tsv"}), http.StatusUnprocessableEntity, TypeMetricColumn, "m.tsv"},
		{"too few documents", fmt.Errorf("correlate: %w", ErrTooFewDocuments), http.StatusUnprocessableEntity, TypeValidation, ""},
		{"missing group", fmt.Errorf("%w: run-a", ErrGroupNotFound), http.StatusNotFound, TypeDataNotFound, ""},
		{"other file error", WrapFile("c.tsv", "load", errors.New("bad")), http.StatusUnprocessableEntity, TypeDataCorrupted, "c.tsv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problem, ok := reconcileErrorToProblem(tt.err, "/api/v1/merge")
			require.True(t, ok)
			assert.Equal(t, tt.wantStatus, problem.Status)
			assert.Equal(t, tt.wantType, problem.Type)
			assert.Equal(t, tt.err.Error(), problem.Detail)
			if tt.wantFile != "" {
				assert.Equal(t, tt.wantFile, problem.Extensions["file"])
			} else {
				assert.NotContains(t, problem.Extensions, "file")
			}
		})
	}

	_, ok := reconcileErrorToProblem(errors.New("plain"), "/x")
	assert.False(t, ok)
}

func TestReconcileErrorToProblem_MissingDocument(t *testing.T) {
	cause := NewStorageError("failed to open document", &os.PathError{Op: "open", Path: "/srv/data/lab-a/run9.tsv", Err: fs.ErrNotExist})
	problem, ok := reconcileErrorToProblem(WrapFile("run9.tsv", "load", cause), "/api/v1/merge")

	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, problem.Status)
	assert.Equal(t, TypeDataNotFound, problem.Type)
	assert.Equal(t, "run9.tsv", problem.Extensions["file"])
	assert.NotContains(t, problem.Detail, "/srv/data", "server paths stay out of the response")
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	problem := NewProblemDetails(http.StatusUnprocessableEntity, TypeMetricColumn, "Metric Column Not Found", "detail", "/api/v1/merge").
		WithExtension("file", "a.tsv")

	data, err := json.Marshal(problem)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, TypeMetricColumn, decoded["type"])
	assert.Equal(t, float64(http.StatusUnprocessableEntity), decoded["status"])
	assert.Equal(t, "a.tsv", decoded["file"])
	assert.Equal(t, "/api/v1/merge", decoded["instance"])
}
