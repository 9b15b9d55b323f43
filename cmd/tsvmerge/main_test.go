package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/shared/testutil"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

// writeConfig points the data directory at a temp base dir
func writeConfig(t *testing.T) (string, string) {
	t.Helper()
	base := t.TempDir()
	cfg := "paths:\n  base_dir: " + filepath.ToSlash(base) + "\nlogging:\n  output: console\n  level: warn\n"
	path := testutil.WriteDocument(t, t.TempDir(), "config.yaml", cfg)
	return path, base
}

func TestRun_Merge(t *testing.T) {
	dir := t.TempDir()
	run1 := testutil.WriteDocument(t, dir, "run1.tsv", testutil.SampleRun1)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "total intensity with labels",
			args: []string{"merge", "-metric", "Total Intensity", "-labels", "Run1", run1},
			want: "Peptide\tProtein\tRun1\nPEP1\tPROT_A\t1000\nPEP2\tPROT_B;PROT_C\t2000\nPEP3\tPROT_A\t3000\n",
		},
		{
			name: "labels default to file names",
			args: []string{"merge", "-metric", "Best Score", run1},
			want: "Peptide\tProtein\trun1\nPEP1\tPROT_A\t100\nPEP2\tPROT_B;PROT_C\t200\nPEP3\tPROT_A\t300\n",
		},
		{
			name: "csv format",
			args: []string{"merge", "-metric", "Count", "-format", "csv", run1},
			want: "Peptide,Protein,run1\nPEP1,PROT_A,1\nPEP2,PROT_B;PROT_C,1\nPEP3,PROT_A,1\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := runCLI(t, tt.args...)
			require.Equal(t, 0, code, stderr)
			assert.Equal(t, tt.want, stdout)
		})
	}
}

func TestRun_MergeToFile(t *testing.T) {
	dir := t.TempDir()
	run1 := testutil.WriteDocument(t, dir, "run1.tsv", testutil.SampleRun1)
	out := filepath.Join(dir, "out", "merged.csv")

	code, stdout, stderr := runCLI(t, "merge", "-metric", "Count", "-out", out, run1)
	require.Equal(t, 0, code, stderr)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "Peptide,Protein,run1\nPEP1,PROT_A,1\nPEP2,PROT_B;PROT_C,1\nPEP3,PROT_A,1\n", string(data))
}

func TestRun_PivotGroup(t *testing.T) {
	cfgPath, base := writeConfig(t)
	groupDir := filepath.Join(base, "data", "lab-a")
	testutil.WriteDocument(t, groupDir, "2024-01-01_run1.tsv", testutil.SampleRun1)
	testutil.WriteDocument(t, groupDir, "2024-02-01_run2.tsv", testutil.SampleRun1)

	code, stdout, stderr := runCLI(t, "pivot", "-config", cfgPath, "-group", "lab-a", "-to", "2024-01-31")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "protein_group\t2024-01-01_run1\nPROT_A\t4000\nPROT_B\t2000\n", stdout)
}

func TestRun_Correlate(t *testing.T) {
	dir := t.TempDir()
	a := testutil.WriteDocument(t, dir, "a.tsv", testutil.SampleRun1)
	b := testutil.WriteDocument(t, dir, "b.tsv", testutil.SampleRun1)

	code, stdout, stderr := runCLI(t, "correlate", a, b)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "\ta\tb\na\t1.000000\t1.000000\nb\t1.000000\t1.000000\n", stdout)
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	run1 := testutil.WriteDocument(t, dir, "run1.tsv", testutil.SampleRun1)

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStderr string
	}{
		{name: "no command", args: nil, wantCode: 2, wantStderr: "usage: tsvmerge"},
		{name: "unknown command", args: []string{"split"}, wantCode: 2, wantStderr: `unknown command "split"`},
		{name: "bad flag", args: []string{"pivot", "-metric", "Count", run1}, wantCode: 2, wantStderr: "flag provided but not defined"},
		{name: "no documents", args: []string{"merge"}, wantCode: 1, wantStderr: "no documents"},
		{name: "missing file", args: []string{"merge", filepath.Join(dir, "nope.tsv")}, wantCode: 1, wantStderr: "nope.tsv (validate): document does not exist"},
		{name: "unknown metric", args: []string{"merge", "-metric", "Median", run1}, wantCode: 1, wantStderr: "Median"},
		{name: "label count", args: []string{"merge", "-labels", "a,b", run1}, wantCode: 1, wantStderr: "tsvmerge merge:"},
		{name: "bad date", args: []string{"pivot", "-from", "yesterday", run1}, wantCode: 1, wantStderr: "-from"},
		{name: "bad format", args: []string{"pivot", "-format", "xml", run1}, wantCode: 1, wantStderr: "unsupported export format"},
		{name: "too few for correlation", args: []string{"correlate", run1}, wantCode: 1, wantStderr: "at least 2 documents"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, tt.args...)
			assert.Equal(t, tt.wantCode, code)
			assert.Contains(t, stderr, tt.wantStderr)
		})
	}
}

func TestRun_MetricsAndVersion(t *testing.T) {
	code, stdout, _ := runCLI(t, "metrics")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "Count\tcount\t-\n")
	assert.Contains(t, stdout, "Best q-value\tmin\tq_value, peptide_q-value\n")
	assert.Contains(t, stdout, "Total Intensity\tsum\t<last column>\n")

	code, stdout, _ = runCLI(t, "version")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "tsvmerge v")
}
