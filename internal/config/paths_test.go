package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPaths(t *testing.T) {
	paths, err := GetPaths()
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(paths.ExecutableDir), "ExecutableDir should be absolute")
	assert.Equal(t, paths.ExecutableDir, paths.BaseDir)
	assert.Equal(t, filepath.Join(paths.ExecutableDir, "data"), paths.DataDir)
	assert.Equal(t, filepath.Join(paths.ExecutableDir, "reports"), paths.ReportsDir)
	assert.Equal(t, filepath.Join(paths.ExecutableDir, "logs"), paths.LogsDir)
}

func TestResolvePaths(t *testing.T) {
	base := t.TempDir()
	abs := filepath.Join(t.TempDir(), "elsewhere")

	paths, err := ResolvePaths(PathsConfig{
		BaseDir:    base,
		DataDir:    "runs",
		ReportsDir: abs,
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(base, "runs"), paths.DataDir)
	assert.Equal(t, abs, paths.ReportsDir)
	assert.Equal(t, filepath.Join(base, DefaultLogsDir), paths.LogsDir, "empty entries fall back to defaults")
}

func TestEnsureDirectories(t *testing.T) {
	paths, err := ResolvePaths(PathsConfig{BaseDir: t.TempDir()})
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())

	for _, dir := range []string{paths.DataDir, paths.ReportsDir, paths.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestGroupDir(t *testing.T) {
	paths, err := ResolvePaths(PathsConfig{BaseDir: t.TempDir()})
	require.NoError(t, err)

	dir, err := paths.GroupDir("lab-a")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(paths.DataDir, "lab-a"), dir)

	for _, bad := range []string{"", " ", ".", "..", "../etc", `a\b`, "a/b"} {
		_, err := paths.GroupDir(bad)
		assert.Error(t, err, "group %q should be rejected", bad)
	}
}

func TestDocumentPath(t *testing.T) {
	paths, err := ResolvePaths(PathsConfig{BaseDir: t.TempDir()})
	require.NoError(t, err)

	path, err := paths.DocumentPath("lab-a/2024-01-01_run1.tsv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(paths.DataDir, "lab-a", "2024-01-01_run1.tsv"), path)

	path, err = paths.DocumentPath("lab-a/./run1.tsv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(paths.DataDir, "lab-a", "run1.tsv"), path)

	for _, bad := range []string{
		"", ".", "/etc/passwd", "../secret.tsv", "lab-a/../../secret.tsv",
		"lab-a/..", `lab-a\..\..\secret.tsv`, "lab-a/run\x00.tsv",
	} {
		_, err := paths.DocumentPath(bad)
		assert.Error(t, err, "reference %q should be rejected", bad)
	}
}

func TestReportAndLogPaths(t *testing.T) {
	paths, err := ResolvePaths(PathsConfig{BaseDir: t.TempDir()})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(paths.ReportsDir, "merged.tsv"), paths.GetReportPath("merged.tsv"))
	assert.Equal(t, filepath.Join(paths.ReportsDir, "merged.tsv"), paths.GetReportPath("../../merged.tsv"))
	assert.Equal(t, filepath.Join(paths.LogsDir, "app.log"), paths.GetLogPath("app.log"))
}

func TestFileExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.tsv")
	assert.False(t, FileExists(path))
	require.NoError(t, os.WriteFile(path, []byte("a\n"), 0644))
	assert.True(t, FileExists(path))
}
