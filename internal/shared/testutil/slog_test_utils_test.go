package testutil

import (
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferedSlogHandler_DerivedLoggersShareRecords(t *testing.T) {
	logger, handler := NewTestLogger(t)
	pivot := logger.With(slog.String("component", "pivot"))

	logger.Info("merge started", slog.String("metric", "Count"))
	pivot.Warn("group column missing, skipping file", slog.String("file", "nogrp.tsv"))
	pivot.WithGroup("ignored").Error("read failed", slog.String("file", "broken.tsv"))

	require.Equal(t, 3, handler.Count())
	assert.True(t, handler.ContainsMessage("group column missing"))
	assert.True(t, handler.ContainsAttr("component", "pivot"))
	assert.True(t, handler.ContainsAttr("file", "broken.tsv"), "groups are flattened")

	warns := handler.GetRecordsByLevel(slog.LevelWarn)
	require.Len(t, warns, 1)
	assert.Equal(t, "nogrp.tsv", warns[0].Attrs["file"])
	assert.Equal(t, "pivot", warns[0].Attrs["component"])

	handler.Clear()
	assert.Zero(t, handler.Count())
	assert.False(t, handler.ContainsMessage("merge started"))
}

func TestBufferedSlogHandler_AssertHelpers(t *testing.T) {
	logger, handler := NewTestLogger(t)

	logger.Info("document loaded", slog.String("file", "2024-01-01_run1.tsv"), slog.Int("rows", 3))

	AssertLogContains(t, handler, slog.LevelInfo, "document loaded")
	AssertLogAttr(t, handler, "rows", int64(3))
	AssertNoErrors(t, handler)
}

func TestBufferedSlogHandler_ConcurrentLogging(t *testing.T) {
	logger, handler := NewTestLogger(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			logger.Info("file aggregated", slog.Int("index", n))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, handler.Count())
}

func TestWriteDocument(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "lab-a")

	path := WriteDocument(t, dir, "2024-01-01_run1.tsv", SampleRun1)

	assert.Equal(t, filepath.Join(dir, "2024-01-01_run1.tsv"), path)
	assert.FileExists(t, path)
}
