package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/config"
	apperrors "github.com/jonathanmorenozapico-source/Tsv-Project/internal/errors"
)

// Recorder is any artifact that renders as string rows, header first.
// MergedTable, GroupIntensityMatrix and CorrelationMatrix all qualify.
type Recorder interface {
	Records() [][]string
}

// CSVWriter exports artifacts as delimited text
type CSVWriter struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance. paths may be nil, in which
// case relative file paths are used as given.
func NewCSVWriter(paths *config.Paths, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{paths: paths, logger: logger}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Format    Format
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// Write streams an artifact to w
func (w *CSVWriter) Write(out io.Writer, rec Recorder, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := out.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)
	writer.Comma = options.Format.Delimiter()

	for i, record := range rec.Records() {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteFile writes an artifact to disk and returns the full path. The file is
// written beside its destination and renamed into place, so readers never see
// a partial report. Relative paths land in the reports directory.
func (w *CSVWriter) WriteFile(filePath string, rec Recorder, options WriteOptions) (string, error) {
	fullPath := w.resolvePath(filePath)
	if options.Format == "" {
		options.Format = FormatForPath(fullPath)
	}

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", apperrors.NewExportError("failed to create directory", err).WithContext("dir", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fullPath)+".*")
	if err != nil {
		return "", apperrors.NewExportError("failed to create file", err).WithContext("path", fullPath)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := w.Write(tmp, rec, options); err != nil {
		tmp.Close()
		return "", apperrors.NewExportError("failed to write report", err).WithContext("path", fullPath)
	}
	if err := tmp.Close(); err != nil {
		return "", apperrors.NewExportError("failed to close report", err).WithContext("path", fullPath)
	}
	if err := os.Rename(tmpName, fullPath); err != nil {
		return "", apperrors.NewExportError("failed to move report into place", err).WithContext("path", fullPath)
	}

	w.logger.Info("Report written",
		slog.String("path", fullPath),
		slog.String("format", string(options.Format)),
		slog.Int("rows", len(rec.Records())-1))
	return fullPath, nil
}

// resolvePath resolves a path to the appropriate directory
func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) || w.paths == nil {
		return filePath
	}
	return filepath.Join(w.paths.ReportsDir, filePath)
}
