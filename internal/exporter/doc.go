// Package exporter writes reconciliation artifacts as delimited text.
//
// Anything with a Records method (merged tables, group intensity matrices and
// correlation matrices) can be streamed to a writer or saved as a report:
//
//	w := exporter.NewCSVWriter(paths, logger)
//	err := w.Write(os.Stdout, merged, exporter.WriteOptions{Format: exporter.FormatTSV})
//	path, err := w.WriteFile("merged.csv", merged, exporter.WriteOptions{BOMPrefix: true})
package exporter
