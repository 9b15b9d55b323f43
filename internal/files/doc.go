// Package files discovers the documents a reconciliation run reads.
//
// Discovery lists documents and group folders on disk. Documents may carry a
// YYYY-MM-DD_ name prefix which FilterByFilenameDate uses to select runs from
// an inclusive date range.
//
// Manager maps group names onto folders under the configured data directory:
//
//	manager := files.NewManager(paths, logger)
//	docs, err := manager.GroupDocuments("lab-a", from, to)
//	merged, err := merger.MergeFiles(ctx, files.Paths(docs), files.Labels(docs), "Peptide", "Count")
package files
