// Package dataprocessing reconciles independently produced result documents
// into one entity-indexed table.
//
// # Architecture
//
// The package is organized bottom-up:
//
//  1. Parser: loads a TSV, CSV or XLSX document into a RawTable
//  2. Resolver: finds the column playing a role using ordered candidate names
//  3. Strategies: the metric registry (source column, reduction, numeric flag)
//  4. Aggregator: reduces one table to one value per entity
//  5. Membership: builds the entity to group map of one table
//  6. Merger: outer-joins per-file summaries and attaches the group column
//  7. Pivot: sums intensities per group for cross-run correlation
//
// # Usage
//
//	merger := dataprocessing.NewMerger(logger, dataprocessing.Options{Workers: 4})
//	table, err := merger.MergeFiles(ctx, paths, labels, "Peptide", dataprocessing.MetricTotalIntensity)
//	if err != nil {
//	    file, _ := errors.FailedFile(err)
//	    // surface file and err verbatim
//	}
//
//	matrix, err := dataprocessing.NewPivot(logger, dataprocessing.Options{}).PivotByGroup(ctx, paths)
//	corr := dataprocessing.Correlate(matrix)
//
// # Data Flow
//
//	document → RawTable → EntitySummary + EntityGroupMap → MergedTable
//	document → RawTable → group sums → GroupIntensityMatrix → CorrelationMatrix
//
// Each document is read once per operation. Both artifacts of a merge are
// derived from the same in-memory table.
//
// # Error Handling
//
// Hard per-file failures (no columns at all, a missing metric column, an
// unreadable file) abort the whole merge and carry the file name. A missing
// group-reference column is soft: merges get no group info for that file and
// the pivot skips it with a warning.
package dataprocessing
