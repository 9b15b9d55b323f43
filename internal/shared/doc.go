// Package shared holds helpers used by more than one package of the
// reconciliation tool.
//
// The testutil subpackage provides:
//
//   - a buffered slog handler for asserting on structured log output
//   - fixture writers that lay out TSV/CSV/XLSX documents in a temp dir
//   - the canonical sample documents used across package tests
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    dir := t.TempDir()
//	    a := testutil.WriteDocument(t, dir, "a.tsv", testutil.SampleRun1)
//	    logger, handler := testutil.NewTestLogger(t)
//	    // ...
//	}
//
// Nothing in this package may import domain packages; it sits below them.
package shared
