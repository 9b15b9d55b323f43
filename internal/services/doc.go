// Package services implements the business logic layer between transports
// (the HTTP API and the CLI) and the reconciliation engine.
//
// ReconcileService resolves a document selection (a group folder under the
// data directory, or an explicit file list), runs the merge, pivot or
// correlation, and records a span plus metrics for every run. Per-document
// failures abort a run and surface with the failing file name attached.
//
//	svc := services.NewReconcileService(cfg.Processing, manager, writer, tracer, metrics, logger)
//	table, err := svc.Merge(ctx, services.MergeParams{
//	    Selection: services.Selection{Group: "lab-a"},
//	    Metric:    "Total Intensity",
//	})
//
// HealthService reports liveness and whether the configured directories exist.
package services
