// Package http implements the HTTP handlers of the reconciliation service.
// Handlers stay thin: they decode and validate requests, call the service
// layer and render JSON or delimited tables.
//
// # Routes
//
//	GET  /api/v1/metrics-catalog           supported metrics and defaults
//	GET  /api/v1/groups                    document group folders
//	GET  /api/v1/groups/{group}/documents  documents of a group, ?from=&to=
//	POST /api/v1/merge                     entity-indexed metric table
//	POST /api/v1/pivot                     group intensity matrix
//	POST /api/v1/correlation               document correlation matrix
//
// The POST endpoints answer JSON unless "format" (body or ?format=) asks
// for tsv or csv, in which case the table is streamed as an attachment.
//
// # Error Handling
//
// All errors are RFC 7807 problem documents produced by
// internal/errors.ErrorHandler. Reconciliation failures name the failing
// document in a "file" extension member:
//
//	{
//	    "type": "/errors/reconcile/metric-column-not-found",
//	    "title": "Metric Column Not Found",
//	    "status": 422,
//	    "detail": "error processing file run2.tsv (resolve metric source): for metric 'Best Score', none of the expected columns (score) were found in run2.tsv",
//	    "file": "run2.tsv"
//	}
package http
