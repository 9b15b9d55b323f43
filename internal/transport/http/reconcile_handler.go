package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/dataprocessing"
	apierrors "github.com/jonathanmorenozapico-source/Tsv-Project/internal/errors"
	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/exporter"
	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/files"
	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/infrastructure"
	custommw "github.com/jonathanmorenozapico-source/Tsv-Project/internal/middleware"
	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/services"
	api "github.com/jonathanmorenozapico-source/Tsv-Project/pkg/contracts/api/v1"
)

var outputFormats = []string{api.FormatJSON, api.FormatTSV, api.FormatCSV}

// ReconcileHandler serves the merge, pivot and correlation endpoints
type ReconcileHandler struct {
	service      ReconcileServiceInterface
	validation   *custommw.ValidationMiddleware
	query        *custommw.QueryParamValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewReconcileHandler creates a new reconcile handler with RFC 7807 error handling
func NewReconcileHandler(
	service ReconcileServiceInterface,
	validation *custommw.ValidationMiddleware,
	logger *slog.Logger,
	errorHandler *apierrors.ErrorHandler,
) *ReconcileHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if errorHandler == nil {
		errorHandler = apierrors.NewErrorHandler(logger, false)
	}
	if validation == nil {
		validation = custommw.NewValidationMiddleware(logger, errorHandler, 0)
	}
	return &ReconcileHandler{
		service:      service,
		validation:   validation,
		query:        custommw.NewQueryParamValidator(errorHandler),
		logger:       logger.With(slog.String("component", "reconcile_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the reconcile routes
func (h *ReconcileHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/metrics-catalog", h.GetMetricsCatalog)
	r.Get("/groups", h.ListGroups)
	r.Get("/groups/{group}/documents", h.ListDocuments)

	r.Group(func(r chi.Router) {
		r.Use(custommw.ContentTypeValidator(h.errorHandler, "application/json"))
		r.Use(h.validation.ValidateRequest)

		r.Post("/merge", h.Merge)
		r.Post("/pivot", h.Pivot)
		r.Post("/correlation", h.Correlation)
	})

	return r
}

// GetMetricsCatalog handles GET /api/v1/metrics-catalog
func (h *ReconcileHandler) GetMetricsCatalog(w http.ResponseWriter, r *http.Request) {
	strategies := dataprocessing.Strategies()
	metrics := make([]api.MetricInfo, 0, len(strategies))
	for _, s := range strategies {
		metrics = append(metrics, api.MetricInfo{
			Name:    s.Metric,
			Columns: s.SourceColumns(),
			Reduce:  s.Reduction.String(),
			Numeric: s.Numeric,
			Empty:   s.Empty().String(),
		})
	}

	defaults := h.service.Defaults()
	render.JSON(w, r, api.MetricsCatalogResponse{
		Metrics:          metrics,
		DefaultMetric:    defaults.DefaultMetric,
		DefaultEntityKey: defaults.DefaultEntityKey,
	})
}

// ListGroups handles GET /api/v1/groups
func (h *ReconcileHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.ListGroups(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.DocumentListResponse{
		Documents: toDocumentInfos("", groups),
		Count:     len(groups),
	})
}

// ListDocuments handles GET /api/v1/groups/{group}/documents?from=&to=
func (h *ReconcileHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	group := chi.URLParam(r, "group")

	from, ok := h.query.ValidateDate(w, r, "from")
	if !ok {
		return
	}
	to, ok := h.query.ValidateDate(w, r, "to")
	if !ok {
		return
	}

	docs, err := h.service.GroupDocuments(r.Context(), group, from, to)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.DocumentListResponse{
		Group:     group,
		Documents: toDocumentInfos(group, docs),
		Count:     len(docs),
	})
}

// Merge handles POST /api/v1/merge
func (h *ReconcileHandler) Merge(w http.ResponseWriter, r *http.Request) {
	var req api.MergeRequest
	if !h.decode(w, r, &req) {
		return
	}
	format, ok := h.outputFormat(w, r, req.Format)
	if !ok {
		return
	}
	sel, ok := h.selection(w, r, req.DocumentSelection)
	if !ok {
		return
	}

	h.logger.InfoContext(r.Context(), "merge requested",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("group", req.Group),
		slog.Int("files", len(req.Files)),
		slog.String("metric", req.Metric),
	)

	table, err := h.service.Merge(r.Context(), services.MergeParams{
		Selection: sel,
		EntityKey: req.EntityKey,
		Metric:    req.Metric,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	savedTo, ok := h.save(w, r, req.SaveAs, table)
	if !ok {
		return
	}
	if format != api.FormatJSON {
		h.writeTable(w, r, "merge", table, format)
		return
	}
	render.JSON(w, r, api.MergeResponse{
		Table:   table,
		SavedTo: savedTo,
		TraceID: infrastructure.GetTraceID(r.Context()),
	})
}

// Pivot handles POST /api/v1/pivot
func (h *ReconcileHandler) Pivot(w http.ResponseWriter, r *http.Request) {
	var req api.PivotRequest
	if !h.decode(w, r, &req) {
		return
	}
	format, ok := h.outputFormat(w, r, req.Format)
	if !ok {
		return
	}
	sel, ok := h.selection(w, r, req.DocumentSelection)
	if !ok {
		return
	}

	result, err := h.service.Pivot(r.Context(), sel)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	savedTo, ok := h.save(w, r, req.SaveAs, result.Matrix)
	if !ok {
		return
	}
	if format != api.FormatJSON {
		h.writeTable(w, r, "pivot", result.Matrix, format)
		return
	}
	render.JSON(w, r, api.PivotResponse{
		Matrix:  result.Matrix,
		Skipped: nonNil(result.Skipped),
		SavedTo: savedTo,
		TraceID: infrastructure.GetTraceID(r.Context()),
	})
}

// Correlation handles POST /api/v1/correlation
func (h *ReconcileHandler) Correlation(w http.ResponseWriter, r *http.Request) {
	var req api.CorrelationRequest
	if !h.decode(w, r, &req) {
		return
	}
	format, ok := h.outputFormat(w, r, req.Format)
	if !ok {
		return
	}
	sel, ok := h.selection(w, r, req.DocumentSelection)
	if !ok {
		return
	}

	report, err := h.service.Correlate(r.Context(), sel)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	savedTo, ok := h.save(w, r, req.SaveAs, report.Correlation)
	if !ok {
		return
	}
	if format != api.FormatJSON {
		h.writeTable(w, r, "correlation", report.Correlation, format)
		return
	}
	render.JSON(w, r, api.CorrelationResponse{
		Correlation: report.Correlation,
		Matrix:      report.Pivot.Matrix,
		Skipped:     nonNil(report.Pivot.Skipped),
		SavedTo:     savedTo,
		TraceID:     infrastructure.GetTraceID(r.Context()),
	})
}

func (h *ReconcileHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return false
	}
	if err := h.validation.ValidateStruct(v); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return false
	}
	return true
}

// outputFormat lets ?format= override the body's format
func (h *ReconcileHandler) outputFormat(w http.ResponseWriter, r *http.Request, bodyFormat string) (string, bool) {
	if bodyFormat == "" {
		bodyFormat = api.FormatJSON
	}
	return h.query.ValidateEnum(w, r, "format", outputFormats, bodyFormat)
}

// selection converts the request selection. Explicit files are document
// references under the data directory, never server paths.
func (h *ReconcileHandler) selection(w http.ResponseWriter, r *http.Request, in api.DocumentSelection) (services.Selection, bool) {
	from, err := files.ParseDateBound(in.From)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidDateBound("from", in.From))
		return services.Selection{}, false
	}
	to, err := files.ParseDateBound(in.To)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidDateBound("to", in.To))
		return services.Selection{}, false
	}

	var paths []string
	if len(in.Files) > 0 {
		paths, err = h.service.ResolveDocuments(r.Context(), in.Files)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return services.Selection{}, false
		}
	}
	return services.Selection{
		Group:  in.Group,
		From:   from,
		To:     to,
		Files:  paths,
		Labels: in.Labels,
	}, true
}

func (h *ReconcileHandler) save(w http.ResponseWriter, r *http.Request, name string, rec exporter.Recorder) (string, bool) {
	if name == "" {
		return "", true
	}
	path, err := h.service.SaveReport(r.Context(), name, rec, "")
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return "", false
	}
	h.logger.InfoContext(r.Context(), "report saved", slog.String("path", path))
	return path, true
}

func (h *ReconcileHandler) writeTable(w http.ResponseWriter, r *http.Request, name string, rec exporter.Recorder, format string) {
	f := exporter.Format(format)
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+f.Extension()))
	w.WriteHeader(http.StatusOK)

	// Headers are gone by now; a failed write can only be logged
	if err := h.service.Export(w, rec, f); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to stream table",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	}
}

// toDocumentInfos reports data-dir references, never server paths
func toDocumentInfos(group string, list []files.FileInfo) []api.DocumentInfo {
	out := make([]api.DocumentInfo, 0, len(list))
	for _, f := range list {
		ref := f.Name
		if group != "" {
			ref = group + "/" + f.Name
		}
		info := api.DocumentInfo{
			Name:    f.Name,
			Label:   f.Label,
			Ref:     ref,
			Size:    f.Size,
			ModTime: f.ModTime.UTC().Format(time.RFC3339),
		}
		if f.HasDate() {
			info.Date = f.Date.Format(files.DateLayout)
		}
		out = append(out, info)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
