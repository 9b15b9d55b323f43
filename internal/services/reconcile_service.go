package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/config"
	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/dataprocessing"
	apperrors "github.com/jonathanmorenozapico-source/Tsv-Project/internal/errors"
	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/exporter"
	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/files"
	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/infrastructure"
	"github.com/jonathanmorenozapico-source/Tsv-Project/pkg/contracts/domain"
	"github.com/jonathanmorenozapico-source/Tsv-Project/pkg/contracts/events"
)

const (
	OperationMerge       = "merge"
	OperationPivot       = "pivot"
	OperationCorrelation = "correlation"
)

// Selection names the documents a run reads: either a group folder with an
// optional date window, or an explicit file list.
type Selection struct {
	Group string
	From  time.Time
	To    time.Time

	// Files are read as given. Remote input must go through ResolveDocuments.
	Files []string
	// Labels name the merged columns. Nil derives them from file names.
	Labels []string
}

// MergeParams selects documents and the merge strategy. Empty fields fall
// back to the processing defaults.
type MergeParams struct {
	Selection
	EntityKey string
	Metric    string
}

// CorrelationReport pairs a correlation matrix with the pivot it came from
type CorrelationReport struct {
	Pivot       *dataprocessing.PivotResult `json:"pivot"`
	Correlation *domain.CorrelationMatrix   `json:"correlation"`
}

// ReconcileService orchestrates document selection, merging, pivoting,
// correlation and export
type ReconcileService struct {
	defaults config.ProcessingConfig
	files    *files.Manager
	merger   *dataprocessing.Merger
	pivot    *dataprocessing.Pivot
	writer   *exporter.CSVWriter
	tracer   trace.Tracer
	metrics  *infrastructure.BusinessMetrics
	events   events.Publisher
	logger   *slog.Logger
}

// NewReconcileService wires the reconciliation engine. A nil tracer uses the
// global provider and nil metrics disables recording.
func NewReconcileService(
	defaults config.ProcessingConfig,
	manager *files.Manager,
	writer *exporter.CSVWriter,
	tracer trace.Tracer,
	metrics *infrastructure.BusinessMetrics,
	logger *slog.Logger,
) *ReconcileService {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = otel.Tracer(infrastructure.TracerName)
	}
	if defaults.DefaultEntityKey == "" {
		defaults.DefaultEntityKey = config.DefaultEntityKey
	}
	if defaults.DefaultMetric == "" {
		defaults.DefaultMetric = config.DefaultMetric
	}

	opts := dataprocessing.Options{Workers: defaults.Workers}
	logger = logger.With("component", "reconcile_service")

	return &ReconcileService{
		defaults: defaults,
		files:    manager,
		merger:   dataprocessing.NewMerger(logger, opts),
		pivot:    dataprocessing.NewPivot(logger, opts),
		writer:   writer,
		tracer:   tracer,
		metrics:  metrics,
		events:   events.Discard{},
		logger:   logger,
	}
}

// WithEvents streams run lifecycle events to p. A nil p discards them.
func (s *ReconcileService) WithEvents(p events.Publisher) *ReconcileService {
	if p == nil {
		p = events.Discard{}
	}
	s.events = p
	return s
}

// Metrics returns the metric names in registry order
func (s *ReconcileService) Metrics() []string {
	return dataprocessing.MetricNames()
}

// Defaults returns the processing defaults applied to requests
func (s *ReconcileService) Defaults() config.ProcessingConfig {
	return s.defaults
}

// ListGroups returns the document group folders
func (s *ReconcileService) ListGroups(ctx context.Context) ([]files.FileInfo, error) {
	if s.files == nil {
		return []files.FileInfo{}, nil
	}
	return s.files.ListGroups()
}

// GroupDocuments lists one group's documents within an optional date window
func (s *ReconcileService) GroupDocuments(ctx context.Context, group string, from, to time.Time) ([]files.FileInfo, error) {
	if s.files == nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrGroupNotFound, group)
	}
	return s.files.GroupDocuments(group, from, to)
}

// ResolveDocuments maps client document references ("group/name.tsv") to
// files inside the data directory. Remote callers select files this way;
// only local callers may pass arbitrary paths in Selection.Files.
func (s *ReconcileService) ResolveDocuments(ctx context.Context, refs []string) ([]string, error) {
	if s.files == nil {
		return nil, apperrors.NewAppValidationError("no data directory configured")
	}
	paths, err := s.files.ResolveDocuments(refs)
	if err != nil {
		s.logger.WarnContext(ctx, "document selection rejected", slog.String("error", err.Error()))
		return nil, err
	}
	return paths, nil
}

// Merge builds the entity-indexed table for the selected documents
func (s *ReconcileService) Merge(ctx context.Context, params MergeParams) (table *domain.MergedTable, err error) {
	entityKey := firstNonEmpty(params.EntityKey, s.defaults.DefaultEntityKey)
	metric := firstNonEmpty(params.Metric, s.defaults.DefaultMetric)

	ctx, finish := s.startRun(ctx, OperationMerge,
		attribute.String("reconcile.metric", metric),
		attribute.String("reconcile.entity_key", entityKey),
		attribute.String("reconcile.group", params.Group))
	defer func() { finish(err) }()

	// Metric errors win over selection errors, matching the engine's check order
	if _, err := dataprocessing.LookupStrategy(metric); err != nil {
		return nil, err
	}

	paths, labels, err := s.resolve(ctx, params.Selection, true)
	if err != nil {
		return nil, err
	}

	table, err = s.merger.MergeFiles(ctx, paths, labels, entityKey, metric)
	if err != nil {
		s.recordFailure(ctx, OperationMerge, len(paths), err)
		return nil, err
	}

	infrastructure.RecordFileOutcome(ctx, s.metrics, OperationMerge, infrastructure.FileOutcomeProcessed, len(paths))
	if s.metrics != nil {
		s.metrics.EntitiesMerged.Record(ctx, int64(table.Len()))
	}
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int("reconcile.files", len(paths)),
		attribute.Int("reconcile.entities", table.Len()))
	return table, nil
}

// Pivot builds the group intensity matrix for the selected documents
func (s *ReconcileService) Pivot(ctx context.Context, sel Selection) (result *dataprocessing.PivotResult, err error) {
	ctx, finish := s.startRun(ctx, OperationPivot, attribute.String("reconcile.group", sel.Group))
	defer func() { finish(err) }()

	return s.runPivot(ctx, OperationPivot, sel)
}

// Correlate pivots the selected documents and correlates the per-document columns
func (s *ReconcileService) Correlate(ctx context.Context, sel Selection) (report *CorrelationReport, err error) {
	ctx, finish := s.startRun(ctx, OperationCorrelation, attribute.String("reconcile.group", sel.Group))
	defer func() { finish(err) }()

	pivot, err := s.runPivot(ctx, OperationCorrelation, sel)
	if err != nil {
		return nil, err
	}

	corr, err := dataprocessing.CorrelateDocuments(pivot.Matrix)
	if err != nil {
		return nil, fmt.Errorf("%w: correlation needs at least %d documents with a group column, got %d",
			err, dataprocessing.MinCorrelationDocuments, len(pivot.Matrix.Columns))
	}

	trace.SpanFromContext(ctx).SetAttributes(attribute.Float64("reconcile.mean_correlation", corr.MeanOffDiagonal()))
	return &CorrelationReport{Pivot: pivot, Correlation: corr}, nil
}

func (s *ReconcileService) runPivot(ctx context.Context, operation string, sel Selection) (*dataprocessing.PivotResult, error) {
	paths, _, err := s.resolve(ctx, sel, false)
	if err != nil {
		return nil, err
	}

	result, err := s.pivot.PivotReport(ctx, paths)
	if err != nil {
		s.recordFailure(ctx, operation, len(paths), err)
		return nil, err
	}

	skipped := len(result.Skipped)
	infrastructure.RecordFileOutcome(ctx, s.metrics, operation, infrastructure.FileOutcomeProcessed, len(paths)-skipped)
	infrastructure.RecordFileOutcome(ctx, s.metrics, operation, infrastructure.FileOutcomeSkipped, skipped)
	if s.metrics != nil {
		s.metrics.GroupsPivoted.Record(ctx, int64(len(result.Matrix.Groups)))
	}
	traceID := infrastructure.GetTraceID(ctx)
	for _, name := range result.Skipped {
		infrastructure.AddSpanEvent(ctx, "document.skipped", attribute.String("file", name))
		s.events.Publish(ctx, events.New(events.TypeDocumentSkipped, operation, traceID,
			map[string]interface{}{"file": name, "reason": "no protein group column"}))
	}
	return result, nil
}

// Export writes an artifact to w in the given format
func (s *ReconcileService) Export(w io.Writer, rec exporter.Recorder, format exporter.Format) error {
	return s.writer.Write(w, rec, exporter.WriteOptions{Format: format})
}

// SaveReport writes an artifact under the reports directory (or to an
// absolute path) and returns where it landed
func (s *ReconcileService) SaveReport(ctx context.Context, name string, rec exporter.Recorder, format exporter.Format) (string, error) {
	path, err := s.writer.WriteFile(name, rec, exporter.WriteOptions{Format: format})
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return "", err
	}
	return path, nil
}

// resolve turns a selection into paths and labels. withLabels controls
// whether labels are derived when the caller gave none.
func (s *ReconcileService) resolve(ctx context.Context, sel Selection, withLabels bool) ([]string, []string, error) {
	if sel.Group != "" && len(sel.Files) > 0 {
		return nil, nil, apperrors.NewAppValidationError(ErrConflictingSelection.Error())
	}

	var paths, labels []string
	if sel.Group != "" {
		docs, err := s.GroupDocuments(ctx, sel.Group, sel.From, sel.To)
		if err != nil {
			return nil, nil, err
		}
		paths = files.Paths(docs)
		labels = files.Labels(docs)
	} else {
		paths = sel.Files
		labels = make([]string, len(paths))
		for i, p := range paths {
			labels[i] = files.LabelFor(p)
		}
	}

	if sel.Labels != nil {
		labels = sel.Labels
	}
	if !withLabels {
		labels = nil
	}

	s.logger.DebugContext(ctx, "documents selected",
		slog.String("group", sel.Group),
		slog.Int("files", len(paths)))
	return paths, labels, nil
}

// startRun opens a span for one run and returns a func that closes it and
// records duration and outcome
func (s *ReconcileService) startRun(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx = infrastructure.EnsureTraceID(ctx)
	run := infrastructure.Run{Operation: operation}
	for _, kv := range attrs {
		if kv.Key == "reconcile.group" {
			run.Group = kv.Value.AsString()
		}
	}
	ctx = infrastructure.WithRun(ctx, run)
	ctx, span := s.tracer.Start(ctx, "reconcile."+operation, trace.WithAttributes(attrs...))
	start := time.Now()
	traceID := infrastructure.GetTraceID(ctx)

	s.events.Publish(ctx, events.New(events.TypeRunStarted, operation, traceID, eventData(attrs)))

	return ctx, func(err error) {
		duration := time.Since(start)
		infrastructure.RecordReconcileMetrics(ctx, s.metrics, operation, duration, err)

		data := map[string]interface{}{"duration_ms": duration.Milliseconds()}
		if err != nil {
			infrastructure.RecordError(ctx, err)
			s.logger.WarnContext(ctx, "reconcile run failed",
				slog.Duration("duration", duration),
				slog.String("error", err.Error()))

			data["error"] = err.Error()
			if file, ok := apperrors.FailedFile(err); ok {
				data["file"] = file
			}
			s.events.Publish(ctx, events.New(events.TypeRunFailed, operation, traceID, data))
		} else {
			s.logger.InfoContext(ctx, "reconcile run completed",
				slog.Duration("duration", duration))
			s.events.Publish(ctx, events.New(events.TypeRunCompleted, operation, traceID, data))
		}
		span.End()
	}
}

// eventData turns span attributes into event fields, dropping the
// "reconcile." prefix
func eventData(attrs []attribute.KeyValue) map[string]interface{} {
	data := make(map[string]interface{}, len(attrs))
	for _, kv := range attrs {
		data[strings.TrimPrefix(string(kv.Key), "reconcile.")] = kv.Value.AsInterface()
	}
	return data
}

// recordFailure counts the failing document and attaches its name to the span.
// Failures that are not tied to a document (bad metric, label mismatch) count nothing.
func (s *ReconcileService) recordFailure(ctx context.Context, operation string, total int, err error) {
	file, ok := apperrors.FailedFile(err)
	if !ok {
		if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
			infrastructure.AddSpanEvent(ctx, "run.cancelled", attribute.Int("files", total))
		}
		return
	}
	infrastructure.RecordFileOutcome(ctx, s.metrics, operation, infrastructure.FileOutcomeFailed, 1)
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("reconcile.failed_file", file))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
