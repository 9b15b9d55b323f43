package http

import (
	"context"
	"io"
	"time"

	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/config"
	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/dataprocessing"
	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/exporter"
	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/files"
	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/services"
	"github.com/jonathanmorenozapico-source/Tsv-Project/pkg/contracts/domain"
)

// ReconcileServiceInterface defines the reconciliation operations the handler needs
type ReconcileServiceInterface interface {
	Defaults() config.ProcessingConfig
	ListGroups(ctx context.Context) ([]files.FileInfo, error)
	GroupDocuments(ctx context.Context, group string, from, to time.Time) ([]files.FileInfo, error)
	ResolveDocuments(ctx context.Context, refs []string) ([]string, error)

	Merge(ctx context.Context, params services.MergeParams) (*domain.MergedTable, error)
	Pivot(ctx context.Context, sel services.Selection) (*dataprocessing.PivotResult, error)
	Correlate(ctx context.Context, sel services.Selection) (*services.CorrelationReport, error)

	Export(w io.Writer, rec exporter.Recorder, format exporter.Format) error
	SaveReport(ctx context.Context, name string, rec exporter.Recorder, format exporter.Format) (string, error)
}

var _ ReconcileServiceInterface = (*services.ReconcileService)(nil)
