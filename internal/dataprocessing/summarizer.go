package dataprocessing

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/errors"
	"github.com/jonathanmorenozapico-source/Tsv-Project/pkg/contracts/domain"
)

// EntitySummary holds one reduced value per entity for a single file
type EntitySummary struct {
	File         string
	Label        string
	KeyColumn    string
	SourceColumn string
	Metric       string
	Numeric      bool
	Entities     []string
	Values       map[string]domain.Value
}

// Relabel renames the summary column, usually to the caller's label for the file
func (s *EntitySummary) Relabel(label string) *EntitySummary {
	s.Label = label
	return s
}

// Value returns the reduced value of an entity
func (s *EntitySummary) Value(entity string) (domain.Value, bool) {
	v, ok := s.Values[entity]
	return v, ok
}

// Aggregator reduces the rows of one file to one row per entity
type Aggregator struct {
	logger *slog.Logger
}

// NewAggregator creates an aggregator; a nil logger uses slog.Default
func NewAggregator(logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{logger: logger}
}

// AggregateFile loads a document and aggregates it
func (a *Aggregator) AggregateFile(ctx context.Context, path, entityKeyDefault, metric string) (*EntitySummary, error) {
	strategy, err := LookupStrategy(metric)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, err := ParseFile(path)
	if err != nil {
		return nil, errors.WrapFile(filepath.Base(path), "load", err)
	}
	return a.summarize(ctx, t, entityKeyDefault, strategy)
}

// Aggregate reduces an in-memory table under the named metric
func (a *Aggregator) Aggregate(t *RawTable, entityKeyDefault, metric string) (*EntitySummary, error) {
	strategy, err := LookupStrategy(metric)
	if err != nil {
		return nil, err
	}
	return a.summarize(context.Background(), t, entityKeyDefault, strategy)
}

func (a *Aggregator) summarize(ctx context.Context, t *RawTable, entityKeyDefault string, strategy AggregationStrategy) (*EntitySummary, error) {
	keyColumn, err := EntityKeyResolver(entityKeyDefault).Resolve(t)
	if err != nil {
		return nil, errors.WrapFile(t.Name, "resolve entity key", err)
	}
	keyIdx, _ := t.ColumnIndex(keyColumn)

	sourceColumn, err := a.resolveSource(t, strategy)
	if err != nil {
		return nil, errors.WrapFile(t.Name, "resolve metric source", err)
	}
	sourceIdx := -1
	if sourceColumn != "" {
		sourceIdx, _ = t.ColumnIndex(sourceColumn)
	}

	cells := make(map[string][]string)
	dropped := 0
	for _, row := range t.Rows {
		entity := row[keyIdx]
		if IsMissing(entity) {
			dropped++
			continue
		}
		entity = strings.TrimSpace(entity)
		var cell string
		if sourceIdx >= 0 {
			cell = row[sourceIdx]
		}
		cells[entity] = append(cells[entity], cell)
	}

	summary := &EntitySummary{
		File:         t.Name,
		Label:        strategy.Metric,
		KeyColumn:    keyColumn,
		SourceColumn: sourceColumn,
		Metric:       strategy.Metric,
		Numeric:      strategy.Numeric,
		Entities:     make([]string, 0, len(cells)),
		Values:       make(map[string]domain.Value, len(cells)),
	}
	for entity, values := range cells {
		summary.Entities = append(summary.Entities, entity)
		summary.Values[entity] = strategy.Reduce(values)
	}
	sort.Strings(summary.Entities)

	a.logger.DebugContext(ctx, "file aggregated",
		slog.String("file", t.Name),
		slog.String("metric", strategy.Metric),
		slog.String("key_column", keyColumn),
		slog.String("source_column", sourceColumn),
		slog.Int("rows", t.Len()),
		slog.Int("entities", len(summary.Entities)),
		slog.Int("rows_without_key", dropped),
	)
	return summary, nil
}

// resolveSource returns the column a strategy reads, or "" for row counts
func (a *Aggregator) resolveSource(t *RawTable, strategy AggregationStrategy) (string, error) {
	switch strategy.Source {
	case SourceRowCount:
		return "", nil
	case SourceLastColumn:
		last, ok := t.LastColumn()
		if !ok {
			return "", &errors.SchemaResolutionError{File: t.Name, Role: RoleMetric}
		}
		return last, nil
	default:
		resolver := ColumnResolver{Role: RoleMetric, Candidates: strategy.Candidates}
		column, err := resolver.Resolve(t)
		if err != nil {
			return "", &errors.MetricColumnNotFoundError{
				File:       t.Name,
				Metric:     strategy.Metric,
				Candidates: strategy.Candidates.Names(),
			}
		}
		return column, nil
	}
}
