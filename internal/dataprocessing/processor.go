package dataprocessing

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/errors"
	"github.com/jonathanmorenozapico-source/Tsv-Project/pkg/contracts/domain"
)

// Merger combines per-file summaries into one entity-indexed table
type Merger struct {
	aggregator *Aggregator
	logger     *slog.Logger
	workers    int
}

// NewMerger creates a merge engine
func NewMerger(logger *slog.Logger, opts Options) *Merger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Merger{
		aggregator: NewAggregator(logger),
		logger:     logger,
		workers:    opts.Workers,
	}
}

// fileResult is what one document contributes to a merge
type fileResult struct {
	summary *EntitySummary
	groups  EntityGroupMap
}

// MergeFiles merges documents labelled positionally. Checks run in a fixed
// order: unknown metric, then empty input, then a label count mismatch. The
// metric is checked first on purpose, so a misspelled metric fails even
// when the selection is empty instead of passing silently as an empty table.
func (m *Merger) MergeFiles(ctx context.Context, paths, labels []string, entityKeyDefault, metric string) (*domain.MergedTable, error) {
	if _, err := LookupStrategy(metric); err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return domain.NewEmptyMergedTable(keyOrDefault(entityKeyDefault), metric), nil
	}
	if len(paths) != len(labels) {
		return nil, &errors.ArgumentCountError{Files: len(paths), Labels: len(labels)}
	}
	return m.Merge(ctx, ZipInputs(paths, labels), entityKeyDefault, metric)
}

// Merge aggregates every input and outer-joins the summaries on entity.
// Any per-file failure aborts the merge; the error names the first failing
// file in input order.
func (m *Merger) Merge(ctx context.Context, inputs []FileInput, entityKeyDefault, metric string) (*domain.MergedTable, error) {
	strategy, err := LookupStrategy(metric)
	if err != nil {
		return nil, err
	}
	entityKeyDefault = keyOrDefault(entityKeyDefault)
	if len(inputs) == 0 {
		return domain.NewEmptyMergedTable(entityKeyDefault, metric), nil
	}

	start := time.Now()
	results, err := m.collect(ctx, inputs, entityKeyDefault, strategy)
	if err != nil {
		m.logger.ErrorContext(ctx, "merge aborted",
			slog.String("metric", metric),
			slog.String("error", err.Error()))
		return nil, err
	}

	table := combine(results, entityKeyDefault, strategy)

	m.logger.InfoContext(ctx, "merge completed",
		slog.String("metric", metric),
		slog.Int("files", len(inputs)),
		slog.Int("entities", table.Len()),
		slog.Duration("duration", time.Since(start)))
	return table, nil
}

func (m *Merger) collect(ctx context.Context, inputs []FileInput, entityKeyDefault string, strategy AggregationStrategy) ([]fileResult, error) {
	results := make([]fileResult, len(inputs))

	if m.workers <= 1 {
		for i, in := range inputs {
			res, err := m.processFile(ctx, in, entityKeyDefault, strategy)
			if err != nil {
				return nil, err
			}
			results[i] = res
		}
		return results, nil
	}

	// Workers never fail the group so every file gets a verdict; the first
	// error in input order is reported afterwards.
	errs := make([]error, len(inputs))
	var g errgroup.Group
	g.SetLimit(m.workers)
	for i, in := range inputs {
		g.Go(func() error {
			results[i], errs[i] = m.processFile(ctx, in, entityKeyDefault, strategy)
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// processFile reads a document once and derives both its summary and its group map
func (m *Merger) processFile(ctx context.Context, in FileInput, entityKeyDefault string, strategy AggregationStrategy) (fileResult, error) {
	if err := ctx.Err(); err != nil {
		return fileResult{}, err
	}
	t, err := ParseFile(in.Path)
	if err != nil {
		return fileResult{}, errors.WrapFile(filepath.Base(in.Path), "load", err)
	}
	summary, err := m.aggregator.summarize(ctx, t, entityKeyDefault, strategy)
	if err != nil {
		return fileResult{}, err
	}
	summary.Relabel(in.Label)
	return fileResult{
		summary: summary,
		groups:  ExtractGroups(t, summary.KeyColumn),
	}, nil
}

func combine(results []fileResult, entityKeyDefault string, strategy AggregationStrategy) *domain.MergedTable {
	master := make(EntityGroupMap)
	entitySet := make(map[string]struct{})
	for _, res := range results {
		master.Union(res.groups)
		for _, e := range res.summary.Entities {
			entitySet[e] = struct{}{}
		}
	}

	entities := make([]string, 0, len(entitySet))
	for e := range entitySet {
		entities = append(entities, e)
	}
	sort.Strings(entities)

	table := domain.NewEmptyMergedTable(indexName(results, entityKeyDefault), strategy.Metric)
	table.Numeric = strategy.Numeric
	for _, res := range results {
		table.Columns = append(table.Columns, res.summary.Label)
	}

	table.Rows = make([]domain.MergedRow, 0, len(entities))
	for _, entity := range entities {
		group, ok := master.Lookup(entity)
		if !ok {
			group = domain.UnknownGroup
		}
		row := domain.MergedRow{
			Entity: entity,
			Group:  group,
			Values: make([]domain.Value, len(results)),
		}
		for i, res := range results {
			v, ok := res.summary.Value(entity)
			if !ok {
				v = strategy.Empty()
			}
			row.Values[i] = v
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// indexName keeps the resolved key column when every file agrees on it
func indexName(results []fileResult, entityKeyDefault string) string {
	if len(results) == 0 {
		return entityKeyDefault
	}
	name := results[0].summary.KeyColumn
	for _, res := range results[1:] {
		if res.summary.KeyColumn != name {
			return entityKeyDefault
		}
	}
	return name
}

func keyOrDefault(key string) string {
	if key == "" {
		return DefaultEntityKey
	}
	return key
}
