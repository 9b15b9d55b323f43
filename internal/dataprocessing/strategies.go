package dataprocessing

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/errors"
	"github.com/jonathanmorenozapico-source/Tsv-Project/pkg/contracts/domain"
)

// Metric names accepted by the aggregator
const (
	MetricCount              = "Count"
	MetricTotalIntensity     = "Total Intensity"
	MetricAverageScore       = "Average Score"
	MetricBestScore          = "Best Score"
	MetricBestQValue         = "Best q-value"
	MetricAverageAngle       = "Average Angle"
	MetricBestAngle          = "Best Angle"
	MetricChargeStates       = "Charge States"
	MetricAssociatedProteins = "Associated Proteins"
)

// SourceKind says where a strategy takes its input cells from
type SourceKind int

const (
	// SourceRowCount ignores cell contents and counts rows
	SourceRowCount SourceKind = iota
	// SourceLastColumn reads the rightmost column of the file
	SourceLastColumn
	// SourceCandidates resolves a column from the strategy's candidate list
	SourceCandidates
)

// Reduction folds the cells of one entity into a single value
type Reduction int

const (
	ReduceCount Reduction = iota
	ReduceSum
	ReduceMean
	ReduceMax
	ReduceMin
	ReduceJoinUnique
	ReduceSplitUnion
)

// AggregationStrategy describes how one metric is computed per entity
type AggregationStrategy struct {
	Metric     string
	Source     SourceKind
	Candidates CandidateList
	Reduction  Reduction
	Numeric    bool
}

var strategyRegistry = []AggregationStrategy{
	{Metric: MetricCount, Source: SourceRowCount, Reduction: ReduceCount, Numeric: true},
	{Metric: MetricTotalIntensity, Source: SourceLastColumn, Reduction: ReduceSum, Numeric: true},
	{Metric: MetricAverageScore, Source: SourceCandidates, Candidates: NewCandidateList("score"), Reduction: ReduceMean, Numeric: true},
	{Metric: MetricBestScore, Source: SourceCandidates, Candidates: NewCandidateList("score"), Reduction: ReduceMax, Numeric: true},
	{Metric: MetricBestQValue, Source: SourceCandidates, Candidates: NewCandidateList("q_value", "peptide_q-value"), Reduction: ReduceMin, Numeric: true},
	{Metric: MetricAverageAngle, Source: SourceCandidates, Candidates: NewCandidateList("spectral_angle"), Reduction: ReduceMean, Numeric: true},
	{Metric: MetricBestAngle, Source: SourceCandidates, Candidates: NewCandidateList("spectral_angle"), Reduction: ReduceMax, Numeric: true},
	{Metric: MetricChargeStates, Source: SourceCandidates, Candidates: NewCandidateList("charge"), Reduction: ReduceJoinUnique, Numeric: false},
	{Metric: MetricAssociatedProteins, Source: SourceCandidates, Candidates: NewCandidateList("proteins"), Reduction: ReduceSplitUnion, Numeric: false},
}

var strategiesByName = func() map[string]AggregationStrategy {
	m := make(map[string]AggregationStrategy, len(strategyRegistry))
	for _, s := range strategyRegistry {
		m[s.Metric] = s
	}
	return m
}()

// MetricNames lists the registered metrics in registry order
func MetricNames() []string {
	names := make([]string, len(strategyRegistry))
	for i, s := range strategyRegistry {
		names[i] = s.Metric
	}
	return names
}

// Strategies returns a copy of the registry in registry order
func Strategies() []AggregationStrategy {
	out := make([]AggregationStrategy, len(strategyRegistry))
	copy(out, strategyRegistry)
	return out
}

// SourceColumns describes the columns a strategy reads, for display
func (s AggregationStrategy) SourceColumns() []string {
	switch s.Source {
	case SourceRowCount:
		return []string{}
	case SourceLastColumn:
		return []string{"<last column>"}
	default:
		return s.Candidates.Names()
	}
}

func (r Reduction) String() string {
	switch r {
	case ReduceCount:
		return "count"
	case ReduceSum:
		return "sum"
	case ReduceMean:
		return "mean"
	case ReduceMax:
		return "max"
	case ReduceMin:
		return "min"
	case ReduceJoinUnique:
		return "join_unique"
	case ReduceSplitUnion:
		return "split_union"
	default:
		return "unknown"
	}
}

// LookupStrategy returns the strategy registered for a metric name
func LookupStrategy(metric string) (AggregationStrategy, error) {
	s, ok := strategiesByName[metric]
	if !ok {
		return AggregationStrategy{}, &errors.UnknownMetricError{Metric: metric, Valid: MetricNames()}
	}
	return s, nil
}

// Empty is the fill value for an entity absent from a file
func (s AggregationStrategy) Empty() domain.Value {
	if s.Numeric {
		return domain.Number(0)
	}
	return domain.Text("")
}

// Reduce folds the cells of one entity. Numeric reductions coerce every
// cell and never drop one; text reductions skip missing cells.
func (s AggregationStrategy) Reduce(cells []string) domain.Value {
	switch s.Reduction {
	case ReduceCount:
		return domain.Number(float64(len(cells)))
	case ReduceSum, ReduceMean, ReduceMax, ReduceMin:
		return domain.Number(reduceNumbers(s.Reduction, cells))
	case ReduceJoinUnique:
		return domain.Text(joinUnique(cells))
	case ReduceSplitUnion:
		return domain.Text(JoinGroups(SplitGroups(cells...)))
	default:
		return s.Empty()
	}
}

func reduceNumbers(r Reduction, cells []string) float64 {
	if len(cells) == 0 {
		return 0
	}
	var acc float64
	switch r {
	case ReduceMax:
		acc = math.Inf(-1)
	case ReduceMin:
		acc = math.Inf(1)
	}
	for _, c := range cells {
		v := CoerceNumber(c)
		switch r {
		case ReduceSum, ReduceMean:
			acc += v
		case ReduceMax:
			acc = math.Max(acc, v)
		case ReduceMin:
			acc = math.Min(acc, v)
		}
	}
	if r == ReduceMean {
		acc /= float64(len(cells))
	}
	if math.IsNaN(acc) || math.IsInf(acc, 0) {
		return 0
	}
	return acc
}

// joinUnique renders distinct present values joined by ", ". When every
// value is a finite number, values are deduplicated by numeric value, sorted
// numerically and written in their shortest form, so "2" and "2.0" are one
// charge state.
func joinUnique(cells []string) string {
	present := make([]string, 0, len(cells))
	numbers := make([]float64, 0, len(cells))
	numeric := true
	for _, c := range cells {
		if IsMissing(c) {
			continue
		}
		c = strings.TrimSpace(c)
		present = append(present, c)
		if !numeric {
			continue
		}
		f, err := strconv.ParseFloat(c, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			numeric = false
			continue
		}
		numbers = append(numbers, f)
	}

	if numeric {
		sort.Float64s(numbers)
		values := make([]string, 0, len(numbers))
		for i, f := range numbers {
			if i > 0 && f == numbers[i-1] {
				continue
			}
			values = append(values, domain.FormatNumber(f))
		}
		return strings.Join(values, ", ")
	}

	seen := make(map[string]struct{}, len(present))
	values := make([]string, 0, len(present))
	for _, c := range present {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		values = append(values, c)
	}
	sort.Strings(values)
	return strings.Join(values, ", ")
}
