package dataprocessing

import (
	"context"
	stderrors "errors"
	"log/slog"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/errors"
	"github.com/jonathanmorenozapico-source/Tsv-Project/pkg/contracts/domain"
)

// Pivot sums the last column of each document per group, one column per document
type Pivot struct {
	logger  *slog.Logger
	workers int
}

// PivotResult is a pivot matrix together with the documents left out of it
type PivotResult struct {
	Matrix  *domain.GroupIntensityMatrix `json:"matrix"`
	Skipped []string                     `json:"skipped"`
}

// NewPivot creates a group-intensity pivot
func NewPivot(logger *slog.Logger, opts Options) *Pivot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pivot{logger: logger, workers: opts.Workers}
}

// PivotByGroup builds the group by document intensity matrix
func (p *Pivot) PivotByGroup(ctx context.Context, paths []string) (*domain.GroupIntensityMatrix, error) {
	res, err := p.PivotReport(ctx, paths)
	if err != nil {
		return nil, err
	}
	return res.Matrix, nil
}

// groupSums is one document's contribution; ok is false when it was skipped
type groupSums struct {
	label string
	sums  map[string]float64
	ok    bool
}

// PivotReport is PivotByGroup that also reports which documents had no group column
func (p *Pivot) PivotReport(ctx context.Context, paths []string) (*PivotResult, error) {
	perFile := make([]groupSums, len(paths))
	errs := make([]error, len(paths))

	if p.workers <= 1 {
		for i, path := range paths {
			if perFile[i], errs[i] = p.pivotFile(ctx, path); errs[i] != nil {
				return nil, errs[i]
			}
		}
	} else {
		var g errgroup.Group
		g.SetLimit(p.workers)
		for i, path := range paths {
			g.Go(func() error {
				perFile[i], errs[i] = p.pivotFile(ctx, path)
				return nil
			})
		}
		_ = g.Wait()
		for _, err := range errs {
			if err != nil {
				return nil, err
			}
		}
	}

	result := &PivotResult{Matrix: domain.NewEmptyGroupIntensityMatrix(), Skipped: []string{}}
	var included []groupSums
	for i, fs := range perFile {
		if !fs.ok {
			result.Skipped = append(result.Skipped, filepath.Base(paths[i]))
			continue
		}
		included = append(included, fs)
	}
	if len(included) == 0 {
		return result, nil
	}

	groupSet := make(map[string]struct{})
	for _, fs := range included {
		result.Matrix.Columns = append(result.Matrix.Columns, fs.label)
		for g := range fs.sums {
			groupSet[g] = struct{}{}
		}
	}
	for g := range groupSet {
		result.Matrix.Groups = append(result.Matrix.Groups, g)
	}
	sort.Strings(result.Matrix.Groups)

	result.Matrix.Values = make([][]float64, len(result.Matrix.Groups))
	for gi, g := range result.Matrix.Groups {
		row := make([]float64, len(included))
		for ci, fs := range included {
			row[ci] = fs.sums[g]
		}
		result.Matrix.Values[gi] = row
	}

	p.logger.InfoContext(ctx, "group pivot completed",
		slog.Int("files", len(paths)),
		slog.Int("included", len(included)),
		slog.Int("groups", len(result.Matrix.Groups)))
	return result, nil
}

func (p *Pivot) pivotFile(ctx context.Context, path string) (groupSums, error) {
	if err := ctx.Err(); err != nil {
		return groupSums{}, err
	}
	name := filepath.Base(path)
	t, err := ParseFile(path)
	if err != nil {
		return groupSums{}, errors.WrapFile(name, "group pivot", err)
	}
	sums, err := SumByGroup(t)
	if stderrors.Is(err, errors.ErrColumnNotFound) {
		p.logger.WarnContext(ctx, "group column not found, skipping file for group pivot",
			slog.String("file", name),
			slog.Any("candidates", PivotGroupResolver.Candidates.Names()))
		return groupSums{}, nil
	}
	if err != nil {
		return groupSums{}, errors.WrapFile(name, "group pivot", err)
	}
	return groupSums{label: FileStem(path), sums: sums, ok: true}, nil
}

// SumByGroup sums the last column per group, taking the first ;-token of
// the group cell as the group. Rows without a group or with a value <= 0
// do not contribute.
func SumByGroup(t *RawTable) (map[string]float64, error) {
	groupColumn, err := PivotGroupResolver.Resolve(t)
	if err != nil {
		return nil, err
	}
	groupIdx, _ := t.ColumnIndex(groupColumn)
	valueIdx := t.Width() - 1

	sums := make(map[string]float64)
	for _, row := range t.Rows {
		group, ok := FirstGroup(row[groupIdx])
		if !ok {
			continue
		}
		v := CoerceNumber(row[valueIdx])
		if v <= 0 {
			continue
		}
		sums[group] += v
	}
	return sums, nil
}
