package dataprocessing

import (
	"fmt"

	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/errors"
)

// Column roles resolved against a table
const (
	RoleEntityKey = "entity key"
	RoleGroup     = "group reference"
	RoleMetric    = "metric source"
)

// CandidateList is an ordered set of acceptable column names. Earlier names win.
type CandidateList []string

// NewCandidateList drops blanks and repeated names, keeping first occurrences
func NewCandidateList(names ...string) CandidateList {
	seen := make(map[string]struct{}, len(names))
	list := make(CandidateList, 0, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		list = append(list, n)
	}
	return list
}

// Names returns a copy of the candidate names
func (c CandidateList) Names() []string {
	return append([]string(nil), c...)
}

// ColumnResolver locates the column playing one role in a table
type ColumnResolver struct {
	Role            string
	Candidates      CandidateList
	FallbackToFirst bool
}

// Resolve returns the first candidate present in the table. Matching walks
// the candidate list, so column position only matters for the fallback.
func (r ColumnResolver) Resolve(t *RawTable) (string, error) {
	if t.Width() == 0 {
		return "", &errors.SchemaResolutionError{
			File:       t.Name,
			Role:       r.Role,
			Candidates: r.Candidates.Names(),
		}
	}
	for _, name := range r.Candidates {
		if t.HasColumn(name) {
			return name, nil
		}
	}
	if r.FallbackToFirst {
		return t.Columns[0], nil
	}
	return "", fmt.Errorf("%w: no %s column among %v in %s", errors.ErrColumnNotFound, r.Role, []string(r.Candidates), t.Name)
}

// DefaultEntityKey is the entity column name tried first when the caller gives none
const DefaultEntityKey = "Peptide"

var entityKeyAliases = []string{
	"peptide",
	"Sequence",
	"sequence",
	"Peptide_Sequence",
	"peptide_sequence",
	"Peptide Sequence",
	"Peptide ID",
	"PeptideID",
	"Accession",
}

// EntityKeyResolver tries the caller's key name, then the usual aliases, then the first column
func EntityKeyResolver(defaultKey string) ColumnResolver {
	if defaultKey == "" {
		defaultKey = DefaultEntityKey
	}
	return ColumnResolver{
		Role:            RoleEntityKey,
		Candidates:      NewCandidateList(append([]string{defaultKey}, entityKeyAliases...)...),
		FallbackToFirst: true,
	}
}

// GroupResolver finds the group-reference column used for membership maps
var GroupResolver = ColumnResolver{
	Role: RoleGroup,
	Candidates: NewCandidateList(
		"Proteins",
		"proteins",
		"Protein",
		"protein",
		"Leading Proteins",
		"Leading proteins",
		"Leading razor protein",
		"Protein Group",
		"Protein group",
	),
}

// PivotGroupResolver is the narrower group search used by the intensity pivot
var PivotGroupResolver = ColumnResolver{
	Role:       RoleGroup,
	Candidates: NewCandidateList("proteins", "Proteins"),
}
