package dataprocessing

import (
	"sort"
	"strings"
)

// GroupSeparator splits and joins group identifiers inside one cell
const GroupSeparator = ";"

// GroupSet is an unordered set of group identifiers
type GroupSet map[string]struct{}

// SplitGroups collects the distinct ;-separated identifiers of the given cells.
// Tokens are trimmed and blanks are dropped.
func SplitGroups(cells ...string) GroupSet {
	set := make(GroupSet)
	for _, cell := range cells {
		if IsMissing(cell) {
			continue
		}
		for _, token := range strings.Split(cell, GroupSeparator) {
			token = strings.TrimSpace(token)
			if token == "" {
				continue
			}
			set[token] = struct{}{}
		}
	}
	return set
}

// JoinGroups renders a set sorted and ;-joined
func JoinGroups(set GroupSet) string {
	groups := make([]string, 0, len(set))
	for g := range set {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	return strings.Join(groups, GroupSeparator)
}

// FirstGroup returns the first ;-separated token of a cell
func FirstGroup(cell string) (string, bool) {
	if IsMissing(cell) {
		return "", false
	}
	first, _, _ := strings.Cut(cell, GroupSeparator)
	first = strings.TrimSpace(first)
	return first, first != ""
}

// EntityGroupMap maps an entity to every group it was seen with
type EntityGroupMap map[string]GroupSet

// Add unions groups into the entity's set
func (m EntityGroupMap) Add(entity string, groups GroupSet) {
	if len(groups) == 0 {
		return
	}
	set, ok := m[entity]
	if !ok {
		set = make(GroupSet, len(groups))
		m[entity] = set
	}
	for g := range groups {
		set[g] = struct{}{}
	}
}

// Union folds another map into m. Later maps extend earlier knowledge and
// never replace it.
func (m EntityGroupMap) Union(other EntityGroupMap) {
	for entity, groups := range other {
		m.Add(entity, groups)
	}
}

// Lookup returns the canonical group string of an entity
func (m EntityGroupMap) Lookup(entity string) (string, bool) {
	set, ok := m[entity]
	if !ok || len(set) == 0 {
		return "", false
	}
	return JoinGroups(set), true
}

// ExtractGroups builds the entity to group map of one table. A table without
// a group-reference column yields an empty map.
func ExtractGroups(t *RawTable, entityKeyColumn string) EntityGroupMap {
	groups := make(EntityGroupMap)

	keyIdx, ok := t.ColumnIndex(entityKeyColumn)
	if !ok {
		return groups
	}
	groupColumn, err := GroupResolver.Resolve(t)
	if err != nil {
		return groups
	}
	groupIdx, _ := t.ColumnIndex(groupColumn)

	for _, row := range t.Rows {
		entity := row[keyIdx]
		if IsMissing(entity) || IsMissing(row[groupIdx]) {
			continue
		}
		groups.Add(strings.TrimSpace(entity), SplitGroups(row[groupIdx]))
	}
	return groups
}
