package dataprocessing

import (
	"math"
	"strconv"
	"strings"
)

// naMarkers are the cell spellings read as missing, in addition to blank cells
var naMarkers = map[string]struct{}{
	"NA": {}, "N/A": {}, "n/a": {}, "NaN": {}, "nan": {}, "-NaN": {},
	"null": {}, "NULL": {}, "None": {}, "#N/A": {}, "<NA>": {},
}

// IsMissing reports whether a cell counts as absent
func IsMissing(cell string) bool {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return true
	}
	_, ok := naMarkers[cell]
	return ok
}

// ParseNumber parses a cell as a finite float
func ParseNumber(cell string) (float64, bool) {
	if IsMissing(cell) {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// CoerceNumber parses a cell as a number, falling back to 0
func CoerceNumber(cell string) float64 {
	f, _ := ParseNumber(cell)
	return f
}

// RawTable is one document held fully in memory. Every row has exactly
// len(Columns) cells.
type RawTable struct {
	Name    string
	Path    string
	Columns []string
	Rows    [][]string

	index map[string]int
}

// NewRawTable builds a table from a header and data rows. Header names are
// trimmed and repeated names become name.1, name.2 and so on. Short rows are
// padded with blank cells and long rows are cut to the header width.
func NewRawTable(name string, header []string, rows [][]string) *RawTable {
	columns := mangleHeader(header)
	t := &RawTable{
		Name:    name,
		Columns: columns,
		Rows:    make([][]string, 0, len(rows)),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		t.index[c] = i
	}
	if len(columns) == 0 {
		return t
	}
	for _, row := range rows {
		normalized := make([]string, len(columns))
		copy(normalized, row)
		t.Rows = append(t.Rows, normalized)
	}
	return t
}

func mangleHeader(header []string) []string {
	columns := make([]string, len(header))
	seen := make(map[string]int, len(header))
	taken := make(map[string]struct{}, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		name := h
		for {
			if _, dup := taken[name]; !dup {
				break
			}
			seen[h]++
			name = h + "." + strconv.Itoa(seen[h])
		}
		taken[name] = struct{}{}
		columns[i] = name
	}
	return columns
}

// Len returns the number of data rows
func (t *RawTable) Len() int {
	return len(t.Rows)
}

// Width returns the number of columns
func (t *RawTable) Width() int {
	return len(t.Columns)
}

// HasColumn reports whether a column with exactly this name exists
func (t *RawTable) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// ColumnIndex returns the position of a named column
func (t *RawTable) ColumnIndex(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// LastColumn returns the name of the rightmost column
func (t *RawTable) LastColumn() (string, bool) {
	if len(t.Columns) == 0 {
		return "", false
	}
	return t.Columns[len(t.Columns)-1], true
}

// Column returns the cells of a named column in row order
func (t *RawTable) Column(name string) []string {
	i, ok := t.index[name]
	if !ok {
		return nil
	}
	out := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row[i]
	}
	return out
}
