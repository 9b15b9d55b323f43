package domain

import (
	"encoding/json"
	"math"
	"strconv"
)

const (
	// GroupColumnName is the header of the leading group-membership column of a MergedTable
	GroupColumnName = "Protein"

	// UnknownGroup fills the group column for entities without any group reference
	UnknownGroup = "Unknown"

	// GroupIndexName names the row index of a GroupIntensityMatrix
	GroupIndexName = "protein_group"
)

// ValueKind distinguishes numeric cells from text cells
type ValueKind int

const (
	NumberValue ValueKind = iota
	TextValue
)

// Value is a single reduced metric cell
type Value struct {
	Kind   ValueKind
	Number float64
	Text   string
}

// Number creates a numeric cell
func Number(f float64) Value {
	return Value{Kind: NumberValue, Number: f}
}

// Text creates a text cell
func Text(s string) Value {
	return Value{Kind: TextValue, Text: s}
}

// IsNumber reports whether the cell holds a number
func (v Value) IsNumber() bool {
	return v.Kind == NumberValue
}

// String renders the cell the way it is written to exported tables
func (v Value) String() string {
	if v.Kind == TextValue {
		return v.Text
	}
	return FormatNumber(v.Number)
}

// MarshalJSON encodes numbers as JSON numbers and text as strings
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Kind == TextValue {
		return json.Marshal(v.Text)
	}
	if math.IsNaN(v.Number) || math.IsInf(v.Number, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v.Number)
}

// FormatNumber renders a float with the shortest representation that round-trips
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// MergedRow is one entity of a MergedTable
type MergedRow struct {
	Entity string  `json:"entity"`
	Group  string  `json:"group"`
	Values []Value `json:"values"`
}

// MergedTable is the entity-indexed wide table produced by merging per-file summaries.
// The group column always precedes the per-file columns, which keep the caller's input order.
type MergedTable struct {
	IndexName   string      `json:"index_name"`
	GroupColumn string      `json:"group_column"`
	Metric      string      `json:"metric"`
	Numeric     bool        `json:"numeric"`
	Columns     []string    `json:"columns"`
	Rows        []MergedRow `json:"rows"`
}

// NewEmptyMergedTable returns a table with no columns and no rows
func NewEmptyMergedTable(indexName, metric string) *MergedTable {
	return &MergedTable{
		IndexName:   indexName,
		GroupColumn: GroupColumnName,
		Metric:      metric,
		Columns:     []string{},
		Rows:        []MergedRow{},
	}
}

// Empty reports whether the table has no data rows
func (t *MergedTable) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// Len returns the number of entity rows
func (t *MergedTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Header returns index name, group column and file labels in output order
func (t *MergedTable) Header() []string {
	header := make([]string, 0, len(t.Columns)+2)
	header = append(header, t.IndexName, t.GroupColumn)
	return append(header, t.Columns...)
}

// Row returns the row for an entity
func (t *MergedTable) Row(entity string) (MergedRow, bool) {
	for _, row := range t.Rows {
		if row.Entity == entity {
			return row, true
		}
	}
	return MergedRow{}, false
}

// Cell returns the value of an entity in the column with the given label
func (t *MergedTable) Cell(entity, column string) (Value, bool) {
	idx := -1
	for i, c := range t.Columns {
		if c == column {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Value{}, false
	}
	row, ok := t.Row(entity)
	if !ok {
		return Value{}, false
	}
	return row.Values[idx], true
}

// Entities returns the row index in table order
func (t *MergedTable) Entities() []string {
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row.Entity
	}
	return out
}

// Records renders the table as string rows, header first
func (t *MergedTable) Records() [][]string {
	records := make([][]string, 0, len(t.Rows)+1)
	records = append(records, t.Header())
	for _, row := range t.Rows {
		record := make([]string, 0, len(row.Values)+2)
		record = append(record, row.Entity, row.Group)
		for _, v := range row.Values {
			record = append(record, v.String())
		}
		records = append(records, record)
	}
	return records
}

// GroupIntensityMatrix holds group-level intensity sums, one column per file
type GroupIntensityMatrix struct {
	IndexName string      `json:"index_name"`
	Columns   []string    `json:"columns"`
	Groups    []string    `json:"groups"`
	Values    [][]float64 `json:"values"`
}

// NewEmptyGroupIntensityMatrix returns a matrix without groups or columns
func NewEmptyGroupIntensityMatrix() *GroupIntensityMatrix {
	return &GroupIntensityMatrix{
		IndexName: GroupIndexName,
		Columns:   []string{},
		Groups:    []string{},
		Values:    [][]float64{},
	}
}

// Empty reports whether the matrix has no groups
func (m *GroupIntensityMatrix) Empty() bool {
	return m == nil || len(m.Groups) == 0
}

// Value returns the intensity of a group in a column
func (m *GroupIntensityMatrix) Value(group, column string) (float64, bool) {
	col := -1
	for i, c := range m.Columns {
		if c == column {
			col = i
			break
		}
	}
	if col < 0 {
		return 0, false
	}
	for i, g := range m.Groups {
		if g == group {
			return m.Values[i][col], true
		}
	}
	return 0, false
}

// Column returns all group values of a column in group order
func (m *GroupIntensityMatrix) Column(idx int) []float64 {
	out := make([]float64, len(m.Groups))
	for i := range m.Groups {
		out[i] = m.Values[i][idx]
	}
	return out
}

// Records renders the matrix as string rows, header first
func (m *GroupIntensityMatrix) Records() [][]string {
	records := make([][]string, 0, len(m.Groups)+1)
	header := append([]string{m.IndexName}, m.Columns...)
	records = append(records, header)
	for i, g := range m.Groups {
		record := make([]string, 0, len(m.Columns)+1)
		record = append(record, g)
		for _, v := range m.Values[i] {
			record = append(record, FormatNumber(v))
		}
		records = append(records, record)
	}
	return records
}

// CorrelationMatrix holds pairwise Pearson coefficients between files.
// Undefined coefficients are NaN and serialize as null.
type CorrelationMatrix struct {
	Labels []string    `json:"labels"`
	Values [][]float64 `json:"-"`
}

// MarshalJSON encodes NaN coefficients as null
func (c *CorrelationMatrix) MarshalJSON() ([]byte, error) {
	values := make([][]*float64, len(c.Values))
	for i, row := range c.Values {
		values[i] = make([]*float64, len(row))
		for j := range row {
			if math.IsNaN(row[j]) {
				continue
			}
			v := row[j]
			values[i][j] = &v
		}
	}
	return json.Marshal(struct {
		Labels []string     `json:"labels"`
		Values [][]*float64 `json:"values"`
		Mean   *float64     `json:"mean_off_diagonal"`
	}{
		Labels: c.Labels,
		Values: values,
		Mean:   nanToNil(c.MeanOffDiagonal()),
	})
}

// MeanOffDiagonal averages the strict lower triangle, ignoring undefined coefficients
func (c *CorrelationMatrix) MeanOffDiagonal() float64 {
	var sum float64
	var n int
	for i := range c.Values {
		for j := 0; j < i; j++ {
			if math.IsNaN(c.Values[i][j]) {
				continue
			}
			sum += c.Values[i][j]
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// Records renders the matrix as string rows, header first
func (c *CorrelationMatrix) Records() [][]string {
	records := make([][]string, 0, len(c.Labels)+1)
	records = append(records, append([]string{""}, c.Labels...))
	for i, label := range c.Labels {
		record := make([]string, 0, len(c.Labels)+1)
		record = append(record, label)
		for _, v := range c.Values[i] {
			if math.IsNaN(v) {
				record = append(record, "")
				continue
			}
			record = append(record, strconv.FormatFloat(v, 'f', 6, 64))
		}
		records = append(records, record)
	}
	return records
}

func nanToNil(f float64) *float64 {
	if math.IsNaN(f) {
		return nil
	}
	return &f
}
