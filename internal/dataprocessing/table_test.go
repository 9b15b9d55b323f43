package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMissing(t *testing.T) {
	tests := []struct {
		cell string
		want bool
	}{
		{"", true},
		{"   ", true},
		{"NA", true},
		{"NaN", true},
		{"#N/A", true},
		{"<NA>", true},
		{"None", true},
		{"0", false},
		{"PEP1", false},
		{"na", false},
	}

	for _, tt := range tests {
		t.Run(tt.cell, func(t *testing.T) {
			assert.Equal(t, tt.want, IsMissing(tt.cell))
		})
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name   string
		cell   string
		want   float64
		wantOK bool
	}{
		{"integer", "42", 42, true},
		{"float with spaces", " 3.5 ", 3.5, true},
		{"exponent", "1e3", 1000, true},
		{"text", "abc", 0, false},
		{"missing", "NA", 0, false},
		{"infinity is not finite", "inf", 0, false},
		{"nan", "nan", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseNumber(tt.cell)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, CoerceNumber(tt.cell))
		})
	}
}

func TestNewRawTable(t *testing.T) {
	t.Run("mangles duplicate and blank headers", func(t *testing.T) {
		table := NewRawTable("x.tsv", []string{" score ", "score", "", "score"}, nil)
		assert.Equal(t, []string{"score", "score.1", "Unnamed: 2", "score.2"}, table.Columns)
	})

	t.Run("normalizes row width", func(t *testing.T) {
		table := NewRawTable("x.tsv", []string{"a", "b", "c"}, [][]string{
			{"1"},
			{"1", "2", "3", "4"},
		})
		require.Equal(t, 2, table.Len())
		assert.Equal(t, []string{"1", "", ""}, table.Rows[0])
		assert.Equal(t, []string{"1", "2", "3"}, table.Rows[1])
	})

	t.Run("column access", func(t *testing.T) {
		table := NewRawTable("x.tsv", []string{"a", "b"}, [][]string{{"1", "2"}, {"3", "4"}})
		assert.True(t, table.HasColumn("b"))
		assert.False(t, table.HasColumn("B"))
		assert.Equal(t, []string{"2", "4"}, table.Column("b"))
		assert.Nil(t, table.Column("zzz"))

		last, ok := table.LastColumn()
		assert.True(t, ok)
		assert.Equal(t, "b", last)
	})

	t.Run("no header means no columns and no rows", func(t *testing.T) {
		table := NewRawTable("empty.tsv", nil, [][]string{{"1"}})
		assert.Equal(t, 0, table.Width())
		assert.Equal(t, 0, table.Len())
		_, ok := table.LastColumn()
		assert.False(t, ok)
	})
}
