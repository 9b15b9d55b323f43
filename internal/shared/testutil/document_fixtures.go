package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// Sample documents shared by package tests. Columns are tab separated.
const (
	// SampleRun1 is the three-peptide document with the intensity in the last column
	SampleRun1 = "Peptide\tScore\tProteins\tIntensity\n" +
		"PEP1\t100\tPROT_A\t1000\n" +
		"PEP2\t200\tPROT_B;PROT_C\t2000\n" +
		"PEP3\t300\tPROT_A\t3000\n"

	// SampleRepeated has several rows per peptide and typical engine column names
	SampleRepeated = "peptide\tcharge\tscore\tq_value\tspectral_angle\tproteins\tintensity\n" +
		"AAK\t2\t10\t0.05\t0.8\tP1\t100\n" +
		"AAK\t3\t30\t0.01\t0.6\tP1;P2\t300\n" +
		"AAK\t2\tbad\t0.02\t0.7\tP2\t200\n" +
		"CCR\t4\t5\t0.5\t0.1\tP3\t50\n"

	// SampleNoGroups has no group-reference column
	SampleNoGroups = "Sequence\tscore\tvalue\n" +
		"PEP1\t7\t10\n" +
		"PEP9\t8\t20\n"
)

// Doc builds a tab separated document from a header and rows
func Doc(header []string, rows ...[]string) string {
	var b strings.Builder
	b.WriteString(strings.Join(header, "\t"))
	b.WriteByte('\n')
	for _, r := range rows {
		b.WriteString(strings.Join(r, "\t"))
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteDocument writes content to dir/name and returns the path
func WriteDocument(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("create fixture dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
	return path
}

// WriteWorkbook writes rows to the first sheet of a new workbook
func WriteWorkbook(t *testing.T, dir, name string, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row %d: %v", r, err)
		}
	}

	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook %s: %v", name, err)
	}
	return path
}
