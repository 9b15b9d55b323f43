package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/errors"
)

// Format identifies how a document is decoded
type Format string

const (
	FormatTSV  Format = "tsv"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatFor picks a format from the file extension. Anything that is not
// .csv or .xlsx is read as tab separated.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".xlsx", ".xlsm":
		return FormatXLSX
	default:
		return FormatTSV
	}
}

// ParseFile reads a document into a RawTable
func ParseFile(path string) (*RawTable, error) {
	format := FormatFor(path)
	if format == FormatXLSX {
		return parseWorkbook(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewStorageError("failed to open document", err).WithContext("path", path)
	}
	defer f.Close()

	comma := '\t'
	if format == FormatCSV {
		comma = ','
	}
	t, err := ParseReader(filepath.Base(path), f, comma)
	if err != nil {
		return nil, err
	}
	t.Path = path
	return t, nil
}

// ParseReader reads delimited text with a header row. A leading byte order
// mark is removed and UTF-16 input is transcoded to UTF-8.
func ParseReader(name string, r io.Reader, comma rune) (*RawTable, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	reader := csv.NewReader(decoded)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return NewRawTable(name, nil, nil), nil
	}
	if err != nil {
		return nil, errors.NewParsingError("failed to read header", err).WithContext("document", name)
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewParsingError(fmt.Sprintf("failed to read row %d", len(rows)+2), err).
				WithContext("document", name)
		}
		rows = append(rows, record)
	}

	return NewRawTable(name, header, rows), nil
}

// parseWorkbook reads the first sheet of an Excel workbook; its first row is the header
func parseWorkbook(path string) (*RawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewStorageError("failed to open workbook", err).WithContext("path", path)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		t := NewRawTable(filepath.Base(path), nil, nil)
		t.Path = path
		return t, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.NewParsingError("failed to read sheet", err).
			WithContext("path", path).
			WithContext("sheet", sheets[0])
	}

	var t *RawTable
	if len(rows) == 0 {
		t = NewRawTable(filepath.Base(path), nil, nil)
	} else {
		t = NewRawTable(filepath.Base(path), rows[0], rows[1:])
	}
	t.Path = path
	return t, nil
}
