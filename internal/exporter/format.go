package exporter

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format selects the delimiter of an exported table
type Format string

const (
	FormatTSV Format = "tsv"
	FormatCSV Format = "csv"
)

// Delimiter returns the field separator of the format
func (f Format) Delimiter() rune {
	if f == FormatCSV {
		return ','
	}
	return '\t'
}

// Extension returns the file extension including the dot
func (f Format) Extension() string {
	return "." + string(f)
}

// ContentType returns the MIME type served for the format
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "text/tab-separated-values; charset=utf-8"
}

// ParseFormat accepts "tsv" or "csv" in any case; empty means TSV
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "tsv", "tab":
		return FormatTSV, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// FormatForPath picks the format from a file extension, defaulting to TSV
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return FormatCSV
	}
	return FormatTSV
}
