// Package api contains the HTTP contract of the reconciliation API.
// Version v1 represents the current stable API version.
package api

import (
	"github.com/jonathanmorenozapico-source/Tsv-Project/pkg/contracts/domain"
)

// Output formats accepted by the reconcile endpoints
const (
	FormatJSON = "json"
	FormatTSV  = "tsv"
	FormatCSV  = "csv"
)

// DocumentSelection picks the documents of a run: a group folder with an
// optional date window, or an explicit list of documents given as
// "group/name.tsv" references relative to the data directory.
type DocumentSelection struct {
	Group  string   `json:"group,omitempty" validate:"required_without=Files,omitempty,groupname"`
	From   string   `json:"from,omitempty" validate:"omitempty,isodate"`
	To     string   `json:"to,omitempty" validate:"omitempty,isodate"`
	Files  []string `json:"files,omitempty" validate:"required_without=Group,omitempty,dive,required,docref"`
	Labels []string `json:"labels,omitempty" validate:"omitempty,dive,required"`
}

// ExportOptions controls the representation of a result
type ExportOptions struct {
	Format string `json:"format,omitempty" validate:"omitempty,oneof=json tsv csv"`
	// SaveAs writes the table under the reports directory as well
	SaveAs string `json:"save_as,omitempty" validate:"omitempty,filename"`
}

// MergeRequest asks for an entity-indexed table of one metric across documents
type MergeRequest struct {
	DocumentSelection
	ExportOptions
	EntityKey string `json:"entity_key,omitempty" validate:"omitempty,max=128"`
	Metric    string `json:"metric,omitempty" validate:"omitempty,max=64"`
}

// PivotRequest asks for the group-intensity matrix of the selected documents
type PivotRequest struct {
	DocumentSelection
	ExportOptions
}

// CorrelationRequest asks for the document correlation matrix
type CorrelationRequest struct {
	DocumentSelection
	ExportOptions
}

// MergeResponse wraps a merged table
type MergeResponse struct {
	Table    *domain.MergedTable `json:"table"`
	SavedTo  string              `json:"saved_to,omitempty"`
	TraceID  string              `json:"trace_id,omitempty"`
	Warnings []string            `json:"warnings,omitempty"`
}

// PivotResponse wraps a group-intensity matrix
type PivotResponse struct {
	Matrix  *domain.GroupIntensityMatrix `json:"matrix"`
	Skipped []string                     `json:"skipped"`
	SavedTo string                       `json:"saved_to,omitempty"`
	TraceID string                       `json:"trace_id,omitempty"`
}

// CorrelationResponse wraps a correlation matrix and the pivot it was computed from
type CorrelationResponse struct {
	Correlation *domain.CorrelationMatrix    `json:"correlation"`
	Matrix      *domain.GroupIntensityMatrix `json:"matrix"`
	Skipped     []string                     `json:"skipped"`
	SavedTo     string                       `json:"saved_to,omitempty"`
	TraceID     string                       `json:"trace_id,omitempty"`
}

// MetricInfo describes one entry of the aggregation strategy table
type MetricInfo struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Reduce  string   `json:"reduce"`
	Numeric bool     `json:"numeric"`
	Empty   string   `json:"empty"`
}

// MetricsCatalogResponse lists the supported metrics
type MetricsCatalogResponse struct {
	Metrics          []MetricInfo `json:"metrics"`
	DefaultMetric    string       `json:"default_metric"`
	DefaultEntityKey string       `json:"default_entity_key"`
}

// DocumentInfo describes one document or group folder
type DocumentInfo struct {
	Name  string `json:"name"`
	Label string `json:"label,omitempty"`
	// Ref is what DocumentSelection.Files expects: "group/name" for a
	// document, the folder name for a group
	Ref     string `json:"ref"`
	Size    int64  `json:"size"`
	ModTime string `json:"mod_time"`
	Date    string `json:"date,omitempty"`
}

// DocumentListResponse lists groups or documents
type DocumentListResponse struct {
	Group     string         `json:"group,omitempty"`
	Documents []DocumentInfo `json:"documents"`
	Count     int            `json:"count"`
}
