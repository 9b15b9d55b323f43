package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"

	"github.com/go-chi/render"
)

// Reconciliation errors (sentinels matched with errors.Is)
var (
	ErrSchemaResolution    = errors.New("schema resolution failed")
	ErrMetricColumnMissing = errors.New("metric column not found")
	ErrUnknownMetric       = errors.New("unknown metric")
	ErrArgumentCount       = errors.New("argument count mismatch")
	ErrColumnNotFound      = errors.New("column not found")
	ErrTooFewDocuments     = errors.New("too few documents")
	ErrGroupNotFound       = errors.New("group not found")
)

// SchemaResolutionError is returned when a table has no columns to resolve a role against
type SchemaResolutionError struct {
	File       string
	Role       string
	Candidates []string
}

func (e *SchemaResolutionError) Error() string {
	return fmt.Sprintf("could not find a valid %s column (tried: %s and the first column) in %s: file has no columns",
		e.Role, strings.Join(e.Candidates, ", "), e.File)
}

// Is matches ErrSchemaResolution
func (e *SchemaResolutionError) Is(target error) bool {
	return target == ErrSchemaResolution
}

// MetricColumnNotFoundError is returned when none of a metric's source columns exist in a file
type MetricColumnNotFoundError struct {
	File       string
	Metric     string
	Candidates []string
}

func (e *MetricColumnNotFoundError) Error() string {
	return fmt.Sprintf("for metric '%s', none of the expected columns (%s) were found in %s",
		e.Metric, strings.Join(e.Candidates, ", "), e.File)
}

// Is matches ErrMetricColumnMissing
func (e *MetricColumnNotFoundError) Is(target error) bool {
	return target == ErrMetricColumnMissing
}

// UnknownMetricError is returned for metric names missing from the strategy registry
type UnknownMetricError struct {
	Metric string
	Valid  []string
}

func (e *UnknownMetricError) Error() string {
	return fmt.Sprintf("unknown metric: '%s'. Valid metrics are: %s", e.Metric, strings.Join(e.Valid, ", "))
}

// Is matches ErrUnknownMetric
func (e *UnknownMetricError) Is(target error) bool {
	return target == ErrUnknownMetric
}

// ArgumentCountError is returned when the number of labels differs from the number of files
type ArgumentCountError struct {
	Files  int
	Labels int
}

func (e *ArgumentCountError) Error() string {
	return fmt.Sprintf("the number of files (%d) must match the number of column labels (%d)", e.Files, e.Labels)
}

// Is matches ErrArgumentCount
func (e *ArgumentCountError) Is(target error) bool {
	return target == ErrArgumentCount
}

// FileError attaches the originating file name to a per-file failure
type FileError struct {
	File string
	Op   string
	Err  error
}

func (e *FileError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("error processing file %s: %v", e.File, e.Err)
	}
	return fmt.Sprintf("error processing file %s (%s): %v", e.File, e.Op, e.Err)
}

// Unwrap exposes the underlying cause
func (e *FileError) Unwrap() error {
	return e.Err
}

// WrapFile attaches a file name unless err already carries one
func WrapFile(file, op string, err error) error {
	if err == nil {
		return nil
	}
	var fe *FileError
	if errors.As(err, &fe) {
		return err
	}
	return &FileError{File: file, Op: op, Err: err}
}

// FailedFile returns the file name carried by err, if any
func FailedFile(err error) (string, bool) {
	var fe *FileError
	if errors.As(err, &fe) {
		return fe.File, true
	}
	return "", false
}

// ProblemDetails implements RFC 7807 Problem Details for HTTP APIs
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	// Additional fields for extensibility
	Extensions map[string]interface{} `json:"-"`
}

// Render implements the render.Renderer interface
func (pd *ProblemDetails) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, pd.Status)
	return nil
}

// MarshalJSON custom marshaler to include extensions
func (pd *ProblemDetails) MarshalJSON() ([]byte, error) {
	data := make(map[string]interface{})

	data["type"] = pd.Type
	data["title"] = pd.Title
	data["status"] = pd.Status

	if pd.Detail != "" {
		data["detail"] = pd.Detail
	}
	if pd.Instance != "" {
		data["instance"] = pd.Instance
	}

	for k, v := range pd.Extensions {
		data[k] = v
	}

	return json.Marshal(data)
}

// NewProblemDetails creates a new RFC 7807 compliant error
func NewProblemDetails(status int, problemType, title, detail, instance string) *ProblemDetails {
	return &ProblemDetails{
		Type:       problemType,
		Title:      title,
		Status:     status,
		Detail:     detail,
		Instance:   instance,
		Extensions: make(map[string]interface{}),
	}
}

// WithExtension adds an extension field to the problem details
func (pd *ProblemDetails) WithExtension(key string, value interface{}) *ProblemDetails {
	pd.Extensions[key] = value
	return pd
}

// reconcileErrorToProblem maps reconciliation errors to problem details.
// The failing file name and the underlying cause are surfaced verbatim.
func reconcileErrorToProblem(err error, instance string) (*ProblemDetails, bool) {
	var (
		unknown  *UnknownMetricError
		argCount *ArgumentCountError
		schema   *SchemaResolutionError
		metric   *MetricColumnNotFoundError
	)

	var problem *ProblemDetails
	switch {
	case errors.As(err, &unknown):
		problem = NewProblemDetails(http.StatusBadRequest, TypeUnknownMetric, "Unknown Metric", err.Error(), instance).
			WithExtension("valid_metrics", unknown.Valid)
	case errors.As(err, &argCount):
		problem = NewProblemDetails(http.StatusBadRequest, TypeArgumentCount, "Argument Count Mismatch", err.Error(), instance).
			WithExtension("files", argCount.Files).
			WithExtension("labels", argCount.Labels)
	case errors.As(err, &schema):
		problem = NewProblemDetails(http.StatusUnprocessableEntity, TypeSchemaResolution, "Schema Resolution Failed", err.Error(), instance)
	case errors.As(err, &metric):
		problem = NewProblemDetails(http.StatusUnprocessableEntity, TypeMetricColumn, "Metric Column Not Found", err.Error(), instance).
			WithExtension("metric", metric.Metric).
			WithExtension("candidates", metric.Candidates)
	case errors.Is(err, ErrTooFewDocuments):
		problem = NewProblemDetails(http.StatusUnprocessableEntity, TypeValidation, "Too Few Documents", err.Error(), instance)
	case errors.Is(err, ErrGroupNotFound):
		problem = NewProblemDetails(http.StatusNotFound, TypeDataNotFound, "Group Not Found", err.Error(), instance)
	case errors.Is(err, fs.ErrNotExist):
		var fe *FileError
		if !errors.As(err, &fe) {
			return nil, false
		}
		problem = NewProblemDetails(http.StatusNotFound, TypeDataNotFound, "Document Not Found",
			fmt.Sprintf("document %s does not exist", fe.File), instance)
	default:
		var fe *FileError
		if !errors.As(err, &fe) {
			return nil, false
		}
		problem = NewProblemDetails(http.StatusUnprocessableEntity, TypeDataCorrupted, "File Processing Failed", err.Error(), instance)
	}

	if file, ok := FailedFile(err); ok {
		problem.WithExtension("file", file)
	}
	return problem, true
}
