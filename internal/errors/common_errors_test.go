package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name        string
		appError    *AppError
		wantMessage string
	}{
		{
			name:        "error without cause",
			appError:    NewAppValidationError("entity key must not be blank"),
			wantMessage: "[VALIDATION] entity key must not be blank",
		},
		{
			name:        "error with cause",
			appError:    NewStorageError("failed to open document", fmt.Errorf("permission denied")),
			wantMessage: "[STORAGE] failed to open document: permission denied",
		},
		{
			name:        "not found",
			appError:    NewNotFoundError("group 'run-a'"),
			wantMessage: "[NOT_FOUND] group 'run-a' not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMessage, tt.appError.Error())
		})
	}
}

func TestAppError_Constructors(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name     string
		err      *AppError
		wantType ErrorType
	}{
		{"parsing", NewParsingError("bad row", cause), ErrTypeParsing},
		{"storage", NewStorageError("io", cause), ErrTypeStorage},
		{"config", NewConfigError("bad yaml", cause), ErrTypeConfig},
		{"export", NewExportError("write", cause), ErrTypeExport},
		{"validation", NewAppValidationError("bad"), ErrTypeValidation},
		{"not found", NewNotFoundError("x"), ErrTypeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.NotNil(t, tt.err.Context)
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("export: %w", NewExportError("write tsv", cause))

	assert.True(t, errors.Is(err, cause))

	var appErr *AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, ErrTypeExport, appErr.Type)
}

func TestAppError_WithContext(t *testing.T) {
	err := NewParsingError("bad row", nil).
		WithContext("document", "run1.tsv").
		WithContext("row", 7)

	assert.Equal(t, "run1.tsv", err.Context["document"])
	assert.Equal(t, 7, err.Context["row"])

	bare := &AppError{Type: ErrTypeStorage, Message: "x"}
	bare.WithContext("path", "/tmp")
	assert.Equal(t, "/tmp", bare.Context["path"])
}
