package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/jonathanmorenozapico-source/Tsv-Project/internal/errors"
)

// Sentinel causes for rejected documents
var (
	ErrDocumentMissing  = errors.New("document does not exist")
	ErrNotAFile         = errors.New("path is a directory, not a document")
	ErrTemporaryFile    = errors.New("temporary office lock file")
	ErrEmptyDocument    = errors.New("document is empty")
	ErrUnsupportedInput = errors.New("unsupported document extension")
)

// SupportedExtensions lists the document extensions the parser reads
var SupportedExtensions = []string{".tsv", ".txt", ".csv", ".xlsx", ".xlsm"}

// DocumentValidator checks input documents and output locations before a run
type DocumentValidator struct {
	logger *slog.Logger
}

// NewDocumentValidator creates a new document validator
func NewDocumentValidator(logger *slog.Logger) *DocumentValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentValidator{
		logger: logger,
	}
}

// ValidateDocuments checks every path and returns the first failure wrapped
// with the file name
func (v *DocumentValidator) ValidateDocuments(paths []string) error {
	for _, p := range paths {
		if err := v.ValidateDocument(p); err != nil {
			return apperrors.WrapFile(filepath.Base(p), "validate", err)
		}
	}
	v.logger.Debug("Documents validated", slog.Int("count", len(paths)))
	return nil
}

// ValidateDocument checks that path is a readable, non-empty document with
// a supported extension
func (v *DocumentValidator) ValidateDocument(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("Document does not exist", slog.String("file", path))
		return ErrDocumentMissing
	}
	if err != nil {
		v.logger.Error("Failed to stat document",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a document", slog.String("path", path))
		return ErrNotAFile
	}

	if strings.HasPrefix(filepath.Base(path), "~$") {
		v.logger.Warn("Rejecting temporary lock file", slog.String("file", path))
		return ErrTemporaryFile
	}
	if !supported(path) {
		v.logger.Error("Unsupported document extension",
			slog.String("file", path),
			slog.String("extension", filepath.Ext(path)))
		return fmt.Errorf("%w %q", ErrUnsupportedInput, filepath.Ext(path))
	}
	if info.Size() == 0 {
		return ErrEmptyDocument
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("Document is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("document is not readable: %w", err)
	}
	file.Close()

	v.logger.Debug("Document validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputDirectory ensures dir exists or can be created and is writable
func (v *DocumentValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	probe, err := os.CreateTemp(dir, ".write_test*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	probe.Close()
	os.Remove(probe.Name())

	v.logger.Debug("Output directory validated", slog.String("directory", dir))
	return nil
}

func supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SupportedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
