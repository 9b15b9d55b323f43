package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathanmorenozapico-source/Tsv-Project/internal/config"
	apperrors "github.com/jonathanmorenozapico-source/Tsv-Project/internal/errors"
)

// Manager resolves document groups, the folders under the data directory
// that hold one run per file
type Manager struct {
	paths     *config.Paths
	discovery *Discovery
	logger    *slog.Logger
}

// NewManager creates a new file manager instance
func NewManager(paths *config.Paths, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		paths:     paths,
		discovery: NewDiscovery(paths.DataDir, config.DocumentExtension),
		logger:    logger,
	}
}

// ListGroups returns the group folders under the data directory. A missing
// data directory simply has no groups.
func (m *Manager) ListGroups() ([]FileInfo, error) {
	if _, err := os.Stat(m.paths.DataDir); os.IsNotExist(err) {
		return []FileInfo{}, nil
	}
	groups, err := m.discovery.ListDirectories(m.paths.DataDir)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to list groups", err)
	}
	if groups == nil {
		groups = []FileInfo{}
	}
	return groups, nil
}

// GroupDocuments lists a group's documents sorted by name, keeping only
// those whose date prefix falls within [from, to]
func (m *Manager) GroupDocuments(group string, from, to time.Time) ([]FileInfo, error) {
	dir, err := m.paths.GroupDir(group)
	if err != nil {
		return nil, apperrors.NewAppValidationError(err.Error())
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrGroupNotFound, group)
	}

	docs, err := m.discovery.FindDocuments(dir)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to list documents", err).
			WithContext("group", group)
	}

	filtered := FilterByFilenameDate(docs, from, to)
	m.logger.Debug("Resolved group documents",
		slog.String("group", group),
		slog.Int("found", len(docs)),
		slog.Int("selected", len(filtered)))

	if filtered == nil {
		filtered = []FileInfo{}
	}
	return filtered, nil
}

// ResolveDocument maps a client document reference ("group/name.tsv") to a
// path inside the data directory. A reference that escapes the data
// directory, directly or through a symlink, is a validation error.
func (m *Manager) ResolveDocument(ref string) (string, error) {
	path, err := m.paths.DocumentPath(ref)
	if err != nil {
		return "", apperrors.NewAppValidationError(err.Error()).WithContext("document", ref)
	}

	// Missing documents are reported by the parser as not found
	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		return path, nil
	}
	root, err := filepath.EvalSymlinks(m.paths.DataDir)
	if err != nil {
		root = m.paths.DataDir
	}
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		m.logger.Warn("Rejected document outside data directory",
			slog.String("document", ref))
		return "", apperrors.NewAppValidationError(
			fmt.Sprintf("document reference %q is outside the data directory", ref)).
			WithContext("document", ref)
	}
	return path, nil
}

// ResolveDocuments resolves every reference, failing on the first bad one
func (m *Manager) ResolveDocuments(refs []string) ([]string, error) {
	paths := make([]string, 0, len(refs))
	for _, ref := range refs {
		path, err := m.ResolveDocument(ref)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// ReportPath returns where a named report is written
func (m *Manager) ReportPath(name string) string {
	return m.paths.GetReportPath(name)
}
