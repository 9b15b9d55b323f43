package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Paths contains all the application paths
// This is the single source of truth for ALL file paths in the application
type Paths struct {
	ExecutableDir string
	BaseDir       string
	DataDir       string
	ReportsDir    string
	LogsDir       string
}

// GetPaths returns the default application paths relative to the executable location
func GetPaths() (*Paths, error) {
	return ResolvePaths(PathsConfig{
		DataDir:    DefaultDataDir,
		ReportsDir: DefaultReportsDir,
		LogsDir:    DefaultLogsDir,
	})
}

// ResolvePaths turns configured paths into absolute ones. Relative entries are
// joined onto BaseDir, and an empty BaseDir means the executable directory.
func ResolvePaths(cfg PathsConfig) (*Paths, error) {
	exeDir, err := executableDir()
	if err != nil {
		return nil, err
	}

	base := cfg.BaseDir
	if base == "" {
		base = exeDir
	}
	base, err = filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	resolve := func(p, fallback string) string {
		if p == "" {
			p = fallback
		}
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Join(base, p)
	}

	return &Paths{
		ExecutableDir: exeDir,
		BaseDir:       base,
		DataDir:       resolve(cfg.DataDir, DefaultDataDir),
		ReportsDir:    resolve(cfg.ReportsDir, DefaultReportsDir),
		LogsDir:       resolve(cfg.LogsDir, DefaultLogsDir),
	}, nil
}

func executableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %v", err)
	}

	// Resolve symlinks to get the actual executable location
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable symlinks: %v", err)
	}
	return filepath.Dir(exe), nil
}

// EnsureDirectories creates all necessary directories
func (p *Paths) EnsureDirectories() error {
	dirs := []string{
		p.DataDir,
		p.ReportsDir,
		p.LogsDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GroupDir returns the folder holding a document group. Group names are single
// path elements; anything that would escape DataDir is rejected.
func (p *Paths) GroupDir(group string) (string, error) {
	name := strings.TrimSpace(group)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid group name %q", group)
	}
	return filepath.Join(p.DataDir, name), nil
}

// DocumentPath maps a document reference such as "lab-a/2024-01-01_run1.tsv"
// to a file under DataDir. References are slash-separated and relative;
// absolute paths, ".." elements and anything resolving outside DataDir are
// rejected.
func (p *Paths) DocumentPath(ref string) (string, error) {
	if ref == "" || strings.ContainsAny(ref, "\\\x00") || strings.HasPrefix(ref, "/") ||
		filepath.IsAbs(ref) || filepath.VolumeName(ref) != "" {
		return "", fmt.Errorf("invalid document reference %q", ref)
	}
	for _, elem := range strings.Split(ref, "/") {
		if elem == ".." {
			return "", fmt.Errorf("invalid document reference %q", ref)
		}
	}

	path := filepath.Join(p.DataDir, filepath.FromSlash(ref))
	rel, err := filepath.Rel(p.DataDir, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("document reference %q is outside the data directory", ref)
	}
	return path, nil
}

// GetReportPath returns the full path for a report file
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filepath.Base(filename))
}

// GetLogPath returns the full path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filepath.Base(filename))
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LogPathResolution logs the resolved paths at debug level
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("Resolved application paths",
		slog.String("executable_dir", p.ExecutableDir),
		slog.String("base_dir", p.BaseDir),
		slog.String("data_dir", p.DataDir),
		slog.String("reports_dir", p.ReportsDir),
		slog.String("logs_dir", p.LogsDir))
}
