package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// DateLayout is the calendar-date prefix documents carry, e.g. 2024-03-01_run.tsv
const DateLayout = "2006-01-02"

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string    `json:"path"`
	Name    string    `json:"name"`
	Label   string    `json:"label"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
	IsDir   bool      `json:"is_dir"`

	// Date is the filename date prefix; zero when the name carries none
	Date time.Time `json:"date,omitempty"`
}

// HasDate reports whether the filename carried a date prefix
func (f FileInfo) HasDate() bool {
	return !f.Date.IsZero()
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath   string
	extensions []string
}

// NewDiscovery creates a new file discovery instance. Relative directories
// passed to its methods are resolved against basePath.
func NewDiscovery(basePath string, extensions ...string) *Discovery {
	if len(extensions) == 0 {
		extensions = []string{".tsv"}
	}
	return &Discovery{basePath: basePath, extensions: extensions}
}

// FindDocuments lists the documents of a folder sorted by name
func (d *Discovery) FindDocuments(dir string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !d.isDocument(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		name := entry.Name()
		date, _ := FilenameDate(name)
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Label:   LabelFor(name),
			Size:    info.Size(),
			ModTime: info.ModTime(),
			Date:    date,
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
	return files, nil
}

// ListDirectories lists all subdirectories in the specified directory, sorted by name
func (d *Discovery) ListDirectories(dir string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var dirs []FileInfo
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		dirs = append(dirs, FileInfo{
			Path:    filepath.Join(fullPath, entry.Name()),
			Name:    entry.Name(),
			Label:   entry.Name(),
			ModTime: info.ModTime(),
			IsDir:   true,
		})
	}

	sort.Slice(dirs, func(i, j int) bool {
		return dirs[i].Name < dirs[j].Name
	})
	return dirs, nil
}

func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) || d.basePath == "" {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}

func (d *Discovery) isDocument(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range d.extensions {
		if ext == want {
			return true
		}
	}
	return false
}

// FilenameDate parses the YYYY-MM-DD_ prefix of a file name
func FilenameDate(name string) (time.Time, bool) {
	base := filepath.Base(name)
	if len(base) <= len(DateLayout) || base[len(DateLayout)] != '_' {
		return time.Time{}, false
	}
	date, err := time.Parse(DateLayout, base[:len(DateLayout)])
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}

// FilterByFilenameDate keeps files whose date prefix falls within [from, to].
// A zero bound is open. Files without a date prefix survive only when both
// bounds are open.
func FilterByFilenameDate(files []FileInfo, from, to time.Time) []FileInfo {
	if from.IsZero() && to.IsZero() {
		return files
	}

	from = truncateDay(from)
	to = truncateDay(to)

	filtered := make([]FileInfo, 0, len(files))
	for _, file := range files {
		date, ok := FilenameDate(file.Name)
		if !ok {
			continue
		}
		if !from.IsZero() && date.Before(from) {
			continue
		}
		if !to.IsZero() && date.After(to) {
			continue
		}
		filtered = append(filtered, file)
	}
	return filtered
}

// ParseDateBound parses a YYYY-MM-DD filter bound; empty input is an open bound
func ParseDateBound(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	date, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return date, nil
}

func truncateDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// LabelFor returns a file's base name without its extension
func LabelFor(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Paths returns the path of every file in order
func Paths(files []FileInfo) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}

// Labels returns the label of every file in order
func Labels(files []FileInfo) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Label
	}
	return out
}
