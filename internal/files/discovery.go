package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrNoMatches is returned by FindSources when the glob matches no file.
var ErrNoMatches = errors.New("no files match pattern")

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Source is an input file together with its batch label
type Source struct {
	FileInfo
	Label string
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) || d.basePath == "" {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}

// FindFilesByPattern finds regular files in dir matching a glob pattern,
// sorted by name.
func (d *Discovery) FindFilesByPattern(dir string, pattern string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)
	matches, err := filepath.Glob(filepath.Join(fullPath, pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
	}
	sort.Strings(matches)

	files := make([]FileInfo, 0, len(matches))
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, FileInfo{
			Path:    match,
			Name:    filepath.Base(match),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return files, nil
}

// FindSources finds the input files for dir and pattern and labels each one.
// It returns ErrNoMatches when nothing matches.
func (d *Discovery) FindSources(dir, pattern, labelPrefix, labelSuffix string) ([]Source, error) {
	found, err := d.FindFilesByPattern(dir, pattern)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoMatches, filepath.Join(d.resolve(dir), pattern))
	}

	sources := make([]Source, len(found))
	for i, f := range found {
		sources[i] = Source{FileInfo: f, Label: BatchLabel(f.Name, labelPrefix, labelSuffix)}
	}
	return sources, nil
}

// BatchLabel strips prefix and suffix from a file name,
// e.g. "Dataset_de_ventas_Enero.csv" gives "Enero".
func BatchLabel(name, prefix, suffix string) string {
	label := strings.TrimPrefix(name, prefix)
	return strings.TrimSuffix(label, suffix)
}

// TotalSize sums the size of the given files
func TotalSize(files []FileInfo) int64 {
	var total int64
	for _, f := range files {
		total += f.Size
	}
	return total
}
