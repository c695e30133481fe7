package files

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrNoDataFile is returned when a source directory holds no loadable file.
// It matches fs.ErrNotExist.
var ErrNoDataFile = fmt.Errorf("no data file found: %w", fs.ErrNotExist)

// DataExtensions are the file types the table loader reads.
var DataExtensions = []string{".xlsx", ".xlsm", ".csv"}

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath string
}

// NewDiscovery creates a discovery rooted at basePath. Relative paths are
// joined to it; an empty basePath uses the working directory.
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

func (d *Discovery) resolve(path string) string {
	if filepath.IsAbs(path) || d.basePath == "" {
		return path
	}
	return filepath.Join(d.basePath, path)
}

// FindDataFiles finds every loadable data file in dir, oldest first.
// Hidden files and Excel lock files (~$name.xlsx) are skipped.
func (d *Discovery) FindDataFiles(dir string) ([]FileInfo, error) {
	return d.find(dir, func(name string) bool {
		return IsDataFile(name)
	})
}

// FindFilesByPattern finds data files in dir whose names match a glob
// pattern such as "52week_high_*.xlsx", oldest first.
func (d *Discovery) FindFilesByPattern(dir, pattern string) ([]FileInfo, error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return d.find(dir, func(name string) bool {
		ok, _ := filepath.Match(pattern, name)
		return ok && IsDataFile(name)
	})
}

func (d *Discovery) find(dir string, match func(string) bool) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !match(name) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		if files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].Name < files[j].Name
		}
		return files[i].ModTime.Before(files[j].ModTime)
	})
	return files, nil
}

// ResolveSource turns a configured source into a file path. A file is
// returned as is. For a directory the newest data file matching pattern
// (any data file when pattern is empty) is chosen.
func (d *Discovery) ResolveSource(source, pattern string) (string, error) {
	path := d.resolve(source)
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return path, nil
	}

	var files []FileInfo
	if pattern == "" {
		files, err = d.FindDataFiles(path)
	} else {
		files, err = d.FindFilesByPattern(path, pattern)
	}
	if err != nil {
		return "", err
	}

	latest, ok := GetLatestFile(files)
	if !ok {
		return "", fmt.Errorf("%w in %s", ErrNoDataFile, path)
	}
	return latest.Path, nil
}

// IsDataFile reports whether name looks like a loadable data file.
func IsDataFile(name string) bool {
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range DataExtensions {
		if ext == want {
			return true
		}
	}
	return false
}

// GetLatestFile returns the most recently modified file from a list. Ties
// go to the later entry.
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if !file.ModTime.Before(latest.ModTime) {
			latest = file
		}
	}
	return latest, true
}
