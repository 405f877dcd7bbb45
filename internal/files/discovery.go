package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"ratingprep/internal/errors"
	"ratingprep/internal/validation"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery finds ratings sources on disk
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance. Relative directories are
// resolved against basePath.
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// FindSources lists the files in dir the loader has a reader for, oldest first.
// Hidden files and spreadsheet lock files are ignored.
func (d *Discovery) FindSources(dir string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
			continue
		}
		if !validation.IsKnownInputExtension(filepath.Ext(name)) {
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

	sort.Slice(files, func(i, j int) bool {
		if files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].Name < files[j].Name
		}
		return files[i].ModTime.Before(files[j].ModTime)
	})

	return files, nil
}

// ResolveInput returns path unchanged when it is not a directory. For a
// directory it returns the most recently modified source inside it.
func (d *Discovery) ResolveInput(path string) (string, error) {
	fullPath := d.resolve(path)

	info, err := os.Stat(fullPath)
	if err != nil || !info.IsDir() {
		return path, nil
	}

	sources, err := d.FindSources(fullPath)
	if err != nil {
		return "", errors.NewSourceNotFoundError(path, err)
	}
	latest, ok := GetLatestFile(sources)
	if !ok {
		return "", errors.NewSourceNotFoundError(path, fmt.Errorf("directory holds no csv, tsv, txt or xlsx file"))
	}
	return latest.Path, nil
}

func (d *Discovery) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || d.basePath == "" {
		return path
	}
	return filepath.Join(d.basePath, path)
}

// GetLatestFile returns the most recently modified file from a list. Ties go
// to the file listed last.
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
