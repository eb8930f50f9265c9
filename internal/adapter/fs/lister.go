package fs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"ragpipe/internal/domain"
	"ragpipe/internal/port"
)

// Lister returns the regular files directly inside a directory. Nested
// directories are not descended into.
type Lister struct {
	includes []string
	excludes []string
}

func NewLister(includes, excludes []string) *Lister {
	if len(includes) == 0 {
		includes = []string{"*"}
	}
	return &Lister{
		includes: includes,
		excludes: excludes,
	}
}

// Validate checks that every pattern compiles.
func (l *Lister) Validate() error {
	for _, p := range append(append([]string{}, l.includes...), l.excludes...) {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("%w: invalid file pattern %q", domain.ErrConfiguration, p)
		}
	}
	return nil
}

// List returns matching files in lexical order of their names.
func (l *Lister) List(dir string) ([]port.FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %v", domain.ErrLoad, dir, err)
	}

	var files []port.FileInfo
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if !l.shouldInclude(name) || l.shouldExclude(name) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		files = append(files, port.FileInfo{
			Name:    name,
			Path:    filepath.Join(dir, name),
			ModTime: info.ModTime().Unix(),
			Size:    info.Size(),
		})
	}
	return files, nil
}

func (l *Lister) shouldInclude(name string) bool {
	for _, pattern := range l.includes {
		matched, err := doublestar.Match(pattern, name)
		if err == nil && matched {
			return true
		}
	}
	return false
}

func (l *Lister) shouldExclude(name string) bool {
	for _, pattern := range l.excludes {
		matched, err := doublestar.Match(pattern, name)
		if err == nil && matched {
			return true
		}
	}
	return false
}
