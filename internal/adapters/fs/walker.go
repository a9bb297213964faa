// Package fs provides the filesystem adapter that resolves directory
// scan specifications into file listings.
package fs

import (
	"io/fs"
	"path/filepath"
	"strings"

	"go.trai.ch/rex/internal/core/domain"
	"go.trai.ch/rex/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ListingResolver = (*Lister)(nil)

// Lister implements ports.ListingResolver with filepath.WalkDir.
// The lexical walk order of WalkDir makes listings deterministic.
type Lister struct{}

// NewLister creates a new Lister.
func NewLister() *Lister {
	return &Lister{}
}

// Resolve enumerates the files matched by the scan specification.
func (l *Lister) Resolve(spec domain.DirScanSpec) ([]string, error) {
	files := make([]string, 0)

	err := filepath.WalkDir(spec.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path == spec.Path {
				return nil
			}
			if !spec.Recurse || isExcludedPath(path, spec.ExcludePaths) {
				return filepath.SkipDir
			}
			return nil
		}

		name := d.Name()
		if !matchesAny(spec.Patterns, name, true) {
			return nil
		}
		if matchesAny(spec.ExcludePatterns, name, false) {
			return nil
		}
		if isExcludedFile(path, spec.ExcludedFiles) {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to list directory"), "path", spec.Path)
	}

	return files, nil
}

// matchesAny matches a file base name against glob patterns.
// emptyMatches decides whether an empty pattern list means "match all"
// (include patterns) or "match none" (exclude patterns).
func matchesAny(patterns []string, name string, emptyMatches bool) bool {
	if len(patterns) == 0 {
		return emptyMatches
	}
	for _, pattern := range patterns {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}

func isExcludedPath(dir string, excluded []string) bool {
	for _, ex := range excluded {
		if filepath.Clean(dir) == filepath.Clean(ex) {
			return true
		}
	}
	return false
}

func isExcludedFile(path string, excluded []string) bool {
	for _, ex := range excluded {
		if filepath.Clean(path) == filepath.Clean(ex) {
			return true
		}
		// Bare file names exclude the file wherever it is found.
		if !strings.ContainsRune(ex, filepath.Separator) && filepath.Base(path) == ex {
			return true
		}
	}
	return false
}
