// Package cas implements the build stamp store that decides staleness
// across runs.
package cas

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/rex/internal/core/domain"
	"go.trai.ch/zerr"
)

// Store implements ports.StampStore using a flat JSON file.
type Store struct {
	path  string
	mu    sync.RWMutex
	cache map[string]domain.BuildStamp
}

// NewStore creates a new StampStore backed by the file at the given path.
func NewStore(path string) (*Store, error) {
	s := &Store{
		path:  filepath.Clean(path),
		cache: make(map[string]domain.BuildStamp),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.Wrap(err, "failed to read stamp store")
	}

	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, &s.cache); err != nil {
		return zerr.Wrap(err, "failed to unmarshal stamp store")
	}

	return nil
}

func (s *Store) save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(s.cache, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal stamp store")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return zerr.Wrap(err, "failed to create directory for stamp store")
	}

	//nolint:gosec // Path is cleaned and provided by trusted caller
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return zerr.Wrap(err, "failed to write stamp store")
	}

	return nil
}

// Get retrieves the stamp recorded for a target.
func (s *Store) Get(targetName string) (*domain.BuildStamp, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stamp, ok := s.cache[targetName]
	if !ok {
		return nil, nil
	}
	return &stamp, nil
}

// Record stamps the artifact at the given path and persists the result.
func (s *Store) Record(targetName, artifactPath string) (domain.BuildStamp, error) {
	info, err := os.Stat(artifactPath)
	if err != nil {
		return domain.BuildStamp{}, zerr.With(zerr.Wrap(err, "failed to stat artifact"), "path", artifactPath)
	}

	hash, err := hashFile(artifactPath)
	if err != nil {
		return domain.BuildStamp{}, err
	}

	stamp := domain.BuildStamp{
		TargetName: targetName,
		ModTime:    info.ModTime(),
		OutputHash: hash,
		Recorded:   time.Now(),
	}

	s.mu.Lock()
	s.cache[targetName] = stamp
	s.mu.Unlock()

	if err := s.save(); err != nil {
		return domain.BuildStamp{}, err
	}
	return stamp, nil
}

// UpToDate reports whether the artifact still matches its recorded
// stamp. A missing stamp or missing artifact means stale. The content
// hash is only consulted when the modification time moved, so the
// common unchanged case costs a single stat.
func (s *Store) UpToDate(targetName, artifactPath string) (bool, error) {
	stamp, err := s.Get(targetName)
	if err != nil {
		return false, err
	}
	if stamp == nil {
		return false, nil
	}

	info, err := os.Stat(artifactPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, zerr.With(zerr.Wrap(err, "failed to stat artifact"), "path", artifactPath)
	}

	if info.ModTime().Equal(stamp.ModTime) {
		return true, nil
	}

	hash, err := hashFile(artifactPath)
	if err != nil {
		return false, err
	}
	return hash == stamp.OutputHash, nil
}

func hashFile(path string) (string, error) {
	//nolint:gosec // Path is cleaned and provided by trusted caller
	f, err := os.Open(path)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to open artifact"), "path", path)
	}
	defer func() { _ = f.Close() }()

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to hash artifact"), "path", path)
	}
	return fmt.Sprintf("%016x", hasher.Sum64()), nil
}
