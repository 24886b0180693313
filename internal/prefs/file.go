// Package prefs persists backdrop preferences to a YAML file.
package prefs

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"backdrop/internal/backdrop"
)

// FileStore is a backdrop.Store backed by a small YAML document. Every Set
// rewrites the whole file atomically via temp-file-then-rename.
type FileStore struct {
	path string

	mu     sync.Mutex
	values map[string]string
}

var _ backdrop.Store = (*FileStore)(nil)

// Open loads path if it exists. A missing file starts an empty store; the
// parent directory is created on the first Set. A file that does not parse
// is moved aside to path+".bad" and the store starts empty, so the engine
// falls back to its default preferences.
func Open(path string, log *slog.Logger) (*FileStore, error) {
	if log == nil {
		log = slog.Default()
	}
	s := &FileStore{path: path, values: make(map[string]string)}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("prefs: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &s.values); err != nil {
		log.Warn("preferences unreadable, using defaults", "path", path, "err", err)
		if rerr := os.Rename(path, path+".bad"); rerr != nil {
			log.Debug("moving bad preferences aside failed", "err", rerr)
		}
		s.values = make(map[string]string)
		return s, nil
	}
	if s.values == nil {
		s.values = make(map[string]string)
	}
	return s, nil
}

// Path returns the backing file.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.values[key]; ok && old == value {
		return nil
	}
	s.values[key] = value
	data, err := yaml.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("prefs: marshal: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("prefs: create directory %s: %w", dir, err)
	}
	if err := atomicWrite(s.path, data, dir); err != nil {
		return fmt.Errorf("prefs: write %s: %w", s.path, err)
	}
	return nil
}

func atomicWrite(path string, data []byte, tmpDir string) error {
	tmp, err := os.CreateTemp(tmpDir, ".prefs-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	success = true
	return nil
}
