// Package drafts keeps small text drafts, such as the cover letter being
// written, in a local YAML file so they survive between sessions.
package drafts

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"applytrack/internal/errors"

	"gopkg.in/yaml.v3"
)

// CoverLetterKey is the key the cover letter draft is stored under.
const CoverLetterKey = "coverLetter"

// Store is a key/value draft file. Values are cached after the first read;
// Reload picks up edits made by other processes.
type Store struct {
	path string

	mu     sync.RWMutex
	values map[string]string
	loaded bool
}

// NewStore creates a draft store backed by the YAML file at path. The file
// and its directory are created on the first Set.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file
func (s *Store) Path() string {
	return s.path
}

// Get returns the draft stored under key
func (s *Store) Get(key string) (string, bool, error) {
	if err := s.ensureLoaded(); err != nil {
		return "", false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

// Set stores value under key and writes the file
func (s *Store) Set(key, value string) error {
	if err := s.ensureLoaded(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]string, len(s.values)+1)
	for k, v := range s.values {
		next[k] = v
	}
	next[key] = value

	if err := s.write(next); err != nil {
		return err
	}
	s.values = next
	return nil
}

// Reload re-reads the file, replacing the cached values
func (s *Store) Reload() error {
	values, err := s.read()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.values = values
	s.loaded = true
	s.mu.Unlock()
	return nil
}

func (s *Store) ensureLoaded() error {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return nil
	}
	return s.Reload()
}

// read returns the file contents; a missing file is an empty store.
func (s *Store) read() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeDraftUnavailable,
			"failed to read drafts file", err).WithContext("path", s.path)
	}

	values := map[string]string{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, errors.NewIOError(errors.ErrCodeDraftUnavailable,
			"drafts file is not a YAML mapping of strings", err).WithContext("path", s.path)
	}
	if values == nil {
		values = map[string]string{}
	}
	return values, nil
}

// write replaces the file atomically through a temp file in the same directory.
func (s *Store) write(values map[string]string) error {
	data, err := yaml.Marshal(values)
	if err != nil {
		return errors.NewInternalError(errors.ErrCodeDraftUnavailable, "failed to encode drafts", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.NewIOError(errors.ErrCodeFileWriteFailed,
			fmt.Sprintf("failed to create drafts directory %s", dir), err)
	}

	tmp, err := os.CreateTemp(dir, ".drafts-*.yaml")
	if err != nil {
		return errors.NewIOError(errors.ErrCodeFileWriteFailed, "failed to create temporary drafts file", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.NewIOError(errors.ErrCodeFileWriteFailed, "failed to write drafts file", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.NewIOError(errors.ErrCodeFileWriteFailed, "failed to write drafts file", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return errors.NewIOError(errors.ErrCodeFileWriteFailed, "failed to replace drafts file", err).
			WithContext("path", s.path)
	}
	return nil
}
