package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/csheth/studyreader/pkg/logger"
)

// JSONFile keeps every key in a single JSON object on disk and rewrites the
// whole file on each mutation.
type JSONFile struct {
	mu     sync.Mutex
	path   string
	values map[string]string
	closed bool
}

// OpenJSON loads the store at path. A file that does not parse is moved
// aside to path+".corrupt" and the store starts empty.
func OpenJSON(path string, opts ...Option) (*JSONFile, error) {
	o := newOptions(opts)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	values, err := loadValues(path, o.log)
	if err != nil {
		return nil, err
	}
	return &JSONFile{path: path, values: values}, nil
}

func (s *JSONFile) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", false, ErrClosed
	}
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *JSONFile) Set(key, value string) error {
	return s.Batch(map[string]string{key: value})
}

func (s *JSONFile) Batch(values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	next := make(map[string]string, len(s.values)+len(values))
	for k, v := range s.values {
		next[k] = v
	}
	for k, v := range values {
		next[k] = v
	}
	if err := writeValues(s.path, next); err != nil {
		return err
	}
	s.values = next
	return nil
}

func (s *JSONFile) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if _, ok := s.values[key]; !ok {
		return nil
	}
	next := make(map[string]string, len(s.values))
	for k, v := range s.values {
		if k != key {
			next[k] = v
		}
	}
	if err := writeValues(s.path, next); err != nil {
		return err
	}
	s.values = next
	return nil
}

func (s *JSONFile) Keys() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *JSONFile) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func loadValues(path string, log *logger.Logger) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]string{}, nil
	}
	values := map[string]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		aside := path + ".corrupt"
		if rerr := os.Rename(path, aside); rerr != nil {
			return nil, errors.Join(err, rerr)
		}
		log.Warn("Store %s is unreadable (%v); moved it to %s and starting empty", path, err, aside)
		return map[string]string{}, nil
	}
	return values, nil
}

// writeValues goes through a temp file so a crash mid-write leaves the old
// file intact.
func writeValues(path string, values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
