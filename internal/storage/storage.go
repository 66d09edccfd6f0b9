package storage

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/csheth/studyreader/internal/config"
	"github.com/csheth/studyreader/pkg/logger"
)

// Store is a flat string key/value store. Values are overwritten whole; Batch
// writes several keys in one durable step so related values never diverge.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Batch(values map[string]string) error
	Delete(key string) error
	Keys() ([]string, error)
	Close() error
}

type options struct {
	log *logger.Logger
}

type Option func(*options)

// WithLogger sets where a backend reports recoverable problems.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

func newOptions(opts []Option) options {
	o := options{log: logger.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Open builds the backend named by backend at path.
func Open(backend, path string, opts ...Option) (Store, error) {
	switch backend {
	case config.BackendJSON, "":
		return OpenJSON(path, opts...)
	case config.BackendSQLite:
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

var ErrClosed = errors.New("storage: store closed")

// Memory is an in-process Store used by tests and by sessions started without
// durable storage.
type Memory struct {
	mu     sync.Mutex
	values map[string]string
	closed bool
}

func NewMemory() *Memory {
	return &Memory{values: map[string]string{}}
}

func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return "", false, ErrClosed
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) Set(key, value string) error {
	return m.Batch(map[string]string{key: value})
}

func (m *Memory) Batch(values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	for k, v := range values {
		m.values[k] = v
	}
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	delete(m.values, key)
	return nil
}

func (m *Memory) Keys() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}
