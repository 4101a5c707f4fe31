// Package storage persists opaque state blobs under string keys. The list
// store writes its whole snapshot as one blob on every change.
package storage

import (
	"fmt"
	"sync"
)

// Store loads and saves blobs.
type Store interface {
	// Load returns the blob for key, or nil with no error when it was never saved.
	Load(key string) ([]byte, error)
	// Save replaces the blob for key.
	Save(key string, value []byte) error
	// Close releases the backend.
	Close() error
}

// Open returns the backend named by backend ("bolt" or "file") at path.
func Open(backend, path string) (Store, error) {
	switch backend {
	case "bolt", "":
		return OpenBolt(path)
	case "file":
		return OpenFile(path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// Memory is an in-process Store. SaveErr and LoadErr inject failures.
type Memory struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	SaveErr error
	LoadErr error
	Saves   int
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

func (m *Memory) Load(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	v, ok := m.blobs[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (m *Memory) Save(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.blobs[key] = append([]byte(nil), value...)
	m.Saves++
	return nil
}

func (m *Memory) Close() error { return nil }
