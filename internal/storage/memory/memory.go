// Package memory keeps parameter records in process memory.
package memory

import (
	"bytes"
	"encoding/json"
	"maps"
	"sync"

	"github.com/enixma/dashboard/internal/storage"
)

// Backend stores records in a map. Contents are lost on exit.
type Backend struct {
	records map[string]json.RawMessage
	mu      sync.RWMutex
}

// New creates a new memory backend
func New() *Backend {
	return &Backend{
		records: make(map[string]json.RawMessage),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// Load returns a copy of the named record.
func (b *Backend) Load(name string) (json.RawMessage, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	d, ok := b.records[name]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return bytes.Clone(d), nil
}

// Save stores a copy of data under name.
func (b *Backend) Save(name string, data json.RawMessage) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.records[name] = bytes.Clone(data)
	return nil
}

// Delete removes the named record.
func (b *Backend) Delete(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.records[name]; !ok {
		return storage.ErrNotFound
	}
	delete(b.records, name)
	return nil
}

// All returns a copy of every record.
func (b *Backend) All() (map[string]json.RawMessage, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := maps.Clone(b.records)
	for k, v := range out {
		out[k] = bytes.Clone(v)
	}
	return out, nil
}
