// Package storage defines the record backends behind the parameter store
// emulator.
package storage

import (
	"encoding/json"
	"errors"
)

// ErrNotFound is returned when a named record does not exist.
var ErrNotFound = errors.New("record not found")

// Backend is the interface all storage implementations must satisfy.
// Records are opaque JSON documents keyed by name.
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Load returns the named record or ErrNotFound.
	Load(name string) (json.RawMessage, error)
	// Save creates or replaces the named record.
	Save(name string, data json.RawMessage) error
	// Delete removes the named record or returns ErrNotFound.
	Delete(name string) error
	// All returns every record keyed by name.
	All() (map[string]json.RawMessage, error)
}

// Exists reports whether b holds the named record.
func Exists(b Backend, name string) (bool, error) {
	_, err := b.Load(name)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}
