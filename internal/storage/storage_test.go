package storage_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/enixma/dashboard/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBackend struct {
	records map[string]json.RawMessage
	err     error
}

func (s *stubBackend) Init() error  { return nil }
func (s *stubBackend) Close() error { return nil }

func (s *stubBackend) Load(name string) (json.RawMessage, error) {
	if s.err != nil {
		return nil, s.err
	}
	d, ok := s.records[name]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return d, nil
}

func (s *stubBackend) Save(name string, data json.RawMessage) error {
	s.records[name] = data
	return nil
}

func (s *stubBackend) Delete(name string) error {
	delete(s.records, name)
	return nil
}

func (s *stubBackend) All() (map[string]json.RawMessage, error) {
	return s.records, nil
}

func TestExists(t *testing.T) {
	b := &stubBackend{records: map[string]json.RawMessage{"firstPoly": json.RawMessage(`[]`)}}

	ok, err := storage.Exists(b, "firstPoly")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = storage.Exists(b, "secondPoly")
	require.NoError(t, err)
	assert.False(t, ok)

	boom := errors.New("disk on fire")
	b.err = boom
	_, err = storage.Exists(b, "firstPoly")
	assert.ErrorIs(t, err, boom)
}
