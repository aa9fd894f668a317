package streaming

import (
	"encoding/json"
	"testing"

	"github.com/enixma/dashboard/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvelope(t *testing.T) {
	env, err := NewEnvelope(TypeCursor, CursorPayload{Cursor: core.CursorGrab})
	require.NoError(t, err)

	raw, err := json.Marshal(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"cursor","payload":{"cursor":"grab"}}`, string(raw))
}

func TestNewEnvelope_NilPayload(t *testing.T) {
	env, err := NewEnvelope(TypeSnapshotRequest, nil)
	require.NoError(t, err)

	raw, err := json.Marshal(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"snapshot"}`, string(raw))
}

func TestNewEnvelope_Unencodable(t *testing.T) {
	_, err := NewEnvelope(TypeStats, make(chan int))
	assert.Error(t, err)
}

func TestPointerPayload_Decode(t *testing.T) {
	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(`{"type":"pointer","payload":{"kind":"down","x":12.5,"y":40}}`), &env))
	assert.Equal(t, TypePointer, env.Type)

	var p PointerPayload
	require.NoError(t, json.Unmarshal(env.Payload, &p))
	assert.Equal(t, core.PointerDown, p.Kind)
	assert.Equal(t, 12.5, p.X)
	assert.Equal(t, 40.0, p.Y)
}
