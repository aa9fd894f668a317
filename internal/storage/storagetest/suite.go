// Package storagetest holds the behaviour every storage.Backend must share.
package storagetest

import (
	"encoding/json"
	"testing"

	"github.com/enixma/dashboard/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises an initialised backend returned by open. open is called once
// per subtest.
func Run(t *testing.T, open func(t *testing.T) storage.Backend) {
	t.Helper()

	t.Run("load missing", func(t *testing.T) {
		b := open(t)
		_, err := b.Load("firstPoly")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("save then load", func(t *testing.T) {
		b := open(t)
		require.NoError(t, b.Save("firstPoly", json.RawMessage(`[{"x":1,"y":2}]`)))

		got, err := b.Load("firstPoly")
		require.NoError(t, err)
		assert.JSONEq(t, `[{"x":1,"y":2}]`, string(got))
	})

	t.Run("save replaces", func(t *testing.T) {
		b := open(t)
		require.NoError(t, b.Save("firstCrossline", json.RawMessage(`{"points":[],"direction":true}`)))
		require.NoError(t, b.Save("firstCrossline", json.RawMessage(`{"points":[],"direction":false}`)))

		got, err := b.Load("firstCrossline")
		require.NoError(t, err)
		assert.JSONEq(t, `{"points":[],"direction":false}`, string(got))
	})

	t.Run("delete", func(t *testing.T) {
		b := open(t)
		require.NoError(t, b.Save("secondPoly", json.RawMessage(`[]`)))
		require.NoError(t, b.Delete("secondPoly"))

		_, err := b.Load("secondPoly")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, b.Delete("secondPoly"), storage.ErrNotFound)
	})

	t.Run("scalar records", func(t *testing.T) {
		b := open(t)
		for name, raw := range map[string]string{
			"confidence": `0.5`,
			"laneCount":  `3`,
			"enabled":    `true`,
			"label":      `"north"`,
			"cleared":    `null`,
		} {
			require.NoError(t, b.Save(name, json.RawMessage(raw)), name)
			got, err := b.Load(name)
			require.NoError(t, err, name)
			assert.JSONEq(t, raw, string(got), name)
		}

		all, err := b.All()
		require.NoError(t, err)
		assert.Len(t, all, 5)
		assert.JSONEq(t, `0.5`, string(all["confidence"]))
	})

	t.Run("all", func(t *testing.T) {
		b := open(t)
		require.NoError(t, b.Save("a", json.RawMessage(`1`)))
		require.NoError(t, b.Save("b", json.RawMessage(`{"k":"v"}`)))

		all, err := b.All()
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.JSONEq(t, `1`, string(all["a"]))
		assert.JSONEq(t, `{"k":"v"}`, string(all["b"]))
	})

	t.Run("load returns a copy", func(t *testing.T) {
		b := open(t)
		require.NoError(t, b.Save("a", json.RawMessage(`[1]`)))

		got, err := b.Load("a")
		require.NoError(t, err)
		got[1] = '9'

		again, err := b.Load("a")
		require.NoError(t, err)
		assert.Equal(t, `[1]`, string(again))
	})
}
