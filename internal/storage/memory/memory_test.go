package memory

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/enixma/dashboard/internal/storage"
	"github.com/enixma/dashboard/internal/storage/storagetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Verify Backend implements storage.Backend interface
var _ storage.Backend = (*Backend)(nil)

func TestBackend(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Backend {
		b := New()
		require.NoError(t, b.Init())
		t.Cleanup(func() { _ = b.Close() })
		return b
	})
}

func TestSaveCopiesInput(t *testing.T) {
	b := New()
	data := json.RawMessage(`[1]`)
	require.NoError(t, b.Save("a", data))
	data[1] = '7'

	got, err := b.Load("a")
	require.NoError(t, err)
	assert.Equal(t, `[1]`, string(got))
}

func TestConcurrentAccess(t *testing.T) {
	b := New()
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("r%d", i%4)
			_ = b.Save(name, json.RawMessage(fmt.Sprintf(`%d`, i)))
			_, _ = b.Load(name)
			_, _ = b.All()
		}(i)
	}
	wg.Wait()

	all, err := b.All()
	require.NoError(t, err)
	assert.Len(t, all, 4)
}
