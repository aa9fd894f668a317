package sqlitestorage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/enixma/dashboard/internal/config"
	"github.com/enixma/dashboard/internal/database"
	"github.com/enixma/dashboard/internal/storage"
	"github.com/enixma/dashboard/internal/storage/storagetest"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ storage.Backend = (*Backend)(nil)

func TestBackend(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Backend {
		b, err := New(config.SQLiteConfig{}, zerolog.Nop())
		require.NoError(t, err)
		require.NoError(t, b.Init())
		t.Cleanup(func() { _ = b.Close() })
		return b
	})
}

func TestClose_WritesFinalDump(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parameters.db")
	b, err := New(config.SQLiteConfig{DumpPath: path}, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, b.Init())

	require.NoError(t, b.Save("firstPoly", json.RawMessage(`[{"x":20,"y":20}]`)))
	require.NoError(t, b.Close())

	disk, err := database.GetSqliteDB(path, zerolog.Nop())
	require.NoError(t, err)

	var data string
	require.NoError(t, disk.Raw("SELECT data FROM parameters WHERE name = ?", "firstPoly").Scan(&data).Error)
	assert.JSONEq(t, `[{"x":20,"y":20}]`, data)
}

func TestDumpLoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parameters.db")
	b, err := New(config.SQLiteConfig{DumpPath: path, DumpInterval: 10 * time.Millisecond}, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, b.Init())
	t.Cleanup(func() { _ = b.Close() })

	require.NoError(t, b.Save("a", json.RawMessage(`1`)))
	assert.Eventually(t, func() bool {
		_, err := os.Stat(path)
		return err == nil
	}, time.Second, 10*time.Millisecond)
}

func TestClose_WithoutDumpPath(t *testing.T) {
	b, err := New(config.SQLiteConfig{}, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, b.Init())
	require.NoError(t, b.Close())
}
