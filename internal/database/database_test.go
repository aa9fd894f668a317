package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/enixma/dashboard/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	cfg := config.DBConfig{
		Host:     "db",
		Port:     "5432",
		Username: "u",
		Password: "p",
		Database: "enixma",
	}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=enixma sslmode=disable", DSN(cfg))

	cfg.SSLMode = "require"
	assert.Contains(t, DSN(cfg), "sslmode=require")
}

func TestGetSqliteDB_Memory(t *testing.T) {
	db, err := GetSqliteDB("", zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, db.Exec("CREATE TABLE t (v INTEGER)").Error)
	require.NoError(t, db.Exec("INSERT INTO t (v) VALUES (1)").Error)

	var n int64
	require.NoError(t, db.Raw("SELECT COUNT(*) FROM t").Scan(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestDumpMemoryDBToDisk(t *testing.T) {
	db, err := GetSqliteDB("", zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE t (v INTEGER)").Error)

	path := filepath.Join(t.TempDir(), "dump.db")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	require.NoError(t, DumpMemoryDBToDisk(db, path))

	disk, err := GetSqliteDB(path, zerolog.Nop())
	require.NoError(t, err)
	assert.True(t, disk.Migrator().HasTable("t"))
}

func TestDumpMemoryDBToDisk_NoPath(t *testing.T) {
	db, err := GetSqliteDB("", zerolog.Nop())
	require.NoError(t, err)
	assert.ErrorIs(t, DumpMemoryDBToDisk(db, ""), ErrNoDumpPath)
}
