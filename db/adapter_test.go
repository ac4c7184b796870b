package db

import (
	"path/filepath"
	"testing"

	"github.com/kasuganosora/idlerpg/config"
	"github.com/kasuganosora/idlerpg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_Memory(t *testing.T) {
	db, err := Open(config.DatabaseConfig{Mode: ModeMemory})
	require.NoError(t, err)
	require.NoError(t, model.AutoMigrate(db))
	assert.True(t, db.Migrator().HasTable(&model.SaveSlot{}))
}

func TestOpen_SQLiteCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saves", "idle.db")
	db, err := Open(config.DatabaseConfig{Mode: ModeSQLite, SQLitePath: path})
	require.NoError(t, err)
	require.NoError(t, model.AutoMigrate(db))
	assert.FileExists(t, path)
}

func TestOpen_UnknownMode(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Mode: "postgres"})
	assert.ErrorContains(t, err, "unknown mode")
}
