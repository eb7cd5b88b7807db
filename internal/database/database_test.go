package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conceptual-Machines/magda-compose/internal/models"
)

func TestConnectAndMigrate_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	db, err := Connect(context.Background(), "sqlite", path, false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	require.NoError(t, Migrate(db))
	assert.True(t, db.Migrator().HasTable(&models.HistoryRecord{}))

	// migrating twice is harmless
	require.NoError(t, Migrate(db))
}

func TestConnect_UnknownType(t *testing.T) {
	_, err := Connect(context.Background(), "mysql", "dsn", false)
	assert.ErrorContains(t, err, "unknown db type")
}
