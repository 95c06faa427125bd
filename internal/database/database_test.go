package database

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clarityhq/authgate/internal/entities"
)

func TestNewDatabase(t *testing.T) {
	dbPath := "./test_database.db"
	defer os.Remove(dbPath)

	db, err := NewDatabase(dbPath)
	require.NoError(t, err)
	defer db.Close()

	// The user table must exist after migration.
	assert.True(t, db.DB.Migrator().HasTable(&entities.User{}))
}

func TestDatabase_Close(t *testing.T) {
	dbPath := "./test_database_close.db"
	defer os.Remove(dbPath)

	db, err := NewDatabase(dbPath)
	require.NoError(t, err)

	assert.NoError(t, db.Close())
}
