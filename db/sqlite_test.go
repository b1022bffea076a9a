package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termfx/typealign/models"
)

// TestConnectMigrates tests connection and schema creation
func TestConnectMigrates(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "typealign.db")

	conn, err := Connect(dsn, false)
	require.NoError(t, err)

	assert.True(t, conn.Migrator().HasTable(&models.Run{}))
	assert.True(t, conn.Migrator().HasTable(&models.UnresolvedType{}))
}

// TestRunPersistence tests a run report round trip
func TestRunPersistence(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "typealign.db")
	conn, err := Connect(dsn, false)
	require.NoError(t, err)

	run := models.Run{
		ID:              models.NewID(),
		InputHeader:     "input.h",
		TargetHeader:    "target.h",
		TargetCount:     3,
		ResolvedCount:   2,
		UnresolvedCount: 1,
		Unresolved: []models.UnresolvedType{
			{Kind: "class", Name: "Ghost"},
		},
	}
	run.Unresolved[0].RunID = run.ID
	require.NoError(t, conn.Create(&run).Error)

	var loaded models.Run
	require.NoError(t, conn.Preload("Unresolved").First(&loaded, "id = ?", run.ID).Error)
	assert.Equal(t, "target.h", loaded.TargetHeader)
	require.Len(t, loaded.Unresolved, 1)
	assert.Equal(t, "Ghost", loaded.Unresolved[0].Name)
}

// TestIsURL tests DSN classification
func TestIsURL(t *testing.T) {
	assert.True(t, isURL("libsql://db.example.turso.io"))
	assert.True(t, isURL("https://db.example.turso.io"))
	assert.False(t, isURL("/tmp/typealign.db"))
	assert.False(t, isURL("typealign.db"))
}
