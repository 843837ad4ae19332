package repository

import (
	"context"
	"path/filepath"
	"testing"

	"bandprep/internal/database"
)

// setupTestDB creates a throwaway sqlite database with the full schema
// applied. Tests using it are skipped in short mode.
func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.Initialize(dbPath)
	if err != nil {
		t.Fatalf("failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	migrationsPath := filepath.Join("..", "..", "migrations")
	if err := db.RunMigrations(context.Background(), migrationsPath); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}
