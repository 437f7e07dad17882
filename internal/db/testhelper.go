package db

import (
	"database/sql"
	"path/filepath"
	"testing"
)

// OpenTestSQLite opens a throwaway control-plane database under t.TempDir(),
// applies the marker/lease/ingestion-log migrations on the write pool, and
// registers cleanup for both pools.
//
// Repository tests that only write through the single-writer pool can ignore
// the returned read pool.
func OpenTestSQLite(t *testing.T) (writeDB, readDB *sql.DB) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "control-plane.sqlite")

	writeDB, readDB, err := OpenSQLitePair(dbPath, 4)
	if err != nil {
		t.Fatalf("open control-plane sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = readDB.Close()
		_ = writeDB.Close()
	})

	if err := RunMigrations(writeDB); err != nil {
		t.Fatalf("migrate control plane: %v", err)
	}

	return writeDB, readDB
}
