// Package testing provides testing utilities and helpers for the riskanalyzer project.
package testing

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/aristath/riskanalyzer/internal/database"
)

// NewTestDB creates a temporary SQLite database for testing with automatic schema migration.
// The database lives in t.TempDir() and is closed when the test finishes.
//
// Supported schema names:
//   - "analysis" - applies analysis_schema.sql
//   - "cache" - applies cache_schema.sql
//   - Unknown names - creates empty database (no schema applied)
func NewTestDB(t *testing.T, name string) *database.DB {
	t.Helper()

	profile := database.ProfileStandard
	if name == database.NameCache {
		profile = database.ProfileCache
	}

	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), fmt.Sprintf("test_%s.db", name)),
		Profile: profile,
		Name:    name,
	})
	if err != nil {
		t.Fatalf("Failed to create test database %s: %v", name, err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		t.Fatalf("Failed to migrate test database %s: %v", name, err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: Failed to close test database %s: %v", name, err)
		}
	})

	return db
}

// TempPath returns a path inside the test's temporary directory that does not exist yet.
func TempPath(t *testing.T, name string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if _, err := os.Stat(path); err == nil {
		t.Fatalf("Temporary path %s already exists", path)
	}
	return path
}
