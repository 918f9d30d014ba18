package testutil

import (
	"path/filepath"
	"testing"

	"smoothie-order/internal/infrastructure/config"
	"smoothie-order/internal/infrastructure/database"
)

// OpenTestStore opens a migrated SQLite store in a temp dir.
// The store is closed via t.Cleanup.
func OpenTestStore(t testing.TB) *database.Store {
	t.Helper()
	s, err := database.Open(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// StrPtr returns a pointer to s.
func StrPtr(s string) *string {
	return &s
}
