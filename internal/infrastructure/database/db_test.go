package database

import (
	"context"
	"path/filepath"
	"testing"

	"smoothie-order/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenAppliesMigrations(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var n int
	require.NoError(t, s.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM fruit_options`).Scan(&n))
	assert.Equal(t, 25, n)

	var versions int
	require.NoError(t, s.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&versions))
	assert.Equal(t, 2, versions)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "again.db")
	cfg := config.DatabaseConfig{Driver: "sqlite", Path: path}

	s1, err := Open(cfg)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(cfg)
	require.NoError(t, err)
	defer s2.Close()

	var n int
	require.NoError(t, s2.DB().QueryRow(`SELECT COUNT(*) FROM fruit_options`).Scan(&n))
	assert.Equal(t, 25, n)
}

func TestWithSessionReleasesConnection(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := s.WithSession(ctx, func(ctx context.Context, sess Session) error {
			var one int
			return sess.QueryRowContext(ctx, `SELECT 1`).Scan(&one)
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 0, s.DB().Stats().InUse)
	assert.NoError(t, s.Ping(ctx))
}

func TestBuildDSN(t *testing.T) {
	dsn, err := buildDSN("sqlite", "a.db")
	require.NoError(t, err)
	assert.Equal(t, "a.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", dsn)

	dsn, err = buildDSN("sqlite3", "file:a.db?cache=shared")
	require.NoError(t, err)
	assert.Equal(t, "file:a.db?cache=shared&_busy_timeout=5000&_foreign_keys=on", dsn)

	_, err = buildDSN("postgres", "a.db")
	assert.Error(t, err)
	_, err = buildDSN("sqlite", "")
	assert.Error(t, err)
}
