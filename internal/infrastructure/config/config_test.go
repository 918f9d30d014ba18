package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 10*time.Second, cfg.Nutrition.Timeout)
	assert.Equal(t, PolicyUpsert, cfg.Order.Policy)
	assert.Equal(t, GuardMemory, cfg.Guard.Backend)
	assert.Equal(t, 2*time.Second, cfg.DedupWindow)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("ORDER_POLICY", "INSERT")
	t.Setenv("NUTRITION_TIMEOUT", "250ms")
	t.Setenv("DB_PATH", "/tmp/orders.db")
	t.Setenv("APP_SERVER_PORT", "9090")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, PolicyInsert, cfg.Order.Policy)
	assert.Equal(t, 250*time.Millisecond, cfg.Nutrition.Timeout)
	assert.Equal(t, "/tmp/orders.db", cfg.Database.Path)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoadConfigRejectsUnknownPolicy(t *testing.T) {
	t.Setenv("ORDER_POLICY", "merge-later")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported order policy")
}

func TestLoadConfigRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "****", MaskSecret("abc"))
	assert.Equal(t, "se...et", MaskSecret("secret-secret"))
}
