package guard

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"smoothie-order/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGuardRejectsSecondHolder(t *testing.T) {
	g := NewMemoryGuard(time.Minute)
	defer g.Close()
	ctx := context.Background()

	token, err := g.Acquire(ctx, "Ana")
	require.NoError(t, err)

	_, err = g.Acquire(ctx, "Ana")
	assert.ErrorIs(t, err, ErrHeld)

	// 其他名稱不受影響
	_, err = g.Acquire(ctx, "Ben")
	assert.NoError(t, err)

	// token 不符不會釋放
	require.NoError(t, g.Release(ctx, "Ana", "not-the-token"))
	_, err = g.Acquire(ctx, "Ana")
	assert.ErrorIs(t, err, ErrHeld)

	require.NoError(t, g.Release(ctx, "Ana", token))
	_, err = g.Acquire(ctx, "Ana")
	assert.NoError(t, err)

	stats := g.GetStats()
	assert.Equal(t, int64(2), stats["rejected"])
}

func TestMemoryGuardExpires(t *testing.T) {
	g := NewMemoryGuard(20 * time.Millisecond)
	defer g.Close()
	ctx := context.Background()

	_, err := g.Acquire(ctx, "Ana")
	require.NoError(t, err)

	time.Sleep(40 * time.Millisecond)
	_, err = g.Acquire(ctx, "Ana")
	assert.NoError(t, err)
}

func TestMemoryGuardConcurrentAcquire(t *testing.T) {
	g := NewMemoryGuard(time.Minute)
	defer g.Close()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := g.Acquire(context.Background(), "Ana"); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}

func TestNewSelectsBackend(t *testing.T) {
	g, err := New(config.GuardConfig{Backend: config.GuardMemory, TTL: time.Second})
	require.NoError(t, err)
	assert.IsType(t, &MemoryGuard{}, g)
	require.NoError(t, g.Close())

	_, err = New(config.GuardConfig{Backend: "zookeeper"})
	assert.Error(t, err)
}

func TestNewRedisGuardUnreachable(t *testing.T) {
	_, err := NewRedisGuard(config.GuardConfig{
		Backend:   config.GuardRedis,
		RedisAddr: "127.0.0.1:1",
		TTL:       time.Second,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to Redis")
}
