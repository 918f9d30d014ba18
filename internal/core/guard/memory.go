package guard

import (
	"context"
	"sync"
	"time"

	"smoothie-order/internal/pkg/common"

	"go.uber.org/zap"
)

// MemoryGuard 單一實例使用的記憶體鎖，過期鍵由背景協程清理
type MemoryGuard struct {
	ttl   time.Duration
	mu    sync.Mutex
	store map[string]entry
	stats stats
	done  chan struct{}
	once  sync.Once
}

type entry struct {
	token     string
	expiresAt time.Time
}

type stats struct {
	acquired int64
	rejected int64
	expired  int64
}

// NewMemoryGuard 創建記憶體鎖
func NewMemoryGuard(ttl time.Duration) *MemoryGuard {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	g := &MemoryGuard{
		ttl:   ttl,
		store: make(map[string]entry),
		done:  make(chan struct{}),
	}
	go g.startCleanup()

	common.LogInfo("Submission guard initialized",
		zap.String("backend", "memory"),
		zap.Duration("ttl", ttl),
	)
	return g
}

// Acquire 取得鎖；過期的鎖視為已釋放
func (g *MemoryGuard) Acquire(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	if e, ok := g.store[key]; ok && now.Before(e.expiresAt) {
		g.stats.rejected++
		return "", ErrHeld
	}

	token := common.GenerateUUID()
	g.store[key] = entry{token: token, expiresAt: now.Add(g.ttl)}
	g.stats.acquired++
	return token, nil
}

// Release 釋放鎖
func (g *MemoryGuard) Release(ctx context.Context, key, token string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if e, ok := g.store[key]; ok && e.token == token {
		delete(g.store, key)
	}
	return nil
}

// startCleanup 定期清理過期鍵
func (g *MemoryGuard) startCleanup() {
	ticker := time.NewTicker(g.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			g.cleanup()
		case <-g.done:
			return
		}
	}
}

func (g *MemoryGuard) cleanup() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	count := 0
	for key, e := range g.store {
		if now.After(e.expiresAt) {
			delete(g.store, key)
			count++
		}
	}
	g.stats.expired += int64(count)
	if count > 0 {
		common.LogDebug("Expired submission locks removed",
			zap.Int("count", count),
			zap.Int("remaining", len(g.store)),
		)
	}
	return count
}

// GetStats 返回統計資訊
func (g *MemoryGuard) GetStats() map[string]interface{} {
	g.mu.Lock()
	defer g.mu.Unlock()

	return map[string]interface{}{
		"held":     len(g.store),
		"acquired": g.stats.acquired,
		"rejected": g.stats.rejected,
		"expired":  g.stats.expired,
	}
}

// Close 停止清理協程並清空
func (g *MemoryGuard) Close() error {
	g.once.Do(func() { close(g.done) })

	g.mu.Lock()
	defer g.mu.Unlock()
	g.store = make(map[string]entry)
	common.LogInfo("Submission guard closed",
		zap.Int64("acquired", g.stats.acquired),
		zap.Int64("rejected", g.stats.rejected),
	)
	return nil
}
