package guard

import (
	"context"
	"errors"
	"fmt"

	"smoothie-order/internal/infrastructure/config"
)

// ErrHeld 同一鍵已有提交進行中
var ErrHeld = errors.New("guard: key is already held")

// Guard 防止同一名稱的訂單被同時提交兩次
type Guard interface {
	// Acquire 取得鍵的鎖，成功時返回釋放用的 token；已被持有時返回 ErrHeld
	Acquire(ctx context.Context, key string) (string, error)
	// Release 只在 token 相符時釋放
	Release(ctx context.Context, key, token string) error
	Close() error
}

// New 依設定建立防重實作
func New(cfg config.GuardConfig) (Guard, error) {
	switch cfg.Backend {
	case config.GuardMemory, "":
		return NewMemoryGuard(cfg.TTL), nil
	case config.GuardRedis:
		return NewRedisGuard(cfg)
	default:
		return nil, fmt.Errorf("unsupported guard backend %q", cfg.Backend)
	}
}
