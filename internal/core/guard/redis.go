package guard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smoothie-order/internal/infrastructure/config"
	"smoothie-order/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const redisKeyPrefix = "smoothie:order-lock:"

// 只刪除自己持有的鎖
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisGuard 多實例共用的鎖，以 SETNX 加 TTL 實作
type RedisGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisGuard 連線 Redis 並確認可用
func NewRedisGuard(cfg config.GuardConfig) (*RedisGuard, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.RedisAddr,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		DialTimeout: 2 * time.Second,
		MaxRetries:  -1,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("Submission guard initialized",
		zap.String("backend", "redis"),
		zap.String("addr", cfg.RedisAddr),
		zap.Duration("ttl", cfg.TTL),
	)
	return &RedisGuard{client: client, ttl: cfg.TTL}, nil
}

// Acquire 取得鎖
func (g *RedisGuard) Acquire(ctx context.Context, key string) (string, error) {
	token := common.GenerateUUID()
	ok, err := g.client.SetNX(ctx, redisKeyPrefix+key, token, g.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !ok {
		return "", ErrHeld
	}
	return token, nil
}

// Release 釋放鎖
func (g *RedisGuard) Release(ctx context.Context, key, token string) error {
	if err := releaseScript.Run(ctx, g.client, []string{redisKeyPrefix + key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

// Close 關閉連線
func (g *RedisGuard) Close() error {
	return g.client.Close()
}
