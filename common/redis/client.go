package redis

import (
	"context"
	"fmt"
	"time"

	"wisefido-risk/common/config"

	"github.com/go-redis/redis/v8"
)

// Client Redis客户端类型别名
type Client = redis.Client

// 启动时连接检查的默认超时
const pingTimeout = 5 * time.Second

// NewRedisClient 创建Redis客户端
// XREADGROUP BLOCK 的读超时由 go-redis 按 Block 自动放宽，这里不单独设置 ReadTimeout。
func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		PoolSize:    cfg.PoolSize,
		DialTimeout: pingTimeout,
	})
}

// Ping 测试Redis连接（ctx 无截止时间时最多等待 pingTimeout）
func Ping(ctx context.Context, client *redis.Client) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, pingTimeout)
		defer cancel()
	}
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis %s: %w", client.Options().Addr, err)
	}
	return nil
}

// Close 关闭Redis连接
func Close(client *redis.Client) error {
	if client == nil {
		return nil
	}
	return client.Close()
}
