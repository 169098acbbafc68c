package aggregator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrCacheMiss 任一 key 不存在或已过期
var ErrCacheMiss = errors.New("cache miss")

// KVStore dashboard 缓存存储
// 同一租户的汇总和卡片成组读写，读者不会拿到两轮聚合拼出来的结果。
type KVStore interface {
	// GetMany 按 keys 顺序返回值，任一缺失返回 ErrCacheMiss
	GetMany(ctx context.Context, keys ...string) ([]string, error)
	// SetMany 原子写入全部 key（相同 TTL）
	SetMany(ctx context.Context, values map[string]string, ttl time.Duration) error
}

// RedisKVStore MGET 读取，MULTI/EXEC 写入
type RedisKVStore struct {
	client *redis.Client
}

func NewRedisKVStore(client *redis.Client) *RedisKVStore {
	return &RedisKVStore{client: client}
}

func (r *RedisKVStore) GetMany(ctx context.Context, keys ...string) ([]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to mget %v: %w", keys, err)
	}

	out := make([]string, len(vals))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrCacheMiss, keys[i])
		}
		out[i] = s
	}
	return out, nil
}

func (r *RedisKVStore) SetMany(ctx context.Context, values map[string]string, ttl time.Duration) error {
	if len(values) == 0 {
		return nil
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for key, value := range values {
			pipe.Set(ctx, key, value, ttl)
		}
		return nil
	})
	return err
}
