package redis

import (
	"context"
	"testing"

	"wisefido-risk/common/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisClient_Options(t *testing.T) {
	client := NewRedisClient(&config.RedisConfig{Addr: "cache:6379", DB: 2, PoolSize: 7})
	defer client.Close()

	opts := client.Options()
	assert.Equal(t, "cache:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 7, opts.PoolSize)
	assert.Equal(t, pingTimeout, opts.DialTimeout)
}

func TestPing(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	client := NewRedisClient(&config.RedisConfig{Addr: addr})

	require.NoError(t, Ping(context.Background(), client))

	mr.Close()
	err := Ping(context.Background(), client)
	require.Error(t, err)
	assert.Contains(t, err.Error(), addr)

	assert.NoError(t, Close(client))
	assert.NoError(t, Close(nil))
}
