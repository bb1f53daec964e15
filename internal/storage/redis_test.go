package storage

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cv-tailor-go/internal/config"
)

func TestNewRedisAdapter_InvalidConfig(t *testing.T) {
	_, err := NewRedisAdapter(context.Background(), nil)
	assert.Error(t, err)

	_, err = NewRedisAdapter(context.Background(), &config.RedisConfig{})
	assert.Error(t, err)
}

// 需要真实 Redis，设置 CVT_TEST_REDIS_ADDR 时运行
func TestNewRedisAdapter_Ping(t *testing.T) {
	addr := os.Getenv("CVT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("未设置 CVT_TEST_REDIS_ADDR，跳过 Redis 集成测试")
	}
	r, err := NewRedisAdapter(context.Background(), &config.RedisConfig{
		Address:             addr,
		PoolSize:            2,
		DialTimeoutSeconds:  2,
		ReadTimeoutSeconds:  2,
		WriteTimeoutSeconds: 2,
	})
	require.NoError(t, err)
	defer r.Close()

	assert.NoError(t, r.Ping(context.Background()))
}
