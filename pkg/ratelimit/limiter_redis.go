package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"cv-tailor-go/internal/tracing"
	"cv-tailor-go/internal/types"
)

// RedisLimiter 多实例共享的按模型固定窗口计数器。
// Redis 中只保存计数，不保存任何用户数据
type RedisLimiter struct {
	client redis.Cmdable
	prefix string
	qpm    QPMFunc
	window time.Duration
	now    func() time.Time
}

// NewRedisLimiter 创建 Redis 限流器，窗口为一分钟
func NewRedisLimiter(client redis.Cmdable, prefix string, qpm QPMFunc) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: prefix,
		qpm:    qpm,
		window: time.Minute,
		now:    time.Now,
	}
}

// windowKey 返回 t 所在窗口的计数 key 以及窗口结束时间
func (l *RedisLimiter) windowKey(key string, t time.Time) (string, time.Time) {
	start := t.Truncate(l.window)
	return fmt.Sprintf("%s%s:%d", l.prefix, key, start.Unix()), start.Add(l.window)
}

// Wait 实现 Limiter 接口。当前窗口已满时等待到下一个窗口再试
func (l *RedisLimiter) Wait(ctx context.Context, key string) error {
	limit := 0
	if l.qpm != nil {
		limit = l.qpm(key)
	}
	if limit <= 0 {
		return nil
	}

	for {
		counterKey, windowEnd := l.windowKey(key, l.now())

		pipe := l.client.TxPipeline()
		incr := pipe.Incr(ctx, counterKey)
		pipe.ExpireNX(ctx, counterKey, 2*l.window)
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("%w: 计数失败 key=%s: %w", types.ErrRateLimitBackend, tracing.SafeRedisKey(counterKey), err)
		}
		if incr.Val() <= int64(limit) {
			return nil
		}

		wait := windowEnd.Sub(l.now())
		if wait <= 0 {
			continue
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
