package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// LocalLimiter 进程内的按模型令牌桶，基于 golang.org/x/time/rate
type LocalLimiter struct {
	qpm      QPMFunc
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewLocalLimiter 创建本地限流器
func NewLocalLimiter(qpm QPMFunc) *LocalLimiter {
	return &LocalLimiter{
		qpm:      qpm,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Wait 实现 Limiter 接口
func (l *LocalLimiter) Wait(ctx context.Context, key string) error {
	return l.limiterFor(key).Wait(ctx)
}

// limiterFor 返回 key 对应的令牌桶，不存在时按 QPM 创建。
// 容量设为 QPM 的一半，允许一定的突发流量
func (l *LocalLimiter) limiterFor(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if lim, ok := l.limiters[key]; ok {
		return lim
	}

	qpm := 0
	if l.qpm != nil {
		qpm = l.qpm(key)
	}
	var lim *rate.Limiter
	if qpm <= 0 {
		lim = rate.NewLimiter(rate.Inf, 1)
	} else {
		burst := qpm / 2
		if burst < 1 {
			burst = 1
		}
		lim = rate.NewLimiter(rate.Limit(float64(qpm)/60.0), burst)
	}
	l.limiters[key] = lim
	return lim
}
