package gateway

import (
	"context"
	"sync"
	"time"
)

// RateLimiter 控制请求速率，避免压垮本地 venue 守护进程。
// Wait 阻塞到下一份配额可用，ctx 取消时提前返回。
type RateLimiter interface {
	Wait(ctx context.Context) error
}

// TokenBucketLimiter 令牌桶：闲时积累突发额度（上限 burst），耗尽后按
// 速率排队。配额在锁内预定、等待在锁外，慢的等待不会拖住别人的记账；
// tokens 允许为负，负值就是已预定还没兑现的队列深度。
type TokenBucketLimiter struct {
	mu     sync.Mutex
	rate   float64
	burst  float64
	tokens float64
	last   time.Time
}

func NewTokenBucketLimiter(rate float64, burst int) *TokenBucketLimiter {
	if rate <= 0 {
		rate = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &TokenBucketLimiter{
		rate:   rate,
		burst:  float64(burst),
		tokens: float64(burst),
		last:   time.Now(),
	}
}

// reserve 扣掉一份配额，返回它真正可用还要等多久。
func (l *TokenBucketLimiter) reserve() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	l.tokens += now.Sub(l.last).Seconds() * l.rate
	if l.tokens > l.burst {
		l.tokens = l.burst
	}
	l.last = now
	l.tokens--
	if l.tokens >= 0 {
		return 0
	}
	return time.Duration(-l.tokens / l.rate * float64(time.Second))
}

// Wait 阻塞到配额可用。取消时配额已被扣掉，后续调用方照常排队。
func (l *TokenBucketLimiter) Wait(ctx context.Context) error {
	d := l.reserve()
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
